// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Go's router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// That signature has no room for extra parameters like a store.
// Each exported function here is a factory: it receives the dependencies
// once at startup and returns the handler that runs on every request.
//
//	router.HandleFunc("POST /students", student.New(log, store))
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/student-roster/internal/http/middleware"
	"github.com/aanand-mishra/student-roster/internal/storage"
	"github.com/aanand-mishra/student-roster/internal/types"
	"github.com/aanand-mishra/student-roster/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// maxBodyBytes caps request bodies; a student is a few dozen bytes.
const maxBodyBytes = 1 << 20

var (
	errEmptyBody   = errors.New("request body is empty")
	errInvalidID   = errors.New("invalid id: must be an integer")
	errNotFound    = errors.New("Student not found")
	errMissingData = errors.New("Please include name, grade, and section")

	errTrailingData = errors.New("request body must contain a single JSON object")
	errInternal     = errors.New("internal server error")
)

// Register mounts every student route on mux.
//
// Route table:
//
//	GET    /students        → list all students
//	GET    /students/{id}   → get one student by id
//	POST   /students        → create a new student
//	PUT    /students/{id}   → partially update a student
//	DELETE /students/{id}   → delete a student
func Register(mux *http.ServeMux, log *slog.Logger, store storage.Storage) {
	mux.HandleFunc("GET /students", GetList(log, store))
	mux.HandleFunc("GET /students/{id}", GetByID(log, store))
	mux.HandleFunc("POST /students", New(log, store))
	mux.HandleFunc("PUT /students/{id}", Update(log, store))
	mux.HandleFunc("DELETE /students/{id}", Delete(log, store))
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /students
//
// Request body (JSON):
//
//	{ "name": "John Cruz", "grade": 11, "section": "Gabriel" }
//
// Success response (201 Created):
//
//	{ "message": "New student added successfully!", "student": { "id": 3, ... } }
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, or missing/invalid field
//
// ─────────────────────────────────────────────────────────────────────────────
func New(log *slog.Logger, store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(log, r)
		log.Info("creating a student")

		var in types.NewStudent
		if err := decodeBody(w, r, &in); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		student, err := store.AddStudent(in)
		if err != nil {
			writeStoreError(w, log, err)
			return
		}

		log.Info("student created", slog.Int64("id", student.ID))
		response.WriteJSON(w, http.StatusCreated,
			response.Single("New student added successfully!", student))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /students/{id}
//
// Error responses:
//
//	400 Bad Request  — id is not a valid integer
//	404 Not Found    — no student with that id
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(log *slog.Logger, store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(log, r)

		id, ok := parseID(w, r)
		if !ok {
			return
		}
		log.Info("getting a student", slog.Int64("id", id))

		student, err := store.GetStudent(id)
		if err != nil {
			writeStoreError(w, log, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.Single("Student found", student))
	}
}

// GetList handles GET /students. An empty store yields "data": [].
func GetList(log *slog.Logger, store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(log, r)
		log.Info("getting all students")

		students, err := store.ListStudents()
		if err != nil {
			writeStoreError(w, log, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.List("List of all students", students))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /students/{id}
// Only the fields present in the body change; the rest keep their values.
//
// Request body (JSON) — every field optional:
//
//	{ "section": "Raphael" }
//
// Error responses:
//
//	400 Bad Request  — invalid id, empty or malformed body, invalid field
//	404 Not Found    — no student with that id
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(log *slog.Logger, store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(log, r)

		id, ok := parseID(w, r)
		if !ok {
			return
		}
		log.Info("updating a student", slog.Int64("id", id))

		var patch types.StudentPatch
		if err := decodeBody(w, r, &patch); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		updated, err := store.UpdateStudent(id, patch)
		if err != nil {
			writeStoreError(w, log, err)
			return
		}

		log.Info("student updated", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK,
			response.Single("Student updated successfully!", updated))
	}
}

// Delete handles DELETE /students/{id}. The body on success is only a
// message.
func Delete(log *slog.Logger, store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(log, r)

		id, ok := parseID(w, r)
		if !ok {
			return
		}
		log.Info("deleting a student", slog.Int64("id", id))

		if err := store.DeleteStudent(id); err != nil {
			writeStoreError(w, log, err)
			return
		}

		log.Info("student deleted", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, response.Message("Student deleted successfully!"))
	}
}

func requestLogger(log *slog.Logger, r *http.Request) *slog.Logger {
	return log.With(slog.String("request_id", middleware.RequestIDFrom(r.Context())))
}

// parseID reads the {id} path segment. On failure it has already written
// the 400 response and the store must not be called.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errInvalidID))
		return 0, false
	}
	return id, true
}

// decodeBody decodes the JSON body into v. io.EOF on the first Decode means
// the body was completely empty; anything but io.EOF on the second means
// the body carried more than one JSON value.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	if err != nil {
		return err
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

// writeStoreError maps store errors onto status codes:
//
//	storage.ErrNotFound     → 404
//	storage.ErrInvalidInput → 400
//	anything else           → 500
func writeStoreError(w http.ResponseWriter, log *slog.Logger, err error) {
	var validateErrs validator.ValidationErrors

	switch {
	case errors.Is(err, storage.ErrNotFound):
		log.Info("student not found", slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errNotFound))
	case errors.Is(err, storage.ErrInvalidInput):
		log.Info("invalid student input", slog.String("error", err.Error()))
		if errors.As(err, &validateErrs) {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
			return
		}
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errMissingData))
	default:
		// The full error can carry SQL text; it goes to the log only.
		log.Error("store failure", slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errInternal))
	}
}
