package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aanand-mishra/student-roster/internal/storage"
	"github.com/aanand-mishra/student-roster/internal/storage/memory"
	"github.com/aanand-mishra/student-roster/internal/storage/storagetest"
	"github.com/aanand-mishra/student-roster/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Message string          `json:"message"`
	Data    []types.Student `json:"data"`
	Student *types.Student  `json:"student"`
	Error   string          `json:"error"`
}

func newMux(t *testing.T, store storage.Storage) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	Register(mux, slog.New(slog.NewTextHandler(io.Discard, nil)), store)
	return mux
}

func seededStore(t *testing.T) *memory.Memory {
	t.Helper()
	store := memory.New()
	for _, in := range []types.NewStudent{
		storagetest.NewStudent("Ma. Divine Santos", 12, "Zechariah"),
		storagetest.NewStudent("John Cruz", 11, "Gabriel"),
	} {
		_, err := store.AddStudent(in)
		require.NoError(t, err)
	}
	return store
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestGetList(t *testing.T) {
	t.Parallel()

	t.Run("seeded", func(t *testing.T) {
		t.Parallel()
		rec, env := do(t, newMux(t, seededStore(t)), http.MethodGet, "/students", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "List of all students", env.Message)
		require.Len(t, env.Data, 2)
		assert.Equal(t, int64(1), env.Data[0].ID)
		assert.Equal(t, "John Cruz", env.Data[1].Name)
	})

	t.Run("empty store lists []", func(t *testing.T) {
		t.Parallel()
		rec, _ := do(t, newMux(t, memory.New()), http.MethodGet, "/students", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"List of all students","data":[]}`, rec.Body.String())
	})
}

func TestGetByID(t *testing.T) {
	t.Parallel()
	mux := newMux(t, seededStore(t))

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantErr  string
	}{
		{name: "found", path: "/students/2", wantCode: http.StatusOK},
		{name: "not found", path: "/students/99", wantCode: http.StatusNotFound, wantErr: "Student not found"},
		{name: "non integer id", path: "/students/abc", wantCode: http.StatusBadRequest, wantErr: "invalid id: must be an integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, mux, http.MethodGet, tt.path, "")

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantErr, env.Error)
			if tt.wantErr == "" {
				require.NotNil(t, env.Student)
				assert.Equal(t, types.Student{ID: 2, Name: "John Cruz", Grade: 11, Section: "Gabriel"}, *env.Student)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{name: "created", body: `{"name":"A","grade":10,"section":"S"}`, wantCode: http.StatusCreated},
		{name: "client id ignored", body: `{"id":50,"name":"A","grade":10,"section":"S"}`, wantCode: http.StatusCreated},
		{name: "empty body", body: "", wantCode: http.StatusBadRequest, wantErr: "request body is empty"},
		{name: "empty object", body: `{}`, wantCode: http.StatusBadRequest,
			wantErr: "field name is required, field grade is required, field section is required"},
		{name: "null field", body: `{"name":"A","grade":null,"section":"S"}`, wantCode: http.StatusBadRequest,
			wantErr: "field grade is required"},
		{name: "grade out of range", body: `{"name":"A","grade":13,"section":"S"}`, wantCode: http.StatusBadRequest,
			wantErr: "field grade must be at most 12"},
		{name: "malformed", body: `{"name":`, wantCode: http.StatusBadRequest},
		{name: "wrong type", body: `{"name":"A","grade":"ten","section":"S"}`, wantCode: http.StatusBadRequest},
		{name: "trailing garbage", body: `{"name":"A","grade":1,"section":"S"} garbage`, wantCode: http.StatusBadRequest,
			wantErr: "request body must contain a single JSON object"},
		{name: "two objects", body: `{"name":"A","grade":1,"section":"S"}{"name":"B"}`, wantCode: http.StatusBadRequest,
			wantErr: "request body must contain a single JSON object"},
		{name: "trailing whitespace", body: "{\"name\":\"A\",\"grade\":10,\"section\":\"S\"}\n", wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := seededStore(t)

			rec, env := do(t, newMux(t, store), http.MethodPost, "/students", tt.body)

			assert.Equal(t, tt.wantCode, rec.Code)
			students, err := store.ListStudents()
			require.NoError(t, err)

			if tt.wantCode == http.StatusCreated {
				assert.Equal(t, "New student added successfully!", env.Message)
				require.NotNil(t, env.Student)
				assert.Equal(t, types.Student{ID: 3, Name: "A", Grade: 10, Section: "S"}, *env.Student)
				assert.Len(t, students, 3)
				return
			}

			assert.NotEmpty(t, env.Error)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, env.Error)
			}
			assert.Nil(t, env.Student)
			assert.Len(t, students, 2)
		})
	}
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
		want     types.Student
	}{
		{name: "name only", path: "/students/2", body: `{"name":"X"}`, wantCode: http.StatusOK,
			want: types.Student{ID: 2, Name: "X", Grade: 11, Section: "Gabriel"}},
		{name: "grade and section", path: "/students/1", body: `{"grade":11,"section":"Raphael"}`, wantCode: http.StatusOK,
			want: types.Student{ID: 1, Name: "Ma. Divine Santos", Grade: 11, Section: "Raphael"}},
		{name: "id in body ignored", path: "/students/1", body: `{"id":7}`, wantCode: http.StatusOK,
			want: types.Student{ID: 1, Name: "Ma. Divine Santos", Grade: 12, Section: "Zechariah"}},
		{name: "not found", path: "/students/9", body: `{"name":"X"}`, wantCode: http.StatusNotFound},
		{name: "invalid grade", path: "/students/1", body: `{"grade":0}`, wantCode: http.StatusBadRequest},
		{name: "empty body", path: "/students/1", body: "", wantCode: http.StatusBadRequest},
		{name: "trailing garbage", path: "/students/1", body: `{"name":"X"} garbage`, wantCode: http.StatusBadRequest},
		{name: "non integer id", path: "/students/x", body: `{"name":"X"}`, wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, env := do(t, newMux(t, seededStore(t)), http.MethodPut, tt.path, tt.body)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				assert.NotEmpty(t, env.Error)
				return
			}
			assert.Equal(t, "Student updated successfully!", env.Message)
			require.NotNil(t, env.Student)
			assert.Equal(t, tt.want, *env.Student)
		})
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()
	store := seededStore(t)
	mux := newMux(t, store)

	rec, _ := do(t, mux, http.MethodDelete, "/students/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Student deleted successfully!"}`, rec.Body.String())

	rec, env := do(t, mux, http.MethodDelete, "/students/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Student not found", env.Error)

	rec, _ = do(t, mux, http.MethodGet, "/students/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, mux, http.MethodDelete, "/students/one", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// failingStore reports a backend failure on every call.
type failingStore struct{ storage.Storage }

func (failingStore) ListStudents() ([]types.Student, error) {
	return nil, errors.New("ListStudents: query: disk I/O error")
}

func TestGetList_StoreFailure(t *testing.T) {
	t.Parallel()
	rec, env := do(t, newMux(t, failingStore{}), http.MethodGet, "/students", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", env.Error)
	assert.NotContains(t, rec.Body.String(), "disk I/O error")
}
