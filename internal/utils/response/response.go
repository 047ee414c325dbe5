// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
//
// Response shapes:
//
//	{ "message": "List of all students", "data": [ ... ] }
//	{ "message": "Student found", "student": { ... } }
//	{ "message": "Student deleted successfully" }
//	{ "error": "student not found" }
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the envelope for every JSON body the API writes.
// Empty fields are omitted, so an error body carries only "error".
type Response struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Student any    `json:"student,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WriteJSON writes data JSON-encoded with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// List wraps a collection under "data".
func List(message string, data any) Response {
	return Response{Message: message, Data: data}
}

// Single wraps one record under "student".
func Single(message string, student any) Response {
	return Response{Message: message, Student: student}
}

// Message is a body with only a human-readable message.
func Message(message string) Response {
	return Response{Message: message}
}

// GeneralError wraps any Go error into the error envelope.
func GeneralError(err error) Response {
	return Response{Error: err.Error()}
}

// ─────────────────────────────────────────────────────────────────────────────
// ValidationError converts a slice of validator.FieldError values into
// a single human-readable Response.
//
// Example output:
//
//	{ "error": "field name is required, field grade must be at most 12" }
//
// ─────────────────────────────────────────────────────────────────────────────
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		// On strings min=1 means "non-empty"; on numbers it is a bound.
		case "min":
			if e.Kind() == reflect.String {
				errMessages = append(errMessages,
					fmt.Sprintf("field %s must not be empty", e.Field()))
			} else {
				errMessages = append(errMessages,
					fmt.Sprintf("field %s must be at least %s", e.Field(), e.Param()))
			}
		case "max":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be at most %s", e.Field(), e.Param()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{Error: strings.Join(errMessages, ", ")}
}
