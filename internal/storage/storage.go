// Package storage defines the Storage interface — a contract that any
// student store backend must satisfy to work with this application.
//
// WHY AN INTERFACE?
// ─────────────────
// Handlers (HTTP layer) should not know or care where students live. By
// depending only on this interface:
//
//   - Switching backends = implement the interface, change one line in
//     main.go. Zero handler changes.
//
//   - Writing tests = pass any implementation (the in-memory one is the
//     natural choice). No database needed for unit tests.
//
// The rules every backend must follow (id policy, validation, partial
// updates) also live here so they cannot drift between implementations.
package storage

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/aanand-mishra/student-roster/internal/types"
	"github.com/go-playground/validator/v10"
)

// Sentinel errors. Backends wrap these with fmt.Errorf("...: %w", ...) and
// callers test for them with errors.Is.
var (
	// ErrNotFound means no record currently holds the requested id.
	ErrNotFound = errors.New("student not found")

	// ErrInvalidInput means a required field is missing or a supplied
	// field breaks a validation rule.
	ErrInvalidInput = errors.New("invalid student input")
)

// Storage is the student store contract.
type Storage interface {
	// ListStudents returns every student in insertion order.
	// Returns an empty slice (not nil) if there are no students.
	ListStudents() ([]types.Student, error)

	// GetStudent fetches a single student by id. Fails with ErrNotFound.
	GetStudent(id int64) (types.Student, error)

	// AddStudent validates the input, assigns the next id (see NextID)
	// and appends the record. Fails with ErrInvalidInput.
	AddStudent(in types.NewStudent) (types.Student, error)

	// UpdateStudent replaces only the fields present in the patch and
	// returns the updated record. Fails with ErrNotFound or ErrInvalidInput.
	UpdateStudent(id int64, patch types.StudentPatch) (types.Student, error)

	// DeleteStudent removes a student permanently. Fails with ErrNotFound.
	DeleteStudent(id int64) error
}

// validate is safe for concurrent use and caches struct metadata, so one
// instance is shared by the whole process.
var validate = newValidator()

// newValidator reports fields by their JSON name ("grade", not "Grade"),
// which is what API clients actually send.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidateNew checks a create request. The returned error matches
// ErrInvalidInput and, via errors.As, validator.ValidationErrors.
func ValidateNew(in types.NewStudent) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

// ValidatePatch checks an update request. Absent fields always pass.
func ValidatePatch(patch types.StudentPatch) error {
	if err := validate.Struct(patch); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

// NextID implements the id policy: one greater than the largest id
// currently held, or 1 for an empty collection. It is recomputed on every
// add, so deleting the highest id frees that number for the next add.
func NextID(students []types.Student) int64 {
	var maxID int64
	for _, s := range students {
		if s.ID > maxID {
			maxID = s.ID
		}
	}
	return maxID + 1
}
