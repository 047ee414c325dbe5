// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, and utils can all import types without depending
// on each other.
package types

// Student represents a student record held by the store.
//
// ID is always assigned by the store. Clients never choose it: a client
// supplied "id" on create is simply not part of NewStudent and is dropped
// by the JSON decoder.
type Student struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Grade   int    `json:"grade"`
	Section string `json:"section"`
}

// NewStudent is the request shape for creating a student.
//
// Every field is a pointer so the validator can tell "missing / null"
// (nil pointer) apart from a zero value that was actually sent.
//
//   - required   — pointer must be non-nil
//   - min / max  — checked against the dereferenced value
type NewStudent struct {
	Name    *string `json:"name"    validate:"required,min=1"`
	Grade   *int    `json:"grade"   validate:"required,min=1,max=12"`
	Section *string `json:"section" validate:"required,min=1"`
}

// StudentPatch is the request shape for a partial update. Absent (or null)
// fields are left untouched on the stored record.
type StudentPatch struct {
	Name    *string `json:"name"    validate:"omitempty,min=1"`
	Grade   *int    `json:"grade"   validate:"omitempty,min=1,max=12"`
	Section *string `json:"section" validate:"omitempty,min=1"`
}

// Student builds the record described by n with the given id.
// Callers must validate n first; a nil field here would panic.
func (n NewStudent) Student(id int64) Student {
	return Student{
		ID:      id,
		Name:    *n.Name,
		Grade:   *n.Grade,
		Section: *n.Section,
	}
}

// Apply returns s with every field present in p replaced.
// The ID is never touched.
func (p StudentPatch) Apply(s Student) Student {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Grade != nil {
		s.Grade = *p.Grade
	}
	if p.Section != nil {
		s.Section = *p.Section
	}
	return s
}
