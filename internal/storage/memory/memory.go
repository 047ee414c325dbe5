// Package memory provides the process-local implementation of the
// storage.Storage interface.
//
// Students live in a plain slice, which keeps insertion order for free.
// Every lookup is a linear scan over that slice. That is O(n) per call and
// fine for the small collections this service is meant for; a map index
// would be the first change if collections ever grow large.
package memory

import (
	"fmt"
	"sync"

	"github.com/aanand-mishra/student-roster/internal/storage"
	"github.com/aanand-mishra/student-roster/internal/types"
)

// Memory is the in-memory student store.
//
// mu guards students. Readers take the shared lock so concurrent GETs
// overlap; Add/Update/Delete take the exclusive lock, which rules out
// lost updates and iteration during mutation.
type Memory struct {
	mu       sync.RWMutex
	students []types.Student
}

// New returns an empty store.
func New() *Memory {
	return &Memory{students: make([]types.Student, 0)}
}

// indexOf returns the slice position of id, or -1. Caller holds mu.
func (m *Memory) indexOf(id int64) int {
	for i := range m.students {
		if m.students[i].ID == id {
			return i
		}
	}
	return -1
}

// ListStudents returns a copy of the collection, so callers can never
// reach into the store's backing array.
func (m *Memory) ListStudents() ([]types.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Student, len(m.students))
	copy(out, m.students)
	return out, nil
}

func (m *Memory) GetStudent(id int64) (types.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexOf(id)
	if i < 0 {
		return types.Student{}, fmt.Errorf("GetStudent %d: %w", id, storage.ErrNotFound)
	}
	return m.students[i], nil
}

func (m *Memory) AddStudent(in types.NewStudent) (types.Student, error) {
	// Validation needs no lock and must finish before anything mutates.
	if err := storage.ValidateNew(in); err != nil {
		return types.Student{}, fmt.Errorf("AddStudent: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	student := in.Student(storage.NextID(m.students))
	m.students = append(m.students, student)
	return student, nil
}

func (m *Memory) UpdateStudent(id int64, patch types.StudentPatch) (types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return types.Student{}, fmt.Errorf("UpdateStudent %d: %w", id, storage.ErrNotFound)
	}
	if err := storage.ValidatePatch(patch); err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudent %d: %w", id, err)
	}

	m.students[i] = patch.Apply(m.students[i])
	return m.students[i], nil
}

func (m *Memory) DeleteStudent(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return fmt.Errorf("DeleteStudent %d: %w", id, storage.ErrNotFound)
	}

	// Shift the tail left instead of swapping, to keep insertion order.
	m.students = append(m.students[:i], m.students[i+1:]...)
	return nil
}

var _ storage.Storage = (*Memory)(nil)
