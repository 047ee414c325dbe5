// Package storagetest is a conformance suite run against every
// storage.Storage backend, so the memory and sqlite stores are held to
// exactly the same id, validation and update rules.
package storagetest

import (
	"fmt"
	"sync"
	"testing"

	"github.com/aanand-mishra/student-roster/internal/storage"
	"github.com/aanand-mishra/student-roster/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewStudent builds a complete create request.
func NewStudent(name string, grade int, section string) types.NewStudent {
	return types.NewStudent{Name: &name, Grade: &grade, Section: &section}
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T { return &v }

// Run executes the suite. newStore must return an empty store for each call.
func Run(t *testing.T, newStore func(t *testing.T) storage.Storage) {
	t.Run("empty list is non-nil", func(t *testing.T) {
		store := newStore(t)
		students, err := store.ListStudents()
		require.NoError(t, err)
		assert.NotNil(t, students)
		assert.Empty(t, students)
	})

	t.Run("nth add gets id n", func(t *testing.T) {
		store := newStore(t)
		for n := int64(1); n <= 5; n++ {
			s, err := store.AddStudent(NewStudent(fmt.Sprintf("s%d", n), 7, "A"))
			require.NoError(t, err)
			assert.Equal(t, n, s.ID)
		}
	})

	t.Run("deleting max id frees it for the next add", func(t *testing.T) {
		store := newStore(t)
		mustAdd(t, store, "Ma. Divine Santos", 12, "Zechariah")
		mustAdd(t, store, "John Cruz", 11, "Gabriel")
		a := mustAdd(t, store, "A", 10, "S")
		require.Equal(t, int64(3), a.ID)

		require.NoError(t, store.DeleteStudent(3))

		b := mustAdd(t, store, "B", 9, "T")
		assert.Equal(t, int64(3), b.ID)
	})

	t.Run("deleting a middle id does not reuse it", func(t *testing.T) {
		store := newStore(t)
		mustAdd(t, store, "a", 1, "x")
		mustAdd(t, store, "b", 2, "x")
		mustAdd(t, store, "c", 3, "x")
		require.NoError(t, store.DeleteStudent(2))

		d := mustAdd(t, store, "d", 4, "x")
		assert.Equal(t, int64(4), d.ID)
	})

	t.Run("get returns what add returned", func(t *testing.T) {
		store := newStore(t)
		added := mustAdd(t, store, "John Cruz", 11, "Gabriel")

		got, err := store.GetStudent(added.ID)
		require.NoError(t, err)
		assert.Equal(t, added, got)
		assert.Equal(t, types.Student{ID: 1, Name: "John Cruz", Grade: 11, Section: "Gabriel"}, got)
	})

	t.Run("get unknown id", func(t *testing.T) {
		store := newStore(t)
		_, err := store.GetStudent(42)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("list keeps insertion order after id reuse", func(t *testing.T) {
		store := newStore(t)
		mustAdd(t, store, "a", 1, "x")
		mustAdd(t, store, "b", 1, "x")
		require.NoError(t, store.DeleteStudent(1))
		mustAdd(t, store, "c", 1, "x") // id 3
		require.NoError(t, store.DeleteStudent(3))
		mustAdd(t, store, "d", 1, "x") // id 3 again, inserted last

		students, err := store.ListStudents()
		require.NoError(t, err)
		require.Len(t, students, 2)
		assert.Equal(t, "b", students[0].Name)
		assert.Equal(t, "d", students[1].Name)
		assert.Equal(t, int64(3), students[1].ID)
	})

	t.Run("add rejects missing fields and leaves store unchanged", func(t *testing.T) {
		store := newStore(t)
		mustAdd(t, store, "a", 1, "x")

		cases := map[string]types.NewStudent{
			"empty":           {},
			"missing name":    {Grade: Ptr(5), Section: Ptr("x")},
			"missing grade":   {Name: Ptr("n"), Section: Ptr("x")},
			"missing section": {Name: Ptr("n"), Grade: Ptr(5)},
			"empty name":      NewStudent("", 5, "x"),
			"empty section":   NewStudent("n", 5, ""),
			"grade too low":   NewStudent("n", 0, "x"),
			"grade too high":  NewStudent("n", 13, "x"),
		}
		for name, in := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := store.AddStudent(in)
				require.ErrorIs(t, err, storage.ErrInvalidInput)

				var verrs validator.ValidationErrors
				assert.ErrorAs(t, err, &verrs)

				students, err := store.ListStudents()
				require.NoError(t, err)
				assert.Len(t, students, 1)
			})
		}
	})

	t.Run("update changes only supplied fields", func(t *testing.T) {
		store := newStore(t)
		before := mustAdd(t, store, "John Cruz", 11, "Gabriel")

		updated, err := store.UpdateStudent(before.ID, types.StudentPatch{Name: Ptr("X")})
		require.NoError(t, err)
		assert.Equal(t, types.Student{ID: before.ID, Name: "X", Grade: 11, Section: "Gabriel"}, updated)

		got, err := store.GetStudent(before.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, got)
	})

	t.Run("update with every field", func(t *testing.T) {
		store := newStore(t)
		before := mustAdd(t, store, "a", 1, "x")

		updated, err := store.UpdateStudent(before.ID, types.StudentPatch{
			Name: Ptr("b"), Grade: Ptr(2), Section: Ptr("y"),
		})
		require.NoError(t, err)
		assert.Equal(t, types.Student{ID: before.ID, Name: "b", Grade: 2, Section: "y"}, updated)
	})

	t.Run("empty patch is a no-op", func(t *testing.T) {
		store := newStore(t)
		before := mustAdd(t, store, "a", 1, "x")

		updated, err := store.UpdateStudent(before.ID, types.StudentPatch{})
		require.NoError(t, err)
		assert.Equal(t, before, updated)
	})

	t.Run("update unknown id", func(t *testing.T) {
		store := newStore(t)
		_, err := store.UpdateStudent(9, types.StudentPatch{Name: Ptr("X")})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("invalid patch changes nothing", func(t *testing.T) {
		store := newStore(t)
		before := mustAdd(t, store, "a", 5, "x")

		_, err := store.UpdateStudent(before.ID, types.StudentPatch{Name: Ptr("b"), Grade: Ptr(20)})
		require.ErrorIs(t, err, storage.ErrInvalidInput)

		got, err := store.GetStudent(before.ID)
		require.NoError(t, err)
		assert.Equal(t, before, got)
	})

	t.Run("delete then get", func(t *testing.T) {
		store := newStore(t)
		s := mustAdd(t, store, "a", 1, "x")

		require.NoError(t, store.DeleteStudent(s.ID))

		_, err := store.GetStudent(s.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.DeleteStudent(s.ID), storage.ErrNotFound)

		students, err := store.ListStudents()
		require.NoError(t, err)
		assert.Empty(t, students)
	})

	t.Run("concurrent adds get distinct ids", func(t *testing.T) {
		store := newStore(t)
		const n = 50

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := store.AddStudent(NewStudent(fmt.Sprintf("s%d", i), 1+i%12, "x"))
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		students, err := store.ListStudents()
		require.NoError(t, err)
		require.Len(t, students, n)

		seen := make(map[int64]bool, n)
		for _, s := range students {
			assert.False(t, seen[s.ID], "duplicate id %d", s.ID)
			seen[s.ID] = true
		}
		for id := int64(1); id <= n; id++ {
			assert.True(t, seen[id], "missing id %d", id)
		}
	})
}

func mustAdd(t *testing.T, store storage.Storage, name string, grade int, section string) types.Student {
	t.Helper()
	s, err := store.AddStudent(NewStudent(name, grade, section))
	require.NoError(t, err)
	return s
}
