// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// It follows exactly the same rules as the in-memory store — including
// the "largest id + 1" policy, which AUTOINCREMENT cannot express because
// it never hands out a number twice. So the table carries two integer
// columns:
//
//	insertion — AUTOINCREMENT rowid, only used for ORDER BY (insertion order)
//	id        — the public student id, computed by storage.NextID rules
//
// With storage path ":memory:" the database is process-local like the
// memory backend; with a file path the students survive restarts.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/student-roster/internal/config"
	"github.com/aanand-mishra/student-roster/internal/storage"
	"github.com/aanand-mishra/student-roster/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the database-backed implementation of storage.Storage.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at cfg.Storage.Path, creates the students
// table if it does not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open("sqlite3", cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// One connection only. Every ":memory:" connection is a separate,
	// empty database, and a single connection also serialises the
	// read-compute-insert sequence of AddStudent.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			insertion INTEGER PRIMARY KEY AUTOINCREMENT,
			id        INTEGER NOT NULL UNIQUE,
			name      TEXT    NOT NULL,
			grade     INTEGER NOT NULL,
			section   TEXT    NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Close releases the underlying connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// queryer is satisfied by both *sql.DB and *sql.Tx, so getStudent can run
// inside or outside a transaction.
type queryer interface {
	QueryRow(query string, args ...any) *sql.Row
}

func getStudent(q queryer, id int64) (types.Student, error) {
	var student types.Student
	err := q.QueryRow(
		"SELECT id, name, grade, section FROM students WHERE id = ? LIMIT 1", id,
	).Scan(
		&student.ID,
		&student.Name,
		&student.Grade,
		&student.Section,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, fmt.Errorf("no student found with id %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("scan: %w", err)
	}
	return student, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// ListStudents returns all student rows in insertion order.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) ListStudents() ([]types.Student, error) {
	rows, err := s.Db.Query(
		"SELECT id, name, grade, section FROM students ORDER BY insertion",
	)
	if err != nil {
		return nil, fmt.Errorf("ListStudents: query: %w", err)
	}
	defer rows.Close()

	// Non-nil so the JSON envelope carries [] rather than null.
	students := make([]types.Student, 0)

	for rows.Next() {
		var student types.Student
		if err := rows.Scan(
			&student.ID,
			&student.Name,
			&student.Grade,
			&student.Section,
		); err != nil {
			return nil, fmt.Errorf("ListStudents: scan row: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListStudents: rows iteration: %w", err)
	}

	return students, nil
}

func (s *SQLite) GetStudent(id int64) (types.Student, error) {
	student, err := getStudent(s.Db, id)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudent: %w", err)
	}
	return student, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// AddStudent computes the next id and inserts the row in one transaction,
// so a concurrent add can never observe the same MAX(id).
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) AddStudent(in types.NewStudent) (types.Student, error) {
	if err := storage.ValidateNew(in); err != nil {
		return types.Student{}, fmt.Errorf("AddStudent: %w", err)
	}

	tx, err := s.Db.Begin()
	if err != nil {
		return types.Student{}, fmt.Errorf("AddStudent: begin: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	var nextID int64
	if err := tx.QueryRow("SELECT COALESCE(MAX(id), 0) + 1 FROM students").Scan(&nextID); err != nil {
		return types.Student{}, fmt.Errorf("AddStudent: next id: %w", err)
	}

	student := in.Student(nextID)
	_, err = tx.Exec(
		"INSERT INTO students (id, name, grade, section) VALUES (?, ?, ?, ?)",
		student.ID, student.Name, student.Grade, student.Section,
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("AddStudent: exec: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return types.Student{}, fmt.Errorf("AddStudent: commit: %w", err)
	}
	return student, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// UpdateStudent reads the current row, applies the patch in Go, and writes
// every column back. Doing the merge in Go keeps the partial-update rule in
// one place (types.StudentPatch.Apply) for both backends.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) UpdateStudent(id int64, patch types.StudentPatch) (types.Student, error) {
	tx, err := s.Db.Begin()
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudent: begin: %w", err)
	}
	defer tx.Rollback()

	current, err := getStudent(tx, id)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudent: %w", err)
	}
	if err := storage.ValidatePatch(patch); err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudent: %w", err)
	}

	updated := patch.Apply(current)
	_, err = tx.Exec(
		"UPDATE students SET name = ?, grade = ?, section = ? WHERE id = ?",
		updated.Name, updated.Grade, updated.Section, id,
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudent: exec: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudent: commit: %w", err)
	}
	return updated, nil
}

func (s *SQLite) DeleteStudent(id int64) error {
	result, err := s.Db.Exec("DELETE FROM students WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("DeleteStudent: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteStudent: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("DeleteStudent %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

var _ storage.Storage = (*SQLite)(nil)
