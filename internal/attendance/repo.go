package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository persists students and attendance records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// StudentByRoll returns the student with the given roll number, or nil
// when no such student exists.
func (r *Repository) StudentByRoll(ctx context.Context, rollNo string) (*Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, roll_no, name, department, batch, created_at
		FROM students WHERE roll_no = $1
	`, rollNo)
	var s Student
	if err := row.Scan(&s.ID, &s.RollNo, &s.Name, &s.Department, &s.Batch, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// ListStudents returns all students ordered by roll number.
func (r *Repository) ListStudents(ctx context.Context) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, roll_no, name, department, batch, created_at
		FROM students ORDER BY roll_no
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		var s Student
		if err := rows.Scan(&s.ID, &s.RollNo, &s.Name, &s.Department, &s.Batch, &s.CreatedAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// InsertStudent creates a student record.
func (r *Repository) InsertStudent(ctx context.Context, s Student) (Student, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO students (id, roll_no, name, department, batch)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, s.ID, s.RollNo, s.Name, s.Department, s.Batch)
	if err := row.Scan(&s.CreatedAt); err != nil {
		return Student{}, err
	}
	return s, nil
}

// DeleteStudent removes a student by roll number; attendance rows
// cascade. Returns false when no student matched.
func (r *Repository) DeleteStudent(ctx context.Context, rollNo string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE roll_no = $1`, rollNo)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UpsertMark inserts the day's attendance record or, when one already
// exists for (student, day), overwrites its timestamp and status. The
// unique constraint makes concurrent scans of the same student collapse
// into a single row with last-scan-wins semantics.
func (r *Repository) UpsertMark(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance (id, student_id, roll_no, department, day, marked_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (student_id, day) DO UPDATE
			SET marked_at = EXCLUDED.marked_at, status = EXCLUDED.status
		RETURNING id, marked_at, status
	`, rec.ID, rec.StudentID, rec.RollNo, rec.Department, rec.Day, rec.MarkedAt, rec.Status)
	if err := row.Scan(&rec.ID, &rec.MarkedAt, &rec.Status); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// RecordsForStudent returns a student's records inside a closed window,
// oldest first.
func (r *Repository) RecordsForStudent(ctx context.Context, studentID string, start, end time.Time) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, student_id, roll_no, department, day, marked_at, status
		FROM attendance
		WHERE student_id = $1 AND marked_at BETWEEN $2 AND $3
		ORDER BY marked_at ASC
	`, studentID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.RollNo, &rec.Department, &rec.Day, &rec.MarkedAt, &rec.Status); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
