package attendance

import (
	"context"
	"errors"
	"time"

	"latecomer/internal/clock"
)

// Terminal errors mapped to 400/404 at the HTTP boundary.
var (
	ErrRollRequired    = errors.New("roll number required")
	ErrStudentNotFound = errors.New("student not found")
	ErrStudentExists   = errors.New("roll number already registered")
)

// Store is the persistence surface the classifier needs.
type Store interface {
	StudentByRoll(ctx context.Context, rollNo string) (*Student, error)
	ListStudents(ctx context.Context) ([]Student, error)
	InsertStudent(ctx context.Context, s Student) (Student, error)
	DeleteStudent(ctx context.Context, rollNo string) (bool, error)
	UpsertMark(ctx context.Context, rec Record) (Record, error)
	RecordsForStudent(ctx context.Context, studentID string, start, end time.Time) ([]Record, error)
}

// Service classifies scans against the cutoff and owns the
// one-record-per-day upsert semantics.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithNow overrides the clock source; used by tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// Mark records or refreshes today's attendance for the given roll
// number. A repeat scan on the same day overwrites the stored timestamp
// and recomputes the status, so the last scan of the day wins.
func (s *Service) Mark(ctx context.Context, rollNo string) (Record, error) {
	if rollNo == "" {
		return Record{}, ErrRollRequired
	}

	student, err := s.store.StudentByRoll(ctx, rollNo)
	if err != nil {
		return Record{}, err
	}
	if student == nil {
		return Record{}, ErrStudentNotFound
	}

	now := s.now()
	status := StatusOnTime
	if clock.IsLate(now) {
		status = StatusLate
	}

	rec, err := s.store.UpsertMark(ctx, Record{
		StudentID:  student.ID,
		RollNo:     student.RollNo,
		Department: student.Department,
		Day:        clock.Day(now),
		MarkedAt:   now,
		Status:     status,
	})
	if err != nil {
		return Record{}, err
	}

	rec.Name = student.Name
	rec.Department = student.Department
	return rec, nil
}

// Register creates a new student.
func (s *Service) Register(ctx context.Context, student Student) (Student, error) {
	if student.RollNo == "" || student.Name == "" || student.Department == "" || student.Batch == "" {
		return Student{}, ErrRollRequired
	}
	existing, err := s.store.StudentByRoll(ctx, student.RollNo)
	if err != nil {
		return Student{}, err
	}
	if existing != nil {
		return Student{}, ErrStudentExists
	}
	return s.store.InsertStudent(ctx, student)
}

// Students lists all registered students.
func (s *Service) Students(ctx context.Context) ([]Student, error) {
	return s.store.ListStudents(ctx)
}

// Remove deletes a student and cascades its attendance history.
func (s *Service) Remove(ctx context.Context, rollNo string) error {
	if rollNo == "" {
		return ErrRollRequired
	}
	deleted, err := s.store.DeleteStudent(ctx, rollNo)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrStudentNotFound
	}
	return nil
}
