package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"latecomer/internal/clock"
)

// mockStore implements Store in memory with the same upsert semantics
// the unique (student, day) constraint gives the real repository.
type mockStore struct {
	students map[string]*Student
	records  map[string]Record // studentID + "|" + day key
	failWith error
}

func newMockStore() *mockStore {
	return &mockStore{
		students: make(map[string]*Student),
		records:  make(map[string]Record),
	}
}

func (m *mockStore) addStudent(rollNo, name, dept, batch string) {
	m.students[rollNo] = &Student{
		ID: "id-" + rollNo, RollNo: rollNo, Name: name, Department: dept, Batch: batch,
	}
}

func (m *mockStore) StudentByRoll(_ context.Context, rollNo string) (*Student, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.students[rollNo], nil
}

func (m *mockStore) ListStudents(_ context.Context) ([]Student, error) {
	var out []Student
	for _, s := range m.students {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockStore) InsertStudent(_ context.Context, s Student) (Student, error) {
	if s.ID == "" {
		s.ID = "id-" + s.RollNo
	}
	m.students[s.RollNo] = &s
	return s, nil
}

func (m *mockStore) DeleteStudent(_ context.Context, rollNo string) (bool, error) {
	if _, ok := m.students[rollNo]; !ok {
		return false, nil
	}
	delete(m.students, rollNo)
	return true, nil
}

func (m *mockStore) UpsertMark(_ context.Context, rec Record) (Record, error) {
	if m.failWith != nil {
		return Record{}, m.failWith
	}
	key := rec.StudentID + "|" + rec.Day.Format("2006-01-02")
	if existing, ok := m.records[key]; ok {
		existing.MarkedAt = rec.MarkedAt
		existing.Status = rec.Status
		m.records[key] = existing
		return existing, nil
	}
	rec.ID = "rec-" + key
	m.records[key] = rec
	return rec, nil
}

func (m *mockStore) RecordsForStudent(_ context.Context, studentID string, start, end time.Time) ([]Record, error) {
	var out []Record
	for _, rec := range m.records {
		if rec.StudentID == studentID && !rec.MarkedAt.Before(start) && !rec.MarkedAt.After(end) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func atIST(hour, min, sec int) time.Time {
	return time.Date(2025, time.March, 3, hour, min, sec, 0, clock.Zone)
}

func setupService(now time.Time) (*Service, *mockStore) {
	store := newMockStore()
	store.addStudent("210101", "Asha Verma", "CSE", "2021-2025")
	svc := NewService(store).WithNow(func() time.Time { return now })
	return svc, store
}

func TestMark_OnTimeBeforeCutoff(t *testing.T) {
	svc, _ := setupService(atIST(8, 59, 59))

	rec, err := svc.Mark(context.Background(), "210101")
	if err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if rec.Status != StatusOnTime {
		t.Errorf("status = %q, want %q", rec.Status, StatusOnTime)
	}
	if rec.Name != "Asha Verma" || rec.Department != "CSE" {
		t.Errorf("record not joined with student data: %+v", rec)
	}
}

func TestMark_LateAtCutoff(t *testing.T) {
	svc, _ := setupService(atIST(9, 15, 0))

	rec, err := svc.Mark(context.Background(), "210101")
	if err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if rec.Status != StatusLate {
		t.Errorf("status at exactly 09:15:00 = %q, want %q", rec.Status, StatusLate)
	}
}

func TestMark_SameDayRescanOverwrites(t *testing.T) {
	store := newMockStore()
	store.addStudent("210101", "Asha Verma", "CSE", "2021-2025")

	scanTime := atIST(9, 0, 0)
	svc := NewService(store).WithNow(func() time.Time { return scanTime })

	first, err := svc.Mark(context.Background(), "210101")
	if err != nil {
		t.Fatalf("first Mark: %v", err)
	}
	if first.Status != StatusOnTime {
		t.Fatalf("first status = %q, want %q", first.Status, StatusOnTime)
	}

	scanTime = atIST(9, 20, 0)
	second, err := svc.Mark(context.Background(), "210101")
	if err != nil {
		t.Fatalf("second Mark: %v", err)
	}
	if second.Status != StatusLate {
		t.Errorf("second status = %q, want %q (last scan wins)", second.Status, StatusLate)
	}
	if second.ID != first.ID {
		t.Errorf("rescan created a new record: %q vs %q", second.ID, first.ID)
	}
	if len(store.records) != 1 {
		t.Errorf("want exactly one record for the day, have %d", len(store.records))
	}
}

func TestMark_DifferentDaysCreateSeparateRecords(t *testing.T) {
	store := newMockStore()
	store.addStudent("210101", "Asha Verma", "CSE", "2021-2025")

	scanTime := atIST(9, 0, 0)
	svc := NewService(store).WithNow(func() time.Time { return scanTime })

	if _, err := svc.Mark(context.Background(), "210101"); err != nil {
		t.Fatalf("day one Mark: %v", err)
	}
	scanTime = scanTime.AddDate(0, 0, 1)
	if _, err := svc.Mark(context.Background(), "210101"); err != nil {
		t.Fatalf("day two Mark: %v", err)
	}
	if len(store.records) != 2 {
		t.Errorf("want two records across two days, have %d", len(store.records))
	}
}

func TestMark_EmptyRoll(t *testing.T) {
	svc, _ := setupService(atIST(9, 0, 0))
	if _, err := svc.Mark(context.Background(), ""); !errors.Is(err, ErrRollRequired) {
		t.Errorf("want ErrRollRequired, got %v", err)
	}
}

func TestMark_UnknownStudent(t *testing.T) {
	svc, _ := setupService(atIST(9, 0, 0))
	if _, err := svc.Mark(context.Background(), "999999"); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("want ErrStudentNotFound, got %v", err)
	}
}

func TestMark_StoreFailurePropagates(t *testing.T) {
	svc, store := setupService(atIST(9, 0, 0))
	store.failWith = errors.New("connection reset")
	if _, err := svc.Mark(context.Background(), "210101"); err == nil {
		t.Error("want store error to propagate")
	}
}

func TestRegister_DuplicateRoll(t *testing.T) {
	svc, _ := setupService(atIST(9, 0, 0))
	_, err := svc.Register(context.Background(), Student{
		RollNo: "210101", Name: "Someone Else", Department: "ECE", Batch: "2021-2025",
	})
	if !errors.Is(err, ErrStudentExists) {
		t.Errorf("want ErrStudentExists, got %v", err)
	}
}

func TestRemove_UnknownStudent(t *testing.T) {
	svc, _ := setupService(atIST(9, 0, 0))
	if err := svc.Remove(context.Background(), "999999"); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("want ErrStudentNotFound, got %v", err)
	}
}
