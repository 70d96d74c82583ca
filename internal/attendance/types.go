package attendance

import "time"

// Status values stored on attendance records. Derived from the scan
// time against the cutoff, never set directly by callers.
const (
	StatusOnTime = "On-Time"
	StatusLate   = "Late"
)

// Student is a registered student keyed by roll number.
type Student struct {
	ID         string    `json:"id"`
	RollNo     string    `json:"roll_no"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	Batch      string    `json:"batch"`
	CreatedAt  time.Time `json:"created_at"`
}

// Record is one student's attendance for one institutional calendar
// day. Department and roll number are copied from the student at scan
// time so historical reports survive later edits.
type Record struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"-"`
	RollNo     string    `json:"roll_no"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	Day        time.Time `json:"-"`
	MarkedAt   time.Time `json:"date"`
	Status     string    `json:"status"`
}
