package report

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"latecomer/internal/attendance"
	"latecomer/internal/clock"
	"latecomer/internal/config"
)

// Aggregator runs windowed read queries over the attendance store.
// Windows are closed on both ends; callers extend the end date to
// 23:59:59 via clock.WindowEnd. An inverted range is not rejected here,
// it just matches nothing.
type Aggregator struct {
	db *sql.DB
}

// NewAggregator creates an aggregator over the given database.
func NewAggregator(db *sql.DB) *Aggregator {
	return &Aggregator{db: db}
}

// TodayDepartmentCounts returns today's record count per department,
// zero-filled so every configured department appears.
func (a *Aggregator) TodayDepartmentCounts(ctx context.Context, now time.Time) ([]DeptCount, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT department, COUNT(*)
		FROM attendance
		WHERE day = $1
		GROUP BY department
	`, clock.Day(now))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var dept string
		var n int
		if err := rows.Scan(&dept, &n); err != nil {
			return nil, err
		}
		counts[dept] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ZeroFillCounts(counts), nil
}

// ZeroFillCounts expands a sparse department->count map into one row
// per configured department, preserving display order.
func ZeroFillCounts(counts map[string]int) []DeptCount {
	out := make([]DeptCount, 0, len(config.Departments))
	for _, dept := range config.Departments {
		out = append(out, DeptCount{Department: dept, Count: counts[dept]})
	}
	return out
}

// DailyDepartmentStats returns late/total per department for the given
// calendar day, zero-filled across the configured departments.
func (a *Aggregator) DailyDepartmentStats(ctx context.Context, day time.Time) ([]DeptStat, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT department,
		       COUNT(*) FILTER (WHERE status = 'Late'),
		       COUNT(*)
		FROM attendance
		WHERE day = $1
		GROUP BY department
	`, clock.Day(day))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byDept := make(map[string]DeptStat)
	for rows.Next() {
		var s DeptStat
		if err := rows.Scan(&s.Department, &s.LateCount, &s.TotalCount); err != nil {
			return nil, err
		}
		byDept[s.Department] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ZeroFillStats(byDept), nil
}

// ZeroFillStats expands sparse department stats into one row per
// configured department.
func ZeroFillStats(byDept map[string]DeptStat) []DeptStat {
	out := make([]DeptStat, 0, len(config.Departments))
	for _, dept := range config.Departments {
		s, ok := byDept[dept]
		if !ok {
			s = DeptStat{Department: dept}
		}
		out = append(out, s)
	}
	return out
}

// WeeklyStats returns per-department, per-day tallies inside the
// window, ordered by department then date.
func (a *Aggregator) WeeklyStats(ctx context.Context, start, end time.Time) ([]DailyStat, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT department, day,
		       COUNT(*) FILTER (WHERE status = 'Late'),
		       COUNT(*)
		FROM attendance
		WHERE marked_at BETWEEN $1 AND $2
		GROUP BY department, day
		ORDER BY department, day
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DailyStat
	for rows.Next() {
		var s DailyStat
		if err := rows.Scan(&s.Department, &s.Date, &s.LateCount, &s.TotalCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// MonthlyStats returns per-department, per-ISO-week tallies with
// Monday..Friday buckets. ISODOW 1-5 is Monday-Friday, so weekend scans
// can never land in a bucket.
func (a *Aggregator) MonthlyStats(ctx context.Context, start, end time.Time) ([]WeekStat, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT department,
		       EXTRACT(WEEK FROM day)::int,
		       COUNT(*) FILTER (WHERE status = 'Late'),
		       COUNT(*),
		       COUNT(*) FILTER (WHERE EXTRACT(ISODOW FROM day) = 1),
		       COUNT(*) FILTER (WHERE EXTRACT(ISODOW FROM day) = 2),
		       COUNT(*) FILTER (WHERE EXTRACT(ISODOW FROM day) = 3),
		       COUNT(*) FILTER (WHERE EXTRACT(ISODOW FROM day) = 4),
		       COUNT(*) FILTER (WHERE EXTRACT(ISODOW FROM day) = 5)
		FROM attendance
		WHERE marked_at BETWEEN $1 AND $2
		GROUP BY department, EXTRACT(WEEK FROM day)
		ORDER BY department, EXTRACT(WEEK FROM day)
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WeekStat
	for rows.Next() {
		var s WeekStat
		if err := rows.Scan(&s.Department, &s.WeekNumber, &s.LateCount, &s.TotalCount,
			&s.Monday, &s.Tuesday, &s.Wednesday, &s.Thursday, &s.Friday); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DepartmentReport returns the records of one department and batch
// inside the window, oldest first. Department matches the value
// denormalized onto the record at scan time.
func (a *Aggregator) DepartmentReport(ctx context.Context, department, batch string, start, end time.Time) ([]Row, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT a.roll_no, s.name, a.department, s.batch, a.marked_at, a.status
		FROM attendance a
		JOIN students s ON a.student_id = s.id
		WHERE a.department = $1
		  AND s.batch = $2
		  AND a.marked_at BETWEEN $3 AND $4
		ORDER BY a.marked_at ASC
	`, department, batch, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.RollNo, &r.Name, &r.Department, &r.Batch, &r.Date, &r.Status); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// StudentReport returns one student's header and windowed records.
func (a *Aggregator) StudentReport(ctx context.Context, rollNo string, start, end time.Time) (StudentReport, error) {
	var rep StudentReport
	row := a.db.QueryRowContext(ctx, `
		SELECT id, roll_no, name, department FROM students WHERE roll_no = $1
	`, rollNo)
	var studentID string
	if err := row.Scan(&studentID, &rep.Student.RollNo, &rep.Student.Name, &rep.Student.Department); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rep, attendance.ErrStudentNotFound
		}
		return rep, err
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT marked_at, status
		FROM attendance
		WHERE student_id = $1 AND marked_at BETWEEN $2 AND $3
		ORDER BY marked_at ASC
	`, studentID, start, end)
	if err != nil {
		return rep, err
	}
	defer rows.Close()

	for rows.Next() {
		var e StudentEntry
		if err := rows.Scan(&e.Date, &e.Status); err != nil {
			return rep, err
		}
		rep.Attendance = append(rep.Attendance, e)
	}
	return rep, rows.Err()
}

// FilteredAttendance returns every record in the window as flattened
// rows with the institutional date and time split out, newest first.
func (a *Aggregator) FilteredAttendance(ctx context.Context, start, end time.Time) ([]FilteredRow, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT a.id, a.roll_no, s.name, a.department, a.marked_at, s.batch, a.status
		FROM attendance a
		JOIN students s ON a.student_id = s.id
		WHERE a.marked_at BETWEEN $1 AND $2
		ORDER BY a.marked_at DESC
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FilteredRow
	for rows.Next() {
		var r FilteredRow
		var markedAt time.Time
		if err := rows.Scan(&r.ID, &r.RollNo, &r.Name, &r.Department, &markedAt, &r.Batch, &r.Status); err != nil {
			return nil, err
		}
		r.Date = clock.DateKey(markedAt)
		r.Time = clock.TimeOfDay(markedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}
