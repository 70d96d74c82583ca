package report

import "time"

// DeptCount is one row of the live dashboard count, today only.
type DeptCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

// DeptStat is a department's late/total tally over a window.
type DeptStat struct {
	Department string `json:"department"`
	LateCount  int    `json:"late_count"`
	TotalCount int    `json:"total_count"`
}

// DailyStat is a department's tally for a single calendar day, used by
// the weekly trend report.
type DailyStat struct {
	Department string    `json:"department"`
	Date       time.Time `json:"date"`
	LateCount  int       `json:"late_count"`
	TotalCount int       `json:"total_count"`
}

// WeekStat is a department's tally for one ISO week with Monday-Friday
// buckets. Weekend buckets do not exist: scans happen on school days
// and the histogram schema has nowhere to put them.
type WeekStat struct {
	Department string `json:"department"`
	WeekNumber int    `json:"week_number"`
	LateCount  int    `json:"late_count"`
	TotalCount int    `json:"total_count"`
	Monday     int    `json:"monday_count"`
	Tuesday    int    `json:"tuesday_count"`
	Wednesday  int    `json:"wednesday_count"`
	Thursday   int    `json:"thursday_count"`
	Friday     int    `json:"friday_count"`
}

// Row is one line of a department report.
type Row struct {
	RollNo     string    `json:"roll_no"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	Batch      string    `json:"batch"`
	Date       time.Time `json:"date"`
	Status     string    `json:"status"`
}

// StudentEntry is one line of a single student's report.
type StudentEntry struct {
	Date   time.Time `json:"date"`
	Status string    `json:"status"`
}

// StudentReport is a student header plus their windowed records.
type StudentReport struct {
	Student struct {
		RollNo     string `json:"roll_no"`
		Name       string `json:"name"`
		Department string `json:"department"`
	} `json:"student"`
	Attendance []StudentEntry `json:"attendance"`
}

// FilteredRow is a flattened record with the scan date and time split
// out, as the dashboard table expects.
type FilteredRow struct {
	ID         string `json:"id"`
	RollNo     string `json:"roll_no"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Batch      string `json:"batch"`
	Status     string `json:"status"`
}
