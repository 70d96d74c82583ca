// Package clock normalizes instants into the institution's fixed
// timezone. All attendance date/time arithmetic happens here so the
// host timezone never leaks into day keys or cutoff comparisons.
package clock

import "time"

// Cutoff separates On-Time from Late, inclusive on the Late side.
const (
	CutoffHour   = 9
	CutoffMinute = 15
)

// Zone is the institutional timezone. Loading by name fails only on a
// broken tzdata install, in which case the fixed offset is correct for
// IST anyway (no DST).
var Zone = loadZone()

func loadZone() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.FixedZone("IST", 5*3600+1800)
	}
	return loc
}

// DateKey returns the calendar date of t in the institutional
// timezone, formatted YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.In(Zone).Format("2006-01-02")
}

// TimeOfDay returns the 24-hour wall-clock time of t in the
// institutional timezone.
func TimeOfDay(t time.Time) string {
	return t.In(Zone).Format("15:04:05")
}

// Day truncates t to midnight of its institutional calendar day.
func Day(t time.Time) time.Time {
	local := t.In(Zone)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, Zone)
}

// IsLate reports whether t falls at or after the cutoff on its day.
func IsLate(t time.Time) bool {
	local := t.In(Zone)
	cutoff := time.Date(local.Year(), local.Month(), local.Day(), CutoffHour, CutoffMinute, 0, 0, Zone)
	return !local.Before(cutoff)
}

// WindowEnd extends a calendar date to 23:59:59 so closed report
// windows include every record stamped on their final day.
func WindowEnd(t time.Time) time.Time {
	local := t.In(Zone)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 0, Zone)
}

// DailyWindow is the closed window covering now's calendar day.
func DailyWindow(now time.Time) (time.Time, time.Time) {
	return Day(now), WindowEnd(now)
}

// WeeklyWindow covers the seven days ending on now's calendar day.
func WeeklyWindow(now time.Time) (time.Time, time.Time) {
	return Day(now).AddDate(0, 0, -7), WindowEnd(now)
}

// MonthlyWindow covers the month ending on now's calendar day.
func MonthlyWindow(now time.Time) (time.Time, time.Time) {
	return Day(now).AddDate(0, -1, 0), WindowEnd(now)
}

// ParseDate parses a YYYY-MM-DD string as an institutional calendar
// date at midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, Zone)
}
