package clock

import (
	"testing"
	"time"
)

// ist builds an instant at the given institutional wall-clock time.
func ist(year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, Zone)
}

func TestIsLate_Boundary(t *testing.T) {
	cases := []struct {
		name string
		when time.Time
		late bool
	}{
		{"well before cutoff", ist(2025, time.March, 3, 8, 0, 0), false},
		{"one second before cutoff", ist(2025, time.March, 3, 9, 14, 59), false},
		{"exactly at cutoff", ist(2025, time.March, 3, 9, 15, 0), true},
		{"one second after cutoff", ist(2025, time.March, 3, 9, 15, 1), true},
		{"late afternoon", ist(2025, time.March, 3, 16, 30, 0), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsLate(tc.when); got != tc.late {
				t.Errorf("IsLate(%s) = %v, want %v", tc.when, got, tc.late)
			}
		})
	}
}

func TestIsLate_HostTimezoneIndependent(t *testing.T) {
	// 09:14:59 IST expressed as UTC is 03:44:59Z; the host-local
	// rendering of that instant must not change the verdict.
	utc := time.Date(2025, time.March, 3, 3, 44, 59, 0, time.UTC)
	if IsLate(utc) {
		t.Error("03:44:59Z is 09:14:59 IST and should be on time")
	}
	if !IsLate(utc.Add(time.Second)) {
		t.Error("03:45:00Z is 09:15:00 IST and should be late")
	}
}

func TestDateKey_CrossesMidnightInIST(t *testing.T) {
	// 19:00Z is already the next calendar day in IST (+05:30).
	utc := time.Date(2025, time.March, 3, 19, 0, 0, 0, time.UTC)
	if got := DateKey(utc); got != "2025-03-04" {
		t.Errorf("DateKey = %q, want 2025-03-04", got)
	}
	if got := TimeOfDay(utc); got != "00:30:00" {
		t.Errorf("TimeOfDay = %q, want 00:30:00", got)
	}
}

func TestWindowEnd_IncludesWholeDay(t *testing.T) {
	day := ist(2025, time.March, 3, 10, 0, 0)
	end := WindowEnd(day)
	if got := end.Format("2006-01-02 15:04:05"); got != "2025-03-03 23:59:59" {
		t.Errorf("WindowEnd = %q", got)
	}
	// A record stamped at the final second is inside; next midnight is not.
	lastSecond := ist(2025, time.March, 3, 23, 59, 59)
	nextMidnight := ist(2025, time.March, 4, 0, 0, 0)
	if lastSecond.After(end) {
		t.Error("23:59:59 should be inside the window")
	}
	if !nextMidnight.After(end) {
		t.Error("next midnight should be outside the window")
	}
}

func TestWindows(t *testing.T) {
	now := ist(2025, time.March, 15, 11, 50, 0)

	start, end := DailyWindow(now)
	if DateKey(start) != "2025-03-15" || DateKey(end) != "2025-03-15" {
		t.Errorf("daily window = %s..%s", DateKey(start), DateKey(end))
	}

	start, end = WeeklyWindow(now)
	if DateKey(start) != "2025-03-08" || DateKey(end) != "2025-03-15" {
		t.Errorf("weekly window = %s..%s", DateKey(start), DateKey(end))
	}

	start, end = MonthlyWindow(now)
	if DateKey(start) != "2025-02-15" || DateKey(end) != "2025-03-15" {
		t.Errorf("monthly window = %s..%s", DateKey(start), DateKey(end))
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-03")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Location() != Zone {
		t.Error("parsed date should carry the institutional zone")
	}
	if DateKey(d) != "2025-03-03" {
		t.Errorf("DateKey after parse = %q", DateKey(d))
	}
	if _, err := ParseDate("03/03/2025"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}
