package report

import (
	"strings"
	"testing"
	"time"

	"latecomer/internal/clock"
	"latecomer/internal/config"
)

func TestZeroFillCounts_AllDepartmentsPresent(t *testing.T) {
	out := ZeroFillCounts(map[string]int{"CSE": 4, "MECH": 1})
	if len(out) != len(config.Departments) {
		t.Fatalf("want %d rows, got %d", len(config.Departments), len(out))
	}
	byDept := make(map[string]int)
	for _, c := range out {
		byDept[c.Department] = c.Count
	}
	if byDept["CSE"] != 4 || byDept["MECH"] != 1 {
		t.Errorf("counts not carried through: %v", byDept)
	}
	for _, dept := range []string{"ECE", "EEE", "CIVIL", "AI&DS"} {
		if n, ok := byDept[dept]; !ok || n != 0 {
			t.Errorf("%s should be present with zero count, got %d (present=%v)", dept, n, ok)
		}
	}
}

func TestZeroFillCounts_Empty(t *testing.T) {
	out := ZeroFillCounts(nil)
	if len(out) != len(config.Departments) {
		t.Fatalf("want %d rows for empty input, got %d", len(config.Departments), len(out))
	}
	for _, c := range out {
		if c.Count != 0 {
			t.Errorf("%s count = %d, want 0", c.Department, c.Count)
		}
	}
}

func TestZeroFillStats_PreservesOrder(t *testing.T) {
	out := ZeroFillStats(map[string]DeptStat{
		"EEE": {Department: "EEE", LateCount: 2, TotalCount: 5},
	})
	for i, dept := range config.Departments {
		if out[i].Department != dept {
			t.Fatalf("row %d = %s, want %s", i, out[i].Department, dept)
		}
	}
	if out[2].LateCount != 2 || out[2].TotalCount != 5 {
		t.Errorf("EEE stats not carried: %+v", out[2])
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(3, 4); got != "75.00%" {
		t.Errorf("Percent(3,4) = %q", got)
	}
	if got := Percent(0, 0); got != "0.00%" {
		t.Errorf("Percent(0,0) = %q, division by zero must be guarded", got)
	}
}

func TestSumByDepartment(t *testing.T) {
	d1 := time.Date(2025, time.March, 10, 0, 0, 0, 0, clock.Zone)
	days := []DailyStat{
		{Department: "CSE", Date: d1, LateCount: 1, TotalCount: 3},
		{Department: "CSE", Date: d1.AddDate(0, 0, 1), LateCount: 2, TotalCount: 4},
		{Department: "ECE", Date: d1, LateCount: 0, TotalCount: 2},
	}
	out := SumByDepartment(days)
	if len(out) != 2 {
		t.Fatalf("want 2 departments, got %d", len(out))
	}
	if out[0].Department != "CSE" || out[0].LateCount != 3 || out[0].TotalCount != 7 {
		t.Errorf("CSE totals wrong: %+v", out[0])
	}
	if out[1].Department != "ECE" || out[1].TotalCount != 2 {
		t.Errorf("ECE totals wrong: %+v", out[1])
	}
}

func TestWeekStat_HasNoWeekendBuckets(t *testing.T) {
	// The histogram schema is five buckets by construction; a weekend
	// count has no field to land in.
	s := WeekStat{Monday: 1, Tuesday: 2, Wednesday: 3, Thursday: 4, Friday: 5}
	total := s.Monday + s.Tuesday + s.Wednesday + s.Thursday + s.Friday
	if total != 15 {
		t.Errorf("bucket sum = %d", total)
	}
}

func TestDailyBodies(t *testing.T) {
	body, err := DailyDeptBody("CSE", "2025-03-03", DeptStat{Department: "CSE", LateCount: 2, TotalCount: 8})
	if err != nil {
		t.Fatalf("DailyDeptBody: %v", err)
	}
	for _, want := range []string{"CSE", "2025-03-03", "25.00%", "Late Arrivals: 2"} {
		if !strings.Contains(body, want) {
			t.Errorf("daily body missing %q:\n%s", want, body)
		}
	}

	stats := ZeroFillStats(map[string]DeptStat{"CSE": {Department: "CSE", LateCount: 2, TotalCount: 8}})
	body, err = DailyPrincipalBody("2025-03-03", stats)
	if err != nil {
		t.Fatalf("DailyPrincipalBody: %v", err)
	}
	// Every configured department appears even with zero records.
	for _, dept := range config.Departments {
		if !strings.Contains(body, "<td>"+dept+"</td>") {
			// AI&DS is HTML-escaped by html/template.
			if dept == "AI&DS" && strings.Contains(body, "AI&amp;DS") {
				continue
			}
			t.Errorf("principal body missing department %s", dept)
		}
	}
}

func TestMonthlyBody_WeekdayColumnsOnly(t *testing.T) {
	body, err := MonthlyDeptBody("ECE", []WeekStat{
		{Department: "ECE", WeekNumber: 11, LateCount: 4, TotalCount: 9, Monday: 2, Friday: 1},
	})
	if err != nil {
		t.Fatalf("MonthlyDeptBody: %v", err)
	}
	for _, want := range []string{"Week 11", "<th>Mon</th>", "<th>Fri</th>"} {
		if !strings.Contains(body, want) {
			t.Errorf("monthly body missing %q", want)
		}
	}
	for _, forbidden := range []string{"Sat", "Sun"} {
		if strings.Contains(body, forbidden) {
			t.Errorf("monthly body must not mention %s", forbidden)
		}
	}
}
