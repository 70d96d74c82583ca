package report

import (
	"fmt"
	"html/template"
	"strings"
)

// Email bodies are HTML tables mirroring the dashboard report views.
// The chart referenced in each footer travels as a PNG attachment.

var funcs = template.FuncMap{
	"pct": Percent,
}

// Percent formats late/total as a percentage, guarding empty groups.
func Percent(late, total int) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(late)/float64(total)*100)
}

var dailyDeptTmpl = template.Must(template.New("dailyDept").Funcs(funcs).Parse(`
<h2>{{.Department}} Department - Daily Attendance Report ({{.Date}})</h2>
<p>Total Students: {{.Stat.TotalCount}}</p>
<p>Late Arrivals: {{.Stat.LateCount}}</p>
<p>Percentage: {{pct .Stat.LateCount .Stat.TotalCount}}</p>
<p>Department chart attached.</p>
`))

var dailyPrincipalTmpl = template.Must(template.New("dailyPrincipal").Funcs(funcs).Parse(`
<h2>Daily Attendance Summary - All Departments ({{.Date}})</h2>
<table border="1" cellpadding="4">
<tr><th>Department</th><th>Total Students</th><th>Late Arrivals</th><th>Percentage</th></tr>
{{range .Stats}}<tr><td>{{.Department}}</td><td>{{.TotalCount}}</td><td>{{.LateCount}}</td><td>{{pct .LateCount .TotalCount}}</td></tr>
{{end}}</table>
<p>Department chart attached.</p>
`))

var weeklyDeptTmpl = template.Must(template.New("weeklyDept").Funcs(funcs).Parse(`
<h2>{{.Department}} Department - Weekly Attendance Report</h2>
<table border="1" cellpadding="4">
<tr><th>Date</th><th>Total Students</th><th>Late Arrivals</th><th>Percentage</th></tr>
{{range .Days}}<tr><td>{{.Date.Format "02 Jan 2006"}}</td><td>{{.TotalCount}}</td><td>{{.LateCount}}</td><td>{{pct .LateCount .TotalCount}}</td></tr>
{{end}}</table>
<p>Weekly trend analysis attached.</p>
`))

var weeklyPrincipalTmpl = template.Must(template.New("weeklyPrincipal").Funcs(funcs).Parse(`
<h2>Weekly Attendance Summary - All Departments</h2>
<table border="1" cellpadding="4">
<tr><th>Department</th><th>Total Students</th><th>Late Arrivals</th><th>Percentage</th></tr>
{{range .Stats}}<tr><td>{{.Department}}</td><td>{{.TotalCount}}</td><td>{{.LateCount}}</td><td>{{pct .LateCount .TotalCount}}</td></tr>
{{end}}</table>
<p>Weekly trend analysis attached.</p>
`))

var monthlyDeptTmpl = template.Must(template.New("monthlyDept").Funcs(funcs).Parse(`
<h2>{{.Department}} Department - Monthly Attendance Analysis</h2>
<h3>Weekly Breakdown</h3>
<table border="1" cellpadding="4">
<tr><th>Week</th><th>Total</th><th>Late</th><th>Mon</th><th>Tue</th><th>Wed</th><th>Thu</th><th>Fri</th></tr>
{{range .Weeks}}<tr><td>Week {{.WeekNumber}}</td><td>{{.TotalCount}}</td><td>{{.LateCount}}</td><td>{{.Monday}}</td><td>{{.Tuesday}}</td><td>{{.Wednesday}}</td><td>{{.Thursday}}</td><td>{{.Friday}}</td></tr>
{{end}}</table>
<p>Monthly analysis chart attached.</p>
`))

var monthlyPrincipalTmpl = template.Must(template.New("monthlyPrincipal").Funcs(funcs).Parse(`
<h2>Monthly Attendance Analysis - All Departments</h2>
<table border="1" cellpadding="4">
<tr><th>Department</th><th>Week</th><th>Total</th><th>Late</th><th>Mon-Fri Distribution</th></tr>
{{range .Weeks}}<tr><td>{{.Department}}</td><td>Week {{.WeekNumber}}</td><td>{{.TotalCount}}</td><td>{{.LateCount}}</td><td>M:{{.Monday}} | T:{{.Tuesday}} | W:{{.Wednesday}} | T:{{.Thursday}} | F:{{.Friday}}</td></tr>
{{end}}</table>
<p>Monthly analysis chart attached.</p>
`))

// DailyDeptBody renders a single department's daily summary.
func DailyDeptBody(department, date string, stat DeptStat) (string, error) {
	return render(dailyDeptTmpl, struct {
		Department, Date string
		Stat             DeptStat
	}{department, date, stat})
}

// DailyPrincipalBody renders the consolidated daily table.
func DailyPrincipalBody(date string, stats []DeptStat) (string, error) {
	return render(dailyPrincipalTmpl, struct {
		Date  string
		Stats []DeptStat
	}{date, stats})
}

// WeeklyDeptBody renders a department's per-day week table.
func WeeklyDeptBody(department string, days []DailyStat) (string, error) {
	return render(weeklyDeptTmpl, struct {
		Department string
		Days       []DailyStat
	}{department, days})
}

// WeeklyPrincipalBody renders per-department totals over the week.
func WeeklyPrincipalBody(stats []DeptStat) (string, error) {
	return render(weeklyPrincipalTmpl, struct{ Stats []DeptStat }{stats})
}

// MonthlyDeptBody renders a department's ISO-week breakdown.
func MonthlyDeptBody(department string, weeks []WeekStat) (string, error) {
	return render(monthlyDeptTmpl, struct {
		Department string
		Weeks      []WeekStat
	}{department, weeks})
}

// MonthlyPrincipalBody renders the consolidated week breakdown.
func MonthlyPrincipalBody(weeks []WeekStat) (string, error) {
	return render(monthlyPrincipalTmpl, struct{ Weeks []WeekStat }{weeks})
}

// SumByDepartment collapses per-day stats into one total per
// department, preserving first-seen order.
func SumByDepartment(days []DailyStat) []DeptStat {
	totals := make(map[string]*DeptStat)
	var order []string
	for _, d := range days {
		s, ok := totals[d.Department]
		if !ok {
			s = &DeptStat{Department: d.Department}
			totals[d.Department] = s
			order = append(order, d.Department)
		}
		s.LateCount += d.LateCount
		s.TotalCount += d.TotalCount
	}
	out := make([]DeptStat, 0, len(order))
	for _, dept := range order {
		out = append(out, *totals[dept])
	}
	return out
}

func render(t *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
