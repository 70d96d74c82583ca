// Package dispatch runs the scheduled report pipelines: aggregate a
// window, render a chart, format HTML bodies, and fan the emails out to
// department heads and the principal.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"latecomer/internal/chart"
	"latecomer/internal/clock"
	"latecomer/internal/config"
	"latecomer/internal/mailer"
	"latecomer/internal/metrics"
	"latecomer/internal/report"
)

// Aggregator is the read surface the pipelines need.
type Aggregator interface {
	DailyDepartmentStats(ctx context.Context, day time.Time) ([]report.DeptStat, error)
	WeeklyStats(ctx context.Context, start, end time.Time) ([]report.DailyStat, error)
	MonthlyStats(ctx context.Context, start, end time.Time) ([]report.WeekStat, error)
}

// Recipients configures where reports go.
type Recipients struct {
	// HOD maps department name to its head's address. Departments
	// without an address are skipped.
	HOD map[string]string
	// Principal receives the consolidated cross-department report.
	Principal string
}

// Result is one pipeline run's outcome. Send failures are collected
// per recipient and never abort the remaining sends.
type Result struct {
	Cadence string   `json:"cadence"`
	Sent    int      `json:"sent"`
	Failed  []string `json:"failed,omitempty"`
	Err     string   `json:"error,omitempty"`
}

// OK reports whether the run completed with every send delivered.
func (r Result) OK() bool {
	return r.Err == "" && len(r.Failed) == 0
}

// Dispatcher wires the aggregator, chart renderer and mail transport
// into the three report pipelines.
type Dispatcher struct {
	agg        Aggregator
	sender     mailer.Sender
	recipients Recipients
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a dispatcher.
func New(agg Aggregator, sender mailer.Sender, recipients Recipients, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{agg: agg, sender: sender, recipients: recipients, logger: logger, now: time.Now}
}

// WithNow overrides the clock source; used by tests.
func (d *Dispatcher) WithNow(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Daily aggregates today's per-department stats and mails the daily
// summaries.
func (d *Dispatcher) Daily(ctx context.Context) Result {
	now := d.now()
	date := clock.DateKey(now)

	stats, err := d.agg.DailyDepartmentStats(ctx, now)
	if err != nil {
		return d.fail("daily", err)
	}

	categories := make([]chart.Category, 0, len(stats))
	for _, s := range stats {
		categories = append(categories, chart.Category{Label: s.Department, Value: float64(s.LateCount)})
	}
	attachment := d.renderChart("daily", "attendance-chart.png", func() ([]byte, error) {
		return chart.Bar("Late Comers - "+date, categories)
	})

	byDept := make(map[string]report.DeptStat, len(stats))
	for _, s := range stats {
		byDept[s.Department] = s
	}

	var msgs []mailer.Message
	for _, dept := range config.Departments {
		addr, ok := d.recipients.HOD[dept]
		if !ok {
			continue
		}
		body, err := report.DailyDeptBody(dept, date, byDept[dept])
		if err != nil {
			return d.fail("daily", err)
		}
		msgs = append(msgs, message(addr, fmt.Sprintf("Daily Attendance Report - %s (%s)", dept, date), body, attachment))
	}
	if d.recipients.Principal != "" {
		body, err := report.DailyPrincipalBody(date, stats)
		if err != nil {
			return d.fail("daily", err)
		}
		msgs = append(msgs, message(d.recipients.Principal,
			fmt.Sprintf("Daily Attendance Summary - All Departments (%s)", date), body, attachment))
	}

	return d.fanOut("daily", msgs)
}

// Weekly aggregates the trailing seven days and mails the per-day
// trend tables with a line chart.
func (d *Dispatcher) Weekly(ctx context.Context) Result {
	start, end := clock.WeeklyWindow(d.now())

	days, err := d.agg.WeeklyStats(ctx, start, end)
	if err != nil {
		return d.fail("weekly", err)
	}

	attachment := d.renderChart("weekly", "weekly-trend.png", func() ([]byte, error) {
		return chart.Lines("Weekly Late Arrival Trend", weeklySeries(days))
	})

	byDept := make(map[string][]report.DailyStat)
	for _, day := range days {
		byDept[day.Department] = append(byDept[day.Department], day)
	}

	var msgs []mailer.Message
	for _, dept := range config.Departments {
		addr, ok := d.recipients.HOD[dept]
		if !ok {
			continue
		}
		body, err := report.WeeklyDeptBody(dept, byDept[dept])
		if err != nil {
			return d.fail("weekly", err)
		}
		msgs = append(msgs, message(addr, "Weekly Attendance Report - "+dept, body, attachment))
	}
	if d.recipients.Principal != "" {
		body, err := report.WeeklyPrincipalBody(report.SumByDepartment(days))
		if err != nil {
			return d.fail("weekly", err)
		}
		msgs = append(msgs, message(d.recipients.Principal,
			"Weekly Attendance Summary - All Departments", body, attachment))
	}

	return d.fanOut("weekly", msgs)
}

// Monthly aggregates the trailing month by ISO week and mails the
// weekday-histogram breakdowns.
func (d *Dispatcher) Monthly(ctx context.Context) Result {
	start, end := clock.MonthlyWindow(d.now())

	weeks, err := d.agg.MonthlyStats(ctx, start, end)
	if err != nil {
		return d.fail("monthly", err)
	}

	lateByDept := make(map[string]float64)
	for _, w := range weeks {
		lateByDept[w.Department] += float64(w.LateCount)
	}
	categories := make([]chart.Category, 0, len(config.Departments))
	for _, dept := range config.Departments {
		categories = append(categories, chart.Category{Label: dept, Value: lateByDept[dept]})
	}
	attachment := d.renderChart("monthly", "monthly-analysis.png", func() ([]byte, error) {
		return chart.Bar("Monthly Late Arrivals by Department", categories)
	})

	byDept := make(map[string][]report.WeekStat)
	for _, w := range weeks {
		byDept[w.Department] = append(byDept[w.Department], w)
	}

	var msgs []mailer.Message
	for _, dept := range config.Departments {
		addr, ok := d.recipients.HOD[dept]
		if !ok {
			continue
		}
		body, err := report.MonthlyDeptBody(dept, byDept[dept])
		if err != nil {
			return d.fail("monthly", err)
		}
		msgs = append(msgs, message(addr, "Monthly Attendance Analysis - "+dept, body, attachment))
	}
	if d.recipients.Principal != "" {
		body, err := report.MonthlyPrincipalBody(weeks)
		if err != nil {
			return d.fail("monthly", err)
		}
		msgs = append(msgs, message(d.recipients.Principal,
			"Monthly Attendance Analysis - All Departments", body, attachment))
	}

	return d.fanOut("monthly", msgs)
}

// renderChart renders an attachment, or logs and returns nil so the
// run proceeds without one. An empty window is not worth failing a
// whole pipeline over.
func (d *Dispatcher) renderChart(cadence, filename string, render func() ([]byte, error)) []mailer.Attachment {
	buf, err := render()
	if err != nil {
		d.logger.Warn("chart rendering skipped",
			zap.String("cadence", cadence), zap.Error(err))
		return nil
	}
	return []mailer.Attachment{{Filename: filename, ContentType: "image/png", Content: buf}}
}

// fanOut attempts every send, collecting failures without aborting the
// rest.
func (d *Dispatcher) fanOut(cadence string, msgs []mailer.Message) Result {
	res := Result{Cadence: cadence}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, msg := range msgs {
		wg.Add(1)
		go func(msg mailer.Message) {
			defer wg.Done()
			if err := d.sender.Send(msg); err != nil {
				metrics.ReportEmails.WithLabelValues("error").Inc()
				d.logger.Error("report email failed",
					zap.String("cadence", cadence),
					zap.String("recipient", msg.To),
					zap.Error(err))
				mu.Lock()
				res.Failed = append(res.Failed, msg.To)
				mu.Unlock()
				return
			}
			metrics.ReportEmails.WithLabelValues("ok").Inc()
			mu.Lock()
			res.Sent++
			mu.Unlock()
		}(msg)
	}
	wg.Wait()

	result := "ok"
	if !res.OK() {
		result = "error"
	}
	metrics.ReportRuns.WithLabelValues(cadence, result).Inc()
	d.logger.Info("report pipeline finished",
		zap.String("cadence", cadence),
		zap.Int("sent", res.Sent),
		zap.Int("failed", len(res.Failed)))
	return res
}

func (d *Dispatcher) fail(cadence string, err error) Result {
	metrics.ReportRuns.WithLabelValues(cadence, "error").Inc()
	d.logger.Error("report pipeline failed", zap.String("cadence", cadence), zap.Error(err))
	return Result{Cadence: cadence, Err: err.Error()}
}

func message(to, subject, body string, attachments []mailer.Attachment) mailer.Message {
	return mailer.Message{To: to, Subject: subject, HTML: body, Attachments: attachments}
}

// weeklySeries pivots per-day stats into one dated series per
// department.
func weeklySeries(days []report.DailyStat) []chart.Series {
	byDept := make(map[string]*chart.Series)
	var order []string
	for _, day := range days {
		s, ok := byDept[day.Department]
		if !ok {
			s = &chart.Series{Name: day.Department}
			byDept[day.Department] = s
			order = append(order, day.Department)
		}
		s.Dates = append(s.Dates, day.Date)
		s.Values = append(s.Values, float64(day.LateCount))
	}
	out := make([]chart.Series, 0, len(order))
	for _, dept := range order {
		out = append(out, *byDept[dept])
	}
	return out
}
