// Package metrics exposes the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal counts classified scans by resulting status.
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_scans_total",
		Help: "Attendance scans processed, labeled by resulting status.",
	}, []string{"status"})

	// ReportRuns counts scheduled pipeline firings by cadence and outcome.
	ReportRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "report_runs_total",
		Help: "Report pipeline runs, labeled by cadence and result.",
	}, []string{"cadence", "result"})

	// ReportEmails counts individual report email sends by outcome.
	ReportEmails = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "report_emails_total",
		Help: "Report emails attempted, labeled by result.",
	}, []string{"result"})
)
