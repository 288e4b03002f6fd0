// Package metrics exposes the service's Prometheus instrumentation and a
// small side server for /metrics and /healthz.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betpoisson_notifications_sent_total",
		Help: "Telegram notifications delivered, by event kind.",
	}, []string{"kind"})

	NotificationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betpoisson_notifications_failed_total",
		Help: "Telegram notifications that errored, by event kind.",
	}, []string{"kind"})

	ReportsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "betpoisson_reports_generated_total",
		Help: "Monthly PDF reports rendered and sent.",
	})

	ReportsFallback = promauto.NewCounter(prometheus.CounterOpts{
		Name: "betpoisson_reports_fallback_total",
		Help: "Monthly reports degraded to a plain-text summary.",
	})

	TasksDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betpoisson_tasks_dispatched_total",
		Help: "Fire-and-forget tasks started, by task name.",
	}, []string{"task"})
)
