package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "studentattendance"

var (
	// HTTPRequests counts served requests per service, route and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by service, method, route and status code",
	}, []string{"service", "method", "route", "status"})

	// HTTPDuration observes request latency.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "method", "route"})

	// ReportBuildDuration observes attendance report builds by outcome.
	ReportBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "report_build_duration_seconds",
		Help:      "Time to build one attendance report, including the per-student fan-out",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})

	// ReportRosterSize observes how many per-student counts a report fans out.
	ReportRosterSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "report_roster_size",
		Help:      "Number of students joined per attendance report",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})

	// CountQueryFailures counts failed per-student attendance counts.
	CountQueryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "report_count_query_failures_total",
		Help:      "Per-student attendance count queries that failed and aborted a report",
	})

	// EventsPublished counts attendance change events by type and outcome.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attendance_events_published_total",
		Help:      "Attendance change events handed to the queue",
	}, []string{"type", "outcome"})

	// EventsConsumed counts change events processed by the audit worker.
	EventsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attendance_events_consumed_total",
		Help:      "Attendance change events processed by the audit worker",
	}, []string{"type"})
)
