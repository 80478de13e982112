package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
	ResultDropped = "dropped"
	ResultSkipped = "skipped"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	SiteVisitsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_visits_recorded_total",
			Help: "Site visits recorded by the auth middleware",
		},
		[]string{"result"},
	)

	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Notifications stored, by type",
		},
		[]string{"type"},
	)

	NotificationPush = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_push_total",
			Help: "Notification events handed to the broker",
		},
		[]string{"result"}, // success, failed, dropped
	)

	MaintenanceJobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintenance_job_runs_total",
			Help: "Maintenance job runs",
		},
		[]string{"job", "result"}, // success, failed, skipped
	)
)

// RecordHTTPRequestDuration records the latency of one request
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementSiteVisit counts a site visit insert
func IncrementSiteVisit(result string) {
	SiteVisitsRecorded.WithLabelValues(result).Inc()
}

// AddNotificationsCreated counts n stored notifications of the given type
func AddNotificationsCreated(notificationType string, n int) {
	NotificationsCreated.WithLabelValues(notificationType).Add(float64(n))
}

// IncrementNotificationPush counts a push attempt
func IncrementNotificationPush(result string) {
	NotificationPush.WithLabelValues(result).Inc()
}

// IncrementJobRun counts a maintenance job run
func IncrementJobRun(job, result string) {
	MaintenanceJobRuns.WithLabelValues(job, result).Inc()
}
