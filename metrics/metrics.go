package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "hacknox_http_requests_total", Help: "HTTP requests by route and status"},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "hacknox_http_request_duration_seconds", Help: "HTTP request latency", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)
	AuditWritten = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hacknox_audit_written_total", Help: "Audit log entries persisted"},
	)
	AuditFailed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hacknox_audit_failed_total", Help: "Audit log entries that failed to persist"},
	)
	AuditDropped = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hacknox_audit_dropped_total", Help: "Audit log entries dropped because the queue was full"},
	)
	AnnouncementsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "hacknox_announcements_sent_total", Help: "Announcements moved to sent"},
		[]string{"trigger"},
	)
	UploadsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "hacknox_uploads_rejected_total", Help: "Submission archives rejected"},
		[]string{"reason"},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HTTPRequests, HTTPDuration, AuditWritten, AuditFailed, AuditDropped, AnnouncementsSent, UploadsRejected)
	})
}
