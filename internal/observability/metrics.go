package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	httpErrorsTotal        *prometheus.CounterVec
	courseDownloadsTotal   *prometheus.CounterVec
	certificatesRegenTotal prometheus.Counter
	certificateEmailsTotal *prometheus.CounterVec
	profileBackfillTotal   *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oppia_http_requests_total",
			Help: "Total number of API and admin requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "oppia_http_latency_seconds",
			Help:    "Latency distribution for API and admin requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oppia_http_errors_total",
			Help: "Total number of error responses returned by API and admin endpoints.",
		}, []string{"method", "route", "status"})

		courseDownloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oppia_course_downloads_total",
			Help: "Course package downloads by visibility state.",
		}, []string{"status"})

		certificatesRegenTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oppia_certificates_regenerated_total",
			Help: "Award certificates regenerated.",
		})

		certificateEmailsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oppia_certificate_emails_total",
			Help: "Certificate emails by delivery outcome.",
		}, []string{"outcome"})

		profileBackfillTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oppia_profile_backfill_total",
			Help: "Profile backfill operations by kind.",
		}, []string{"kind"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			courseDownloadsTotal,
			certificatesRegenTotal,
			certificateEmailsTotal,
			profileBackfillTotal,
		)
	})
}

// HTTPRequests exposes the counter for observed requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for observed requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// CourseDownloads exposes the course download counter.
func CourseDownloads() *prometheus.CounterVec {
	RegisterMetrics()
	return courseDownloadsTotal
}

// CertificatesRegenerated exposes the regenerated certificate counter.
func CertificatesRegenerated() prometheus.Counter {
	RegisterMetrics()
	return certificatesRegenTotal
}

// CertificateEmails exposes the certificate email counter.
func CertificateEmails() *prometheus.CounterVec {
	RegisterMetrics()
	return certificateEmailsTotal
}

// ProfileBackfill exposes the backfill counter by kind of change.
func ProfileBackfill() *prometheus.CounterVec {
	RegisterMetrics()
	return profileBackfillTotal
}
