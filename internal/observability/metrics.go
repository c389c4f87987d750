package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	adminRequestsTotal  *prometheus.CounterVec
	adminLatencySeconds *prometheus.HistogramVec
	adminErrorsTotal    *prometheus.CounterVec
	checkinsTotal       *prometheus.CounterVec
	claimFeedEvents     prometheus.Counter
	feedClientsActive   prometheus.Gauge
	analyticsCacheOps   *prometheus.CounterVec
	avatarUploadsTotal  *prometheus.CounterVec
	uploadLatencySecs   prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors used for admin observability.
func RegisterMetrics() {
	registerOnce.Do(func() {
		adminRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Total number of admin API requests served.",
		}, []string{"method", "route", "status"})

		adminLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admin_latency_seconds",
			Help:    "Latency distribution for admin API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		adminErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_errors_total",
			Help: "Total number of error responses returned by admin endpoints.",
		}, []string{"method", "route", "status"})

		checkinsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meal_checkins_total",
			Help: "Total number of kitchen terminal check-ins by outcome.",
		}, []string{"status"})

		claimFeedEvents = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "claim_feed_events_total",
			Help: "Total number of claim events broadcast on the live feed.",
		})

		feedClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "claim_feed_clients_active",
			Help: "Number of websocket clients subscribed to the claim feed.",
		})

		analyticsCacheOps = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_cache_ops_total",
			Help: "Analytics cache lookups by result (hit or miss).",
		}, []string{"result"})

		avatarUploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "avatar_uploads_total",
			Help: "Avatar upload attempts by result (stored, rejected_size, rejected_type, storage_error).",
		}, []string{"result"})

		uploadLatencySecs = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "avatar_upload_latency_seconds",
			Help:    "Latency distribution for avatar uploads.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		})

		prometheus.MustRegister(
			adminRequestsTotal,
			adminLatencySeconds,
			adminErrorsTotal,
			checkinsTotal,
			claimFeedEvents,
			feedClientsActive,
			analyticsCacheOps,
			avatarUploadsTotal,
			uploadLatencySecs,
		)
	})
}

// AdminRequests exposes the counter for admin requests.
func AdminRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return adminRequestsTotal
}

// AdminLatency exposes the latency histogram for admin requests.
func AdminLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return adminLatencySeconds
}

// AdminErrors exposes the counter for admin error responses.
func AdminErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return adminErrorsTotal
}

// Checkins exposes the counter for check-in outcomes.
func Checkins() *prometheus.CounterVec {
	RegisterMetrics()
	return checkinsTotal
}

// ClaimFeedEventsTotal exposes the counter for broadcast claim events.
func ClaimFeedEventsTotal() prometheus.Counter {
	RegisterMetrics()
	return claimFeedEvents
}

// FeedClientsActive exposes the gauge for connected feed clients.
func FeedClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return feedClientsActive
}

// AnalyticsCacheOps exposes the counter for analytics cache results.
func AnalyticsCacheOps() *prometheus.CounterVec {
	RegisterMetrics()
	return analyticsCacheOps
}

// AvatarUploads exposes the counter for avatar upload attempts.
func AvatarUploads() *prometheus.CounterVec {
	RegisterMetrics()
	return avatarUploadsTotal
}

// UploadLatency exposes the latency histogram for avatar uploads.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySecs
}
