package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Request lifecycle metrics
	RequestsCreated   prometheus.Counter
	RequestsAccepted  prometheus.Counter
	RequestsFulfilled prometheus.Counter
	RequestsVerified  prometheus.Counter
	RequestsRejected  prometheus.Counter
	RequestsCancelled prometheus.Counter
	RequestsExpired   prometheus.Counter
	RequestDuration   prometheus.Histogram
	RequestAmount     prometheus.Histogram

	// Transfer metrics
	TransfersCreated prometheus.Counter
	TransferDuration prometheus.Histogram

	// Account metrics
	AccountsCreated prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Outbox metrics
	EventsPublished prometheus.Counter
	PublishErrors   prometheus.Counter

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		RequestsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "takapay_requests_created_total",
			Help: "Total number of money requests created",
		}),
		RequestsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "takapay_requests_accepted_total",
			Help: "Total number of money requests accepted",
		}),
		RequestsFulfilled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "takapay_requests_fulfilled_total",
			Help: "Total number of money requests fulfilled",
		}),
		RequestsVerified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "takapay_requests_verified_total",
			Help: "Total number of fulfillments verified",
		}),
		RequestsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "takapay_requests_rejected_total",
			Help: "Total number of fulfillments rejected",
		}),
		RequestsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "takapay_requests_cancelled_total",
			Help: "Total number of money requests cancelled",
		}),
		RequestsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "takapay_requests_expired_total",
			Help: "Total number of money requests expired by the sweep",
		}),
		RequestDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "takapay_request_duration_seconds",
			Help:    "Duration of request lifecycle operations",
			Buckets: prometheus.DefBuckets,
		}),
		RequestAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "takapay_request_amount",
			Help:    "Money request amounts",
			Buckets: []float64{50, 100, 500, 1000, 5000, 10000, 50000, 100000},
		}),

		TransfersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "takapay_transfers_created_total",
			Help: "Total number of wallet transfers created",
		}),
		TransferDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "takapay_transfer_duration_seconds",
			Help:    "Duration of transfer operations",
			Buckets: prometheus.DefBuckets,
		}),

		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "takapay_accounts_created_total",
			Help: "Total number of wallet accounts created",
		}),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "takapay_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "takapay_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "takapay_events_published_total",
			Help: "Total outbox events published",
		}),
		PublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "takapay_publish_errors_total",
			Help: "Total outbox publish failures",
		}),

		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "takapay_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
