package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Posting metrics
	BatchesCommitted prometheus.Counter
	BatchesRejected  *prometheus.CounterVec
	BatchDuration    prometheus.Histogram
	PostingAmount    prometheus.Histogram
	FeesCharged      *prometheus.CounterVec

	// Account metrics
	AccountsOpened    prometheus.Counter
	AccountsClosed    prometheus.Counter
	AccountOperations *prometheus.CounterVec

	// Interest metrics
	AccrualsRun         prometheus.Counter
	ApplicationsRun     prometheus.Counter
	InterestForfeitures prometheus.Counter
	AccrualDuration     prometheus.Histogram

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisDuration   *prometheus.HistogramVec
	RedisErrors     *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Posting metrics
		BatchesCommitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "depositcore_batches_committed_total",
			Help: "Total number of posting batches committed",
		}),
		BatchesRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depositcore_batches_rejected_total",
				Help: "Total number of posting batches rejected by rule",
			},
			[]string{"rule"},
		),
		BatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "depositcore_batch_duration_seconds",
			Help:    "Duration of batch submission",
			Buckets: prometheus.DefBuckets,
		}),
		PostingAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "depositcore_posting_amount",
			Help:    "Posting amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		FeesCharged: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depositcore_fees_charged_total",
				Help: "Total number of fees charged by type",
			},
			[]string{"fee_type"},
		),

		// Account metrics
		AccountsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "depositcore_accounts_opened_total",
			Help: "Total number of accounts opened",
		}),
		AccountsClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "depositcore_accounts_closed_total",
			Help: "Total number of accounts closed",
		}),
		AccountOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depositcore_account_operations_total",
				Help: "Total account operations by type",
			},
			[]string{"operation"},
		),

		// Interest metrics
		AccrualsRun: promauto.NewCounter(prometheus.CounterOpts{
			Name: "depositcore_accruals_run_total",
			Help: "Total number of daily accrual runs",
		}),
		ApplicationsRun: promauto.NewCounter(prometheus.CounterOpts{
			Name: "depositcore_applications_run_total",
			Help: "Total number of interest application runs",
		}),
		InterestForfeitures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "depositcore_interest_forfeitures_total",
			Help: "Total number of early-withdrawal interest forfeitures",
		}),
		AccrualDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "depositcore_accrual_duration_seconds",
			Help:    "Duration of accrual runs",
			Buckets: prometheus.DefBuckets,
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depositcore_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "depositcore_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depositcore_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "depositcore_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "depositcore_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depositcore_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depositcore_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "depositcore_redis_duration_seconds",
				Help:    "Redis operation duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depositcore_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depositcore_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),

		// Outbox metrics
		EventsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depositcore_events_published_total",
				Help: "Total outbox events published",
			},
			[]string{"event_type"},
		),
	}
}
