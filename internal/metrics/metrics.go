// Package metrics defines Prometheus metrics for the phone catalog service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "spc"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HTTPPanicsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_panics_recovered_total",
		Help:      "Total panics recovered while serving requests.",
	})
)

// Health gauges, updated by the metrics middleware.
var (
	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "1 if the last liveness probe succeeded.",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "1 if the last readiness probe succeeded.",
	})
)

// Cache metrics.
var (
	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "Total snapshot cache hits.",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_misses_total",
		Help:      "Total snapshot cache misses.",
	})

	CacheInvalidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_invalidations_total",
		Help:      "Total snapshot invalidations from upstream changes.",
	})
)

// Rebuild metrics.
var (
	RebuildBatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rebuild_batches_total",
		Help:      "Total rebuild batch steps executed.",
	})

	RebuildSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rebuild_skipped_products_total",
		Help:      "Total products skipped during rebuild (lookup miss or not sellable).",
	})

	RebuildErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rebuild_errors_total",
		Help:      "Total failed rebuild batch steps.",
	})

	RebuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rebuild_batch_duration_seconds",
		Help:      "Duration of rebuild batch steps in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	CatalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_records",
		Help:      "Number of records in the most recently completed snapshot.",
	})
)

// Query metrics.
var (
	QueriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_queries_total",
		Help:      "Total catalog list queries served.",
	})

	QueryNoResultsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_queries_no_results_total",
		Help:      "Total catalog queries that matched nothing.",
	})

	ViewComputationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "view_computations_total",
		Help:      "Total aggregation view computations.",
	}, []string{"view"})
)
