// Package observability holds Prometheus collectors and OpenTelemetry tracer setup.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agora_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CacheLookups counts read-through cache lookups by cache name and result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_cache_lookups_total",
		Help: "Read-through cache lookups by result",
	}, []string{"cache", "result"})

	// CacheInvalidations counts explicit cache invalidations by cache name and result.
	CacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_cache_invalidations_total",
		Help: "Cache invalidations by result",
	}, []string{"cache", "result"})

	// EngagementEvents counts ledger append attempts by kind and outcome (recorded, duplicate, error).
	EngagementEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_engagement_events_total",
		Help: "Engagement ledger append attempts by kind and outcome",
	}, []string{"kind", "outcome"})

	// ActivityPublishFailures counts activity notifications that could not be delivered, by sink.
	ActivityPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_activity_publish_failures_total",
		Help: "Activity notifications that failed to publish",
	}, []string{"sink"})

	// FeedSize observes the number of posts returned per feed request.
	FeedSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "agora_feed_size_posts",
		Help:    "Number of posts returned per feed request",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
	})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}
