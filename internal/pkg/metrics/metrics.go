// Package metrics provides Prometheus metrics for the lesson cache backend.
// Scrapeable on /metrics; dashboards and alerts can rely on these names.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lessonforge"

var (
	// ResolvesTotal counts content resolutions by outcome (cache, translation,
	// generation, source).
	ResolvesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolves_total",
			Help:      "Total number of lesson content resolutions by source.",
		},
		[]string{"source"},
	)

	// ResolveDurationSeconds is end-to-end resolve latency.
	ResolveDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_duration_seconds",
			Help:      "Lesson content resolve duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2.5, 10), // 1ms to ~9.3s
		},
	)

	// HotCacheHitsTotal counts in-process LRU hits in front of the durable cache.
	HotCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hot_cache_hits_total",
			Help:      "Total number of in-process artifact cache hits.",
		},
	)

	// HotCacheMissesTotal counts in-process LRU misses.
	HotCacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hot_cache_misses_total",
			Help:      "Total number of in-process artifact cache misses.",
		},
	)

	// CacheWritebacksTotal counts artifacts written back after a miss.
	CacheWritebacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_writebacks_total",
			Help:      "Total number of artifacts written back to the durable cache.",
		},
	)

	// JobRunsTotal counts scheduled job runs by job name and result.
	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Total number of batch job runs by job and result.",
		},
		[]string{"job", "result"},
	)

	// JobDurationSeconds is batch job run duration.
	JobDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Batch job run duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
		},
		[]string{"job"},
	)

	// FrequentLanguages is the number of languages currently cache-eligible.
	FrequentLanguages = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "frequent_languages",
			Help:      "Number of languages currently classified as frequent.",
		},
	)

	// DBQueryDurationSeconds times repository operations.
	DBQueryDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds by operation.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2.5, 10),
		},
		[]string{"operation"},
	)
)
