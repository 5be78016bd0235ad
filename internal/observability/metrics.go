package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// PostsCreated counts created posts by publish state.
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_posts_created_total",
		Help: "Total number of posts created, by publish state",
	}, []string{"state"})

	// CommentsCreated counts created comments.
	CommentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_comments_created_total",
		Help: "Total number of comments created",
	})

	// ImageUploadBytes records uploaded featured image sizes.
	ImageUploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inkwell_image_upload_bytes",
		Help:    "Size distribution of uploaded featured images",
		Buckets: prometheus.ExponentialBuckets(16*1024, 2, 8),
	})

	// DatabaseQueryLatency records database query latency by statement kind.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

// ObserveQuery records one database query's latency.
func ObserveQuery(operation string, elapsed time.Duration) {
	DatabaseQueryLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}
