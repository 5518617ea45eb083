package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SignupsTotal counts signup attempts by outcome.
	SignupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_signups_total",
		Help: "Total number of signup attempts by result",
	}, []string{"result"})

	// AuthAttemptsTotal counts authentication attempts by outcome.
	AuthAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_auth_attempts_total",
		Help: "Total number of authentication attempts by result",
	}, []string{"result"})

	// FollowsTotal counts follow graph changes.
	FollowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_follows_total",
		Help: "Total number of follow and unfollow operations",
	}, []string{"action"})

	// LikesTotal counts like toggles.
	LikesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_likes_total",
		Help: "Total number of like and unlike operations",
	}, []string{"action"})

	// MessagesPosted counts messages successfully posted.
	MessagesPosted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warbler_messages_posted_total",
		Help: "Total messages successfully posted",
	})

	// CacheErrors counts Redis errors by command.
	CacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_cache_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "warbler_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// Result labels shared by the counters above.
const (
	ResultSuccess     = "success"
	ResultStaged      = "staged"
	ResultRejected    = "rejected"
	ResultUnknownUser = "unknown_user"
	ResultBadPassword = "bad_password"
	ResultError       = "error"
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
