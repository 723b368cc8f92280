// Package metrics declares the Prometheus collectors exported at /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
	AuthRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_rejections_total",
			Help: "Total number of unauthorized requests",
		},
		[]string{"reason"},
	)
	FriendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friend_requests_total",
			Help: "Friend request actions by outcome",
		},
		[]string{"action", "outcome"},
	)
	ScoresSaved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scores_saved_total",
			Help: "Daily scores written or overwritten",
		},
	)
)

var registerOnce sync.Once

// Register adds every collector to reg. Only the first call has an effect.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			AuthRejections,
			FriendRequests,
			ScoresSaved,
		)
	})
}

// Outcome labels a friend request action for FriendRequests.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return "rejected"
}
