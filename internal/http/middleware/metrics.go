package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Counters shared by the per-IP and per-user limiters. The endpoint label is
// the gin route pattern, prefixed "user:" for the per-user limiter.
var (
	RLRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_requests_total",
			Help: "Requests seen by the sportpredict API rate limiters",
		},
		[]string{"endpoint"},
	)
	RLBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_blocked_total",
			Help: "Requests rejected by the sportpredict API rate limiters",
		},
		[]string{"endpoint"},
	)
)

func init() {
	prometheus.MustRegister(RLRequests)
	prometheus.MustRegister(RLBlocked)
}
