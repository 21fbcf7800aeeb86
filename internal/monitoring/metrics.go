// Package monitoring - metrics.go exports Prometheus collectors.
//
// DESIGN: Package-level collectors registered once in init():
//   - gateway_requests_total / gateway_request_duration_seconds: inbound HTTP
//   - gateway_upstream_requests_total / gateway_upstream_latency_seconds: provider calls
//   - gateway_assistant_runs_total / gateway_assistant_polls: run outcomes and poll counts
//
// Exposed at /metrics by the gateway through promhttp.
package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Upstream call outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeNetworkError = "network_error"
)

// OutcomeStatus labels a non-2xx provider response by status class.
func OutcomeStatus(status int) string {
	return strconv.Itoa(status/100) + "xx"
}

// UpstreamBuckets spans fast cache-served provider calls up to the 30s call timeout.
var UpstreamBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

var (
	// RequestsTotal counts inbound requests by route and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Inbound requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records inbound request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Inbound request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// UpstreamRequestsTotal counts provider calls by outcome.
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_upstream_requests_total",
			Help: "Provider requests",
		},
		[]string{"provider", "outcome"},
	)

	// UpstreamLatency records provider call latency in seconds.
	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_upstream_latency_seconds",
			Help:    "Provider latency",
			Buckets: UpstreamBuckets,
		},
		[]string{"provider"},
	)

	// AssistantRunsTotal counts assistant runs by final state.
	AssistantRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_assistant_runs_total",
			Help: "Assistant runs by final state",
		},
		[]string{"state"},
	)

	// AssistantPolls records how many status polls each run needed.
	AssistantPolls = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gateway_assistant_polls",
			Help:    "Status polls per assistant run",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		UpstreamRequestsTotal,
		UpstreamLatency,
		AssistantRunsTotal,
		AssistantPolls,
	)
}

// ObserveRequest records one inbound request.
func ObserveRequest(method, route string, status int, latency time.Duration) {
	RequestsTotal.WithLabelValues(method, route, OutcomeStatus(status)).Inc()
	RequestDuration.WithLabelValues(method, route).Observe(latency.Seconds())
}

// ObserveUpstream records one provider call.
func ObserveUpstream(provider, outcome string, latency time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(provider, outcome).Inc()
	UpstreamLatency.WithLabelValues(provider).Observe(latency.Seconds())
}

// ObserveRun records the final state of an assistant run and its poll count.
func ObserveRun(state string, polls int) {
	AssistantRunsTotal.WithLabelValues(state).Inc()
	AssistantPolls.Observe(float64(polls))
}
