// Package metrics holds the Prometheus collectors shared by the dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dashboard"

var (
	// GuardDecisions counts route guard outcomes.
	GuardDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "guard",
		Name:      "decisions_total",
		Help:      "Route guard decisions by outcome.",
	}, []string{"outcome"})

	// GuardTransitions counts session state transitions seen by route guards.
	GuardTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "guard",
		Name:      "transitions_total",
		Help:      "Route guard state transitions.",
	}, []string{"from", "to"})

	// ResolverLookups counts identity resolution outcomes.
	ResolverLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "resolver",
		Name:      "lookups_total",
		Help:      "Identity resolver lookups by resource kind and outcome.",
	}, []string{"kind", "outcome"})

	// BackendRequests observes latency of calls to the verification backend.
	BackendRequests = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "backend",
		Name:      "request_duration_seconds",
		Help:      "Latency of verification backend requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "status"})
)
