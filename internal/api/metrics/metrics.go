// Package metrics defines the custom Prometheus metrics for the QA testbed
// API. It is the single source of truth for metric names, labels, and help
// strings; metrics register themselves with the default registry via
// promauto at package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "testbed"

// UsersCreatedTotal counts successful user creations.
// Label:
//   - role: the role assigned to the new user ("User", "Manager", "Admin")
var UsersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of users created, by role.",
	},
	[]string{"role"},
)

// UsersDeletedTotal counts successful user deletions.
var UsersDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_deleted_total",
		Help:      "Total number of users deleted.",
	},
)

// StoreResetsTotal counts seed-data resets.
var StoreResetsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_resets_total",
		Help:      "Total number of times the user store was reset to seed data.",
	},
)

// SimulationRequestsTotal counts hits on the simulation endpoints.
// Labels:
//   - endpoint: "slow", "unreliable", "error", "delay", "ratelimit"
//   - outcome: "success" or "failure"
var SimulationRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulation_requests_total",
		Help:      "Total number of simulation endpoint requests, by endpoint and outcome.",
	},
	[]string{"endpoint", "outcome"},
)

// SimulationDelaySeconds measures the artificial delay applied by the
// latency-based simulation endpoints.
// Label:
//   - endpoint: "slow" or "delay"
var SimulationDelaySeconds = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "simulation_delay_seconds",
		Help:      "Artificial delay applied by the latency simulation endpoints.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 10},
	},
	[]string{"endpoint"},
)

// FormValidationsTotal counts form validation submissions.
// Label:
//   - result: "accepted" or "rejected"
var FormValidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "form_validations_total",
		Help:      "Total number of form validation submissions, by result.",
	},
	[]string{"result"},
)
