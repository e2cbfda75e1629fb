// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package metrics holds the Prometheus instruments of the import service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "connect_import"

// Outcome labels for Connect requests.
const (
	OutcomeOK          = "ok"
	OutcomeRemoteError = "remote_error"
	OutcomeUnavailable = "unavailable"
	OutcomeRejected    = "rejected"
)

var (
	// ConnectRequests counts Connect API requests by action and outcome.
	ConnectRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connect_requests_total",
		Help:      "Adobe Connect API requests by action and outcome.",
	}, []string{"action", "outcome"})

	// ConnectRequestDuration observes Connect API round trips.
	ConnectRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "connect_request_duration_seconds",
		Help:      "Adobe Connect API round trip duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"action"})

	// RoomsProvisioned counts resolved rooms by whether they were created.
	RoomsProvisioned = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rooms_provisioned_total",
		Help:      "Meeting rooms resolved by rooms batches, by outcome (existing, created).",
	}, []string{"outcome"})

	// UsersProvisioned counts resolved users by whether they were created.
	UsersProvisioned = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_provisioned_total",
		Help:      "User accounts resolved by users batches, by outcome (existing, created).",
	}, []string{"outcome"})

	// PermissionGrantFailures counts failed permission grants by permission.
	PermissionGrantFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "permission_grant_failures_total",
		Help:      "Failed permissions-update calls by permission (host, manage).",
	}, []string{"permission"})

	// BatchesTotal counts batches by kind and result.
	BatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batches_total",
		Help:      "Provisioning batches by kind (rooms, users) and result (success, failure).",
	}, []string{"kind", "result"})

	// CircuitBreakerState reports the Connect circuit breaker state (0 closed, 1 half-open, 2 open).
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
	}, []string{"name"})
)

// ProvisionOutcome returns the outcome label for a provisioned room or user.
func ProvisionOutcome(autocreated bool) string {
	if autocreated {
		return "created"
	}
	return "existing"
}

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
