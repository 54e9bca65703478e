// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Bootstrap synchronizer metrics
var (
	// BootstrapConnectionMode tracks the active status transport.
	// 0 = disconnected, 1 = websocket, 2 = polling.
	BootstrapConnectionMode = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kubarr_bootstrap_connection_mode",
			Help: "Active bootstrap status transport (0=disconnected, 1=websocket, 2=polling)",
		},
	)

	// BootstrapReconnects counts WebSocket reconnection attempts.
	BootstrapReconnects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kubarr_bootstrap_reconnects_total",
			Help: "Bootstrap WebSocket reconnection attempts by result",
		},
		[]string{"result"}, // success, failure
	)

	// BootstrapEventsReceived counts push-channel events by wire tag.
	BootstrapEventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kubarr_bootstrap_events_received_total",
			Help: "Bootstrap push-channel events received by type",
		},
		[]string{"type"},
	)

	// BootstrapEventsDropped counts undecodable push messages dropped at
	// the decode boundary.
	BootstrapEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kubarr_bootstrap_events_dropped_total",
			Help: "Malformed bootstrap push messages dropped",
		},
	)

	// BootstrapPolls counts fallback snapshot fetches by result.
	BootstrapPolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kubarr_bootstrap_polls_total",
			Help: "Bootstrap status snapshot polls by result",
		},
		[]string{"result"}, // success, error
	)
)

// App lifecycle poller metrics
var (
	// AppPollAttempts counts health/existence poll ticks.
	AppPollAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kubarr_app_poll_attempts_total",
			Help: "App lifecycle poll attempts by operation",
		},
		[]string{"operation"}, // install, uninstall
	)

	// AppOperations counts finished install/uninstall operations.
	AppOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kubarr_app_operations_total",
			Help: "Completed app lifecycle operations by operation and outcome",
		},
		[]string{"operation", "outcome"}, // outcome: success, rejected, timeout
	)
)

// Circuit breaker metrics
var (
	// CircuitBreakerState tracks breaker state (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kubarr_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"breaker"},
	)

	// CircuitBreakerRequests counts requests through each breaker.
	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kubarr_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker by result",
		},
		[]string{"breaker", "result"}, // success, failure, rejected
	)

	// CircuitBreakerTransitions counts breaker state transitions.
	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kubarr_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"breaker", "from", "to"},
	)
)

// ConnectionModeValue maps a connection-mode string to its gauge value.
func ConnectionModeValue(mode string) float64 {
	switch mode {
	case "websocket":
		return 1
	case "polling":
		return 2
	default:
		return 0
	}
}
