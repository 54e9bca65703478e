// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/kubarr/console/internal/logging"
	"github.com/kubarr/console/internal/metrics"
	"github.com/kubarr/console/internal/models"
)

// BreakerClient wraps a Client with a circuit breaker so the pollers stop
// hammering a wedged backend. When the circuit is open, calls fail fast
// with gobreaker.ErrOpenState; the pollers count those as ordinary
// non-terminal attempts.
//
// DETERMINISM NOTE: the breaker uses real time for its interval and
// timeout windows. Unit tests exercise the wrapped client directly and
// only cover the breaker's pass-through and typed-result behavior.
type BreakerClient struct {
	client Client
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// Ensure BreakerClient implements Client
var _ Client = (*BreakerClient)(nil)

// NewBreakerClient wraps client with circuit breaker protection.
// Configuration mirrors the rest of the stack's upstream clients:
// opens after a 60% failure rate over a minimum of 10 requests, allows
// 3 probes in half-open state, recovers after a 2 minute timeout.
func NewBreakerClient(client Client) *BreakerClient {
	const cbName = "orchestration-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := breakerStateString(from)
			toStr := breakerStateString(to)
			logging.Warn().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("Circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerClient{client: client, cb: cb, name: cbName}
}

// execute runs one API call through the breaker and records the outcome.
func (b *BreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		}
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

// breakerResult type-casts an execute result with error checking.
func breakerResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// BootstrapStatus implements Client.
func (b *BreakerClient) BootstrapStatus(ctx context.Context) (*models.BootstrapSnapshot, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.client.BootstrapStatus(ctx)
	})
	return breakerResult[models.BootstrapSnapshot](result, err)
}

// BootstrapWebSocketURL implements Client. URL derivation is local, so it
// bypasses the breaker.
func (b *BreakerClient) BootstrapWebSocketURL() (string, error) {
	return b.client.BootstrapWebSocketURL()
}

// InstallApp implements Client.
func (b *BreakerClient) InstallApp(ctx context.Context, name, namespace string) (*models.InstallResponse, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.client.InstallApp(ctx, name, namespace)
	})
	return breakerResult[models.InstallResponse](result, err)
}

// DeleteApp implements Client.
func (b *BreakerClient) DeleteApp(ctx context.Context, name string) (*models.DeleteResponse, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.client.DeleteApp(ctx, name)
	})
	return breakerResult[models.DeleteResponse](result, err)
}

// AppHealth implements Client.
func (b *BreakerClient) AppHealth(ctx context.Context, name string) (*models.HealthResponse, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.client.AppHealth(ctx, name)
	})
	return breakerResult[models.HealthResponse](result, err)
}

// AppExists implements Client.
func (b *BreakerClient) AppExists(ctx context.Context, name string) (*models.ExistsResponse, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.client.AppExists(ctx, name)
	})
	return breakerResult[models.ExistsResponse](result, err)
}

// InstalledApps implements Client.
func (b *BreakerClient) InstalledApps(ctx context.Context) ([]string, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.client.InstalledApps(ctx)
	})
	if err != nil {
		return nil, err
	}
	names, ok := result.([]string)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return names, nil
}

// breakerStateFloat converts breaker state to a numeric value for metrics.
func breakerStateFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// breakerStateString converts breaker state to a string for logging.
func breakerStateString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
