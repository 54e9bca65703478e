// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

// Package api is the client for the Kubarr orchestration backend. It
// covers the bootstrap status endpoints (snapshot plus WebSocket push
// channel) and the app lifecycle endpoints (install, delete, health,
// existence, installed list).
//
// HTTPClient is the plain REST client; BreakerClient wraps any Client
// with circuit breaker protection so pollers fail fast while the
// backend is down.
package api
