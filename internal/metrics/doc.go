// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

/*
Package metrics provides Prometheus metrics for the console.

Metrics are registered on the default registry at package init via
promauto and exposed by the binary's metrics listener:

	curl http://localhost:9633/metrics

Instrumented areas:
  - Bootstrap synchronizer: active transport, reconnect attempts,
    push events received/dropped, fallback polls
  - App lifecycle poller: poll attempts and operation outcomes
  - Orchestration API circuit breaker: state, requests, transitions
*/
package metrics
