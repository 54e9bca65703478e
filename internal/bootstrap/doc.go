// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

/*
Package bootstrap synchronizes the console's view of the one-time system
bootstrap run (PostgreSQL cluster, admin account, OAuth client, ...)
with the Kubarr orchestration API.

The Synchronizer maintains a dual-channel design: a WebSocket push
channel as the primary source and a fixed-interval HTTP snapshot poll as
the fallback. The two sources are mutually exclusive by connection-mode
gating, so state never receives conflicting concurrent updates. Channel
loss is invisible to the operator beyond the mode indicator: the poller
takes over immediately while reconnection retries with exponential
backoff forever.

Ordering: per-component updates are keyed last-write-wins merges, with
one guard against network reordering — a component that reached a
terminal state (healthy or failed) is never demoted back to installing
by a late transitional event. The run's completion flag is monotonic for
the lifetime of a Synchronizer instance.
*/
package bootstrap
