// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

// Package supervisor builds the console's suture process tree and the
// service adapters that run under it: the bootstrap synchronizer, the
// installed-apps refresher, and the metrics listener.
package supervisor
