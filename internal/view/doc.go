// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

/*
Package view renders synchronizer state for the terminal.

It holds no domain state of its own: badges are pure functions over the
models types, and the ToastManager's only state is UI ephemera (the
single visible toast and its dismiss timer). Toasts are keyed by
kind+message and replace each other rather than queueing.
*/
package view
