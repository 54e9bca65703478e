// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

/*
Package lifecycle tracks per-app install and uninstall operations
against the Kubarr orchestration API.

The backend's mutation endpoints are asynchronous: POST /apps/install
and DELETE /apps/{name} acknowledge the request and perform the actual
Kubernetes work out of band. The Manager is what turns that
fire-and-forget into a bounded, observable operation: after a request is
accepted it polls the app's health endpoint (install) or existence
endpoint (uninstall) at a fixed interval until the terminal condition is
met or a fixed attempt budget runs out.

Terminal outcomes are distinguishable: a backend rejection surfaces the
backend's reason, a budget exhaustion surfaces a timeout-specific
message hinting that the operation may still land out of band. Either
way the operator retries explicitly; retrying stamps a fresh generation
token that retires the previous poll loop before it can write again.
*/
package lifecycle
