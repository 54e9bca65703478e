// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

/*
Package models defines the data structures shared across the console.

It is the single source of truth for the shapes exchanged with the Kubarr
orchestration API and for the aggregates the synchronizers maintain:

  - ComponentStatus / BootstrapRunState: bootstrap progress as shown to
    the operator, including which transport currently feeds it
  - BootstrapEvent: the tagged union of push-channel messages, with
    DecodeBootstrapEvent as the single decode boundary
  - AppOperationState: per-app install/uninstall progress
  - Request/response bodies for the apps endpoints

Models here carry no behavior beyond small read helpers; all state
transitions live in the bootstrap and lifecycle packages.
*/
package models
