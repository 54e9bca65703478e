// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

package models

// ComponentState describes the lifecycle stage of one bootstrap component.
type ComponentState string

// Bootstrap component states, as reported by the orchestration API.
const (
	ComponentPending    ComponentState = "pending"
	ComponentInstalling ComponentState = "installing"
	ComponentHealthy    ComponentState = "healthy"
	ComponentFailed     ComponentState = "failed"
)

// Terminal reports whether the state is an end state for a bootstrap run.
// Healthy and failed components are never demoted back to a transitional
// state by late-arriving push events.
func (s ComponentState) Terminal() bool {
	return s == ComponentHealthy || s == ComponentFailed
}

// ComponentStatus is the status of one installable system component
// (PostgreSQL cluster, admin account, OAuth client, ...) during bootstrap.
type ComponentStatus struct {
	Component string         `json:"component"`
	Status    ComponentState `json:"status"`
	Message   string         `json:"message,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// ConnectionMode identifies which transport currently feeds bootstrap
// status updates. It reflects transport health, not orchestration progress.
type ConnectionMode string

// Connection modes for the bootstrap synchronizer.
const (
	ModeDisconnected ConnectionMode = "disconnected"
	ModeWebSocket    ConnectionMode = "websocket"
	ModePolling      ConnectionMode = "polling"
)

// BootstrapRunState is the aggregate view of one bootstrap run.
//
// Components keep the arrival order of the initial snapshot. Complete is
// monotonic for the lifetime of one synchronizer instance: once true it
// never resets, regardless of later events or snapshots.
type BootstrapRunState struct {
	Components []ComponentStatus `json:"components"`
	Started    bool              `json:"started"`
	Complete   bool              `json:"complete"`
	Mode       ConnectionMode    `json:"connection_mode"`
}

// Component returns the status for the given component id, or nil if the
// component is not part of the current run. The pointer aliases the
// run's component slice.
func (r BootstrapRunState) Component(id string) *ComponentStatus {
	for i := range r.Components {
		if r.Components[i].Component == id {
			return &r.Components[i]
		}
	}
	return nil
}

// Clone returns a deep copy safe to hand to callers outside the
// synchronizer's single-writer goroutines.
func (r BootstrapRunState) Clone() BootstrapRunState {
	out := r
	out.Components = make([]ComponentStatus, len(r.Components))
	copy(out.Components, r.Components)
	return out
}

// BootstrapSnapshot is the polled form of bootstrap status, returned by
// GET /bootstrap/status.
type BootstrapSnapshot struct {
	Components []ComponentStatus `json:"components"`
	Complete   bool              `json:"complete"`
	Started    bool              `json:"started"`
}
