// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

package models

// AppPhase is the lifecycle phase of one application as tracked by the
// lifecycle poller. Idle means "available to install"; a deleted app
// transitions back to idle rather than to a separate deleted phase.
type AppPhase string

// App lifecycle phases.
const (
	AppIdle       AppPhase = "idle"
	AppInstalling AppPhase = "installing"
	AppInstalled  AppPhase = "installed"
	AppDeleting   AppPhase = "deleting"
	AppError      AppPhase = "error"
)

// AppOperationState is the observable state of one app's in-flight or
// most recently finished install/uninstall operation.
type AppOperationState struct {
	App     string   `json:"app_name"`
	Phase   AppPhase `json:"state"`
	Message string   `json:"message,omitempty"`
}

// InstallRequest is the body of POST /apps/install.
type InstallRequest struct {
	AppName   string `json:"app_name"`
	Namespace string `json:"namespace,omitempty"`
}

// InstallResponse is the orchestrator's acknowledgement of an install
// request. The deployment itself completes out of band.
type InstallResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// DeleteResponse is returned by DELETE /apps/{name}. Deletion of the
// app's namespace completes out of band.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// HealthResponse is returned by GET /apps/{name}/health.
type HealthResponse struct {
	Healthy bool   `json:"healthy"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthyStatus is the status string a fully ready app reports. An app
// counts as ready only when Healthy is set and Status matches this.
const HealthyStatus = "healthy"

// Ready reports whether the health response represents a fully ready app.
func (h *HealthResponse) Ready() bool {
	return h.Healthy && h.Status == HealthyStatus
}

// ExistsResponse is returned by GET /apps/{name}/exists.
type ExistsResponse struct {
	Exists bool `json:"exists"`
}
