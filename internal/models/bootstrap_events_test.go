// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

package models

import (
	"errors"
	"testing"
)

func TestDecodeBootstrapEvent_ComponentVariants(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantTyp string
		check   func(t *testing.T, ev BootstrapEvent)
	}{
		{
			name:    "started",
			payload: `{"type":"component_started","component":"postgresql","message":"Deploying PostgreSQL cluster..."}`,
			wantTyp: EventTypeComponentStarted,
			check: func(t *testing.T, ev BootstrapEvent) {
				e := ev.(ComponentStartedEvent)
				if e.Component != "postgresql" || e.Message != "Deploying PostgreSQL cluster..." {
					t.Errorf("unexpected event: %+v", e)
				}
			},
		},
		{
			name:    "progress",
			payload: `{"type":"component_progress","component":"postgresql","message":"Waiting for pods"}`,
			wantTyp: EventTypeComponentProgress,
			check: func(t *testing.T, ev BootstrapEvent) {
				e := ev.(ComponentProgressEvent)
				if e.Component != "postgresql" || e.Message != "Waiting for pods" {
					t.Errorf("unexpected event: %+v", e)
				}
			},
		},
		{
			name:    "completed",
			payload: `{"type":"component_completed","component":"oauth2-proxy","message":"Ready"}`,
			wantTyp: EventTypeComponentCompleted,
			check: func(t *testing.T, ev BootstrapEvent) {
				e := ev.(ComponentCompletedEvent)
				if e.Component != "oauth2-proxy" {
					t.Errorf("unexpected event: %+v", e)
				}
			},
		},
		{
			name:    "failed carries error detail",
			payload: `{"type":"component_failed","component":"postgresql","message":"Install failed","error":"operator timeout"}`,
			wantTyp: EventTypeComponentFailed,
			check: func(t *testing.T, ev BootstrapEvent) {
				e := ev.(ComponentFailedEvent)
				if e.Error != "operator timeout" {
					t.Errorf("expected error detail, got %+v", e)
				}
			},
		},
		{
			name:    "database connected",
			payload: `{"type":"database_connected","message":"Database online"}`,
			wantTyp: EventTypeDatabaseConnected,
			check: func(t *testing.T, ev BootstrapEvent) {
				e := ev.(DatabaseConnectedEvent)
				if e.Message != "Database online" {
					t.Errorf("unexpected event: %+v", e)
				}
			},
		},
		{
			name:    "bootstrap complete",
			payload: `{"type":"bootstrap_complete","message":"All components healthy"}`,
			wantTyp: EventTypeBootstrapComplete,
			check: func(t *testing.T, ev BootstrapEvent) {
				if _, ok := ev.(BootstrapCompleteEvent); !ok {
					t.Errorf("expected BootstrapCompleteEvent, got %T", ev)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeBootstrapEvent([]byte(tt.payload))
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if ev.EventType() != tt.wantTyp {
				t.Fatalf("event type = %q, want %q", ev.EventType(), tt.wantTyp)
			}
			tt.check(t, ev)
		})
	}
}

func TestDecodeBootstrapEvent_InitialStatus(t *testing.T) {
	payload := `{
		"type": "initial_status",
		"components": [
			{"component": "postgresql", "status": "healthy", "message": "Running"},
			{"component": "admin-account", "status": "pending"}
		],
		"complete": false,
		"started": true
	}`

	ev, err := DecodeBootstrapEvent([]byte(payload))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	initial, ok := ev.(InitialStatusEvent)
	if !ok {
		t.Fatalf("expected InitialStatusEvent, got %T", ev)
	}
	if len(initial.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(initial.Components))
	}
	if initial.Components[0].Status != ComponentHealthy {
		t.Errorf("first component status = %q, want healthy", initial.Components[0].Status)
	}
	if initial.Complete {
		t.Error("complete should be false")
	}
	if !initial.Started {
		t.Error("started should be true")
	}
}

func TestDecodeBootstrapEvent_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"invalid json", `{not json`},
		{"empty payload", ``},
		{"missing type", `{"component":"postgresql"}`},
		{"unknown type", `{"type":"reticulating_splines"}`},
		{"component event without component id", `{"type":"component_started","message":"..."}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeBootstrapEvent([]byte(tt.payload))
			if err == nil {
				t.Fatalf("expected decode error, got event %+v", ev)
			}
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("expected *DecodeError, got %T: %v", err, err)
			}
		})
	}
}

func TestComponentState_Terminal(t *testing.T) {
	if ComponentPending.Terminal() || ComponentInstalling.Terminal() {
		t.Error("transitional states must not be terminal")
	}
	if !ComponentHealthy.Terminal() || !ComponentFailed.Terminal() {
		t.Error("healthy and failed must be terminal")
	}
}

func TestBootstrapRunState_Clone(t *testing.T) {
	run := BootstrapRunState{
		Components: []ComponentStatus{{Component: "postgresql", Status: ComponentInstalling}},
		Started:    true,
		Mode:       ModeWebSocket,
	}

	clone := run.Clone()
	clone.Components[0].Status = ComponentFailed

	if run.Components[0].Status != ComponentInstalling {
		t.Error("mutating the clone must not affect the original")
	}
}

func TestHealthResponse_Ready(t *testing.T) {
	tests := []struct {
		name string
		resp HealthResponse
		want bool
	}{
		{"healthy flag and status", HealthResponse{Healthy: true, Status: "healthy"}, true},
		{"flag without status", HealthResponse{Healthy: true, Status: "degraded"}, false},
		{"status without flag", HealthResponse{Healthy: false, Status: "healthy"}, false},
		{"neither", HealthResponse{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resp.Ready(); got != tt.want {
				t.Errorf("Ready() = %v, want %v", got, tt.want)
			}
		})
	}
}
