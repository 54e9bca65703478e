// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

package view

import (
	"strings"
	"testing"
	"time"

	"github.com/kubarr/console/internal/models"
)

func TestBadge(t *testing.T) {
	tests := []struct {
		name string
		comp models.ComponentStatus
		want []string
	}{
		{
			name: "healthy with message",
			comp: models.ComponentStatus{Component: "postgresql", Status: models.ComponentHealthy, Message: "Running"},
			want: []string{"✓", "postgresql", "healthy", "Running"},
		},
		{
			name: "failed shows error over message",
			comp: models.ComponentStatus{Component: "oauth2-proxy", Status: models.ComponentFailed, Message: "Install failed", Error: "helm timeout"},
			want: []string{"✗", "failed", "helm timeout"},
		},
		{
			name: "pending",
			comp: models.ComponentStatus{Component: "admin-account", Status: models.ComponentPending},
			want: []string{"·", "pending"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Badge(tt.comp)
			for _, fragment := range tt.want {
				if !strings.Contains(got, fragment) {
					t.Errorf("badge %q missing %q", got, fragment)
				}
			}
		})
	}
}

func TestAppBadge(t *testing.T) {
	badge := AppBadge(models.AppOperationState{App: "sonarr", Phase: models.AppInstalling, Message: "Installing..."})
	for _, fragment := range []string{"sonarr", "installing", "Installing..."} {
		if !strings.Contains(badge, fragment) {
			t.Errorf("badge %q missing %q", badge, fragment)
		}
	}
}

func TestRenderRun(t *testing.T) {
	run := models.BootstrapRunState{
		Components: []models.ComponentStatus{
			{Component: "postgresql", Status: models.ComponentHealthy},
			{Component: "admin-account", Status: models.ComponentInstalling},
		},
		Started: true,
		Mode:    models.ModePolling,
	}

	out := RenderRun(run)
	if !strings.Contains(out, "in progress") {
		t.Errorf("expected progress header, got: %s", out)
	}
	if !strings.Contains(out, "[polling]") {
		t.Errorf("expected connection mode indicator, got: %s", out)
	}
	// Components render in snapshot arrival order.
	if strings.Index(out, "postgresql") > strings.Index(out, "admin-account") {
		t.Error("components rendered out of order")
	}

	run.Complete = true
	if out = RenderRun(run); !strings.Contains(out, "complete") {
		t.Errorf("expected completion header, got: %s", out)
	}
}

func TestRenderToast(t *testing.T) {
	success := RenderToast(Toast{Kind: ToastSuccess, Message: "sonarr installed"})
	if !strings.Contains(success, "✓") || !strings.Contains(success, "sonarr installed") {
		t.Errorf("success toast = %q", success)
	}
	failure := RenderToast(Toast{Kind: ToastError, Message: "install failed"})
	if !strings.Contains(failure, "✗") || !strings.Contains(failure, "install failed") {
		t.Errorf("error toast = %q", failure)
	}
}

func TestToastManager_ReplaceAndDismiss(t *testing.T) {
	tm := NewToastManager(30 * time.Millisecond)
	defer tm.Stop()

	tm.Show(Toast{Kind: ToastSuccess, Message: "sonarr installed successfully"})
	cur := tm.Current()
	if cur == nil || cur.Message != "sonarr installed successfully" {
		t.Fatalf("current = %+v", cur)
	}

	// A new toast replaces the visible one; there is no queue.
	tm.Show(Toast{Kind: ToastError, Message: "radarr install failed"})
	cur = tm.Current()
	if cur == nil || cur.Kind != ToastError {
		t.Fatalf("replacement not applied: %+v", cur)
	}

	// Auto-dismiss after the configured duration.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if tm.Current() == nil {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("toast never auto-dismissed")
}

func TestToastManager_ReplacementOutlivesStaleTimer(t *testing.T) {
	tm := NewToastManager(20 * time.Millisecond)
	defer tm.Stop()

	tm.Show(Toast{Kind: ToastSuccess, Message: "first"})
	time.Sleep(10 * time.Millisecond)
	tm.Show(Toast{Kind: ToastSuccess, Message: "second"})

	// The first toast's timer window has passed; the replacement must
	// still be visible because its own timer was restarted.
	time.Sleep(12 * time.Millisecond)
	cur := tm.Current()
	if cur == nil || cur.Message != "second" {
		t.Errorf("replacement dismissed by stale timer: %+v", cur)
	}
}

func TestToastManager_StopPreventsFurtherToasts(t *testing.T) {
	tm := NewToastManager(time.Hour)

	tm.Show(Toast{Kind: ToastSuccess, Message: "visible"})
	tm.Stop()
	if tm.Current() != nil {
		t.Error("Stop must clear the visible toast")
	}

	tm.Show(Toast{Kind: ToastSuccess, Message: "ignored"})
	if tm.Current() != nil {
		t.Error("Show after Stop must be ignored")
	}
}

func TestToastManager_OnChange(t *testing.T) {
	tm := NewToastManager(20 * time.Millisecond)
	defer tm.Stop()

	changes := make(chan *Toast, 8)
	tm.SetOnChange(func(t *Toast) { changes <- t })

	tm.Show(Toast{Kind: ToastSuccess, Message: "done"})

	select {
	case got := <-changes:
		if got == nil || got.Message != "done" {
			t.Fatalf("unexpected change: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("missing show notification")
	}

	select {
	case got := <-changes:
		if got != nil {
			t.Fatalf("expected dismissal (nil), got %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("missing dismissal notification")
	}
}
