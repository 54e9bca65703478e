// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

package bootstrap

import (
	"reflect"
	"testing"
	"time"

	"github.com/kubarr/console/internal/models"
)

// newTestSynchronizer returns a synchronizer without transport, for
// exercising state application directly.
func newTestSynchronizer() *Synchronizer {
	return NewSynchronizer(nil, Config{})
}

func TestApplyEvent_InitialSnapshotReplacesComponents(t *testing.T) {
	s := newTestSynchronizer()

	s.applyEvent(models.InitialStatusEvent{
		Components: []models.ComponentStatus{
			{Component: "postgresql", Status: models.ComponentPending, Message: "Waiting to install"},
			{Component: "admin-account", Status: models.ComponentPending},
		},
	})

	state := s.State()
	if len(state.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(state.Components))
	}
	if state.Started {
		t.Error("all-pending snapshot must not mark the run started")
	}
	if state.Complete {
		t.Error("snapshot without complete flag must not mark the run complete")
	}

	// A later snapshot replaces the list wholesale.
	s.applyEvent(models.InitialStatusEvent{
		Components: []models.ComponentStatus{
			{Component: "postgresql", Status: models.ComponentHealthy},
		},
		Complete: true,
	})

	state = s.State()
	if len(state.Components) != 1 {
		t.Fatalf("expected replacement, got %d components", len(state.Components))
	}
	if !state.Started {
		t.Error("non-pending component must mark the run started")
	}
	if !state.Complete {
		t.Error("snapshot complete flag must mark the run complete")
	}
}

func TestApplyEvent_ComponentLifecycle(t *testing.T) {
	s := newTestSynchronizer()
	s.applyEvent(models.InitialStatusEvent{
		Components: []models.ComponentStatus{
			{Component: "postgresql", Status: models.ComponentPending},
		},
	})

	s.applyEvent(models.ComponentStartedEvent{Component: "postgresql"})
	state := s.State()
	comp := state.Component("postgresql")
	if comp.Status != models.ComponentInstalling {
		t.Fatalf("status = %q, want installing", comp.Status)
	}
	if comp.Message != defaultInstallingMessage {
		t.Errorf("message = %q, want default installing text", comp.Message)
	}
	if !state.Started {
		t.Error("started event must mark the run started")
	}

	s.applyEvent(models.ComponentProgressEvent{Component: "postgresql", Message: "Waiting for pods"})
	comp = s.State().Component("postgresql")
	if comp.Message != "Waiting for pods" {
		t.Errorf("progress message not applied: %q", comp.Message)
	}

	// Progress without a message leaves the previous message in place.
	s.applyEvent(models.ComponentProgressEvent{Component: "postgresql"})
	comp = s.State().Component("postgresql")
	if comp.Message != "Waiting for pods" {
		t.Errorf("empty progress must keep message, got %q", comp.Message)
	}

	s.applyEvent(models.ComponentCompletedEvent{Component: "postgresql", Message: "Cluster ready"})
	comp = s.State().Component("postgresql")
	if comp.Status != models.ComponentHealthy || comp.Message != "Cluster ready" {
		t.Errorf("completed not applied: %+v", comp)
	}
	if comp.Error != "" {
		t.Errorf("completed must clear error, got %q", comp.Error)
	}
}

func TestApplyEvent_FailureCarriesError(t *testing.T) {
	s := newTestSynchronizer()

	s.applyEvent(models.ComponentFailedEvent{
		Component: "postgresql",
		Message:   "PostgreSQL installation failed",
		Error:     "operator timeout",
	})

	comp := s.State().Component("postgresql")
	if comp == nil {
		t.Fatal("failed event for unknown component must create an entry")
	}
	if comp.Status != models.ComponentFailed {
		t.Errorf("status = %q, want failed", comp.Status)
	}
	if comp.Error != "operator timeout" {
		t.Errorf("error = %q, want payload error", comp.Error)
	}
}

func TestApplyEvent_FailureWithoutErrorFallsBackToMessage(t *testing.T) {
	s := newTestSynchronizer()

	s.applyEvent(models.ComponentFailedEvent{Component: "oauth2-proxy", Message: "helm release failed"})

	comp := s.State().Component("oauth2-proxy")
	if comp.Error != "helm release failed" {
		t.Errorf("error = %q, want message fallback", comp.Error)
	}
}

func TestApplyEvent_KeyedMergeIdempotence(t *testing.T) {
	s := newTestSynchronizer()
	s.applyEvent(models.ComponentStartedEvent{Component: "postgresql"})

	s.applyEvent(models.ComponentCompletedEvent{Component: "postgresql", Message: "Ready"})
	once := s.State()

	s.applyEvent(models.ComponentCompletedEvent{Component: "postgresql", Message: "Ready"})
	twice := s.State()

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("duplicate completed event changed state:\nonce:  %+v\ntwice: %+v", once, twice)
	}
	if len(twice.Components) != 1 {
		t.Errorf("keyed merge produced %d entries, want 1", len(twice.Components))
	}
}

func TestApplyEvent_TerminalComponentNotDemoted(t *testing.T) {
	s := newTestSynchronizer()
	s.applyEvent(models.ComponentCompletedEvent{Component: "postgresql", Message: "Ready"})

	// A progress event delayed past the completion must not revert the
	// component to installing.
	s.applyEvent(models.ComponentProgressEvent{Component: "postgresql", Message: "Waiting for pods"})
	comp := s.State().Component("postgresql")
	if comp.Status != models.ComponentHealthy {
		t.Errorf("late progress demoted component to %q", comp.Status)
	}
	if comp.Message != "Ready" {
		t.Errorf("late progress overwrote message: %q", comp.Message)
	}

	s.applyEvent(models.ComponentStartedEvent{Component: "postgresql"})
	if got := s.State().Component("postgresql").Status; got != models.ComponentHealthy {
		t.Errorf("late started demoted component to %q", got)
	}

	// Terminal-to-terminal transitions stay allowed: a retried component
	// may legitimately go failed -> healthy.
	s.applyEvent(models.ComponentFailedEvent{Component: "postgresql", Error: "lost quorum"})
	if got := s.State().Component("postgresql").Status; got != models.ComponentFailed {
		t.Errorf("failed after healthy should apply, got %q", got)
	}
	s.applyEvent(models.ComponentCompletedEvent{Component: "postgresql"})
	if got := s.State().Component("postgresql").Status; got != models.ComponentHealthy {
		t.Errorf("completed after failed should apply, got %q", got)
	}
}

func TestMonotonicCompletion(t *testing.T) {
	s := newTestSynchronizer()

	s.applyEvent(models.BootstrapCompleteEvent{})
	if !s.State().Complete {
		t.Fatal("complete event must set the completion flag")
	}

	// No subsequent event or snapshot may reset it.
	s.applyEvent(models.InitialStatusEvent{
		Components: []models.ComponentStatus{{Component: "postgresql", Status: models.ComponentInstalling}},
		Complete:   false,
	})
	s.applySnapshot(&models.BootstrapSnapshot{Complete: false})
	s.applyEvent(models.ComponentStartedEvent{Component: "postgresql"})

	if !s.State().Complete {
		t.Error("completion flag must be monotonic")
	}
}

func TestApplySnapshot(t *testing.T) {
	s := newTestSynchronizer()

	s.applySnapshot(&models.BootstrapSnapshot{
		Components: []models.ComponentStatus{
			{Component: "postgresql", Status: models.ComponentInstalling, Message: "Deploying"},
		},
		Started: true,
	})

	state := s.State()
	if !state.Started {
		t.Error("snapshot started flag not applied")
	}
	if got := state.Component("postgresql"); got == nil || got.Message != "Deploying" {
		t.Errorf("snapshot components not applied: %+v", state.Components)
	}
}

func TestOnChangeCallback(t *testing.T) {
	s := newTestSynchronizer()

	var got []models.BootstrapRunState
	s.SetOnChange(func(state models.BootstrapRunState) {
		got = append(got, state)
	})

	s.applyEvent(models.ComponentStartedEvent{Component: "postgresql"})
	s.setMode(models.ModePolling)
	s.setMode(models.ModePolling) // unchanged mode must not refire

	if len(got) != 2 {
		t.Fatalf("expected 2 change notifications, got %d", len(got))
	}
	if got[1].Mode != models.ModePolling {
		t.Errorf("last notification mode = %q, want polling", got[1].Mode)
	}
}

func TestNextDelay(t *testing.T) {
	const max = 32
	delays := []int{1, 2, 4, 8, 16, 32, 32}
	cur := 1
	for i := 1; i < len(delays); i++ {
		cur = int(nextDelay(time.Duration(cur), max))
		if cur != delays[i] {
			t.Fatalf("delay step %d = %d, want %d", i, cur, delays[i])
		}
	}
}
