// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

package bootstrap

import (
	"github.com/kubarr/console/internal/logging"
	"github.com/kubarr/console/internal/metrics"
	"github.com/kubarr/console/internal/models"
)

// Default progress texts used when an event carries no message.
const (
	defaultInstallingMessage = "Installing..."
	defaultInstalledMessage  = "Installed"
	defaultFailedMessage     = "Installation failed"
)

// applyEvent folds one push-channel event into the run state.
// Updates are keyed merges by component id: last write wins, with one
// guard — a terminal component (healthy/failed) is never demoted back to
// installing by a late started/progress event. Completion is monotonic.
func (s *Synchronizer) applyEvent(ev models.BootstrapEvent) {
	s.stateMu.Lock()

	switch e := ev.(type) {
	case models.InitialStatusEvent:
		s.state.Components = cloneComponents(e.Components)
		if e.Started || anyStarted(e.Components) {
			s.state.Started = true
		}
		if e.Complete {
			s.state.Complete = true
		}

	case models.ComponentStartedEvent:
		s.state.Started = true
		s.mergeComponent(e.Component, models.ComponentInstalling, orDefault(e.Message, defaultInstallingMessage), "")

	case models.ComponentProgressEvent:
		s.state.Started = true
		s.mergeProgress(e.Component, e.Message)

	case models.ComponentCompletedEvent:
		s.state.Started = true
		s.mergeComponent(e.Component, models.ComponentHealthy, orDefault(e.Message, defaultInstalledMessage), "")

	case models.ComponentFailedEvent:
		s.state.Started = true
		s.mergeComponent(e.Component, models.ComponentFailed, orDefault(e.Message, defaultFailedMessage), orDefault(e.Error, e.Message))

	case models.DatabaseConnectedEvent:
		// Emitted before any component events; run-started signal only.
		s.state.Started = true

	case models.BootstrapCompleteEvent:
		s.state.Started = true
		s.state.Complete = true
	}

	changed := s.state.Clone()
	s.stateMu.Unlock()

	s.notify(changed)
}

// applySnapshot folds one polled snapshot into the run state. The
// snapshot replaces the component list wholesale; completion stays
// monotonic even if a stale snapshot reports complete=false.
func (s *Synchronizer) applySnapshot(snap *models.BootstrapSnapshot) {
	s.stateMu.Lock()
	s.state.Components = cloneComponents(snap.Components)
	if snap.Started || anyStarted(snap.Components) {
		s.state.Started = true
	}
	if snap.Complete {
		s.state.Complete = true
	}
	changed := s.state.Clone()
	s.stateMu.Unlock()

	s.notify(changed)
}

// mergeComponent applies a keyed merge for one component. Unknown
// components are appended in arrival order rather than dropped, so a
// run started before the initial snapshot arrived still renders.
// Must be called with stateMu held.
func (s *Synchronizer) mergeComponent(id string, status models.ComponentState, message, errDetail string) {
	comp := s.state.Component(id)
	if comp == nil {
		s.state.Components = append(s.state.Components, models.ComponentStatus{
			Component: id,
			Status:    status,
			Message:   message,
			Error:     errDetail,
		})
		return
	}

	if comp.Status.Terminal() && !status.Terminal() {
		logging.Debug().Str("component", id).Str("have", string(comp.Status)).Str("incoming", string(status)).
			Msg("Dropping stale transitional update for terminal component")
		return
	}

	comp.Status = status
	comp.Message = message
	comp.Error = errDetail
}

// mergeProgress updates an installing component's message, leaving the
// message unchanged when the event carries none. Must be called with
// stateMu held.
func (s *Synchronizer) mergeProgress(id, message string) {
	comp := s.state.Component(id)
	if comp == nil {
		s.state.Components = append(s.state.Components, models.ComponentStatus{
			Component: id,
			Status:    models.ComponentInstalling,
			Message:   orDefault(message, defaultInstallingMessage),
		})
		return
	}

	if comp.Status.Terminal() {
		logging.Debug().Str("component", id).Msg("Dropping stale progress for terminal component")
		return
	}

	comp.Status = models.ComponentInstalling
	if message != "" {
		comp.Message = message
	}
	comp.Error = ""
}

// setMode records a connection-mode transition.
func (s *Synchronizer) setMode(mode models.ConnectionMode) {
	s.stateMu.Lock()
	if s.state.Mode == mode {
		s.stateMu.Unlock()
		return
	}
	prev := s.state.Mode
	s.state.Mode = mode
	changed := s.state.Clone()
	s.stateMu.Unlock()

	metrics.BootstrapConnectionMode.Set(metrics.ConnectionModeValue(string(mode)))
	logging.Info().Str("from", string(prev)).Str("to", string(mode)).Msg("Bootstrap connection mode changed")
	s.notify(changed)
}

// notify invokes the registered change callback, if any.
func (s *Synchronizer) notify(state models.BootstrapRunState) {
	s.cbMu.RLock()
	fn := s.onChange
	s.cbMu.RUnlock()
	if fn != nil {
		fn(state)
	}
}

// anyStarted reports whether any component has left the pending state,
// the same signal the orchestrator uses for its own started flag.
func anyStarted(components []models.ComponentStatus) bool {
	for i := range components {
		if components[i].Status != models.ComponentPending {
			return true
		}
	}
	return false
}

func cloneComponents(in []models.ComponentStatus) []models.ComponentStatus {
	out := make([]models.ComponentStatus, len(in))
	copy(out, in)
	return out
}

func orDefault(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
