// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kubarr/console/internal/api"
	"github.com/kubarr/console/internal/logging"
	"github.com/kubarr/console/internal/metrics"
	"github.com/kubarr/console/internal/models"
)

// Config holds lifecycle poller tuning. Zero values take the defaults.
type Config struct {
	// PollInterval is the spacing between health/existence checks.
	// Default: 2s
	PollInterval time.Duration

	// MaxAttempts bounds each poll loop. At the default 2s spacing the
	// default budget of 60 attempts gives roughly two minutes before an
	// operation is declared timed out.
	MaxAttempts int

	// Namespace is passed on install requests; empty lets the backend
	// choose (one namespace per app).
	Namespace string
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 60
	}
	return c
}

// Notification is a one-shot operation outcome for the view layer to
// surface as a toast.
type Notification struct {
	App     string
	Success bool
	Message string
}

// operation is the recorded state of one app's current or most recent
// operation. The generation token identifies the poll loop that owns the
// entry; a superseded loop finds a different generation and goes silent.
type operation struct {
	phase      models.AppPhase
	message    string
	generation uuid.UUID
}

// Manager turns the orchestrator's fire-and-forget install/delete
// endpoints into bounded, observable operations.
//
// Install marks the app installing and, once the request is accepted,
// polls the health endpoint until the app reports ready or the attempt
// budget runs out. Uninstall works the same way against the existence
// endpoint, finishing back at idle. At most one poll loop is live per
// app: a new operation stamps a fresh generation token, which retires
// any previous loop before its next state write.
type Manager struct {
	client api.Client
	cfg    Config

	mu        sync.RWMutex
	ops       map[string]*operation
	installed map[string]bool

	cbMu     sync.RWMutex
	onNotify func(Notification)

	runMu    sync.Mutex
	stopChan chan struct{}
	stopped  bool
	wg       sync.WaitGroup
}

// NewManager creates a lifecycle manager over the given orchestration
// API client.
func NewManager(client api.Client, cfg Config) *Manager {
	return &Manager{
		client:    client,
		cfg:       cfg.withDefaults(),
		ops:       make(map[string]*operation),
		installed: make(map[string]bool),
		stopChan:  make(chan struct{}),
	}
}

// SetOnNotify registers the outcome callback. It runs on poller
// goroutines and must not block.
func (m *Manager) SetOnNotify(fn func(Notification)) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.onNotify = fn
}

// Stop retires all poll loops and waits for them to finish. After Stop
// returns no further state mutation or notification is possible.
func (m *Manager) Stop() {
	m.runMu.Lock()
	if m.stopped {
		m.runMu.Unlock()
		return
	}
	m.stopped = true
	close(m.stopChan)
	m.runMu.Unlock()

	m.wg.Wait()
}

// RefreshInstalled fetches the authoritative installed-app list used to
// resolve defaults for apps with no recorded operation.
func (m *Manager) RefreshInstalled(ctx context.Context) error {
	names, err := m.client.InstalledApps(ctx)
	if err != nil {
		return fmt.Errorf("refresh installed apps: %w", err)
	}

	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}

	m.mu.Lock()
	m.installed = set
	m.mu.Unlock()
	return nil
}

// StatusOf returns the app's current operation state. With no recorded
// operation the result falls back to the authoritative installed list:
// installed when the backend lists the app, idle otherwise.
func (m *Manager) StatusOf(app string) models.AppOperationState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if op, ok := m.ops[app]; ok {
		return models.AppOperationState{App: app, Phase: op.phase, Message: op.message}
	}
	return m.defaultState(app)
}

// defaultState resolves the phase for an app nobody has operated on in
// this session. Must be called with mu held (read or write).
func (m *Manager) defaultState(app string) models.AppOperationState {
	if m.installed[app] {
		return models.AppOperationState{App: app, Phase: models.AppInstalled}
	}
	return models.AppOperationState{App: app, Phase: models.AppIdle}
}

// Install requests installation of an app and starts the health-poll
// loop that decides the outcome. A request rejection is terminal: the
// app lands in the error phase and the returned error carries the
// reason. The poll loop's own outcome arrives via StatusOf and the
// notify callback.
func (m *Manager) Install(ctx context.Context, app string) error {
	gen := m.beginOperation(app, models.AppInstalling, "Installing...")

	resp, err := m.client.InstallApp(ctx, app, m.cfg.Namespace)
	if err != nil {
		m.failOperation(app, gen, "install", fmt.Sprintf("Install request failed: %v", err), "rejected")
		return fmt.Errorf("install %s: %w", app, err)
	}

	if resp.Message != "" {
		m.setMessage(app, gen, resp.Message)
	}
	logging.Info().Str("app", app).Str("status", resp.Status).Msg("Install requested, polling health")

	m.wg.Add(1)
	go m.healthLoop(ctx, app, gen)
	return nil
}

// Uninstall requests removal of an app and starts the existence-poll
// loop that detects teardown completion.
func (m *Manager) Uninstall(ctx context.Context, app string) error {
	gen := m.beginOperation(app, models.AppDeleting, "Deleting...")

	resp, err := m.client.DeleteApp(ctx, app)
	if err != nil {
		m.failOperation(app, gen, "uninstall", fmt.Sprintf("Delete request failed: %v", err), "rejected")
		return fmt.Errorf("uninstall %s: %w", app, err)
	}

	if resp.Message != "" {
		m.setMessage(app, gen, resp.Message)
	}
	logging.Info().Str("app", app).Msg("Delete requested, polling existence")

	m.wg.Add(1)
	go m.existenceLoop(ctx, app, gen)
	return nil
}

// healthLoop polls the health endpoint until the app is ready or the
// attempt budget runs out. Individual request failures are transient
// blips that only consume budget.
func (m *Manager) healthLoop(ctx context.Context, app string, gen uuid.UUID) {
	defer m.wg.Done()

	for attempt := 1; attempt <= m.cfg.MaxAttempts; attempt++ {
		if !m.waitTick(ctx) {
			return
		}
		if !m.isCurrent(app, gen) {
			return
		}

		metrics.AppPollAttempts.WithLabelValues("install").Inc()
		health, err := m.client.AppHealth(ctx, app)
		if err != nil {
			logging.Debug().Err(err).Str("app", app).Int("attempt", attempt).Msg("Health poll failed")
			continue
		}
		if !health.Ready() {
			continue
		}

		if !m.endOperation(app, gen, models.AppInstalled, "Running") {
			return
		}
		m.refreshAfterOperation(ctx)
		metrics.AppOperations.WithLabelValues("install", "success").Inc()
		m.notifyResult(Notification{App: app, Success: true, Message: fmt.Sprintf("%s installed successfully", app)})
		return
	}

	m.failOperation(app, gen, "install", installTimeoutMessage(app), "timeout")
}

// existenceLoop polls the exists endpoint until the app's namespace is
// gone, then settles the app back at idle (available to install again).
func (m *Manager) existenceLoop(ctx context.Context, app string, gen uuid.UUID) {
	defer m.wg.Done()

	for attempt := 1; attempt <= m.cfg.MaxAttempts; attempt++ {
		if !m.waitTick(ctx) {
			return
		}
		if !m.isCurrent(app, gen) {
			return
		}

		metrics.AppPollAttempts.WithLabelValues("uninstall").Inc()
		exists, err := m.client.AppExists(ctx, app)
		if err != nil {
			logging.Debug().Err(err).Str("app", app).Int("attempt", attempt).Msg("Existence poll failed")
			continue
		}
		if exists.Exists {
			continue
		}

		if !m.endOperation(app, gen, models.AppIdle, "") {
			return
		}
		m.refreshAfterOperation(ctx)
		metrics.AppOperations.WithLabelValues("uninstall", "success").Inc()
		m.notifyResult(Notification{App: app, Success: true, Message: fmt.Sprintf("%s deleted successfully", app)})
		return
	}

	m.failOperation(app, gen, "uninstall", deleteTimeoutMessage(app), "timeout")
}

// waitTick sleeps one poll interval, returning false when the manager
// stopped or the context was canceled.
func (m *Manager) waitTick(ctx context.Context) bool {
	timer := time.NewTimer(m.cfg.PollInterval)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	case <-m.stopChan:
		return false
	}
}

// beginOperation records the start of an operation and returns the
// generation token owning it. Any previous loop for the app is retired
// by the generation change.
func (m *Manager) beginOperation(app string, phase models.AppPhase, message string) uuid.UUID {
	gen := uuid.New()
	m.mu.Lock()
	m.ops[app] = &operation{phase: phase, message: message, generation: gen}
	m.mu.Unlock()
	return gen
}

// isCurrent reports whether gen still owns the app's entry.
func (m *Manager) isCurrent(app string, gen uuid.UUID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	op, ok := m.ops[app]
	return ok && op.generation == gen
}

// setMessage updates the diagnostic text if gen still owns the entry.
func (m *Manager) setMessage(app string, gen uuid.UUID, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if op, ok := m.ops[app]; ok && op.generation == gen {
		op.message = message
	}
}

// endOperation transitions the app to a terminal phase if gen still owns
// the entry. Returns false when a newer operation superseded this loop.
func (m *Manager) endOperation(app string, gen uuid.UUID, phase models.AppPhase, message string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	op, ok := m.ops[app]
	if !ok || op.generation != gen {
		return false
	}
	op.phase = phase
	op.message = message
	return true
}

// failOperation records a terminal failure and emits the notification.
func (m *Manager) failOperation(app string, gen uuid.UUID, operationName, message, outcome string) {
	if !m.endOperation(app, gen, models.AppError, message) {
		return
	}
	metrics.AppOperations.WithLabelValues(operationName, outcome).Inc()
	logging.Warn().Str("app", app).Str("operation", operationName).Str("reason", message).Msg("App operation failed")
	m.notifyResult(Notification{App: app, Success: false, Message: message})
}

// refreshAfterOperation re-fetches the installed list once after a
// successful terminal transition.
func (m *Manager) refreshAfterOperation(ctx context.Context) {
	if err := m.RefreshInstalled(ctx); err != nil {
		logging.Warn().Err(err).Msg("Installed-list refresh after operation failed")
	}
}

// notifyResult delivers the outcome callback unless the manager stopped.
func (m *Manager) notifyResult(n Notification) {
	m.cbMu.RLock()
	fn := m.onNotify
	m.cbMu.RUnlock()
	if fn != nil {
		fn(n)
	}
}

// installTimeoutMessage distinguishes a poll-budget timeout from a
// backend rejection: the app may still come up out of band.
func installTimeoutMessage(app string) string {
	return fmt.Sprintf("Timed out waiting for %s to become healthy; the install may still be in progress on the backend", app)
}

func deleteTimeoutMessage(app string) string {
	return fmt.Sprintf("Timed out waiting for %s to be removed; the deletion may still be in progress on the backend", app)
}
