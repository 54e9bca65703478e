// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

package bootstrap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kubarr/console/internal/api"
	"github.com/kubarr/console/internal/logging"
	"github.com/kubarr/console/internal/metrics"
	"github.com/kubarr/console/internal/models"
)

// Config holds synchronizer tuning. Zero values take the defaults below.
type Config struct {
	// PollInterval is the fallback snapshot fetch interval.
	// Default: 2s
	PollInterval time.Duration

	// ReconnectMinDelay is the initial reconnect backoff delay.
	// Default: 1s
	ReconnectMinDelay time.Duration

	// ReconnectMaxDelay caps the reconnect backoff.
	// Default: 32s
	ReconnectMaxDelay time.Duration

	// HandshakeTimeout bounds the WebSocket dial.
	// Default: 10s
	HandshakeTimeout time.Duration

	// ReadTimeout bounds a single WebSocket read.
	// Default: 60s
	ReadTimeout time.Duration
}

// withDefaults fills zero fields with production defaults.
func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.ReconnectMinDelay <= 0 {
		c.ReconnectMinDelay = 1 * time.Second
	}
	if c.ReconnectMaxDelay <= 0 {
		c.ReconnectMaxDelay = 32 * time.Second
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 60 * time.Second
	}
	return c
}

// Synchronizer tracks bootstrap progress through a WebSocket push channel
// with an HTTP-polling fallback.
//
// Connection-mode state machine:
//
//	disconnected -> websocket  on successful dial
//	websocket    -> polling    immediately on channel close or error
//	polling      -> websocket  on successful redial
//
// Exactly one update source is active at any instant: while the channel
// is healthy the poll ticker is suppressed, and while it is down the
// periodic snapshot fetch is the sole source of state. Reconnection uses
// exponential backoff (doubling from ReconnectMinDelay up to
// ReconnectMaxDelay, reset on any successful dial) and never gives up;
// the polling fallback keeps the status view live regardless.
type Synchronizer struct {
	client api.Client
	cfg    Config

	stateMu sync.RWMutex
	state   models.BootstrapRunState

	connMu sync.RWMutex
	conn   *websocket.Conn

	runMu    sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup

	cbMu     sync.RWMutex
	onChange func(models.BootstrapRunState)

	// waitFn blocks for d or until cancellation, returning false when
	// canceled. Replaced in tests to observe backoff delays.
	waitFn func(ctx context.Context, stop <-chan struct{}, d time.Duration) bool
}

// NewSynchronizer creates a synchronizer over the given orchestration
// API client. Call Start to begin tracking.
func NewSynchronizer(client api.Client, cfg Config) *Synchronizer {
	return &Synchronizer{
		client: client,
		cfg:    cfg.withDefaults(),
		state: models.BootstrapRunState{
			Mode: models.ModeDisconnected,
		},
		waitFn: waitCancellable,
	}
}

// SetOnChange registers a callback invoked with a state copy after every
// change. The callback runs on synchronizer goroutines and must not
// block.
func (s *Synchronizer) SetOnChange(fn func(models.BootstrapRunState)) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.onChange = fn
}

// State returns a copy of the current run state.
func (s *Synchronizer) State() models.BootstrapRunState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state.Clone()
}

// Mode returns the current connection mode.
func (s *Synchronizer) Mode() models.ConnectionMode {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state.Mode
}

// Start begins tracking. Idempotent: a second call while running is a
// no-op. The first dial happens immediately; until it succeeds the
// polling fallback feeds the state so the view is never blank.
func (s *Synchronizer) Start(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.running {
		return nil
	}
	s.running = true
	s.stopChan = make(chan struct{})

	logging.Info().Dur("poll_interval", s.cfg.PollInterval).Msg("Bootstrap synchronizer starting")

	s.wg.Add(2)
	go s.listen(ctx, s.stopChan)
	go s.pollLoop(ctx, s.stopChan)

	return nil
}

// Stop tears down the channel and all timers and waits for the
// synchronizer goroutines to finish. After Stop returns, no further
// state mutation from this instance is possible. Idempotent.
func (s *Synchronizer) Stop() {
	s.runMu.Lock()
	if !s.running {
		s.runMu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.runMu.Unlock()

	s.closeConnection()
	s.wg.Wait()
	logging.Info().Msg("Bootstrap synchronizer stopped")
}

// listen owns the WebSocket side: dial, read, reconnect with backoff.
// Dial failures and read errors drop the synchronizer into polling mode
// immediately; the next successful dial switches it back.
func (s *Synchronizer) listen(ctx context.Context, stop <-chan struct{}) {
	defer s.wg.Done()

	delay := s.cfg.ReconnectMinDelay
	firstAttempt := true

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		default:
		}

		conn := s.currentConn()
		if conn == nil {
			if !firstAttempt {
				if !s.waitFn(ctx, stop, delay) {
					return
				}
				delay = nextDelay(delay, s.cfg.ReconnectMaxDelay)
			}
			firstAttempt = false

			if err := s.connect(ctx); err != nil {
				metrics.BootstrapReconnects.WithLabelValues("failure").Inc()
				logging.Warn().Err(err).Msg("Bootstrap channel dial failed, falling back to polling")
				s.setMode(models.ModePolling)
				continue
			}

			metrics.BootstrapReconnects.WithLabelValues("success").Inc()
			delay = s.cfg.ReconnectMinDelay
			s.setMode(models.ModeWebSocket)
			continue
		}

		if err := conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
			logging.Debug().Err(err).Msg("Failed to set read deadline")
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || isClosed(stop) {
				return
			}
			logging.Warn().Err(err).Msg("Bootstrap channel read error, falling back to polling")
			s.closeConnection()
			s.setMode(models.ModePolling)
			continue
		}

		s.handleMessage(message)
	}
}

// connect dials the bootstrap push channel.
func (s *Synchronizer) connect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn != nil {
		return nil
	}

	wsURL, err := s.client.BootstrapWebSocketURL()
	if err != nil {
		return fmt.Errorf("bootstrap websocket url: %w", err)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout:  s.cfg.HandshakeTimeout,
		EnableCompression: true,
	}

	conn, resp, err := dialer.DialContext(ctx, wsURL, nil)
	if resp != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if err != nil {
		if resp != nil {
			return fmt.Errorf("websocket dial failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("websocket dial: %w", err)
	}

	s.conn = conn
	logging.Info().Msg("Bootstrap channel connected")
	return nil
}

// handleMessage decodes one push message and applies it. Undecodable
// messages are logged, counted, and dropped; they never close the
// channel or disturb pending state.
func (s *Synchronizer) handleMessage(data []byte) {
	ev, err := models.DecodeBootstrapEvent(data)
	if err != nil {
		metrics.BootstrapEventsDropped.Inc()
		logging.Warn().Err(err).Msg("Dropping malformed bootstrap message")
		return
	}

	metrics.BootstrapEventsReceived.WithLabelValues(ev.EventType()).Inc()
	s.applyEvent(ev)
}

// pollLoop owns the HTTP fallback. Ticks are skipped while the channel
// is the active source; mode gating keeps the two sources mutually
// exclusive.
func (s *Synchronizer) pollLoop(ctx context.Context, stop <-chan struct{}) {
	defer s.wg.Done()

	// Immediate first poll so the view has state while the first dial
	// settles.
	if s.Mode() != models.ModeWebSocket {
		s.pollOnce(ctx, stop)
	}

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if s.Mode() == models.ModeWebSocket {
				continue
			}
			s.pollOnce(ctx, stop)
		}
	}
}

// pollOnce fetches one snapshot and applies it, unless the channel took
// over or the synchronizer stopped while the fetch was in flight.
func (s *Synchronizer) pollOnce(ctx context.Context, stop <-chan struct{}) {
	snap, err := s.client.BootstrapStatus(ctx)
	if err != nil {
		metrics.BootstrapPolls.WithLabelValues("error").Inc()
		logging.Debug().Err(err).Msg("Bootstrap status poll failed")
		return
	}
	metrics.BootstrapPolls.WithLabelValues("success").Inc()

	if isClosed(stop) || s.Mode() == models.ModeWebSocket {
		return
	}
	s.applySnapshot(snap)
}

// currentConn returns the connection handle, or nil when disconnected.
func (s *Synchronizer) currentConn() *websocket.Conn {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	return s.conn
}

// closeConnection closes the WebSocket connection if open.
func (s *Synchronizer) closeConnection() {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil {
		return
	}
	if err := s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(1*time.Second),
	); err != nil {
		logging.Debug().Err(err).Msg("Failed to send close message")
	}
	if err := s.conn.Close(); err != nil {
		logging.Debug().Err(err).Msg("Failed to close bootstrap channel")
	}
	s.conn = nil
}

// nextDelay doubles the backoff delay up to the cap.
func nextDelay(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max {
		return max
	}
	return next
}

// waitCancellable blocks for d, returning false if canceled first.
func waitCancellable(ctx context.Context, stop <-chan struct{}, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	case <-stop:
		return false
	}
}

// isClosed reports whether the stop channel is closed without blocking.
func isClosed(stop <-chan struct{}) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}
