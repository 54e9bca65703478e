// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/thejerf/suture/v4"

	"github.com/kubarr/console/internal/bootstrap"
	"github.com/kubarr/console/internal/lifecycle"
	"github.com/kubarr/console/internal/logging"
)

// SynchronizerService adapts the bootstrap synchronizer to the
// suture.Service interface. The synchronizer manages its own goroutines;
// Serve starts it and blocks until the context is canceled.
type SynchronizerService struct {
	sync *bootstrap.Synchronizer
}

// NewSynchronizerService wraps a bootstrap synchronizer as a service.
func NewSynchronizerService(sync *bootstrap.Synchronizer) *SynchronizerService {
	return &SynchronizerService{sync: sync}
}

// Serve implements suture.Service.
func (s *SynchronizerService) Serve(ctx context.Context) error {
	logging.Info().Msg("Starting bootstrap synchronizer service")

	if err := s.sync.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	s.sync.Stop()
	logging.Info().Msg("Bootstrap synchronizer service stopped")
	return ctx.Err()
}

// InstalledRefreshService periodically refreshes the installed-apps
// list so StatusOf resolves correctly for apps with no recorded
// operation.
type InstalledRefreshService struct {
	manager  *lifecycle.Manager
	interval time.Duration
}

// NewInstalledRefreshService creates a refresher with the given
// interval (default 30s when zero).
func NewInstalledRefreshService(manager *lifecycle.Manager, interval time.Duration) *InstalledRefreshService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &InstalledRefreshService{manager: manager, interval: interval}
}

// Serve implements suture.Service. Refreshes immediately, then on every
// tick. Refresh failures are logged and retried on the next tick.
func (s *InstalledRefreshService) Serve(ctx context.Context) error {
	if err := s.manager.RefreshInstalled(ctx); err != nil {
		logging.Warn().Err(err).Msg("Initial installed-apps refresh failed")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.manager.RefreshInstalled(ctx); err != nil {
				logging.Warn().Err(err).Msg("Installed-apps refresh failed")
			}
		}
	}
}

// MetricsServerService serves the Prometheus /metrics endpoint.
type MetricsServerService struct {
	addr string
}

// NewMetricsServerService creates a metrics listener on the given
// address.
func NewMetricsServerService(addr string) *MetricsServerService {
	return &MetricsServerService{addr: addr}
}

// Serve implements suture.Service. Blocks until the context is canceled
// or the listener fails.
func (s *MetricsServerService) Serve(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.addr).Msg("Metrics listener started")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Msg("Metrics listener shutdown failed")
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return suture.ErrDoNotRestart
		}
		return err
	}
}
