// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

// Command console is the Kubarr orchestration console. It tracks the
// bootstrap run over a WebSocket push channel (falling back to HTTP
// polling), drives app install/uninstall operations, and renders live
// status badges and result toasts to the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kubarr/console/internal/api"
	"github.com/kubarr/console/internal/bootstrap"
	"github.com/kubarr/console/internal/config"
	"github.com/kubarr/console/internal/lifecycle"
	"github.com/kubarr/console/internal/logging"
	"github.com/kubarr/console/internal/models"
	"github.com/kubarr/console/internal/supervisor"
	"github.com/kubarr/console/internal/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().
		Str("backend", cfg.Backend.URL).
		Str("namespace", cfg.Apps.Namespace).
		Msg("Starting Kubarr console")

	client := api.NewBreakerClient(api.NewHTTPClient(cfg.Backend.URL, cfg.Backend.Token, cfg.Backend.Timeout))

	synchronizer := bootstrap.NewSynchronizer(client, bootstrap.Config{
		PollInterval:      cfg.Bootstrap.PollInterval,
		ReconnectMinDelay: cfg.Bootstrap.ReconnectMinDelay,
		ReconnectMaxDelay: cfg.Bootstrap.ReconnectMaxDelay,
	})

	manager := lifecycle.NewManager(client, lifecycle.Config{
		PollInterval: cfg.Apps.PollInterval,
		MaxAttempts:  cfg.Apps.MaxAttempts,
		Namespace:    cfg.Apps.Namespace,
	})
	defer manager.Stop()

	toasts := view.NewToastManager(cfg.Console.ToastDuration)
	defer toasts.Stop()

	// Refresh the terminal panel on every state transition; the render
	// goroutine coalesces bursts into single repaints.
	repaint := make(chan struct{}, 1)
	requestRepaint := func() {
		select {
		case repaint <- struct{}{}:
		default:
		}
	}

	synchronizer.SetOnChange(func(models.BootstrapRunState) { requestRepaint() })
	toasts.SetOnChange(func(*view.Toast) { requestRepaint() })
	manager.SetOnNotify(func(n lifecycle.Notification) {
		kind := view.ToastSuccess
		if !n.Success {
			kind = view.ToastError
		}
		toasts.Show(view.Toast{Kind: kind, Message: n.Message})
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go renderLoop(ctx, synchronizer, toasts, repaint)

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddSyncService(supervisor.NewSynchronizerService(synchronizer))
	tree.AddSyncService(supervisor.NewInstalledRefreshService(manager, 0))
	if cfg.Metrics.Enabled {
		tree.AddObservabilityService(supervisor.NewMetricsServerService(cfg.Metrics.ListenAddr))
	}

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree exited with error")
		os.Exit(1)
	}

	logging.Info().Msg("Kubarr console stopped")
}

// renderLoop repaints the status panel whenever state changes.
func renderLoop(ctx context.Context, sync *bootstrap.Synchronizer, toasts *view.ToastManager, repaint <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-repaint:
		}

		out := view.RenderRun(sync.State())
		if toast := toasts.Current(); toast != nil {
			out += "\n" + view.RenderToast(*toast) + "\n"
		}
		fmt.Fprint(os.Stdout, "\033[2J\033[H"+out)
	}
}
