// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the console.
type Config struct {
	Backend   BackendConfig   `koanf:"backend"`
	Bootstrap BootstrapConfig `koanf:"bootstrap"`
	Apps      AppsConfig      `koanf:"apps"`
	Console   ConsoleConfig   `koanf:"console"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// BackendConfig points the console at the orchestration API.
type BackendConfig struct {
	URL     string        `koanf:"url" validate:"required,url"`
	Token   string        `koanf:"token"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// BootstrapConfig tunes the bootstrap status synchronizer.
type BootstrapConfig struct {
	PollInterval      time.Duration `koanf:"poll_interval" validate:"gt=0"`
	ReconnectMinDelay time.Duration `koanf:"reconnect_min_delay" validate:"gt=0"`
	ReconnectMaxDelay time.Duration `koanf:"reconnect_max_delay" validate:"gtefield=ReconnectMinDelay"`
}

// AppsConfig tunes the app lifecycle poller.
type AppsConfig struct {
	PollInterval time.Duration `koanf:"poll_interval" validate:"gt=0"`
	MaxAttempts  int           `koanf:"max_attempts" validate:"gt=0"`
	Namespace    string        `koanf:"namespace" validate:"required"`
}

// ConsoleConfig tunes presentation behavior.
type ConsoleConfig struct {
	ToastDuration time.Duration `koanf:"toast_duration" validate:"gt=0"`
}

// MetricsConfig controls the Prometheus listener.
type MetricsConfig struct {
	Enabled    bool   `koanf:"enabled"`
	ListenAddr string `koanf:"listen_addr" validate:"required_if=Enabled true"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for consistency. It returns the
// first violation found.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: field %s fails %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
