// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/kubarr/console.yaml",
	"/etc/kubarr/console.yml",
}

// ConfigPathEnvVar overrides the config file search entirely.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all defaults applied. These are
// loaded first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:     "http://localhost:8080",
			Token:   "",
			Timeout: 30 * time.Second,
		},
		Bootstrap: BootstrapConfig{
			PollInterval:      2 * time.Second,
			ReconnectMinDelay: 1 * time.Second,
			ReconnectMaxDelay: 32 * time.Second,
		},
		Apps: AppsConfig{
			PollInterval: 2 * time.Second,
			MaxAttempts:  60,
			Namespace:    "kubarr",
		},
		Console: ConsoleConfig{
			ToastDuration: 5 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: "127.0.0.1:9823",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration from layered sources:
//  1. Defaults
//  2. Optional YAML config file
//  3. Environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file, or empty when
// none is present.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps KUBARR_* environment variables to koanf config
// paths. Unmapped keys are skipped so stray environment variables do not
// pollute the configuration.
//
// Examples:
//   - KUBARR_BACKEND_URL -> backend.url
//   - KUBARR_APPS_NAMESPACE -> apps.namespace
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		"kubarr_backend_url":     "backend.url",
		"kubarr_backend_token":   "backend.token",
		"kubarr_backend_timeout": "backend.timeout",

		"kubarr_bootstrap_poll_interval":       "bootstrap.poll_interval",
		"kubarr_bootstrap_reconnect_min_delay": "bootstrap.reconnect_min_delay",
		"kubarr_bootstrap_reconnect_max_delay": "bootstrap.reconnect_max_delay",

		"kubarr_apps_poll_interval": "apps.poll_interval",
		"kubarr_apps_max_attempts":  "apps.max_attempts",
		"kubarr_apps_namespace":     "apps.namespace",

		"kubarr_toast_duration": "console.toast_duration",

		"kubarr_metrics_enabled":     "metrics.enabled",
		"kubarr_metrics_listen_addr": "metrics.listen_addr",

		"kubarr_log_level":  "logging.level",
		"kubarr_log_format": "logging.format",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
