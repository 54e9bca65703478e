// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

// Package config loads and validates console configuration from layered
// sources: built-in defaults, an optional YAML file, and KUBARR_*
// environment variables, with later layers overriding earlier ones.
package config
