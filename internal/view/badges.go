// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kubarr/console/internal/models"
)

// Badge styles. Colors follow the dashboard palette: green for healthy,
// yellow for in-flight, red for failures, dim for idle/pending.
var (
	pendingStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	installingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	healthyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	modeStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	headerStyle     = lipgloss.NewStyle().Bold(true)
)

// Badge renders one bootstrap component as a status line.
func Badge(c models.ComponentStatus) string {
	var style lipgloss.Style
	var marker string

	switch c.Status {
	case models.ComponentInstalling:
		style, marker = installingStyle, "…"
	case models.ComponentHealthy:
		style, marker = healthyStyle, "✓"
	case models.ComponentFailed:
		style, marker = failedStyle, "✗"
	default:
		style, marker = pendingStyle, "·"
	}

	text := fmt.Sprintf("%s %-16s %s", marker, c.Component, string(c.Status))
	if c.Status == models.ComponentFailed && c.Error != "" {
		text += " (" + c.Error + ")"
	} else if c.Message != "" {
		text += " — " + c.Message
	}
	return style.Render(text)
}

// AppBadge renders one app's lifecycle state as a status line.
func AppBadge(s models.AppOperationState) string {
	var style lipgloss.Style
	switch s.Phase {
	case models.AppInstalling, models.AppDeleting:
		style = installingStyle
	case models.AppInstalled:
		style = healthyStyle
	case models.AppError:
		style = failedStyle
	default:
		style = pendingStyle
	}

	text := fmt.Sprintf("%-16s %s", s.App, string(s.Phase))
	if s.Message != "" {
		text += " — " + s.Message
	}
	return style.Render(text)
}

// RenderRun renders the whole bootstrap panel: connection mode header
// plus one badge per component in snapshot arrival order.
func RenderRun(run models.BootstrapRunState) string {
	var b strings.Builder

	header := "System Bootstrap"
	switch {
	case run.Complete:
		header += " — complete"
	case run.Started:
		header += " — in progress"
	default:
		header += " — waiting"
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("  ")
	b.WriteString(modeStyle.Render("[" + string(run.Mode) + "]"))
	b.WriteString("\n")

	for i := range run.Components {
		b.WriteString("  ")
		b.WriteString(Badge(run.Components[i]))
		b.WriteString("\n")
	}
	return b.String()
}
