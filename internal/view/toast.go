// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

package view

import (
	"sync"
	"time"
)

// ToastKind distinguishes success from failure toasts.
type ToastKind string

// Toast kinds.
const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast is a transient one-shot notification.
type Toast struct {
	Kind    ToastKind
	Message string
}

// key identifies a toast for replacement purposes.
func (t Toast) key() string { return string(t.Kind) + "|" + t.Message }

// RenderToast renders a toast as a single styled line.
func RenderToast(t Toast) string {
	if t.Kind == ToastError {
		return failedStyle.Render("✗ " + t.Message)
	}
	return healthyStyle.Render("✓ " + t.Message)
}

// ToastManager holds at most one visible toast. A new toast replaces
// the current one (no queue); each toast auto-dismisses after the
// configured duration. Showing an identical toast restarts its timer.
type ToastManager struct {
	duration time.Duration

	mu       sync.Mutex
	current  *Toast
	timer    *time.Timer
	stopped  bool
	onChange func(*Toast)
}

// NewToastManager creates a manager with the given auto-dismiss
// duration (default 5s when zero).
func NewToastManager(duration time.Duration) *ToastManager {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return &ToastManager{duration: duration}
}

// SetOnChange registers a callback fired with the new current toast
// (nil on dismissal). Runs on the caller's or the timer's goroutine.
func (tm *ToastManager) SetOnChange(fn func(*Toast)) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.onChange = fn
}

// Show displays a toast, replacing any currently visible one and
// restarting the dismiss timer.
func (tm *ToastManager) Show(t Toast) {
	tm.mu.Lock()
	if tm.stopped {
		tm.mu.Unlock()
		return
	}

	if tm.timer != nil {
		tm.timer.Stop()
	}
	shown := t
	tm.current = &shown
	key := shown.key()
	tm.timer = time.AfterFunc(tm.duration, func() { tm.dismiss(key) })
	fn := tm.onChange
	tm.mu.Unlock()

	if fn != nil {
		fn(&shown)
	}
}

// Current returns a copy of the visible toast, or nil when none is
// shown.
func (tm *ToastManager) Current() *Toast {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tm.current == nil {
		return nil
	}
	cur := *tm.current
	return &cur
}

// Stop cancels the dismiss timer and clears the toast. Further Show
// calls are ignored.
func (tm *ToastManager) Stop() {
	tm.mu.Lock()
	tm.stopped = true
	if tm.timer != nil {
		tm.timer.Stop()
		tm.timer = nil
	}
	tm.current = nil
	tm.mu.Unlock()
}

// dismiss clears the toast if it is still the one the timer was armed
// for; a toast shown after the timer fired must not be cleared by the
// stale timer.
func (tm *ToastManager) dismiss(key string) {
	tm.mu.Lock()
	if tm.stopped || tm.current == nil || tm.current.key() != key {
		tm.mu.Unlock()
		return
	}
	tm.current = nil
	fn := tm.onChange
	tm.mu.Unlock()

	if fn != nil {
		fn(nil)
	}
}
