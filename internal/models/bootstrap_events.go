// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

package models

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Event type tags pushed on the bootstrap WebSocket channel.
const (
	EventTypeInitialStatus      = "initial_status"
	EventTypeComponentStarted   = "component_started"
	EventTypeComponentProgress  = "component_progress"
	EventTypeComponentCompleted = "component_completed"
	EventTypeComponentFailed    = "component_failed"
	EventTypeDatabaseConnected  = "database_connected"
	EventTypeBootstrapComplete  = "bootstrap_complete"
)

// BootstrapEvent is one message from the bootstrap push channel, decoded
// into a variant that carries only the fields its kind actually produces.
// The wire format is a single JSON object switched on a "type" tag.
type BootstrapEvent interface {
	// EventType returns the wire tag of the event.
	EventType() string
}

// InitialStatusEvent carries the full component snapshot sent on connect.
// It replaces the entire component list.
type InitialStatusEvent struct {
	Components []ComponentStatus
	Complete   bool
	Started    bool
}

// ComponentStartedEvent marks a component as installing.
type ComponentStartedEvent struct {
	Component string
	Message   string
}

// ComponentProgressEvent carries progress text for an installing component.
type ComponentProgressEvent struct {
	Component string
	Message   string
}

// ComponentCompletedEvent marks a component as healthy.
type ComponentCompletedEvent struct {
	Component string
	Message   string
}

// ComponentFailedEvent marks a component as failed with a failure detail.
type ComponentFailedEvent struct {
	Component string
	Message   string
	Error     string
}

// DatabaseConnectedEvent signals that the orchestrator reached its
// database mid-bootstrap. The backend emits it before any component
// events; the synchronizer treats it as a run-started signal only.
type DatabaseConnectedEvent struct {
	Message string
}

// BootstrapCompleteEvent signals the whole run finished.
type BootstrapCompleteEvent struct {
	Message string
}

// EventType implements BootstrapEvent.
func (InitialStatusEvent) EventType() string      { return EventTypeInitialStatus }
func (ComponentStartedEvent) EventType() string   { return EventTypeComponentStarted }
func (ComponentProgressEvent) EventType() string  { return EventTypeComponentProgress }
func (ComponentCompletedEvent) EventType() string { return EventTypeComponentCompleted }
func (ComponentFailedEvent) EventType() string    { return EventTypeComponentFailed }
func (DatabaseConnectedEvent) EventType() string  { return EventTypeDatabaseConnected }
func (BootstrapCompleteEvent) EventType() string  { return EventTypeBootstrapComplete }

// DecodeError reports an undecodable or unrecognized push message.
// The synchronizer logs and drops such messages without closing the
// channel; a single bad message must never disrupt the stream.
type DecodeError struct {
	Type string // wire tag, empty when the envelope itself failed to parse
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("decode bootstrap event %q: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("decode bootstrap event: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// eventEnvelope is the optional-everything wire shape. It exists only
// inside the decoder; handlers see typed variants.
type eventEnvelope struct {
	Type       string            `json:"type"`
	Component  string            `json:"component"`
	Message    string            `json:"message"`
	Error      string            `json:"error"`
	Components []ComponentStatus `json:"components"`
	Complete   bool              `json:"complete"`
	Started    bool              `json:"started"`
}

// DecodeBootstrapEvent decodes one push-channel message into its typed
// variant. It is the single decode boundary for the channel: any failure
// comes back as a *DecodeError and the raw bytes go no further.
func DecodeBootstrapEvent(data []byte) (BootstrapEvent, error) {
	var env eventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &DecodeError{Err: err}
	}

	switch env.Type {
	case EventTypeInitialStatus:
		return InitialStatusEvent{
			Components: env.Components,
			Complete:   env.Complete,
			Started:    env.Started,
		}, nil
	case EventTypeComponentStarted:
		if env.Component == "" {
			return nil, &DecodeError{Type: env.Type, Err: errMissingComponent}
		}
		return ComponentStartedEvent{Component: env.Component, Message: env.Message}, nil
	case EventTypeComponentProgress:
		if env.Component == "" {
			return nil, &DecodeError{Type: env.Type, Err: errMissingComponent}
		}
		return ComponentProgressEvent{Component: env.Component, Message: env.Message}, nil
	case EventTypeComponentCompleted:
		if env.Component == "" {
			return nil, &DecodeError{Type: env.Type, Err: errMissingComponent}
		}
		return ComponentCompletedEvent{Component: env.Component, Message: env.Message}, nil
	case EventTypeComponentFailed:
		if env.Component == "" {
			return nil, &DecodeError{Type: env.Type, Err: errMissingComponent}
		}
		return ComponentFailedEvent{Component: env.Component, Message: env.Message, Error: env.Error}, nil
	case EventTypeDatabaseConnected:
		return DatabaseConnectedEvent{Message: env.Message}, nil
	case EventTypeBootstrapComplete:
		return BootstrapCompleteEvent{Message: env.Message}, nil
	case "":
		return nil, &DecodeError{Err: errMissingType}
	default:
		return nil, &DecodeError{Type: env.Type, Err: errUnknownType}
	}
}

var (
	errMissingType      = fmt.Errorf("missing type tag")
	errMissingComponent = fmt.Errorf("missing component id")
	errUnknownType      = fmt.Errorf("unknown event type")
)
