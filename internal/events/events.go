// Copyright (c) 2025 SQLPilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package events carries in-process notifications between workbench components.
// Components that react to a state change subscribe to a typed event instead of
// being called directly by the component that changed it.
package events

import (
	"sqlpilot/cli/internal/models"
)

// EventType enumerates known event kinds.
type EventType string

const (
	// EventSelectionChanged is published each time a connection is selected,
	// including re-selection of the already active connection.
	EventSelectionChanged EventType = "selection_changed"
)

// Event is implemented by every message published on a Bus.
type Event interface {
	Type() EventType
}

// SelectionChanged reports the connection id that was just made active.
// Handlers must act on ID and never re-read the active selection.
type SelectionChanged struct {
	ID models.ConnectionID
}

// Type implements Event.
func (SelectionChanged) Type() EventType { return EventSelectionChanged }
