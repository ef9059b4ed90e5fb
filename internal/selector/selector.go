// Package selector owns the active connection id for a workbench session.
package selector

import (
	"sync"

	"go.uber.org/zap"

	"sqlpilot/cli/internal/events"
	"sqlpilot/cli/internal/models"
)

// Publisher is the part of the event bus the selector needs.
type Publisher interface {
	Publish(ev events.Event)
}

// Selector holds the currently active connection id. It starts empty and
// there is no deselect.
//
// The selector does not check the id against the registry. A stale id is
// published like any other and its schema refresh degrades to an empty entry.
type Selector struct {
	mu     sync.RWMutex
	active models.ConnectionID
	set    bool

	pub    Publisher
	logger *zap.Logger
}

// New creates a selector publishing selection changes to pub.
func New(pub Publisher, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{pub: pub, logger: logger.Named("selector")}
}

// Select makes id active and publishes SelectionChanged. Selecting the
// already active id publishes again. Select returns once the id is stored;
// it does not wait for subscribers.
func (s *Selector) Select(id models.ConnectionID) {
	s.mu.Lock()
	s.active = id
	s.set = true
	s.mu.Unlock()

	s.logger.Debug("connection selected", zap.String("connection_id", id.String()))
	s.pub.Publish(events.SelectionChanged{ID: id})
}

// SelectIfUnset selects id only when nothing is active yet and reports
// whether it did. Used for the registry's first-load bootstrap.
func (s *Selector) SelectIfUnset(id models.ConnectionID) bool {
	s.mu.Lock()
	if s.set {
		s.mu.Unlock()
		return false
	}
	s.active = id
	s.set = true
	s.mu.Unlock()

	s.logger.Debug("connection auto-selected", zap.String("connection_id", id.String()))
	s.pub.Publish(events.SelectionChanged{ID: id})
	return true
}

// Active returns the active id and whether one is set.
func (s *Selector) Active() (models.ConnectionID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active, s.set
}
