// Copyright (c) 2025 SQLPilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package registry keeps the in-memory list of backend-registered connections.
package registry

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"sqlpilot/cli/internal/logging"
	"sqlpilot/cli/internal/models"
)

// Store is the backend surface the registry needs.
type Store interface {
	ListConnections(ctx context.Context) ([]models.Connection, error)
	CreateConnection(ctx context.Context, spec models.ConnectionSpec) (models.Connection, error)
	GetConnection(ctx context.Context, id models.ConnectionID) (models.Connection, error)
	UpdateConnection(ctx context.Context, id models.ConnectionID, spec models.ConnectionSpec) (models.Connection, error)
	DeleteConnection(ctx context.Context, id models.ConnectionID) error
}

// Bootstrapper selects a connection only when none is active.
type Bootstrapper interface {
	SelectIfUnset(id models.ConnectionID) bool
}

// Registry mirrors the backend's connection list. Concurrent calls are not
// deduplicated; the last completed write wins.
type Registry struct {
	mu    sync.RWMutex
	conns []models.Connection

	store  Store
	boot   Bootstrapper
	logger *zap.Logger
}

// New creates an empty registry. boot may be nil to disable the first-load
// auto-selection.
func New(store Store, boot Bootstrapper, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{store: store, boot: boot, logger: logger.Named("registry")}
}

// List fetches all connections and replaces the in-memory list. When the
// result is non-empty and nothing is selected, the first connection becomes
// active.
func (r *Registry) List(ctx context.Context) ([]models.Connection, error) {
	conns, err := r.store.ListConnections(ctx)
	if err != nil {
		return nil, err
	}
	if conns == nil {
		conns = []models.Connection{}
	}

	r.mu.Lock()
	r.conns = conns
	r.mu.Unlock()
	r.logger.Debug("connections loaded", zap.Int("count", len(conns)))

	if len(conns) > 0 && r.boot != nil {
		if r.boot.SelectIfUnset(conns[0].ID) {
			r.logger.Info("auto-selected first connection", zap.String("connection_id", conns[0].ID.String()))
		}
	}
	return clone(conns), nil
}

// Create registers a new connection and appends the server's copy to the
// list without re-fetching. On failure the list is untouched.
func (r *Registry) Create(ctx context.Context, spec models.ConnectionSpec) (models.Connection, error) {
	if err := spec.Validate(); err != nil {
		return models.Connection{}, fmt.Errorf("invalid connection: %w", err)
	}
	c, err := r.store.CreateConnection(ctx, spec)
	if err != nil {
		return models.Connection{}, err
	}

	r.mu.Lock()
	r.conns = append(r.conns, c)
	r.mu.Unlock()
	r.logger.Info("connection created",
		zap.String("connection_id", c.ID.String()),
		zap.String("name", c.Name),
		zap.String("url", logging.Mask(c.ConnectionURL)))
	return c, nil
}

// Get fetches one connection and refreshes its in-memory entry if present.
func (r *Registry) Get(ctx context.Context, id models.ConnectionID) (models.Connection, error) {
	c, err := r.store.GetConnection(ctx, id)
	if err != nil {
		return models.Connection{}, err
	}
	r.replace(c)
	return c, nil
}

// Update replaces a connection's fields on the backend and in memory.
func (r *Registry) Update(ctx context.Context, id models.ConnectionID, spec models.ConnectionSpec) (models.Connection, error) {
	if err := spec.Validate(); err != nil {
		return models.Connection{}, fmt.Errorf("invalid connection: %w", err)
	}
	c, err := r.store.UpdateConnection(ctx, id, spec)
	if err != nil {
		return models.Connection{}, err
	}
	if c.ID.IsZero() {
		c.ID = id
	}
	r.replace(c)
	return c, nil
}

// Delete removes a connection. The active selection is left alone even if
// it names the deleted id.
func (r *Registry) Delete(ctx context.Context, id models.ConnectionID) error {
	if err := r.store.DeleteConnection(ctx, id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.conns[:0:0]
	for _, c := range r.conns {
		if c.ID != id {
			out = append(out, c)
		}
	}
	r.conns = out
	r.logger.Info("connection deleted", zap.String("connection_id", id.String()))
	return nil
}

// Connections returns a copy of the in-memory list.
func (r *Registry) Connections() []models.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return clone(r.conns)
}

// Lookup finds a connection in memory without I/O.
func (r *Registry) Lookup(id models.ConnectionID) (models.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.conns {
		if c.ID == id {
			return c, true
		}
	}
	return models.Connection{}, false
}

func (r *Registry) replace(c models.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.conns {
		if r.conns[i].ID == c.ID {
			r.conns[i] = c
			return
		}
	}
}

func clone(in []models.Connection) []models.Connection {
	out := make([]models.Connection, len(in))
	copy(out, in)
	return out
}
