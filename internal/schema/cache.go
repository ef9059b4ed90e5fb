// Copyright (c) 2025 SQLPilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package schema caches table and column descriptors per connection.
//
// An id with no entry has not been fetched yet. An id with an empty entry was
// fetched and either has no tables or failed to load; the two are not told apart.
package schema

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apperrors "sqlpilot/cli/internal/errors"
	"sqlpilot/cli/internal/events"
	"sqlpilot/cli/internal/models"
)

// Fetcher loads a schema from the backend. Implementations must not surface
// failures to the user.
type Fetcher interface {
	GetSchema(ctx context.Context, id models.ConnectionID) (models.Schema, error)
}

// maxParallelRefresh bounds RefreshAll.
const maxParallelRefresh = 4

// Cache maps connection ids to their last loaded schema.
type Cache struct {
	mu      sync.RWMutex
	entries map[models.ConnectionID]models.Schema

	fetcher Fetcher
	logger  *zap.Logger
}

// NewCache creates an empty cache backed by f.
func NewCache(f Fetcher, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		entries: make(map[models.ConnectionID]models.Schema),
		fetcher: f,
		logger:  logger.Named("schema"),
	}
}

func (c *Cache) load(ctx context.Context, id models.ConnectionID) (models.Schema, error) {
	s, err := c.fetcher.GetSchema(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = models.Schema{}
	}
	return s, nil
}

// Refresh loads the schema for id and stores it under id. A failed load
// stores an empty schema; the error is logged and not returned.
func (c *Cache) Refresh(ctx context.Context, id models.ConnectionID) {
	s, err := c.load(ctx, id)
	if err != nil {
		fields := []zap.Field{zap.String("connection_id", id.String()), zap.Error(err)}
		if apperrors.IsCanceled(err) {
			c.logger.Debug("schema refresh canceled", fields...)
		} else {
			c.logger.Warn("schema refresh failed", fields...)
		}
		s = models.Schema{}
	} else {
		c.logger.Debug("schema refreshed", zap.String("connection_id", id.String()), zap.Int("tables", len(s)))
	}
	c.store(id, s)
}

func (c *Cache) store(id models.ConnectionID, s models.Schema) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = s
}

// Get returns the cached schema for id. ok is false when id was never
// refreshed. Get performs no I/O.
func (c *Cache) Get(id models.ConnectionID) (s models.Schema, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok = c.entries[id]
	return s, ok
}

// HandleSelection refreshes the schema of the connection named by a
// SelectionChanged event. Other events are ignored.
func (c *Cache) HandleSelection(ctx context.Context, ev events.Event) {
	sc, ok := ev.(events.SelectionChanged)
	if !ok {
		return
	}
	c.Refresh(ctx, sc.ID)
}

// RefreshAll refreshes every id concurrently and returns when all are done.
func (c *Cache) RefreshAll(ctx context.Context, ids []models.ConnectionID) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelRefresh)
	for _, id := range ids {
		g.Go(func() error {
			c.Refresh(gctx, id)
			return nil
		})
	}
	_ = g.Wait()
}
