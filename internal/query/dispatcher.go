// Copyright (c) 2025 SQLPilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package query routes query requests to the matching backend endpoint.
// Each call issues exactly one request; nothing is queued, retried or
// deduplicated.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sqlpilot/cli/internal/logging"
	"sqlpilot/cli/internal/models"
)

// ErrNoActiveConnection is returned by the *Active helpers when nothing is selected.
var ErrNoActiveConnection = errors.New("no active connection; select one first")

// Executor is the backend surface the dispatcher needs.
type Executor interface {
	ExecuteSQL(ctx context.Context, id models.ConnectionID, sql string) (*models.QueryResult, error)
	ExecuteNaturalLanguage(ctx context.Context, id models.ConnectionID, question string) (*models.QueryResult, error)
	Export(ctx context.Context, id models.ConnectionID, sql string, format models.ExportFormat) (*models.ExportPayload, error)
}

// ActiveSource reports the active connection.
type ActiveSource interface {
	Active() (models.ConnectionID, bool)
}

// Dispatcher executes queries against a backend.
type Dispatcher struct {
	exec   Executor
	active ActiveSource
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher. active may be nil when the *Active
// helpers are not used.
func NewDispatcher(exec Executor, active ActiveSource, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{exec: exec, active: active, logger: logger.Named("query")}
}

// Execute runs req against the connection id. Literal SQL goes to the SQL
// endpoint and NaturalLanguage to the natural-language endpoint; the text is
// sent unmodified.
func (d *Dispatcher) Execute(ctx context.Context, id models.ConnectionID, req models.QueryRequest) (*models.QueryResult, error) {
	start := time.Now()
	var (
		res  *models.QueryResult
		err  error
		kind string
	)
	switch r := req.(type) {
	case models.Literal:
		kind = "sql"
		d.logger.Debug("executing sql", zap.String("connection_id", id.String()), zap.String("sql", logging.TruncateSQL(r.SQL)))
		res, err = d.exec.ExecuteSQL(ctx, id, r.SQL)
	case models.NaturalLanguage:
		kind = "natural_language"
		d.logger.Debug("executing question", zap.String("connection_id", id.String()), zap.Int("question_len", len(r.Question)))
		res, err = d.exec.ExecuteNaturalLanguage(ctx, id, r.Question)
	default:
		return nil, fmt.Errorf("unsupported query request %T", req)
	}
	if err != nil {
		d.logger.Debug("query failed", zap.String("kind", kind), zap.Error(err))
		return nil, err
	}
	d.logger.Info("query completed",
		zap.String("kind", kind),
		zap.String("connection_id", id.String()),
		zap.Int("rows", res.RowCount()),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

// Export requests the result of sql in format and returns the body unchanged.
// The format is lowercased and otherwise passed through.
func (d *Dispatcher) Export(ctx context.Context, id models.ConnectionID, sql string, format models.ExportFormat) (*models.ExportPayload, error) {
	format = models.ExportFormat(strings.ToLower(string(format)))
	p, err := d.exec.Export(ctx, id, sql, format)
	if err != nil {
		return nil, err
	}
	d.logger.Info("export completed",
		zap.String("connection_id", id.String()),
		zap.String("format", string(format)),
		zap.Int("bytes", len(p.Bytes)))
	return p, nil
}

// ExecuteActive runs req against the active connection.
func (d *Dispatcher) ExecuteActive(ctx context.Context, req models.QueryRequest) (*models.QueryResult, error) {
	id, err := d.activeID()
	if err != nil {
		return nil, err
	}
	return d.Execute(ctx, id, req)
}

// ExportActive exports sql from the active connection.
func (d *Dispatcher) ExportActive(ctx context.Context, sql string, format models.ExportFormat) (*models.ExportPayload, error) {
	id, err := d.activeID()
	if err != nil {
		return nil, err
	}
	return d.Export(ctx, id, sql, format)
}

func (d *Dispatcher) activeID() (models.ConnectionID, error) {
	if d.active == nil {
		return "", ErrNoActiveConnection
	}
	id, ok := d.active.Active()
	if !ok {
		return "", ErrNoActiveConnection
	}
	return id, nil
}
