// Copyright (c) 2025 SQLPilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides the typed client for the SQLPilot REST API.
// It maps each backend operation onto a transport.Request and leaves failure
// classification and user notification to the transport layer.
package backend

import (
	"context"

	"sqlpilot/cli/internal/models"
)

// API defines backend operations the CLI depends on.
// Implementations may call real HTTP endpoints or provide fakes for tests.
type API interface {
	ListConnections(ctx context.Context) ([]models.Connection, error)
	CreateConnection(ctx context.Context, spec models.ConnectionSpec) (models.Connection, error)
	GetConnection(ctx context.Context, id models.ConnectionID) (models.Connection, error)
	UpdateConnection(ctx context.Context, id models.ConnectionID, spec models.ConnectionSpec) (models.Connection, error)
	DeleteConnection(ctx context.Context, id models.ConnectionID) error
	// GetSchema fetches the schema without notifying the user on failure;
	// callers decide how a broken schema is presented.
	GetSchema(ctx context.Context, id models.ConnectionID) (models.Schema, error)
	ExecuteSQL(ctx context.Context, id models.ConnectionID, sql string) (*models.QueryResult, error)
	ExecuteNaturalLanguage(ctx context.Context, id models.ConnectionID, question string) (*models.QueryResult, error)
	// Export returns the export body byte-for-byte.
	Export(ctx context.Context, id models.ConnectionID, sql string, format models.ExportFormat) (*models.ExportPayload, error)
}
