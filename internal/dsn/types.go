// Copyright (c) 2025 SQLPilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dsn inspects database connection URLs before they are registered
// with the backend. URLs use the SQLAlchemy form the backend expects
// (scheme[+driver]://...), and each supported database has a Resolver that
// parses, validates and converts the URL into a DSN a local Go driver accepts.
package dsn

import "fmt"

// DBType represents the type of database. Values match the backend's db_type field.
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeMySQL      DBType = "mysql"
	DBTypeSQLite     DBType = "sqlite"
	DBTypeUnknown    DBType = "unknown"
)

// DSNInfo contains parsed information from a connection URL.
type DSNInfo struct {
	Type DBType
	// Driver is the SQLAlchemy driver suffix (psycopg2 in postgresql+psycopg2), if any.
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	// Database is the database name, or the file path for SQLite.
	Database string
	Params   map[string]string
	Original string
}

// String returns the original URL.
func (d *DSNInfo) String() string {
	return d.Original
}

// Resolver is implemented once per database type.
type Resolver interface {
	// Parse parses a connection URL into DSNInfo.
	Parse(dsn string) (*DSNInfo, error)

	// Normalize converts DSN info into the connection string the local driver expects.
	Normalize(info *DSNInfo) (string, error)

	// Validate checks if the URL is valid for the database type.
	Validate(dsn string) error
}

// ParseError represents an error that occurred during URL parsing.
type ParseError struct {
	DSN    string
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid connection URL: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid connection URL: %s", e.Reason)
}

// NewParseError creates a new ParseError
func NewParseError(dsn, reason, hint string) *ParseError {
	return &ParseError{
		DSN:    dsn,
		Reason: reason,
		Hint:   hint,
	}
}
