// Copyright (c) 2025 SQLPilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"strings"
)

const supportedSchemes = "use postgresql://, mysql:// or sqlite:///"

// splitScheme returns the lowercased scheme and driver suffix of a URL,
// e.g. "postgresql+psycopg2://..." yields ("postgresql", "psycopg2").
func splitScheme(dsn string) (scheme, driver string, ok bool) {
	i := strings.Index(dsn, "://")
	if i <= 0 {
		return "", "", false
	}
	scheme = strings.ToLower(dsn[:i])
	if j := strings.Index(scheme, "+"); j >= 0 {
		scheme, driver = scheme[:j], scheme[j+1:]
	}
	return scheme, driver, true
}

// DetectDBType detects the database type from a connection URL.
func DetectDBType(dsn string) DBType {
	scheme, _, ok := splitScheme(strings.TrimSpace(dsn))
	if !ok {
		return DBTypeUnknown
	}
	switch scheme {
	case "postgres", "postgresql":
		return DBTypePostgreSQL
	case "mysql", "mariadb":
		return DBTypeMySQL
	case "sqlite":
		return DBTypeSQLite
	}
	return DBTypeUnknown
}

// ResolverFor returns the resolver for a database type.
func ResolverFor(t DBType) (Resolver, bool) {
	switch t {
	case DBTypePostgreSQL:
		return NewPostgreSQLResolver(), true
	case DBTypeMySQL:
		return NewMySQLResolver(), true
	case DBTypeSQLite:
		return NewSQLiteResolver(), true
	}
	return nil, false
}

func resolve(dsn string) (Resolver, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, NewParseError(dsn, "empty connection URL", "provide a valid database connection URL")
	}
	r, ok := ResolverFor(DetectDBType(dsn))
	if !ok {
		return nil, NewParseError(dsn, "unknown database type", supportedSchemes)
	}
	return r, nil
}

// Parse parses a connection URL and returns the driver-ready connection string.
// This is the main entry point for URL parsing.
func Parse(dsn string) (string, error) {
	r, err := resolve(dsn)
	if err != nil {
		return "", err
	}
	info, err := r.Parse(dsn)
	if err != nil {
		return "", err
	}
	return r.Normalize(info)
}

// Validate validates a connection URL without normalizing it.
func Validate(dsn string) error {
	r, err := resolve(dsn)
	if err != nil {
		return err
	}
	return r.Validate(dsn)
}

// ParseInfo parses a connection URL and returns detailed info.
func ParseInfo(dsn string) (*DSNInfo, error) {
	r, err := resolve(dsn)
	if err != nil {
		return nil, err
	}
	return r.Parse(dsn)
}
