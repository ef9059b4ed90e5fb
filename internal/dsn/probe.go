// Copyright (c) 2025 SQLPilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"
)

// DefaultProbeTimeout bounds a Probe when the context has no deadline.
const DefaultProbeTimeout = 5 * time.Second

// Probe opens a short-lived local connection to the database described by
// the URL and pings it. SQLite files are opened read-only so a missing file
// is reported instead of created.
func Probe(ctx context.Context, dsn string) error {
	info, err := ParseInfo(dsn)
	if err != nil {
		return err
	}
	r, _ := ResolverFor(info.Type)
	conn, err := r.Normalize(info)
	if err != nil {
		return err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultProbeTimeout)
		defer cancel()
	}

	switch info.Type {
	case DBTypePostgreSQL:
		return probePostgres(ctx, conn)
	case DBTypeMySQL:
		return probeSQL(ctx, "mysql", conn)
	case DBTypeSQLite:
		return probeSQL(ctx, "sqlite", conn)
	}
	return NewParseError(dsn, "unknown database type", supportedSchemes)
}

func probePostgres(ctx context.Context, conn string) error {
	cfg, err := pgxpool.ParseConfig(conn)
	if err != nil {
		return fmt.Errorf("parse postgres config: %w", err)
	}
	cfg.MaxConns = 1
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	var one int
	if err := pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("test query failed: %w", err)
	}
	return nil
}

func probeSQL(ctx context.Context, driver, conn string) error {
	db, err := sql.Open(driver, conn)
	if err != nil {
		return fmt.Errorf("open %s: %w", driver, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	// sql.Open is lazy
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("test query failed: %w", err)
	}
	return nil
}
