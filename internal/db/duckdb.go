// Package db provides database connectivity helpers and migration support.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // duckdb driver
)

// Warehouse schemas. Raw tables land in SchemaRaw; every model
// materializes into SchemaMain.
const (
	SchemaRaw  = "raw"
	SchemaMain = "main"
)

// OpenDuckDB opens the DuckDB warehouse at path (empty for in-memory)
// and ensures the raw schema exists.
func OpenDuckDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	if _, err := db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+SchemaRaw); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema %s: %w", SchemaRaw, err)
	}

	return db, nil
}
