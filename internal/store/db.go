package store

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	DriverDuckDB   = "duckdb"
	DriverPostgres = "pgx"
)

// NewDB opens the metadata database. driver is "duckdb" for a local file (or
// ":memory:", useful for testing) and "pgx" for a Postgres connection string.
func NewDB(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverDuckDB, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == DriverDuckDB {
		// DuckDB is single-writer; a single connection prevents idle pool
		// connections from blocking WAL checkpointing.
		conn.SetMaxOpenConns(1)
	}

	// Verify connection works
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	// Keep DuckDB from writing extensions to ~/.duckdb which may be read-only
	if driver == DriverDuckDB && dsn != ":memory:" {
		extDir := filepath.Dir(dsn)
		if _, err := conn.Exec(fmt.Sprintf("SET extension_directory = '%s'", extDir)); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("setting extension directory: %w", err)
		}
	}

	return conn, nil
}
