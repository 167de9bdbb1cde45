package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	srvErrors "github.com/querydesk/querydesk/pkg/errors"
)

// Connect opens a single connection to dsn, giving up after timeout. The
// pgbouncer flag is consumed here: pooled connections cannot use prepared
// statements, so the simple protocol is used instead of sending it to the server.
func Connect(ctx context.Context, dsn string, timeout time.Duration) (*pgx.Conn, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, srvErrors.NewValidationError("invalid database url: %s", err)
	}

	if _, ok := cfg.RuntimeParams["pgbouncer"]; ok {
		delete(cfg.RuntimeParams, "pgbouncer")
		cfg.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}
	cfg.ConnectTimeout = timeout

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, srvErrors.NewConnectionError(err)
	}
	return conn, nil
}

// Ping normalizes rawURL, connects and runs SELECT NOW(). The connection is
// closed on every path.
func Ping(ctx context.Context, rawURL string, timeout time.Duration) (time.Time, error) {
	dsn, err := NormalizeURL(rawURL)
	if err != nil {
		return time.Time{}, srvErrors.NewValidationError("%s", err)
	}

	conn, err := Connect(ctx, dsn, timeout)
	if err != nil {
		return time.Time{}, err
	}
	defer closeConn(conn)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var now time.Time
	if err := conn.QueryRow(ctx, "SELECT NOW()").Scan(&now); err != nil {
		return time.Time{}, srvErrors.NewConnectionError(err)
	}
	return now, nil
}

// Exec runs script as one multi-statement batch over a fresh connection.
func Exec(ctx context.Context, rawURL, script string, timeout time.Duration) error {
	dsn, err := NormalizeURL(rawURL)
	if err != nil {
		return srvErrors.NewValidationError("%s", err)
	}

	conn, err := Connect(ctx, dsn, timeout)
	if err != nil {
		return err
	}
	defer closeConn(conn)

	if _, err := conn.Exec(ctx, script); err != nil {
		return fmt.Errorf("failed to execute script: %w", err)
	}
	return nil
}

func closeConn(conn *pgx.Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Close(ctx); err != nil {
		zap.S().Named("postgres").Warnw("failed to close connection", "error", err)
	}
}
