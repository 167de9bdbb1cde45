package store

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"
)

// psql renders $n placeholders, understood by both DuckDB and Postgres.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// QueryInterceptor is the subset of *sql.DB used by the stores.
type QueryInterceptor interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// queryInterceptor logs every statement with its duration. Arguments carry
// credentials so only their count is logged.
type queryInterceptor struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

func newQueryInterceptor(db *sql.DB) *queryInterceptor {
	return &queryInterceptor{
		db:     db,
		logger: zap.S().Named("store"),
	}
}

func (q *queryInterceptor) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	defer q.trace("query_row", query, len(args), time.Now(), nil)
	return q.db.QueryRowContext(ctx, query, args...)
}

func (q *queryInterceptor) QueryContext(ctx context.Context, query string, args ...any) (rows *sql.Rows, err error) {
	defer func(start time.Time) { q.trace("query", query, len(args), start, err) }(time.Now())
	return q.db.QueryContext(ctx, query, args...)
}

func (q *queryInterceptor) ExecContext(ctx context.Context, query string, args ...any) (res sql.Result, err error) {
	defer func(start time.Time) { q.trace("exec", query, len(args), start, err) }(time.Now())
	return q.db.ExecContext(ctx, query, args...)
}

func (q *queryInterceptor) trace(kind, query string, nargs int, start time.Time, err error) {
	if err != nil {
		q.logger.Debugw(kind, "query", query, "args", nargs, "duration", time.Since(start), "error", err)
		return
	}
	q.logger.Debugw(kind, "query", query, "args", nargs, "duration", time.Since(start))
}
