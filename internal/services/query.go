package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/querydesk/querydesk/internal/models"
	srvErrors "github.com/querydesk/querydesk/pkg/errors"
	"github.com/querydesk/querydesk/pkg/querybuilder"
	"github.com/querydesk/querydesk/pkg/supabase"
)

const executeQueryFn = "execute_dynamic_query"

type QueryService struct {
	resolver *TenantResolver
	logger   *zap.SugaredLogger
}

func NewQueryService(resolver *TenantResolver) *QueryService {
	return &QueryService{
		resolver: resolver,
		logger:   zap.S().Named("query_service"),
	}
}

// Execute compiles q and runs it on database databaseID.
//
// The steps run strictly in order:
//  1. validate: the table is required.
//  2. resolve the tenant (not found is returned as is).
//  3. build the SELECT statement; this never fails.
//  4. execute it through the execute_dynamic_query procedure.
func (s *QueryService) Execute(ctx context.Context, databaseID string, q querybuilder.Query) (*models.QueryResult, error) {
	q.Table = strings.TrimSpace(q.Table)
	if q.Table == "" {
		return nil, srvErrors.NewValidationError("Table name is required")
	}

	tenant, err := s.resolver.Resolve(ctx, databaseID)
	if err != nil {
		return nil, err
	}

	stmt := querybuilder.Build(q)
	s.logger.Debugw("executing query", "database", tenant.Database.ID, "table", q.Table, "joins", len(q.Joins), "sql", stmt)

	rows := []models.Row{}
	if err := tenant.Client.RPC(ctx, executeQueryFn, map[string]string{"query_text": stmt}, &rows); err != nil {
		return nil, queryError(executeQueryFn, err)
	}
	if rows == nil {
		rows = []models.Row{}
	}

	return &models.QueryResult{
		Table:    q.Table,
		SQL:      stmt,
		Rows:     rows,
		HasJoins: len(q.Joins) > 0,
	}, nil
}

// queryError separates database-reported failures, which are the caller's
// fault, from transport failures.
func queryError(fn string, err error) error {
	rpcErr, ok := supabase.AsRPCError(err)
	if !ok {
		return fmt.Errorf("failed to call %s: %w", fn, err)
	}
	if rpcErr.FunctionMissing() {
		return srvErrors.NewRPCFunctionNotFoundError(fn, rpcErr.Message)
	}
	return srvErrors.NewQueryExecutionError(rpcErr.Message, rpcErr.Code, rpcErr.Hint, rpcErr.Details)
}

// catalogError is queryError for the metadata procedures: anything but a
// missing function is a server-side failure.
func catalogError(fn string, err error) error {
	if rpcErr, ok := supabase.AsRPCError(err); ok && rpcErr.FunctionMissing() {
		return srvErrors.NewRPCFunctionNotFoundError(fn, rpcErr.Message)
	}
	return fmt.Errorf("failed to call %s: %w", fn, err)
}
