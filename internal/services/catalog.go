package services

import (
	"context"
	"strings"

	"github.com/querydesk/querydesk/internal/models"
	srvErrors "github.com/querydesk/querydesk/pkg/errors"
)

const (
	tablesListFn     = "get_tables_list"
	tableColumnsFn   = "get_table_columns"
	distinctValuesFn = "get_distinct_values"
	searchValuesFn   = "get_filtered_search_values_text_num"

	defaultSearchLimit = 50
)

// CatalogService browses the tables, columns and values of a tenant.
type CatalogService struct {
	resolver *TenantResolver
}

func NewCatalogService(resolver *TenantResolver) *CatalogService {
	return &CatalogService{resolver: resolver}
}

func (s *CatalogService) Tables(ctx context.Context, databaseID string) ([]string, error) {
	tenant, err := s.resolver.Resolve(ctx, databaseID)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		TableName string `json:"table_name"`
	}
	if err := tenant.Client.RPC(ctx, tablesListFn, nil, &rows); err != nil {
		return nil, catalogError(tablesListFn, err)
	}

	tables := make([]string, 0, len(rows))
	for _, r := range rows {
		tables = append(tables, r.TableName)
	}
	return tables, nil
}

func (s *CatalogService) Columns(ctx context.Context, databaseID, table string) ([]models.Column, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, srvErrors.NewValidationError("Table name is required")
	}

	tenant, err := s.resolver.Resolve(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	return s.columns(ctx, tenant, table)
}

func (s *CatalogService) columns(ctx context.Context, tenant *Tenant, table string) ([]models.Column, error) {
	columns := []models.Column{}
	if err := tenant.Client.RPC(ctx, tableColumnsFn, map[string]string{"tbl_name": table}, &columns); err != nil {
		return nil, catalogError(tableColumnsFn, err)
	}
	if columns == nil {
		columns = []models.Column{}
	}
	return columns, nil
}

// ColumnValues is the result of a distinct value search. Column is the name
// as the database spells it.
type ColumnValues struct {
	Column string
	Values []string
}

// ColumnValues searches the distinct values of table.column containing search.
// The column name is matched case-insensitively against the table's columns.
func (s *CatalogService) ColumnValues(ctx context.Context, databaseID, table, column, search string) (*ColumnValues, error) {
	table = strings.TrimSpace(table)
	column = strings.TrimSpace(column)
	if table == "" || column == "" {
		return nil, srvErrors.NewValidationError("Table name and column name are required")
	}

	tenant, err := s.resolver.Resolve(ctx, databaseID)
	if err != nil {
		return nil, err
	}

	columns, err := s.columns(ctx, tenant, table)
	if err != nil {
		return nil, err
	}

	resolved := ""
	available := make([]string, 0, len(columns))
	for _, c := range columns {
		available = append(available, c.Name)
		if resolved == "" && strings.EqualFold(strings.TrimSpace(c.Name), column) {
			resolved = c.Name
		}
	}
	if resolved == "" {
		return nil, srvErrors.NewColumnNotFoundError(column, available)
	}

	var rows []struct {
		Val *string `json:"val"`
	}
	params := map[string]string{
		"table_name":  table,
		"column_name": resolved,
		"search":      search,
	}
	if err := tenant.Client.RPC(ctx, distinctValuesFn, params, &rows); err != nil {
		return nil, catalogError(distinctValuesFn, err)
	}

	values := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Val != nil {
			values = append(values, *r.Val)
		}
	}
	return &ColumnValues{Column: resolved, Values: values}, nil
}

// SearchValues looks up values of table.column equal to search, or containing
// it once both are normalized. At most limit values are returned.
func (s *CatalogService) SearchValues(ctx context.Context, databaseID, table, column, search string, limit int) ([]string, error) {
	table = strings.TrimSpace(table)
	column = strings.TrimSpace(column)
	if table == "" || column == "" {
		return nil, srvErrors.NewValidationError("Table name and column name are required")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	tenant, err := s.resolver.Resolve(ctx, databaseID)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Val *string `json:"val"`
	}
	params := map[string]any{
		"table_name":  table,
		"column_name": column,
		"search":      search,
		"max_rows":    limit,
	}
	if err := tenant.Client.RPC(ctx, searchValuesFn, params, &rows); err != nil {
		return nil, catalogError(searchValuesFn, err)
	}

	values := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Val != nil {
			values = append(values, *r.Val)
		}
	}
	return values, nil
}
