package v1

import (
	"time"

	"github.com/querydesk/querydesk/internal/models"
	"github.com/querydesk/querydesk/pkg/querybuilder"
)

// UserContextKey is the gin context key holding the name of the authenticated user.
const UserContextKey = "user_name"

type ErrorResponse struct {
	Success          bool     `json:"success"`
	Error            string   `json:"error"`
	Message          string   `json:"message,omitempty"`
	Hint             string   `json:"hint,omitempty"`
	Details          string   `json:"details,omitempty"`
	AvailableColumns []string `json:"availableColumns,omitempty"`
}

// QueryRequest is the body of POST /query and POST /query/export.
type QueryRequest struct {
	Table           string                        `json:"table"`
	Query           *querybuilder.Group           `json:"query"`
	Joins           []querybuilder.Join           `json:"joins" binding:"omitempty,dive"`
	SelectedColumns []querybuilder.SelectedColumn `json:"selectedColumns" binding:"omitempty,dive"`
	DatabaseID      string                        `json:"databaseId"`
}

type QueryResponse struct {
	Success  bool         `json:"success"`
	Table    string       `json:"table"`
	Count    int          `json:"count"`
	Data     []models.Row `json:"data"`
	HasJoins bool         `json:"hasJoins"`
	SQLQuery string       `json:"sqlQuery,omitempty"`
}

// QueryErrorResponse keeps the generic user message apart from the database's report.
type QueryErrorResponse struct {
	Success     bool   `json:"success"`
	UserMessage string `json:"userMessage"`
	DevMessage  string `json:"devMessage,omitempty"`
	Code        string `json:"code,omitempty"`
	Hint        string `json:"hint,omitempty"`
}

type TablesRequest struct {
	DatabaseID string `json:"databaseId"`
}

type TablesResponse struct {
	Success bool     `json:"success"`
	Tables  []string `json:"tables"`
	Count   int      `json:"count"`
}

type ColumnsRequest struct {
	DatabaseID string `json:"databaseId"`
	TableName  string `json:"tableName"`
}

type Column struct {
	Name     string `json:"name"`
	DataType string `json:"dataType,omitempty"`
	Nullable bool   `json:"nullable"`
}

type ColumnsResponse struct {
	Success bool     `json:"success"`
	Table   string   `json:"table"`
	Columns []Column `json:"columns"`
	Count   int      `json:"count"`
}

// ColumnValuesRequest is the body of POST /column-values and POST /search-values.
// Limit only applies to the latter.
type ColumnValuesRequest struct {
	DatabaseID string `json:"databaseId"`
	TableName  string `json:"tableName"`
	ColumnName string `json:"columnName"`
	SearchTerm string `json:"searchTerm"`
	Limit      int    `json:"limit" binding:"omitempty,min=1,max=1000"`
}

type ColumnValuesResponse struct {
	Success    bool     `json:"success"`
	TableName  string   `json:"tableName"`
	ColumnName string   `json:"columnName"`
	SearchTerm string   `json:"searchTerm"`
	Values     []string `json:"values"`
	Count      int      `json:"count"`
}

// Database is a tenant as shown to clients. The service role key is never
// returned and the password of the database url is redacted.
type Database struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	SupabaseURL      string     `json:"supabase_url"`
	SupabaseAnonKey  string     `json:"supabase_anon_key"`
	DatabaseURL      string     `json:"database_url"`
	HasServiceRole   bool       `json:"has_service_role_key"`
	IsDefault        bool       `json:"is_default"`
	IsActive         bool       `json:"is_active"`
	ConnectionStatus string     `json:"connection_status"`
	LastTestedAt     *time.Time `json:"last_tested_at,omitempty"`
	CreatedBy        string     `json:"created_by,omitempty"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

type DatabasesResponse struct {
	Success   bool       `json:"success"`
	Databases []Database `json:"databases"`
}

type AddDatabaseRequest struct {
	Name            string `json:"name"`
	SupabaseURL     string `json:"supabase_url"`
	SupabaseAnonKey string `json:"supabase_anon_key"`
	DatabaseURL     string `json:"database_url"`
	ServiceRoleKey  string `json:"service_role_key"`
}

type AddDatabaseResponse struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	Database Database `json:"database"`
}

type TestDatabaseRequest struct {
	DatabaseURL string `json:"database_url"`
}

type TestDatabaseResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type DeployRequest struct {
	DatabaseID string `json:"databaseId" binding:"required"`
}

type DeploymentStatus struct {
	Endpoint  string     `json:"endpoint"`
	Deployed  bool       `json:"deployed"`
	Status    string     `json:"status"`
	Error     *string    `json:"error"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type DeployResponse struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message"`
	Deployment DeploymentStatus `json:"deployment"`
}

// DeploymentStatusResponse is the status of one database plus every deployment
// this process has run.
type DeploymentStatusResponse struct {
	DeploymentStatus
	Deployments []DeploymentStatus `json:"deployments"`
}

type LoginRequest struct {
	UserName string `json:"user_name"`
	Password string `json:"user_password"`
}

type User struct {
	ID        int64      `json:"id"`
	UserName  string     `json:"user_name"`
	Role      string     `json:"roles_and_rights"`
	IsEnabled bool       `json:"is_enabled"`
	FirstName string     `json:"first_name,omitempty"`
	LastName  string     `json:"last_name,omitempty"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

type LoginResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
