package handlers

import (
	"context"
	"time"

	"github.com/querydesk/querydesk/internal/models"
	"github.com/querydesk/querydesk/internal/services"
	"github.com/querydesk/querydesk/pkg/querybuilder"
)

type QueryService interface {
	Execute(ctx context.Context, databaseID string, q querybuilder.Query) (*models.QueryResult, error)
}

type ExportService interface {
	Export(ctx context.Context, databaseID string, q querybuilder.Query) (*services.Export, error)
}

type CatalogService interface {
	Tables(ctx context.Context, databaseID string) ([]string, error)
	Columns(ctx context.Context, databaseID, table string) ([]models.Column, error)
	ColumnValues(ctx context.Context, databaseID, table, column, search string) (*services.ColumnValues, error)
	SearchValues(ctx context.Context, databaseID, table, column, search string, limit int) ([]string, error)
}

type DatabaseService interface {
	List(ctx context.Context) ([]models.Database, error)
	Add(ctx context.Context, in services.NewDatabase) (*models.Database, error)
	Test(ctx context.Context, databaseURL string) (time.Time, error)
	Deploy(ctx context.Context, id string) (models.DeploymentStatus, error)
	DeploymentStatus(ctx context.Context, id string) (models.DeploymentStatus, error)
	DeploymentStatuses() []models.DeploymentStatus
}

type AuthService interface {
	Login(ctx context.Context, userName, password string) (*services.Session, error)
}

type Handler struct {
	querySrv    QueryService
	exportSrv   ExportService
	catalogSrv  CatalogService
	databaseSrv DatabaseService
	authSrv     AuthService
	debugSQL    bool
}

// New builds the handler. With debugSQL set, query responses carry the compiled statement.
func New(querySrv QueryService, exportSrv ExportService, catalogSrv CatalogService, databaseSrv DatabaseService, authSrv AuthService, debugSQL bool) *Handler {
	return &Handler{
		querySrv:    querySrv,
		exportSrv:   exportSrv,
		catalogSrv:  catalogSrv,
		databaseSrv: databaseSrv,
		authSrv:     authSrv,
		debugSQL:    debugSQL,
	}
}
