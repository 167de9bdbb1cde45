package v1

import (
	"net/url"
	"time"

	"github.com/querydesk/querydesk/internal/models"
	"github.com/querydesk/querydesk/pkg/querybuilder"
)

// ToQuery converts the request into the statement builder input.
func (r QueryRequest) ToQuery() querybuilder.Query {
	return querybuilder.Query{
		Table:   r.Table,
		Where:   r.Query,
		Joins:   r.Joins,
		Columns: r.SelectedColumns,
	}
}

// NewQueryResponse converts a query result. The compiled SQL is only included
// when withSQL is set.
func NewQueryResponse(result *models.QueryResult, withSQL bool) QueryResponse {
	resp := QueryResponse{
		Success:  true,
		Table:    result.Table,
		Count:    result.Count(),
		Data:     result.Rows,
		HasJoins: result.HasJoins,
	}
	if resp.Data == nil {
		resp.Data = []models.Row{}
	}
	if withSQL {
		resp.SQLQuery = result.SQL
	}
	return resp
}

func NewColumns(columns []models.Column) []Column {
	out := make([]Column, 0, len(columns))
	for _, c := range columns {
		out = append(out, Column{
			Name:     c.Name,
			DataType: c.DataType,
			Nullable: c.Nullable == "YES",
		})
	}
	return out
}

func NewDatabase(d models.Database) Database {
	db := Database{
		ID:               d.ID,
		Name:             d.Name,
		SupabaseURL:      d.SupabaseURL,
		SupabaseAnonKey:  d.AnonKey,
		DatabaseURL:      redactURL(d.DatabaseURL),
		HasServiceRole:   d.ServiceRoleKey != "",
		IsDefault:        d.IsDefault,
		IsActive:         d.IsActive,
		ConnectionStatus: string(d.ConnectionStatus),
		LastTestedAt:     d.LastTestedAt,
		CreatedBy:        d.CreatedBy,
		CreatedAt:        timePtr(d.CreatedAt),
		UpdatedAt:        timePtr(d.UpdatedAt),
	}
	if db.ConnectionStatus == "" {
		db.ConnectionStatus = string(models.ConnectionStatusDisconnected)
	}
	return db
}

func NewDatabases(dbs []models.Database) []Database {
	out := make([]Database, 0, len(dbs))
	for _, d := range dbs {
		out = append(out, NewDatabase(d))
	}
	return out
}

func NewDeploymentStatus(s models.DeploymentStatus) DeploymentStatus {
	status := DeploymentStatus{
		Endpoint:  s.Endpoint,
		Deployed:  s.State == models.DeploymentStateDeployed,
		Status:    string(s.State),
		UpdatedAt: timePtr(s.UpdatedAt),
	}
	if s.Error != "" {
		e := s.Error
		status.Error = &e
	}
	return status
}

func NewDeploymentStatuses(statuses []models.DeploymentStatus) []DeploymentStatus {
	out := make([]DeploymentStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, NewDeploymentStatus(s))
	}
	return out
}

func NewUser(u models.User) User {
	return User{
		ID:        u.ID,
		UserName:  u.UserName,
		Role:      string(u.Role),
		IsEnabled: u.IsEnabled,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		LastLogin: u.LastLogin,
	}
}

// redactURL hides the password of a connection string. Strings that do not
// parse are hidden entirely.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "xxxxx"
	}
	return u.Redacted()
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
