package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/querydesk/querydesk/api/v1"
	"github.com/querydesk/querydesk/internal/services"
	srvErrors "github.com/querydesk/querydesk/pkg/errors"
)

// ListDatabases returns the default database and every registered one
// (GET /databases)
func (h *Handler) ListDatabases(c *gin.Context) {
	dbs, err := h.databaseSrv.List(c.Request.Context())
	if err != nil {
		writeError(c, "database_handler", err)
		return
	}

	c.JSON(http.StatusOK, v1.DatabasesResponse{Success: true, Databases: v1.NewDatabases(dbs)})
}

// AddDatabase registers a database after testing its connection
// (POST /databases)
func (h *Handler) AddDatabase(c *gin.Context) {
	var req v1.AddDatabaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v1.ErrorResponse{Error: "invalid request body"})
		return
	}

	db, err := h.databaseSrv.Add(c.Request.Context(), services.NewDatabase{
		Name:           req.Name,
		SupabaseURL:    req.SupabaseURL,
		AnonKey:        req.SupabaseAnonKey,
		DatabaseURL:    req.DatabaseURL,
		ServiceRoleKey: req.ServiceRoleKey,
		CreatedBy:      c.GetString(v1.UserContextKey),
	})
	if err != nil {
		if srvErrors.IsDuplicateResourceError(err) {
			c.JSON(http.StatusConflict, v1.ErrorResponse{Error: "Database name already exists"})
			return
		}
		writeError(c, "database_handler", err)
		return
	}

	c.JSON(http.StatusOK, v1.AddDatabaseResponse{
		Success:  true,
		Message:  "Database added successfully",
		Database: v1.NewDatabase(*db),
	})
}

// TestDatabase checks that a connection string accepts connections
// (POST /databases/test)
func (h *Handler) TestDatabase(c *gin.Context) {
	var req v1.TestDatabaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v1.ErrorResponse{Error: "invalid request body"})
		return
	}

	now, err := h.databaseSrv.Test(c.Request.Context(), req.DatabaseURL)
	if err != nil {
		if srvErrors.IsValidationError(err) || srvErrors.IsConnectionError(err) {
			c.JSON(http.StatusBadRequest, v1.ErrorResponse{Error: err.Error(), Message: err.Error()})
			return
		}
		zap.S().Named("database_handler").Errorw("connection test failed", "error", err)
		c.JSON(http.StatusBadRequest, v1.ErrorResponse{Error: "Connection failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, v1.TestDatabaseResponse{
		Success:   true,
		Message:   "Connection successful",
		Timestamp: now,
	})
}

// DeployDatabase installs the server-side functions into a database
// (POST /databases/deploy)
func (h *Handler) DeployDatabase(c *gin.Context) {
	var req v1.DeployRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v1.ErrorResponse{Error: "Database ID is required"})
		return
	}

	status, err := h.databaseSrv.Deploy(c.Request.Context(), req.DatabaseID)
	if err != nil {
		writeError(c, "database_handler", err)
		return
	}

	c.JSON(http.StatusOK, v1.DeployResponse{
		Success:    true,
		Message:    "Functions deployed successfully",
		Deployment: v1.NewDeploymentStatus(status),
	})
}

// GetDeploymentStatus returns the deployment status of a database, the default
// one when no databaseId is given
// (GET /databases/deploy/status)
func (h *Handler) GetDeploymentStatus(c *gin.Context) {
	status, err := h.databaseSrv.DeploymentStatus(c.Request.Context(), c.Query("databaseId"))
	if err != nil {
		writeError(c, "database_handler", err)
		return
	}

	c.JSON(http.StatusOK, v1.DeploymentStatusResponse{
		DeploymentStatus: v1.NewDeploymentStatus(status),
		Deployments:      v1.NewDeploymentStatuses(h.databaseSrv.DeploymentStatuses()),
	})
}
