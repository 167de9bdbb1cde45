package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/querydesk/querydesk/api/v1"
	srvErrors "github.com/querydesk/querydesk/pkg/errors"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Query compiles the filter tree and returns the matching rows
// (POST /query)
func (h *Handler) Query(c *gin.Context) {
	var req v1.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v1.ErrorResponse{Error: fmt.Sprintf("invalid request body: %s", err)})
		return
	}

	result, err := h.querySrv.Execute(c.Request.Context(), req.DatabaseID, req.ToQuery())
	if err != nil {
		writeQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, v1.NewQueryResponse(result, h.debugSQL))
}

// ExportQuery runs the query and returns the rows as an xlsx workbook
// (POST /query/export)
func (h *Handler) ExportQuery(c *gin.Context) {
	var req v1.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v1.ErrorResponse{Error: fmt.Sprintf("invalid request body: %s", err)})
		return
	}

	export, err := h.exportSrv.Export(c.Request.Context(), req.DatabaseID, req.ToQuery())
	if err != nil {
		writeQueryError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	c.Header("X-Row-Count", strconv.Itoa(export.Rows))
	c.Data(http.StatusOK, xlsxContentType, export.Data)
}

// writeQueryError is writeError with the query endpoint's own body for
// unexpected failures.
func writeQueryError(c *gin.Context, err error) {
	switch {
	case srvErrors.IsValidationError(err),
		srvErrors.IsResourceNotFoundError(err),
		srvErrors.IsRPCFunctionNotFoundError(err),
		srvErrors.IsQueryExecutionError(err):
		writeError(c, "query_handler", err)
	default:
		zap.S().Named("query_handler").Errorw("query failed", "error", err)
		c.JSON(http.StatusInternalServerError, v1.QueryErrorResponse{
			UserMessage: "Internal query execution error.",
			DevMessage:  err.Error(),
		})
	}
}
