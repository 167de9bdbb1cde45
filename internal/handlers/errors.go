package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/querydesk/querydesk/api/v1"
	srvErrors "github.com/querydesk/querydesk/pkg/errors"
)

// writeError maps a service error to its status code. Unexpected errors are
// logged and reported as a generic 500.
func writeError(c *gin.Context, logger string, err error) {
	var (
		colErr *srvErrors.ColumnNotFoundError
		fnErr  *srvErrors.RPCFunctionNotFoundError
		qErr   *srvErrors.QueryExecutionError
	)

	switch {
	case srvErrors.IsValidationError(err):
		c.JSON(http.StatusBadRequest, v1.ErrorResponse{Error: err.Error()})
	case errors.As(err, &colErr):
		c.JSON(http.StatusNotFound, v1.ErrorResponse{Error: colErr.Error(), AvailableColumns: colErr.Available})
	case srvErrors.IsResourceNotFoundError(err):
		c.JSON(http.StatusNotFound, v1.ErrorResponse{Error: err.Error()})
	case srvErrors.IsDuplicateResourceError(err):
		c.JSON(http.StatusConflict, v1.ErrorResponse{Error: err.Error()})
	case srvErrors.IsConnectionError(err):
		c.JSON(http.StatusBadRequest, v1.ErrorResponse{Error: err.Error(), Message: err.Error()})
	case errors.As(err, &fnErr):
		c.JSON(http.StatusNotFound, v1.ErrorResponse{Error: "RPC function not found", Hint: fnErr.Hint(), Details: fnErr.Details})
	case errors.As(err, &qErr):
		c.JSON(http.StatusBadRequest, v1.QueryErrorResponse{
			UserMessage: qErr.UserMessage,
			DevMessage:  qErr.Message,
			Code:        qErr.Code,
			Hint:        qErr.Hint,
		})
	case srvErrors.IsInvalidCredentialsError(err):
		c.JSON(http.StatusUnauthorized, v1.ErrorResponse{Error: err.Error()})
	case srvErrors.IsAccountDisabledError(err):
		c.JSON(http.StatusForbidden, v1.ErrorResponse{Error: err.Error()})
	case srvErrors.IsBootstrapError(err):
		zap.S().Named(logger).Errorw("function deployment failed", "error", err)
		c.JSON(http.StatusInternalServerError, v1.ErrorResponse{Error: err.Error()})
	default:
		zap.S().Named(logger).Errorw("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, v1.ErrorResponse{Error: "Internal server error"})
	}
}
