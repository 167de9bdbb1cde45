package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/querydesk/querydesk/api/v1"
	"github.com/querydesk/querydesk/internal/services"
)

type TokenValidator interface {
	ValidateToken(token string) (*services.Claims, error)
}

// Auth rejects requests without a valid bearer token. Routes whose full path
// ends with one of skip are let through. The user name of the token is stored
// under v1.UserContextKey.
func Auth(validator TokenValidator, skip ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, p := range skip {
			if strings.HasSuffix(c.FullPath(), p) {
				c.Next()
				return
			}
		}

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, v1.ErrorResponse{Error: "Authentication required"})
			return
		}

		claims, err := validator.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			zap.S().Named("auth").Debugw("rejected token", "path", c.FullPath(), "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, v1.ErrorResponse{Error: "Invalid or expired token"})
			return
		}

		c.Set(v1.UserContextKey, claims.UserName)
		c.Next()
	}
}
