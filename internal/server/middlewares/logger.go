package middlewares

import (
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger logs every request with the global zap logger. Request bodies are
// never logged since they carry credentials and filter values.
func Logger() gin.HandlerFunc {
	return ginzap.GinzapWithConfig(zap.S().Named("http").Desugar(), &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/health"},
	})
}
