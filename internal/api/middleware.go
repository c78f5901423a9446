package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gsarma/boltbot/internal/logger"
)

// RequestLogger logs one line per HTTP request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		)
	}
}

// NewRouter builds the engine with recovery, request logging and the
// command routes.
func NewRouter(env string, commands CommandHandler, commandTimeout time.Duration) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	RegisterRoutes(r, commands, commandTimeout)
	return r
}
