package api

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the API on r. commandTimeout bounds each command;
// zero disables the bound.
func RegisterRoutes(r *gin.Engine, commands CommandHandler, commandTimeout time.Duration) *Handler {
	h := &Handler{commands: commands, timeout: commandTimeout}

	r.GET("/health", h.Health)
	r.POST("/commands", h.Command)

	return h
}
