package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gsarma/boltbot/internal/bot"
)

// CommandHandler runs one chat invocation. *bot.Dispatcher satisfies it.
type CommandHandler interface {
	Handle(ctx context.Context, inv bot.Invocation) bot.Reply
}

type Handler struct {
	commands CommandHandler
	// timeout bounds each command so the reply is written before the
	// server's write deadline; zero leaves the request context alone.
	timeout time.Duration
}

// Health reports that the process is serving.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Command runs a chat command on behalf of a host bot.
//
// Request body:
//
//	{"user": "1234", "text": "!godbolt run g132 ```c\n...\n```"}
//
// The reply is returned with 200, or with 429 while the user is cooling down.
func (h *Handler) Command(c *gin.Context) {
	var body struct {
		User string `json:"user" binding:"required"`
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	reply := h.commands.Handle(ctx, bot.Invocation{User: body.User, Text: body.Text})

	status := http.StatusOK
	if reply.Status == bot.StatusCooldown {
		status = http.StatusTooManyRequests
	}
	c.JSON(status, reply)
}
