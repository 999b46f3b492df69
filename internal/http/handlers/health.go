package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/abhisek/algotutor/internal/http/response"
	"github.com/abhisek/algotutor/internal/session"
)

type HealthHandler struct {
	mode func() session.Mode
}

// NewHealthHandler reports the mode returned by mode; nil reports online.
func NewHealthHandler(mode func() session.Mode) *HealthHandler {
	return &HealthHandler{mode: mode}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	mode := session.ModeOnline
	if h.mode != nil {
		mode = h.mode()
	}
	response.RespondOK(c, gin.H{"status": "ok", "mode": mode})
}
