package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tourbook/tourbook/internal/shared/logger"
	"github.com/tourbook/tourbook/internal/shared/utils"
	"github.com/tourbook/tourbook/internal/shared/version"
)

// Pinger checks that a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	logger logger.Interface
}

func NewHealthHandler(db Pinger, logger logger.Interface) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

// @Summary		Health check
// @Tags			system
// @Produce		json
// @Success		200	{object}	utils.APIResponse{data=HealthResponse}
// @Failure		503	{object}	utils.APIResponse{data=HealthResponse}
// @Router			/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:   "ok",
		Version:  version.String(),
		Database: "ok",
	}
	status := http.StatusOK

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Errorw("database health check failed", "error", err)
		resp.Status = "degraded"
		resp.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}

	utils.SuccessResponse(c, status, "", resp)
}
