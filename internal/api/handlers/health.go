package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/talx-hub/gopher-auth/internal/api/dto"
	"github.com/talx-hub/gopher-auth/internal/api/respond"
	"github.com/talx-hub/gopher-auth/internal/model"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	dbConnected     = "connected"
	dbDisconnected  = "disconnected"
)

type HealthHandler struct {
	logger  *slog.Logger
	checker HealthChecker
}

func NewHealthHandler(checker HealthChecker, log *slog.Logger) *HealthHandler {
	return &HealthHandler{
		logger:  log,
		checker: checker,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := requestLogger(r, h.logger)

	pingCtx, cancel := context.WithTimeout(ctx, model.DefaultPingTimeout)
	defer cancel()
	if err := h.checker.Ping(pingCtx); err != nil {
		log.LogAttrs(ctx,
			slog.LevelError,
			"health check failed",
			slog.Any(model.KeyLoggerError, err),
		)
		respond.JSON(ctx, w, log, http.StatusInternalServerError, dto.HealthResponse{
			Timestamp: time.Now().UTC(),
			Status:    statusUnhealthy,
			Database:  dbDisconnected,
		})
		return
	}

	respond.JSON(ctx, w, log, http.StatusOK, dto.HealthResponse{
		Timestamp: time.Now().UTC(),
		Status:    statusHealthy,
		Database:  dbConnected,
	})
}
