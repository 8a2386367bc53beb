package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talx-hub/gopher-auth/internal/api/dto"
	"github.com/talx-hub/gopher-auth/internal/api/respond"
	"github.com/talx-hub/gopher-auth/internal/serviceerrs"
)

const URLParamUserID = "userId"

type UserHandler struct {
	logger *slog.Logger
	repo   UserRepository
}

func NewUserHandler(repo UserRepository, log *slog.Logger) *UserHandler {
	return &UserHandler{
		logger: log,
		repo:   repo,
	}
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := requestLogger(r, h.logger)

	userID := chi.URLParam(r, URLParamUserID)
	u, err := h.repo.FindByUserID(ctx, userID)
	if errors.Is(err, serviceerrs.ErrNotFound) {
		respond.Error(ctx, w, log, http.StatusNotFound, msgUserNotFound)
		return
	}
	if err != nil {
		respond.Internal(ctx, w, log, "failed to get user", err)
		return
	}

	respond.JSON(ctx, w, log, http.StatusOK, dto.UserEnvelope{
		Success: true,
		User:    dto.NewUserResponse(u),
	})
}
