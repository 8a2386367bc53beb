package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/talx-hub/gopher-auth/internal/api/dto"
	"github.com/talx-hub/gopher-auth/internal/api/respond"
	"github.com/talx-hub/gopher-auth/internal/serviceerrs"
	"github.com/talx-hub/gopher-auth/internal/utils/auth"
)

const (
	msgAuthRequired   = "Authentication required"
	msgForeignProfile = "Not allowed to update another user's profile"
	msgProfileUpdated = "Profile updated successfully"
)

type ProfileHandler struct {
	logger *slog.Logger
	repo   UserRepository
}

func NewProfileHandler(repo UserRepository, log *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		logger: log,
		repo:   repo,
	}
}

// UpdateProfile serves both POST and PUT. The caller must be authenticated
// as the user being updated.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := requestLogger(r, h.logger)

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		respond.Error(ctx, w, log, http.StatusUnauthorized, msgAuthRequired)
		return
	}

	var req dto.UpdateProfileRequest
	if !decodeBody(w, r, log, &req) {
		return
	}
	if rejectInvalid(w, r, log, req.IsValid()) {
		return
	}

	if claims.UserID != req.UserID {
		log.LogAttrs(ctx,
			slog.LevelWarn,
			"profile update for another user rejected",
			slog.String("token_user_id", claims.UserID),
			slog.String("target_user_id", req.UserID),
		)
		respond.Error(ctx, w, log, http.StatusForbidden, msgForeignProfile)
		return
	}

	u, err := h.repo.UpdateProfile(ctx, req.UserID, req.ToUpdate())
	if errors.Is(err, serviceerrs.ErrNotFound) {
		respond.Error(ctx, w, log, http.StatusNotFound, msgUserNotFound)
		return
	}
	if err != nil {
		respond.Internal(ctx, w, log, "failed to update profile", err)
		return
	}

	respond.JSON(ctx, w, log, http.StatusOK, dto.UserEnvelope{
		Success: true,
		Message: msgProfileUpdated,
		User:    dto.NewUserResponse(u),
	})
}
