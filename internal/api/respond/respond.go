// Package respond writes the JSON envelopes shared by every endpoint.
package respond

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/talx-hub/gopher-auth/internal/api/dto"
	"github.com/talx-hub/gopher-auth/internal/model"
)

const MessageInternal = "Internal server error"

func JSON(ctx context.Context, w http.ResponseWriter, log *slog.Logger, status int, payload any) {
	w.Header().Set(model.HeaderContentType, model.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.LogAttrs(ctx,
			slog.LevelError,
			"failed to encode response",
			slog.String("request_id", middleware.GetReqID(ctx)),
			slog.Any(model.KeyLoggerError, err),
		)
	}
}

func Error(ctx context.Context, w http.ResponseWriter, log *slog.Logger, status int, message string) {
	JSON(ctx, w, log, status, dto.ErrorResponse{
		Success: false,
		Message: message,
	})
}

// Internal logs cause and answers with a generic 500 so that no internals
// reach the caller.
func Internal(ctx context.Context, w http.ResponseWriter, log *slog.Logger, msg string, cause error) {
	log.LogAttrs(ctx,
		slog.LevelError,
		msg,
		slog.String("request_id", middleware.GetReqID(ctx)),
		slog.Any(model.KeyLoggerError, cause),
	)
	Error(ctx, w, log, http.StatusInternalServerError, MessageInternal)
}
