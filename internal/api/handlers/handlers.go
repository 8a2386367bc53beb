package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/talx-hub/gopher-auth/internal/api/dto"
	"github.com/talx-hub/gopher-auth/internal/api/respond"
	"github.com/talx-hub/gopher-auth/internal/model"
	"github.com/talx-hub/gopher-auth/internal/model/user"
	"github.com/talx-hub/gopher-auth/internal/utils/logger"
)

const maxBodyBytes = 1 << 20

const (
	msgInvalidBody  = "Invalid request body"
	msgUserNotFound = "User not found"
)

type UserRepository interface {
	user.Repository
}

type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, hashed string) (bool, error)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type normalizer interface {
	Normalize()
}

func requestLogger(r *http.Request, fallback *slog.Logger) *slog.Logger {
	return logger.FromContextOr(r.Context(), fallback)
}

// decodeBody reads a JSON body into dst and normalizes it. On failure the
// 400 response is already written.
func decodeBody(w http.ResponseWriter, r *http.Request, log *slog.Logger, dst normalizer) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		log.LogAttrs(r.Context(),
			slog.LevelDebug,
			"failed to decode request body",
			slog.Any(model.KeyLoggerError, err),
		)
		respond.Error(r.Context(), w, log, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	dst.Normalize()
	return true
}

// rejectInvalid writes a 400 for validation errors and a 500 for anything
// else. It reports whether a response was written.
func rejectInvalid(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) bool {
	if err == nil {
		return false
	}
	if vErr, ok := dto.IsValidationError(err); ok {
		respond.Error(r.Context(), w, log, http.StatusBadRequest, vErr.Message)
		return true
	}
	respond.Internal(r.Context(), w, log, "unexpected validation failure", err)
	return true
}
