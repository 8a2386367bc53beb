package middlewares

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/talx-hub/gopher-auth/internal/api/respond"
	"github.com/talx-hub/gopher-auth/internal/model"
	"github.com/talx-hub/gopher-auth/internal/serviceerrs"
	"github.com/talx-hub/gopher-auth/internal/utils/auth"
	"github.com/talx-hub/gopher-auth/internal/utils/logger"
)

const (
	msgMissingToken = "Authentication required"
	msgInvalidToken = "Invalid or expired token"
	msgTokenExpired = "Token expired"
)

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(model.HeaderAuthorization)
	if len(header) < len(model.BearerPrefix) ||
		!strings.EqualFold(header[:len(model.BearerPrefix)], model.BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(model.BearerPrefix):])
	return token, token != ""
}

// Authentication verifies the bearer token and stores its claims in the
// request context.
func Authentication(secret []byte, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		authFunc := func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			reqLog := logger.FromContextOr(ctx, log)

			tokenStr, ok := bearerToken(r)
			if !ok {
				reqLog.LogAttrs(ctx,
					slog.LevelDebug,
					"failed to find token in request",
				)
				respond.Error(ctx, w, reqLog, http.StatusUnauthorized, msgMissingToken)
				return
			}

			claims, err := auth.CheckToken(tokenStr, secret)
			if err != nil {
				reqLog.LogAttrs(ctx,
					slog.LevelWarn,
					"authentication failed",
					slog.Any(model.KeyLoggerError, err),
				)
				msg := msgInvalidToken
				if errors.Is(err, serviceerrs.ErrTokenExpired) {
					msg = msgTokenExpired
				}
				respond.Error(ctx, w, reqLog, http.StatusUnauthorized, msg)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(ctx, claims)))
		}
		return http.HandlerFunc(authFunc)
	}
}
