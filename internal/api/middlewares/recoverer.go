package middlewares

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/talx-hub/gopher-auth/internal/api/respond"
	"github.com/talx-hub/gopher-auth/internal/model"
	"github.com/talx-hub/gopher-auth/internal/utils/logger"
)

// Recoverer turns a handler panic into the JSON 500 envelope. It must run
// inside Logging so that the access log records the 500.
func Recoverer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler { //nolint:errorlint // sentinel compared as chi does
					panic(rvr)
				}

				reqLog := logger.FromContextOr(r.Context(), log)
				reqLog.LogAttrs(r.Context(),
					slog.LevelError,
					"handler panicked",
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.Any(model.KeyLoggerError, fmt.Errorf("panic: %v", rvr)),
					slog.String("stack", string(debug.Stack())),
				)
				respond.Error(r.Context(), w, reqLog,
					http.StatusInternalServerError, respond.MessageInternal)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
