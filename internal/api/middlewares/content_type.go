package middlewares

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/talx-hub/gopher-auth/internal/api/respond"
)

const msgUnsupportedMedia = "Content-Type must be application/json"

// discardWriter swallows the bare 415 chi writes on rejection.
type discardWriter struct {
	header http.Header
}

func (d *discardWriter) Header() http.Header {
	return d.header
}

func (d *discardWriter) Write(b []byte) (int, error) {
	return len(b), nil
}

func (d *discardWriter) WriteHeader(int) {}

// AllowContentType keeps chi's media type matching but answers a rejected
// request with the JSON error envelope.
func AllowContentType(log *slog.Logger, contentTypes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accepted := false
			check := middleware.AllowContentType(contentTypes...)(
				http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
					accepted = true
				}))
			check.ServeHTTP(&discardWriter{header: make(http.Header)}, r)

			if !accepted {
				respond.Error(r.Context(), w, log,
					http.StatusUnsupportedMediaType, msgUnsupportedMedia)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
