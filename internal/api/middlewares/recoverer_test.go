package middlewares

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talx-hub/gopher-auth/internal/api/dto"
	"github.com/talx-hub/gopher-auth/internal/utils/logger"
)

func TestRecoverer(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, slog.LevelInfo)

	inner := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil map write")
	})
	h := Logging(log)(Recoverer(log)(inner))

	req := httptest.NewRequest(http.MethodGet, "/api/users/u-1", http.NoBody)
	rr := httptest.NewRecorder()
	require.NotPanics(t, func() { h.ServeHTTP(rr, req) })

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Internal server error", resp.Message)

	out := buf.String()
	assert.Contains(t, out, "handler panicked")
	assert.Contains(t, out, "nil map write")
	assert.Contains(t, out, "status=500")
}

func TestRecoverer_abortHandlerPropagates(t *testing.T) {
	inner := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	})
	h := Recoverer(slog.Default())(inner)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), req)
	})
}
