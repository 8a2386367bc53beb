package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talx-hub/gopher-auth/internal/api/dto"
	"github.com/talx-hub/gopher-auth/internal/model/user"
	"github.com/talx-hub/gopher-auth/internal/service/config"
	"github.com/talx-hub/gopher-auth/internal/utils/auth"
)

const testSecret = "router-secret"

type stubHandler struct {
	name string
}

func (s stubHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Handler", s.name)
	w.WriteHeader(http.StatusTeapot)
}

type h struct{}

func (h) Register(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "register"}.ServeHTTP(w, r)
}

func (h) Login(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "login"}.ServeHTTP(w, r)
}

func (h) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "update_profile"}.ServeHTTP(w, r)
}

func (h) GetUser(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "get_user"}.ServeHTTP(w, r)
}

func (h) Health(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "health"}.ServeHTTP(w, r)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	r := New(&config.Config{
		SecretKey:   testSecret,
		LandingPage: "/welcome.html",
	}, nil)
	r.SetRouter(h{})
	srv := httptest.NewServer(r.GetRouter())
	t.Cleanup(srv.Close)
	return srv
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestCustomRouter_Route_happyTests(t *testing.T) {
	srv := newTestServer(t)

	token, err := auth.BuildJWTString(
		user.User{ID: 1, UserID: "u-1", Email: "a@x.com"}, []byte(testSecret), time.Hour)
	require.NoError(t, err)

	tests := []struct {
		method   string
		path     string
		body     string
		token    string
		wantName string
		wantCode int
	}{
		{http.MethodPost, "/api/auth/register", "{}", "", "register", http.StatusTeapot},
		{http.MethodPost, "/api/auth/login", "{}", "", "login", http.StatusTeapot},
		{http.MethodPost, "/api/auth/update-profile", "{}", token, "update_profile", http.StatusTeapot},
		{http.MethodPut, "/api/auth/update-profile", "{}", token, "update_profile", http.StatusTeapot},
		{http.MethodGet, "/api/users/u-1", "", "", "get_user", http.StatusTeapot},
		{http.MethodGet, "/api/health", "", "", "health", http.StatusTeapot},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)
			req.Header.Set("Content-Type", "application/json")
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			err = resp.Body.Close()
			require.NoError(t, err)

			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Equal(t, tt.wantName, resp.Header.Get("X-Handler"))
		})
	}
}

func TestCustomRouter_Route_landingRedirect(t *testing.T) {
	srv := newTestServer(t)

	resp, err := noRedirectClient().Get(srv.URL + "/")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/welcome.html", resp.Header.Get("Location"))
}

func TestCustomRouter_Route_unauthenticated(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		header string
	}{
		{"POST no token", http.MethodPost, ""},
		{"PUT no token", http.MethodPut, ""},
		{"PUT garbage token", http.MethodPut, "Bearer garbage"},
		{"POST basic scheme", http.MethodPost, "Basic dTpw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method,
				srv.URL+"/api/auth/update-profile", strings.NewReader(`{"userId":"u-1","name":"X"}`))
			require.NoError(t, err)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer func() {
				require.NoError(t, resp.Body.Close())
			}()

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Empty(t, resp.Header.Get("X-Handler"))
		})
	}
}

func TestCustomRouter_Route_wrong_routes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method   string
		path     string
		wantMsg  string
		wantCode int
	}{
		{http.MethodPost, "/api/", "Endpoint not found", http.StatusNotFound},
		{http.MethodGet, "/api", "Endpoint not found", http.StatusNotFound},
		{http.MethodGet, "/api/users/", "Endpoint not found", http.StatusNotFound},
		{http.MethodGet, "/api/users/u-1/orders", "Endpoint not found", http.StatusNotFound},
		{http.MethodPost, "/api/auth/login/", "Endpoint not found", http.StatusNotFound},
		{http.MethodGet, "/api/health/", "Endpoint not found", http.StatusNotFound},
		{http.MethodGet, "/ping", "Endpoint not found", http.StatusNotFound},

		{http.MethodPost, "/", "Method not allowed", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/auth/register", "Method not allowed", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/auth/login", "Method not allowed", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/auth/update-profile", "Method not allowed", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/api/auth/update-profile", "Method not allowed", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/users/u-1", "Method not allowed", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/health?x=true", "Method not allowed", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, http.NoBody)
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer func() {
				require.NoError(t, resp.Body.Close())
			}()

			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			var body dto.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantMsg, body.Message)
			if tt.wantCode == http.StatusNotFound {
				assert.Equal(t, strings.SplitN(tt.path, "?", 2)[0], body.Path)
			}
		})
	}
}

func TestCustomRouter_Route_contentType(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path        string
		contentType string
		wantName    string
		wantCode    int
	}{
		{"/api/auth/login", "application/x-www-form-urlencoded", "", http.StatusUnsupportedMediaType},
		{"/api/auth/register", "application/x-www-form-urlencoded", "", http.StatusUnsupportedMediaType},
		{"/api/auth/register", "text/plain", "", http.StatusUnsupportedMediaType},
		{"/api/auth/login", "application/json; charset=utf-8", "login", http.StatusTeapot},
	}

	for _, tt := range tests {
		t.Run(tt.path+" "+tt.contentType, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, srv.URL+tt.path,
				strings.NewReader(`{"email":"a@x.com","password":"secret123"}`))
			require.NoError(t, err)
			req.Header.Set("Content-Type", tt.contentType)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer func() {
				require.NoError(t, resp.Body.Close())
			}()

			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Equal(t, tt.wantName, resp.Header.Get("X-Handler"))
			if tt.wantName != "" {
				return
			}

			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			var body dto.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, "Content-Type must be application/json", body.Message)
		})
	}
}

type panickingHealth struct {
	h
}

func (panickingHealth) Health(http.ResponseWriter, *http.Request) {
	panic("health exploded")
}

func TestCustomRouter_Route_panicIsJSON(t *testing.T) {
	r := New(&config.Config{SecretKey: testSecret}, nil)
	r.SetRouter(panickingHealth{})
	srv := httptest.NewServer(r.GetRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer func() {
		require.NoError(t, resp.Body.Close())
	}()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, "Internal server error", body.Message)
	assert.NotContains(t, body.Message, "exploded")
}
