package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abriltello/portafolioAI/internal/app"
	"github.com/abriltello/portafolioAI/internal/common"
)

const (
	adminEmail   = "admin@example.com"
	testPassword = "secret123"
)

type testEnv struct {
	t       *testing.T
	app     *app.App
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Backend = "file"
	cfg.Storage.DataPath = t.TempDir()
	cfg.Auth.BcryptCost = 4
	cfg.Auth.AdminEmails = []string{adminEmail}
	cfg.Clients.EODHD.APIKey = ""
	cfg.Clients.Gemini.APIKey = ""

	a, err := app.NewAppWithConfig(context.Background(), cfg, common.NewSilentLogger())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	return &testEnv{t: t, app: a, handler: NewServer(a).Handler()}
}

// do sends a request with an optional bearer token and JSON body.
func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

// signup registers and logs in a user, returning the user id and access token.
func (e *testEnv) signup(name, email string) (string, string) {
	e.t.Helper()
	rr := e.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": testPassword,
	})
	require.Equal(e.t, http.StatusCreated, rr.Code, rr.Body.String())
	var reg struct {
		UserID string `json:"user_id"`
	}
	decodeData(e.t, rr, &reg)

	rr = e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": testPassword})
	require.Equal(e.t, http.StatusOK, rr.Code, rr.Body.String())
	var login struct {
		AccessToken string `json:"access_token"`
	}
	decodeData(e.t, rr, &login)
	return reg.UserID, login.AccessToken
}

// decodeData unwraps the success envelope into v.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var env struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	require.Equal(t, "ok", env.Status)
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return resp
}

func TestHealthAndVersion(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = e.do(http.MethodGet, "/api/version", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var v common.VersionInfo
	decodeData(t, rr, &v)
	assert.Equal(t, common.GetVersion(), v.Version)

	rr = e.do(http.MethodPost, "/api/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "GET, HEAD", rr.Header().Get("Allow"))
}

func TestUnknownRoute_JSON404(t *testing.T) {
	e := newTestEnv(t)
	rr := e.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found", decodeError(t, rr).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestEnv(t)
	e.do(http.MethodGet, "/api/health", "", nil)
	e.do(http.MethodGet, "/api/portfolio/abc", "", nil)

	rr := e.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `portafolio_http_requests_total{method="GET",route="/api/health",status="200"} 1`)
	assert.Contains(t, body, `route="/api/portfolio/{user_id}",status="401"`)
	assert.NotContains(t, body, `route="/api/portfolio/abc"`)
}

func TestCORSPreflight(t *testing.T) {
	e := newTestEnv(t)
	rr := e.do(http.MethodOptions, "/api/optimize", "", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Expose-Headers"), "X-New-Access-Token")
}

func TestCorrelationID(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	assert.Equal(t, "req-42", rr.Header().Get("X-Correlation-ID"))

	rr = e.do(http.MethodGet, "/api/health", "", nil)
	assert.Len(t, rr.Header().Get("X-Correlation-ID"), 8)
}

func TestBearer_InvalidToken(t *testing.T) {
	e := newTestEnv(t)
	rr := e.do(http.MethodGet, "/api/auth/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("WWW-Authenticate"), "Bearer"))
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(common.NewSilentLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	assert.Equal(t, "192.0.2.10", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", clientIP(req))
}

func TestDecodeJSON_Errors(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{bad"))
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_request", decodeError(t, rr).Code)

	rr = e.do(http.MethodPost, "/api/auth/login", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
