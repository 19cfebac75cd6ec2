package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studyhub/studyhub/internal/api"
	"github.com/studyhub/studyhub/internal/app"
	iauth "github.com/studyhub/studyhub/internal/auth"
	sharedtestutil "github.com/studyhub/studyhub/internal/database/testutil"
	"github.com/studyhub/studyhub/pkg/response"
)

const (
	jwtSecret = "test-suite-super-secret-key-32-bytes!!"
	jwtIssuer = "test-suite"
)

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Router *gin.Engine
	JWT    *iauth.JWTService
	Config *app.Config
}

// NewEnv provisions a fresh handler test environment with migrations applied.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithAutoMigrate())

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         jwtSecret,
		Issuer:         jwtIssuer,
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	cfg := &app.Config{
		Auth: app.AuthConfig{
			JWT: app.JWTSettings{Secret: jwtSecret, Issuer: jwtIssuer, TTL: time.Hour},
		},
		Content: app.ContentConfig{AllowedHosts: []string{"drive.google.com"}},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			Health:     app.HealthConfig{Enabled: true},
		},
	}

	router, err := api.NewRouter(db, jwtSvc, cfg)
	require.NoError(t, err)

	return &Env{
		T:      t,
		DB:     db,
		Router: router,
		JWT:    jwtSvc,
		Config: cfg,
	}
}

// AdminToken issues an access token for a new administrator.
func (e *Env) AdminToken() string {
	e.T.Helper()
	return e.Token(iauth.AccessTokenInput{UserID: uuid.NewString(), Role: iauth.RoleAdmin, Approved: true, Active: true})
}

// UserToken issues an access token for a new approved, active user and returns its id.
func (e *Env) UserToken() (string, string) {
	e.T.Helper()
	userID := uuid.NewString()
	return e.Token(iauth.AccessTokenInput{UserID: userID, Role: iauth.RoleUser, Approved: true, Active: true}), userID
}

// Token issues an access token for arbitrary claims.
func (e *Env) Token(input iauth.AccessTokenInput) string {
	e.T.Helper()
	token, err := e.JWT.GenerateAccessToken(input)
	require.NoError(e.T, err)
	return token
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router, applying JSON encoding and auth headers automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	switch v := body.(type) {
	case nil:
		buf = bytes.NewBuffer(nil)
	case string:
		buf = bytes.NewBufferString(v)
	default:
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// MustData performs a request, asserts the status and decodes the data payload into dest.
func MustData[T any](e *Env, method, path string, body any, token string, status int) T {
	e.T.Helper()
	w := e.Request(method, path, body, token)
	require.Equal(e.T, status, w.Code, w.Body.String())
	resp := DecodeResponse(e.T, w)
	require.True(e.T, resp.Success, w.Body.String())
	var out T
	DecodeInto(e.T, resp.Data, &out)
	return out
}

// ErrorCode performs a request, asserts the status and returns the error code.
func (e *Env) ErrorCode(method, path string, body any, token string, status int) string {
	e.T.Helper()
	w := e.Request(method, path, body, token)
	require.Equal(e.T, status, w.Code, w.Body.String())
	resp := DecodeResponse(e.T, w)
	require.False(e.T, resp.Success)
	require.NotNil(e.T, resp.Error)
	return resp.Error.Code
}
