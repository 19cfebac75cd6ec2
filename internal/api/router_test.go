package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studyhub/studyhub/internal/app"
	iauth "github.com/studyhub/studyhub/internal/auth"
	"github.com/studyhub/studyhub/internal/database/testutil"
)

func newTestRouter(t *testing.T, cfg *app.Config) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret", Issuer: "test", AccessTokenTTL: 15 * time.Minute})
	require.NoError(t, err)

	router, err := NewRouter(db, jwtSvc, cfg)
	require.NoError(t, err)
	return router, db
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func enabledMonitoring() *app.Config {
	return &app.Config{
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			Health:     app.HealthConfig{Enabled: true},
		},
	}
}

func TestRouterRequiresDependencies(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "s", Issuer: "test", AccessTokenTTL: time.Minute})
	require.NoError(t, err)

	_, err = NewRouter(nil, jwtSvc, &app.Config{})
	require.Error(t, err)
	_, err = NewRouter(db, nil, &app.Config{})
	require.Error(t, err)
	_, err = NewRouter(db, jwtSvc, nil)
	require.Error(t, err)
}

func TestRouterPublicAndProtectedRoutes(t *testing.T) {
	router, _ := newTestRouter(t, enabledMonitoring())

	w := serve(router, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), `"status":"ok"`)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/tree"},
		{http.MethodGet, "/api/syllabus/tree"},
		{http.MethodPost, "/api/admin/folders"},
		{http.MethodPost, "/api/admin/reorder"},
		{http.MethodPut, "/api/files/abc/bookmark"},
	} {
		w := serve(router, route.method, route.path)
		require.Equalf(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}

	w = serve(router, http.MethodGet, "/api/unknown")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, enabledMonitoring())

	require.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health").Code)

	w := serve(router, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.True(t, strings.Contains(body, `studyhub_api_latency_seconds_count{method="GET",path="/health",status="200"}`), body)
}

func TestRouterMonitoringDisabled(t *testing.T) {
	router, _ := newTestRouter(t, &app.Config{})

	require.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/health").Code)
	require.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/metrics").Code)
}

func TestHealthReportsUnavailableDatabase(t *testing.T) {
	router, db := newTestRouter(t, enabledMonitoring())

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := serve(router, http.MethodGet, "/health")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), "SERVICE_UNAVAILABLE")
}
