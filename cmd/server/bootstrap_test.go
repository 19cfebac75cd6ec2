package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studyhub/studyhub/internal/app"
	"github.com/studyhub/studyhub/internal/models"
)

func testConfig() *app.Config {
	return &app.Config{
		Database: app.DatabaseConfig{
			Driver: "sqlite",
			DSN:    "file:bootstrap-" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1",
		},
		Auth: app.AuthConfig{JWT: app.JWTSettings{Secret: "bootstrap-secret", Issuer: "studyhub"}},
		Maintenance: app.MaintenanceConfig{
			Enabled:         true,
			IntegrityAudit:  "@every 1h",
			ProgressCleanup: "@every 1h",
			RepairOrdering:  true,
		},
		Monitoring: app.MonitoringConfig{Health: app.HealthConfig{Enabled: true}},
	}
}

func TestBootstrapRuntimeServesHealth(t *testing.T) {
	stack, err := bootstrapRuntime(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), zap.NewNop()) })

	require.NotNil(t, stack.Auditor)
	require.True(t, stack.DB.Migrator().HasTable(&models.Folder{}))

	w := httptest.NewRecorder()
	stack.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stack.Shutdown(context.Background(), zap.NewNop())
	require.Nil(t, stack.DB)
	require.Nil(t, stack.Auditor)
}

func TestBootstrapRuntimeWithoutMaintenance(t *testing.T) {
	cfg := testConfig()
	cfg.Maintenance.Enabled = false

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), zap.NewNop()) })
	require.Nil(t, stack.Auditor)
}

func TestBootstrapRuntimeRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.JWT.Secret = " "
	_, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.ErrorContains(t, err, "auth.jwt.secret")

	cfg = testConfig()
	cfg.Database.Driver = "oracle"
	_, err = bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.ErrorContains(t, err, "unsupported database driver")

	_, err = bootstrapRuntime(context.Background(), nil, zap.NewNop())
	require.Error(t, err)
}

func TestLoadApplicationConfigPaths(t *testing.T) {
	_, err := loadApplicationConfig(filepath.Join(t.TempDir(), "missing"))
	require.ErrorContains(t, err, "does not exist")

	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server:\n  port: 9191\n"), 0o600))

	cfg, err := loadApplicationConfig(file)
	require.NoError(t, err)
	require.Equal(t, 9191, cfg.Server.Port)

	cfg, err = loadApplicationConfig(dir)
	require.NoError(t, err)
	require.Equal(t, 9191, cfg.Server.Port)
}
