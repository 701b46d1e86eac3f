package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"FINTRACK_CONFIG", "API_HOST", "HEALTH_HOST", "HEALTH_SCHEDULE", "HEALTH_TIMEOUT",
		"USER_SERVICE_PORT", "EXPENSE_SERVICE_PORT", "REPORT_SERVICE_PORT",
		"USER_HEALTH_PORT", "EXPENSE_HEALTH_PORT", "REPORT_HEALTH_PORT", "WEB_FRONTEND_PORT",
		"FINTRACK_SESSION_BACKEND", "FINTRACK_SESSION_PATH", "LOG_LEVEL", "LOG_FORMAT",
		"WEB_ALLOW_ORIGINS", "WEB_SECURE_COOKIES",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8001/api/v1", cfg.Services.UserURL())
	assert.Equal(t, "http://localhost:8002/api/v1", cfg.Services.ExpenseURL())
	assert.Equal(t, "http://localhost:8003/api/v1", cfg.Services.ReportURL())
	assert.Equal(t, 8081, cfg.Health.UserPort)
	assert.Equal(t, 8082, cfg.Health.ExpensePort)
	assert.Equal(t, 8083, cfg.Health.ReportPort)
	assert.Equal(t, 5*time.Second, cfg.Health.Timeout)
	assert.Equal(t, 8000, cfg.Web.Port)
	assert.Equal(t, "keyring", cfg.Session.Backend)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("USER_SERVICE_PORT", "9001")
	t.Setenv("EXPENSE_SERVICE_PORT", "9002")
	t.Setenv("API_HOST", "api.internal")
	t.Setenv("HEALTH_TIMEOUT", "750ms")
	t.Setenv("FINTRACK_SESSION_BACKEND", "sqlite")
	t.Setenv("WEB_ALLOW_ORIGINS", "http://a.example,http://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://api.internal:9001/api/v1", cfg.Services.UserURL())
	assert.Equal(t, "http://api.internal:9002/api/v1", cfg.Services.ExpenseURL())
	// Unset ports keep their own fallback
	assert.Equal(t, "http://api.internal:8003/api/v1", cfg.Services.ReportURL())
	assert.Equal(t, 750*time.Millisecond, cfg.Health.Timeout)
	assert.Equal(t, "sqlite", cfg.Session.Backend)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Web.AllowOrigins)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "non-numeric port", key: "USER_SERVICE_PORT", value: "abc", wantErr: "USER_SERVICE_PORT"},
		{name: "port out of range", key: "REPORT_SERVICE_PORT", value: "70000", wantErr: "ReportPort"},
		{name: "zero port", key: "EXPENSE_HEALTH_PORT", value: "0", wantErr: "ExpensePort"},
		{name: "bad timeout", key: "HEALTH_TIMEOUT", value: "soon", wantErr: "HEALTH_TIMEOUT"},
		{name: "negative timeout", key: "HEALTH_TIMEOUT", value: "-1s", wantErr: "Timeout"},
		{name: "unknown session backend", key: "FINTRACK_SESSION_BACKEND", value: "cookie", wantErr: "Backend"},
		{name: "unknown log format", key: "LOG_FORMAT", value: "xml", wantErr: "Format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "fintrack.yaml")
	data := []byte(`
services:
  host: yaml.host
  user_port: 7001
health:
  timeout: 2s
  schedule: "*/5 * * * *"
logging:
  level: debug
  format: json
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	t.Setenv("FINTRACK_CONFIG", path)
	t.Setenv("USER_SERVICE_PORT", "7101")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "yaml.host", cfg.Services.Host)
	assert.Equal(t, 7101, cfg.Services.UserPort, "env wins over file")
	assert.Equal(t, 8002, cfg.Services.ExpensePort, "defaults survive partial files")
	assert.Equal(t, 2*time.Second, cfg.Health.Timeout)
	assert.Equal(t, "*/5 * * * *", cfg.Health.Schedule)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("FINTRACK_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
