package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: http://localhost:5000/
camunda:
  broker_address: localhost:26500
workers:
  create-analysis:
    enabled: true
  delete-analysis:
    enabled: false
    timeout: 5000
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.Backend.BaseURL)
	assert.Equal(t, "/api/analyses", cfg.Backend.AnalysesPath)
	assert.Equal(t, 15000, cfg.Backend.Timeout)
	assert.Equal(t, "iedi-analysis", cfg.Camunda.AnalysisProcessID)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "json", cfg.Logging.Format)

	create := GetWorkerConfig(cfg, "create-analysis")
	assert.True(t, create.Enabled)
	assert.Equal(t, 10, create.MaxJobsActive)
	assert.Equal(t, 30000, create.Timeout)
	assert.Equal(t, 3, create.MaxRetries)

	assert.False(t, IsWorkerEnabled(cfg, "delete-analysis"))
	assert.Equal(t, 5*time.Second, GetDuration(GetWorkerConfig(cfg, "delete-analysis").Timeout))
	assert.True(t, IsWorkerEnabled(cfg, "notify-analysis"))
	assert.NoError(t, cfg.RequireEngine())
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	t.Setenv("IEDI_BACKEND_BASE_URL", "https://iedi.example.com")
	t.Setenv("IEDI_BACKEND_ANALYSES_PATH", "api/analysis")
	t.Setenv("REDIS_PASSWORD", "s3cret")

	path := writeConfig(t, `
backend:
  base_url: http://ignored:5000
  timezone: America/Sao_Paulo
redis:
  address: localhost:6379
  password: ${REDIS_PASSWORD}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://iedi.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, "/api/analysis", cfg.Backend.AnalysesPath)
	assert.Equal(t, "s3cret", cfg.Redis.Password)

	loc, err := cfg.Backend.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", loc.String())
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		errMsg string
	}{
		{
			name:   "missing backend",
			body:   "app:\n  name: iedi\n",
			errMsg: "backend.base_url is required",
		},
		{
			name:   "non http backend",
			body:   "backend:\n  base_url: localhost:5000\n",
			errMsg: "must be an http(s) URL",
		},
		{
			name:   "bad timezone",
			body:   "backend:\n  base_url: http://x\n  timezone: Mars/Olympus\n",
			errMsg: "backend.timezone",
		},
		{
			name:   "sns without topic",
			body:   "backend:\n  base_url: http://x\nnotifications:\n  enabled: true\n  channel: SNS\n",
			errMsg: "topic_arn is required",
		},
		{
			name:   "ses without recipients",
			body:   "backend:\n  base_url: http://x\nnotifications:\n  enabled: true\n  channel: ses\n  from_email: a@b.c\n",
			errMsg: "to_emails are required",
		},
		{
			name:   "unknown channel",
			body:   "backend:\n  base_url: http://x\nnotifications:\n  enabled: true\n  channel: sms\n",
			errMsg: "notifications.channel must be",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_RequireEngine(t *testing.T) {
	cfg := &Config{}
	assert.ErrorContains(t, cfg.RequireEngine(), "camunda.broker_address")

	cfg.Camunda.BrokerAddress = "zeebe:26500"
	cfg.Cache.Enabled = true
	assert.ErrorContains(t, cfg.RequireEngine(), "redis.address")
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
