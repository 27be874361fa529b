package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("log_level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "https://github.com/trending", cfg.Trending.URL)
	assert.Equal(t, 5, cfg.Trending.Limit)
	assert.Equal(t, 1, cfg.Readme.Retry.MaxAttempts)
	assert.Equal(t, 15000, cfg.Summarizer.MaxDocumentLength)
	assert.Equal(t, 10*time.Second, cfg.Summarizer.Interval)
	require.NotNil(t, cfg.Summarizer.Temperature)
	assert.Equal(t, float32(0.3), *cfg.Summarizer.Temperature)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.False(t, cfg.Database.Enabled())
	assert.False(t, cfg.Telegram.Enabled())
	assert.Empty(t, cfg.Schedule)
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "secret-key")
	t.Setenv("TEST_EMAIL_TO", "me@example.com")

	cfg, err := Parse([]byte(`
summarizer:
  api_key: ${TEST_GEMINI_KEY}
  interval: 2s
email:
  to: $TEST_EMAIL_TO
trending:
  limit: 10
`))
	require.NoError(t, err)

	assert.Equal(t, "secret-key", cfg.Summarizer.APIKey)
	assert.Equal(t, 2*time.Second, cfg.Summarizer.Interval)
	assert.Equal(t, "me@example.com", cfg.Email.To)
	assert.Equal(t, 10, cfg.Trending.Limit)
}

func TestParse_ZeroTemperatureIsKept(t *testing.T) {
	cfg, err := Parse([]byte("summarizer:\n  temperature: 0\n"))
	require.NoError(t, err)

	require.NotNil(t, cfg.Summarizer.Temperature)
	assert.Zero(t, *cfg.Summarizer.Temperature)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("trending: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  host: db\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, "host=db port=5432 user= password= dbname= sslmode=disable", cfg.Database.DSN())
}
