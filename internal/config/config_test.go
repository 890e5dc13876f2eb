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
	for _, k := range []string{
		"CALLCENTER_API_URL", "CALLCENTER_SESSION_FILE", "CALLCENTER_DOWNLOAD_DIR",
		"CALLCENTER_HTTP_TIMEOUT", "CALLCENTER_READ_RETRY", "CALLCENTER_MARK_IN_PROGRESS", "ENVIRONMENT", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:8000", cfg.APIURL)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.MarkInProgressOnStart)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "callcenter.yaml")

	cfg := DefaultConfig()
	cfg.APIURL = "https://calls.example.com"
	cfg.HTTPTimeout = 3 * time.Second
	cfg.MarkInProgressOnStart = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://calls.example.com", loaded.APIURL)
	assert.Equal(t, 3*time.Second, loaded.HTTPTimeout)
	assert.True(t, loaded.MarkInProgressOnStart)
}

func TestConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CALLCENTER_API_URL", "http://backend:9000")
	t.Setenv("CALLCENTER_HTTP_TIMEOUT", "2s")
	t.Setenv("CALLCENTER_MARK_IN_PROGRESS", "1")
	t.Setenv("CALLCENTER_READ_RETRY", "0s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://backend:9000", cfg.APIURL)
	assert.Equal(t, 2*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.MarkInProgressOnStart)
	assert.Zero(t, cfg.ReadRetryMaxElapsed)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestConfig_BadTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("CALLCENTER_HTTP_TIMEOUT", "soon")
	_, err := Load("")
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIURL = "ftp://x"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.APIURL = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.HTTPTimeout = 0
	assert.Error(t, cfg.Validate())
}

func TestLoad_MissingAndInvalidFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("api_url: [unterminated"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)
}
