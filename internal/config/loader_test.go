package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molnotation/internal/config"
)

const sampleYAML = `
log:
  level: debug
  format: console
notation:
  canonize_chiralities: true
  extension_block: false
  operation_limit: 5000
  cache_ttl: 90m
  cache_jitter: 0.25
redis:
  enabled: true
  addr: "cache:6379"
  key_prefix: "mn:"
metrics:
  enabled: true
  namespace: chem
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "molnotation.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.True(t, cfg.Notation.CanonizeChiralities)
	assert.False(t, cfg.Notation.ExtensionBlock)
	assert.Equal(t, 5000, cfg.Notation.OperationLimit)
	assert.Equal(t, 90*time.Minute, cfg.Notation.CacheTTL)
	assert.Equal(t, 0.25, cfg.Notation.CacheJitter)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, "mn:", cfg.Redis.KeyPrefix)
	assert.Equal(t, "chem", cfg.Metrics.Namespace)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := config.Load(writeConfig(t, "log: [unclosed"))
	assert.Error(t, err)
}

func TestLoad_ValidationFailure(t *testing.T) {
	_, err := config.Load(writeConfig(t, "log:\n  level: chatty\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultLogLevel, cfg.Log.Level)
	assert.True(t, cfg.Notation.ExtensionBlock)
	assert.Equal(t, config.DefaultCacheTTL, cfg.Notation.CacheTTL)
	assert.Equal(t, config.DefaultCacheJitter, cfg.Notation.CacheJitter)
	assert.Equal(t, []string{"stderr"}, cfg.Log.OutputPaths)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MOLNOTATION_LOG_LEVEL", "warn")
	t.Setenv("MOLNOTATION_NOTATION_OPERATION_LIMIT", "42")
	t.Setenv("MOLNOTATION_NOTATION_EXTENSION_BLOCK", "false")

	cfg, err := config.Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 42, cfg.Notation.OperationLimit)
	assert.False(t, cfg.Notation.ExtensionBlock)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MOLNOTATION_REDIS_ENABLED", "true")
	t.Setenv("MOLNOTATION_REDIS_ADDR", "10.0.0.1:6379")

	cfg, err := config.LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "10.0.0.1:6379", cfg.Redis.Addr)
}

func TestMustLoad(t *testing.T) {
	assert.NotPanics(t, func() { config.MustLoad(writeConfig(t, sampleYAML)) })
	assert.Panics(t, func() { config.MustLoad("/nonexistent/molnotation.yaml") })
}
