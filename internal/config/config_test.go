package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhuquanbin/ttl-cache/internal/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func mapLookup(vars map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Cache.Shards)
	assert.Equal(t, 10*time.Second, cfg.Cache.PartitionWidth)
	assert.Equal(t, 7*24*time.Hour, cfg.Cache.DefaultTTL)
	assert.Equal(t, 1024, cfg.Cache.SweepBatchSize)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "config.yaml", `
cache:
  shards: 4
  partition_width: 30s
  sweep_interval: 250ms
workload:
  workers: 2
  max_ttl: 1m
log_level: debug
`)

	cfg := config.Default()
	require.NoError(t, config.LoadFile(path, cfg))
	assert.Equal(t, 4, cfg.Cache.Shards)
	assert.Equal(t, 30*time.Second, cfg.Cache.PartitionWidth)
	assert.Equal(t, 250*time.Millisecond, cfg.Cache.SweepInterval)
	assert.Equal(t, 2, cfg.Workload.Workers)
	assert.Equal(t, time.Minute, cfg.Workload.MaxTTL)
	assert.Equal(t, "debug", cfg.LogLevel)

	// untouched fields keep their defaults
	assert.Equal(t, 7*24*time.Hour, cfg.Cache.DefaultTTL)
	assert.Equal(t, 10000, cfg.Workload.Keys)
}

func TestLoadFile_Invalid(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "config.yaml", "cache: [")
	err := config.LoadFile(path, config.Default())
	require.Error(t, err)

	var ce *config.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, path, ce.Path)

	err = config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), config.Default())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	require.NoError(t, cfg.ApplyEnv(mapLookup(map[string]string{
		"TTLCACHE_SHARDS":           "16",
		"TTLCACHE_SWEEP_INTERVAL":   "5s",
		"TTLCACHE_OPERATIONS":       "42",
		"TTLCACHE_LOG_LEVEL":        "warn",
		"TTLCACHE_SWEEP_BATCH_SIZE": "",
		"UNRELATED":                 "1",
	})))
	assert.Equal(t, 16, cfg.Cache.Shards)
	assert.Equal(t, 5*time.Second, cfg.Cache.SweepInterval)
	assert.Equal(t, 42, cfg.Workload.Operations)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 1024, cfg.Cache.SweepBatchSize)
}

func TestApplyEnv_Invalid(t *testing.T) {
	t.Parallel()

	err := config.Default().ApplyEnv(mapLookup(map[string]string{
		"TTLCACHE_MAX_TTL": "forever",
	}))
	var ce *config.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "workload.max_ttl", ce.Field)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Cache.Shards = 0
	cfg.Cache.PartitionWidth = 1500 * time.Millisecond
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	require.Error(t, err)

	var fields []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var ce *config.ConfigError
		require.True(t, errors.As(e, &ce))
		fields = append(fields, ce.Field)
	}
	assert.Equal(t, []string{"cache.shards", "cache.partition_width", "log_level"}, fields)
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `
cache:
  shards: 4
workload:
  workers: 2
`)
	envFile := writeFile(t, ".env", "TTLCACHE_SHARDS=8\nTTLCACHE_WORKERS=3\n")
	t.Setenv("TTLCACHE_WORKERS", "5")

	cfg, err := config.Load(path, envFile)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Cache.Shards, "dotenv overrides the file")
	assert.Equal(t, 5, cfg.Workload.Workers, "environment overrides dotenv")
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("TTLCACHE_SHARDS", "-1")

	_, err := config.Load("", "")
	var ce *config.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "cache.shards", ce.Field)

	_, err = config.Load("", filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}
