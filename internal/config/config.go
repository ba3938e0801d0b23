// Package config loads the configuration of the ttlcache command.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	ttlcache "github.com/zhuquanbin/ttl-cache"
	"github.com/zhuquanbin/ttl-cache/index"
)

// Config is the configuration of a workload run.
type Config struct {
	Cache    CacheConfig    `yaml:"cache"`
	Workload WorkloadConfig `yaml:"workload"`
	LogLevel string         `yaml:"log_level"`
}

// CacheConfig configures the cache under load.
type CacheConfig struct {
	Shards         int           `yaml:"shards"`
	PartitionWidth time.Duration `yaml:"partition_width"`
	DefaultTTL     time.Duration `yaml:"default_ttl"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`
	SweepBatchSize int           `yaml:"sweep_batch_size"`
}

// WorkloadConfig configures the randomized workload.
type WorkloadConfig struct {
	Workers    int           `yaml:"workers"`
	Operations int           `yaml:"operations"`
	Keys       int           `yaml:"keys"`
	MaxTTL     time.Duration `yaml:"max_ttl"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Shards:         1,
			PartitionWidth: index.DefaultPartitionWidth,
			DefaultTTL:     ttlcache.DefaultTTL,
			SweepInterval:  time.Second,
			SweepBatchSize: ttlcache.DefaultSweepBatchSize,
		},
		Workload: WorkloadConfig{
			Workers:    8,
			Operations: 100000,
			Keys:       10000,
			MaxTTL:     2 * time.Second,
		},
		LogLevel: "info",
	}
}

// Level returns the zerolog level named by LogLevel.
func (c *Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, &ConfigError{Field: "log_level", Err: err}
	}
	return level, nil
}

// Validate checks every field and reports all invalid ones.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(field string, format string, args ...any) {
		errs = append(errs, &ConfigError{Field: field, Err: fmt.Errorf(format, args...)})
	}

	if c.Cache.Shards < 1 {
		invalid("cache.shards", "must be at least 1: %d", c.Cache.Shards)
	}
	if err := index.CheckPartitionWidth(c.Cache.PartitionWidth); err != nil {
		errs = append(errs, &ConfigError{Field: "cache.partition_width", Err: err})
	}
	if c.Cache.DefaultTTL <= 0 {
		invalid("cache.default_ttl", "must be positive: %s", c.Cache.DefaultTTL)
	}
	if c.Cache.SweepInterval <= 0 {
		invalid("cache.sweep_interval", "must be positive: %s", c.Cache.SweepInterval)
	}
	if c.Cache.SweepBatchSize < 0 {
		invalid("cache.sweep_batch_size", "must not be negative: %d", c.Cache.SweepBatchSize)
	}
	if c.Workload.Workers < 1 {
		invalid("workload.workers", "must be at least 1: %d", c.Workload.Workers)
	}
	if c.Workload.Operations < 0 {
		invalid("workload.operations", "must not be negative: %d", c.Workload.Operations)
	}
	if c.Workload.Keys < 1 {
		invalid("workload.keys", "must be at least 1: %d", c.Workload.Keys)
	}
	if c.Workload.MaxTTL <= 0 {
		invalid("workload.max_ttl", "must be positive: %s", c.Workload.MaxTTL)
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ConfigError reports an invalid configuration file or field.
type ConfigError struct {
	Path  string
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return "config error in " + e.Path + ": " + e.Err.Error()
	}
	if e.Field != "" {
		return "config error for " + e.Field + ": " + e.Err.Error()
	}
	return "config error: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
