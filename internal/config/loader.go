package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "TTLCACHE_"

// LookupFunc looks up an environment variable.
type LookupFunc func(key string) (string, bool)

// Load loads configuration with the following precedence, lowest first:
//  1. Defaults
//  2. The YAML file at path, if path is not empty
//  3. The dotenv file at envFile, if envFile is not empty
//  4. Environment variables (TTLCACHE_*)
//
// The result is validated.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	lookup := LookupFunc(os.LookupEnv)
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		if err != nil {
			return nil, &ConfigError{Path: envFile, Err: err}
		}
		lookup = overlay(lookup, vars)
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile merges the YAML file at path into cfg.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	return nil
}

// overlay returns a lookup that prefers lookup and falls back to vars,
// so variables of the process environment win over a dotenv file.
func overlay(lookup LookupFunc, vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}
}

// ApplyEnv overrides cfg with the TTLCACHE_* variables found by lookup.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	for _, f := range []struct {
		name  string
		field string
		apply func(string) error
	}{
		{"SHARDS", "cache.shards", intSetter(&c.Cache.Shards)},
		{"PARTITION_WIDTH", "cache.partition_width", durationSetter(&c.Cache.PartitionWidth)},
		{"DEFAULT_TTL", "cache.default_ttl", durationSetter(&c.Cache.DefaultTTL)},
		{"SWEEP_INTERVAL", "cache.sweep_interval", durationSetter(&c.Cache.SweepInterval)},
		{"SWEEP_BATCH_SIZE", "cache.sweep_batch_size", intSetter(&c.Cache.SweepBatchSize)},
		{"WORKERS", "workload.workers", intSetter(&c.Workload.Workers)},
		{"OPERATIONS", "workload.operations", intSetter(&c.Workload.Operations)},
		{"KEYS", "workload.keys", intSetter(&c.Workload.Keys)},
		{"MAX_TTL", "workload.max_ttl", durationSetter(&c.Workload.MaxTTL)},
		{"LOG_LEVEL", "log_level", stringSetter(&c.LogLevel)},
	} {
		v, ok := lookup(EnvPrefix + f.name)
		if !ok || v == "" {
			continue
		}
		if err := f.apply(v); err != nil {
			return &ConfigError{Field: f.field, Err: err}
		}
	}
	return nil
}

func intSetter(p *int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*p = v
		return nil
	}
}

func durationSetter(p *time.Duration) func(string) error {
	return func(s string) error {
		v, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*p = v
		return nil
	}
}

func stringSetter(p *string) func(string) error {
	return func(s string) error {
		*p = s
		return nil
	}
}
