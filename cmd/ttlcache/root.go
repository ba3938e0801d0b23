package main

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zhuquanbin/ttl-cache/internal/config"
)

type rootOptions struct {
	configPath string
	envFile    string
	logLevel   string
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "ttlcache",
		Short: "Exercise an in-memory TTL cache",
		Long: `ttlcache drives an in-memory TTL cache with a time-partitioned
expiration index.

Configuration is read from a YAML file, a dotenv file and TTLCACHE_*
environment variables, in that order; command line flags win over all of them.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file with TTLCACHE_* variables")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newScenarioCmd())
	return cmd
}

// load reads the configuration and applies the persistent flags.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath, o.envFile)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	return cfg, nil
}

// newLogger creates a console logger writing to w at the level of cfg.
func newLogger(w io.Writer, cfg *config.Config) (zerolog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return zerolog.Nop(), err
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(level).With().Timestamp().Logger(), nil
}
