package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	ttlcache "github.com/zhuquanbin/ttl-cache"
	"github.com/zhuquanbin/ttl-cache/internal/config"
	"github.com/zhuquanbin/ttl-cache/sweeper"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var (
		shards        int
		workers       int
		operations    int
		keys          int
		maxTTL        time.Duration
		sweepInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a randomized workload against a cache",
		Long: `Run a randomized set/get/delete/pop workload from several goroutines
while a background sweeper reclaims expired entries, then check that the
expiration index still matches the stored entries.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("shards") {
				cfg.Cache.Shards = shards
			}
			if flags.Changed("workers") {
				cfg.Workload.Workers = workers
			}
			if flags.Changed("operations") {
				cfg.Workload.Operations = operations
			}
			if flags.Changed("keys") {
				cfg.Workload.Keys = keys
			}
			if flags.Changed("max-ttl") {
				cfg.Workload.MaxTTL = maxTTL
			}
			if flags.Changed("sweep-interval") {
				cfg.Cache.SweepInterval = sweepInterval
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := newLogger(cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}

			r, err := runWorkload(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			logger.Info().
				Int64("sets", r.sets.Load()).
				Int64("hits", r.hits.Load()).
				Int64("misses", r.misses.Load()).
				Int64("deletes", r.deletes.Load()).
				Int64("pops", r.pops.Load()).
				Int64("expired", r.expired).
				Int64("swept", r.swept).
				Int("remaining", r.remaining).
				Dur("elapsed", r.elapsed).
				Msg("workload finished")
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d operations, %d expired, %d remaining\n", cfg.Workload.Operations, r.expired, r.remaining)
			return nil
		},
	}

	defaults := config.Default()
	cmd.Flags().IntVar(&shards, "shards", defaults.Cache.Shards, "number of cache shards")
	cmd.Flags().IntVar(&workers, "workers", defaults.Workload.Workers, "number of concurrent workers")
	cmd.Flags().IntVar(&operations, "operations", defaults.Workload.Operations, "total number of operations")
	cmd.Flags().IntVar(&keys, "keys", defaults.Workload.Keys, "size of the key space")
	cmd.Flags().DurationVar(&maxTTL, "max-ttl", defaults.Workload.MaxTTL, "upper bound of the random TTLs")
	cmd.Flags().DurationVar(&sweepInterval, "sweep-interval", defaults.Cache.SweepInterval, "interval of the background sweeper")
	return cmd
}

// report summarizes a workload run.
type report struct {
	sets    atomic.Int64
	hits    atomic.Int64
	misses  atomic.Int64
	deletes atomic.Int64
	pops    atomic.Int64

	expired   int64
	swept     int64
	remaining int
	elapsed   time.Duration
}

// runWorkload runs the workload described by cfg and validates the cache afterwards.
func runWorkload(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*report, error) {
	var expired atomic.Int64
	cache := ttlcache.New(
		ttlcache.WithShardsSize[int, int](cfg.Cache.Shards),
		ttlcache.WithPartitionWidth[int, int](cfg.Cache.PartitionWidth),
		ttlcache.WithDefaultTTL[int, int](cfg.Cache.DefaultTTL),
		ttlcache.WithSweepBatchSize[int, int](cfg.Cache.SweepBatchSize),
		ttlcache.WithLogger[int, int](logger),
		ttlcache.WithExpiryCallback[int, int](func(int, int, time.Time) {
			expired.Add(1)
		}),
	)

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	sw := sweeper.NewIntervalSweeper(cache, cfg.Cache.SweepInterval, logger)
	sw.Launch(sweepCtx)

	r := &report{}
	start := time.Now()
	eg, egCtx := errgroup.WithContext(ctx)
	per, extra := cfg.Workload.Operations/cfg.Workload.Workers, cfg.Workload.Operations%cfg.Workload.Workers
	for w := range cfg.Workload.Workers {
		n := per
		if w < extra {
			n++
		}
		eg.Go(func() error {
			return work(egCtx, cache, cfg.Workload, n, r)
		})
	}
	err := eg.Wait()
	stopSweeper()
	sw.Wait()
	if err != nil {
		return nil, err
	}

	r.elapsed = time.Since(start)
	r.expired = expired.Load()
	r.swept = sw.Swept()
	r.remaining = cache.Len()
	if err := cache.Validate(); err != nil {
		return r, fmt.Errorf("index validation failed: %w", err)
	}
	return r, nil
}

func work(ctx context.Context, cache *ttlcache.Cache[int, int], w config.WorkloadConfig, n int, r *report) error {
	for i := range n {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		key := rand.IntN(w.Keys)
		switch op := rand.IntN(10); {
		case op < 4:
			cache.SetWithTTL(key, i, rand.N(w.MaxTTL)+1)
			r.sets.Add(1)
		case op < 8:
			if _, ok := cache.Get(key); ok {
				r.hits.Add(1)
			} else {
				r.misses.Add(1)
			}
		case op < 9:
			if err := cache.Delete(key); err != nil && !errors.Is(err, ttlcache.ErrNotFound) {
				return err
			}
			r.deletes.Add(1)
		default:
			cache.Pop(key)
			r.pops.Add(1)
		}
	}
	return nil
}
