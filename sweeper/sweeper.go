package sweeper

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/zhuquanbin/ttl-cache/internal/panicutil"
)

// Target is anything that can reclaim its expired entries, typically a *ttlcache.Cache.
type Target interface {
	SweepExpired() int
}

// IntervalSweeper is a background sweeper that reclaims expired entries at a fixed interval.
type IntervalSweeper struct {
	target   Target
	interval time.Duration
	logger   zerolog.Logger
	wg       conc.WaitGroup
	runs     atomic.Int64
	swept    atomic.Int64
}

// NewIntervalSweeper creates a new IntervalSweeper.
// Sweeps that panic are logged to logger and do not stop the sweeper.
func NewIntervalSweeper(target Target, interval time.Duration, logger zerolog.Logger) *IntervalSweeper {
	if interval <= 0 {
		panic("interval must be positive")
	}
	return &IntervalSweeper{
		target:   target,
		interval: interval,
		logger:   logger,
	}
}

// Launch starts the background sweeper.
// It sweeps once right away and then on every tick until ctx is cancelled.
func (s *IntervalSweeper) Launch(ctx context.Context) {
	s.wg.Go(func() {
		s.poll(ctx)
	})
}

// Wait blocks until every launched sweeper has stopped.
func (s *IntervalSweeper) Wait() {
	s.wg.Wait()
}

// Runs returns the number of completed sweeps.
func (s *IntervalSweeper) Runs() int64 {
	return s.runs.Load()
}

// Swept returns the number of entries reclaimed so far.
func (s *IntervalSweeper) Swept() int64 {
	return s.swept.Load()
}

func (s *IntervalSweeper) poll(ctx context.Context) {
	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug().Int64("runs", s.Runs()).Int64("swept", s.Swept()).Msg("sweeper stopped")
			return

		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *IntervalSweeper) sweep() {
	var n int
	start := time.Now()
	if err := panicutil.Call(func() {
		n = s.target.SweepExpired()
	}); err != nil {
		s.logger.Error().Err(err).Msg("sweep failed")
		return
	}

	s.runs.Add(1)
	s.swept.Add(int64(n))
	if n > 0 {
		s.logger.Debug().Int("swept", n).Dur("elapsed", time.Since(start)).Msg("swept expired entries")
	}
}
