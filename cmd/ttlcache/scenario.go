package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	ttlcache "github.com/zhuquanbin/ttl-cache"
	"github.com/zhuquanbin/ttl-cache/cachetest"
)

var errScenarioFailed = errors.New("scenario failed")

func newScenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario",
		Short: "Replay the reference expiration scenarios with a manual clock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return errors.Join(
				shortTTLScenario(out),
				overwriteScenario(out),
			)
		},
	}
}

// shortTTLScenario stores a value for 50ms and reads it before and after it expires.
func shortTTLScenario(out io.Writer) error {
	clock := cachetest.NewManualClock(cachetest.Epoch)
	rec := &cachetest.Recorder[string, int]{}
	cache := ttlcache.New(
		ttlcache.WithClock[string, int](clock),
		ttlcache.WithExpiryCallback[string, int](rec.Callback),
	)

	cache.SetWithTTL("a", 1, 50*time.Millisecond)

	clock.Set(cachetest.Epoch.Add(10 * time.Millisecond))
	v, live := cache.Get("a")
	fmt.Fprintf(out, "short-ttl: get(a) at +10ms = (%d, %t)\n", v, live)

	clock.Set(cachetest.Epoch.Add(60 * time.Millisecond))
	_, stale := cache.Get("a")
	fmt.Fprintf(out, "short-ttl: get(a) at +60ms = (_, %t)\n", stale)

	expiries := rec.Expiries()
	for _, e := range expiries {
		fmt.Fprintf(out, "short-ttl: expired %s=%d created at +%s\n", e.Key, e.Value, e.CreatedAt.Sub(cachetest.Epoch))
	}

	if !live || v != 1 || stale || len(expiries) != 1 || expiries[0].Key != "a" || !expiries[0].CreatedAt.Equal(cachetest.Epoch) {
		fmt.Fprintln(out, "short-ttl: FAIL")
		return fmt.Errorf("%w: short-ttl", errScenarioFailed)
	}
	fmt.Fprintln(out, "short-ttl: ok")
	return nil
}

// overwriteScenario replaces a short-lived value with a long-lived one before sweeping.
func overwriteScenario(out io.Writer) error {
	clock := cachetest.NewManualClock(cachetest.Epoch)
	rec := &cachetest.Recorder[string, int]{}
	cache := ttlcache.New(
		ttlcache.WithClock[string, int](clock),
		ttlcache.WithExpiryCallback[string, int](rec.Callback),
	)

	cache.SetWithTTL("k", 1, time.Second)
	cache.SetWithTTL("k", 2, time.Hour)

	n := cache.Sweep(cachetest.Epoch.Add(2 * time.Second))
	fmt.Fprintf(out, "overwrite: sweep at +2s reclaimed %d\n", n)
	v, ok := cache.Get("k")
	fmt.Fprintf(out, "overwrite: get(k) = (%d, %t)\n", v, ok)
	err := cache.Validate()
	fmt.Fprintf(out, "overwrite: validate = %v\n", err)

	if n != 0 || !ok || v != 2 || err != nil || len(rec.Expiries()) != 0 {
		fmt.Fprintln(out, "overwrite: FAIL")
		return fmt.Errorf("%w: overwrite", errScenarioFailed)
	}
	fmt.Fprintln(out, "overwrite: ok")
	return nil
}
