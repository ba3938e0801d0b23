// Package cachetest provides generic test cases for ttlcache.Cache configurations.
package cachetest

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"

	ttlcache "github.com/zhuquanbin/ttl-cache"
)

// Provider creates a cache under test with the given options appended to its own.
type Provider[K ttlcache.KeyConstraint, V ttlcache.ValueConstraint] func(opts ...ttlcache.Option[K, V]) *ttlcache.Cache[K, V]

// BenchmarkSet benchmarks the Set method of the cache.
func BenchmarkSet[K ttlcache.KeyConstraint, V ttlcache.ValueConstraint](b *testing.B, cache *ttlcache.Cache[K, V], keys []K) {
	var zero V
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.SetWithTTL(keys[i%len(keys)], zero, time.Hour)
	}
}

// BenchmarkSweep benchmarks a Sweep that reclaims every entry of a cache filled with keys.
func BenchmarkSweep[K ttlcache.KeyConstraint, V ttlcache.ValueConstraint](b *testing.B, provider Provider[K, V], keys []K) {
	var zero V
	clock := NewManualClock(Epoch)
	cache := provider(ttlcache.WithClock[K, V](clock))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		for j, key := range keys {
			cache.SetWithTTL(key, zero, time.Duration(j%60)*time.Second)
		}
		b.StartTimer()
		cache.Sweep(Epoch.Add(time.Minute))
	}
}

// TestConformance runs every test case of this package against provider.
func TestConformance(t *testing.T, provider Provider[uint8, int8]) {
	TestConsistency(t, provider)
	TestExpiration(t, provider)
	TestSweep(t, provider)
	TestConcurrency(t, provider)
}

type TestClonerStruct struct {
	value int8
}

func (s *TestClonerStruct) Clone() *TestClonerStruct {
	return &TestClonerStruct{value: s.value}
}

// TestCloneStruct tests that the cache never shares stored values with callers.
func TestCloneStruct(t *testing.T, provider Provider[uint8, *TestClonerStruct]) {
	t.Run("CloneStruct", func(t *testing.T) {
		t.Parallel()

		cache := provider()

		original := &TestClonerStruct{value: 1}
		cache.SetWithTTL(1, original, time.Hour)

		got, ok := cache.Get(1)
		if !ok {
			t.Fatal("should exist")
		}
		if original == got {
			t.Error("struct must be cloned, but got same that")
		}
		if df := cmp.Diff(original, got, cmp.AllowUnexported(TestClonerStruct{})); df != "" {
			t.Errorf("struct diff=%s", df)
		}

		before := got
		got, ok = cache.Get(1)
		if !ok {
			t.Fatal("should exist")
		}
		if before == got {
			t.Error("struct must be cloned, but got same that")
		}
		if df := cmp.Diff(before, got, cmp.AllowUnexported(TestClonerStruct{})); df != "" {
			t.Errorf("struct diff=%s", df)
		}
	})
}

// TestConsistency tests the basic operations of the cache.
func TestConsistency(t *testing.T, provider Provider[uint8, int8]) {
	t.Run("Consistency", func(t *testing.T) {
		t.Parallel()

		t.Run("SetAndGet", func(t *testing.T) {
			t.Parallel()

			cache := provider()

			type pair struct {
				Key   uint8
				Value int8
			}
			patterns := []pair{
				{0, 1},
				{1, 2},
				{2, 3},
				{3, 4},
				{4, 5},
				{251, 124},
				{252, 125},
				{253, 126},
				{254, 127},
				{255, -128},
			}
			rand.Shuffle(len(patterns), func(i, j int) {
				patterns[i], patterns[j] = patterns[j], patterns[i]
			})

			var eg errgroup.Group
			for _, pattern := range patterns {
				eg.Go(func() error {
					if _, ok := cache.Get(pattern.Key); ok {
						return fmt.Errorf("unexpected exists value for key %d", pattern.Key)
					}
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				t.Fatal(err)
			}

			eg = errgroup.Group{}
			for _, pattern := range patterns {
				eg.Go(func() error {
					cache.Set(pattern.Key, pattern.Value)
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				t.Fatal(err)
			}

			eg = errgroup.Group{}
			results := make([]pair, len(patterns))
			for i, pattern := range patterns {
				eg.Go(func() error {
					v, ok := cache.Get(pattern.Key)
					if !ok {
						return fmt.Errorf("missing value for key %d", pattern.Key)
					}
					results[i] = pair{Key: pattern.Key, Value: v}
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				t.Fatal(err)
			}

			if df := cmp.Diff(patterns, results); df != "" {
				t.Errorf("entries diff=%s", df)
			}
			if got := cache.Len(); got != len(patterns) {
				t.Errorf("Len() = %d, want %d", got, len(patterns))
			}
			if err := cache.Validate(); err != nil {
				t.Error(err)
			}
		})

		t.Run("Overwrite", func(t *testing.T) {
			t.Parallel()

			clock := NewManualClock(Epoch)
			rec := &Recorder[uint8, int8]{}
			cache := provider(ttlcache.WithClock[uint8, int8](clock), ttlcache.WithExpiryCallback[uint8, int8](rec.Callback))

			cache.SetWithTTL(1, 1, time.Second)
			cache.SetWithTTL(1, 2, time.Hour)

			if n := cache.Sweep(Epoch.Add(2 * time.Second)); n != 0 {
				t.Errorf("Sweep() = %d, want 0", n)
			}
			if v, ok := cache.Get(1); !ok || v != 2 {
				t.Errorf("Get(1) = (%d, %t), want (2, true)", v, ok)
			}
			if got := cache.Len(); got != 1 {
				t.Errorf("Len() = %d, want 1", got)
			}
			if err := cache.Validate(); err != nil {
				t.Error(err)
			}
			if got := rec.Expiries(); len(got) != 0 {
				t.Errorf("overwritten entry must not be notified: %v", got)
			}
		})

		t.Run("OverwriteExpired", func(t *testing.T) {
			t.Parallel()

			clock := NewManualClock(Epoch)
			cache := provider(ttlcache.WithClock[uint8, int8](clock))

			cache.SetWithTTL(1, 1, time.Second)
			clock.Advance(time.Minute)
			cache.SetWithTTL(1, 2, time.Second)

			if v, ok := cache.Get(1); !ok || v != 2 {
				t.Errorf("Get(1) = (%d, %t), want (2, true)", v, ok)
			}
			if err := cache.Validate(); err != nil {
				t.Error(err)
			}
		})

		t.Run("Delete", func(t *testing.T) {
			t.Parallel()

			clock := NewManualClock(Epoch)
			rec := &Recorder[uint8, int8]{}
			cache := provider(ttlcache.WithClock[uint8, int8](clock), ttlcache.WithExpiryCallback[uint8, int8](rec.Callback))

			if err := cache.Delete(9); !errors.Is(err, ttlcache.ErrNotFound) {
				t.Errorf("Delete(absent) = %v, want ErrNotFound", err)
			}

			cache.SetWithTTL(1, 1, time.Hour)
			if err := cache.Delete(1); err != nil {
				t.Errorf("Delete(1) = %v", err)
			}
			if err := cache.Delete(1); !errors.Is(err, ttlcache.ErrNotFound) {
				t.Errorf("second Delete(1) = %v, want ErrNotFound", err)
			}
			if _, ok := cache.Get(1); ok {
				t.Error("deleted key should not exist")
			}

			cache.SetWithTTL(2, 2, time.Second)
			clock.Advance(time.Minute)
			if err := cache.Delete(2); err != nil {
				t.Errorf("Delete(expired) = %v", err)
			}
			if got := rec.Expiries(); len(got) != 0 {
				t.Errorf("deleted entry must not be notified: %v", got)
			}
			if got := cache.Len(); got != 0 {
				t.Errorf("Len() = %d, want 0", got)
			}
			if err := cache.Validate(); err != nil {
				t.Error(err)
			}
		})

		t.Run("Pop", func(t *testing.T) {
			t.Parallel()

			clock := NewManualClock(Epoch)
			rec := &Recorder[uint8, int8]{}
			cache := provider(ttlcache.WithClock[uint8, int8](clock), ttlcache.WithExpiryCallback[uint8, int8](rec.Callback))

			cache.SetWithTTL(1, 1, time.Hour)
			if v, ok := cache.Pop(1); !ok || v != 1 {
				t.Errorf("Pop(1) = (%d, %t), want (1, true)", v, ok)
			}
			if _, ok := cache.Pop(1); ok {
				t.Error("popped key should not exist")
			}

			cache.SetWithTTL(2, 2, time.Second)
			clock.Advance(time.Second)
			if _, ok := cache.Pop(2); ok {
				t.Error("expired key should not be popped")
			}
			if df := cmp.Diff([]Expiry[uint8, int8]{{Key: 2, Value: 2, CreatedAt: Epoch}}, rec.Expiries()); df != "" {
				t.Errorf("expiries diff=%s", df)
			}
			if got := cache.Len(); got != 0 {
				t.Errorf("Len() = %d, want 0", got)
			}
			if err := cache.Validate(); err != nil {
				t.Error(err)
			}
		})

		t.Run("Clear", func(t *testing.T) {
			t.Parallel()

			clock := NewManualClock(Epoch)
			rec := &Recorder[uint8, int8]{}
			cache := provider(ttlcache.WithClock[uint8, int8](clock), ttlcache.WithExpiryCallback[uint8, int8](rec.Callback))

			for i := range 100 {
				cache.SetWithTTL(uint8(i), int8(i), time.Duration(i)*time.Second)
			}
			cache.Clear()

			if got := cache.Len(); got != 0 {
				t.Errorf("Len() = %d, want 0", got)
			}
			if cache.Contains(10) {
				t.Error("cleared key should not exist")
			}
			if n := cache.Sweep(Epoch.Add(time.Hour)); n != 0 {
				t.Errorf("Sweep() = %d, want 0", n)
			}
			if got := rec.Expiries(); len(got) != 0 {
				t.Errorf("cleared entries must not be notified: %v", got)
			}
			if err := cache.Validate(); err != nil {
				t.Error(err)
			}

			cache.SetWithTTL(1, 1, time.Hour)
			if v, ok := cache.Get(1); !ok || v != 1 {
				t.Errorf("Get(1) = (%d, %t), want (1, true)", v, ok)
			}
		})
	})
}

// TestExpiration tests lazy expiration on access.
func TestExpiration(t *testing.T, provider Provider[uint8, int8]) {
	t.Run("Expiration", func(t *testing.T) {
		t.Parallel()

		t.Run("SetAndGet", func(t *testing.T) {
			t.Parallel()

			clock := NewManualClock(Epoch)
			rec := &Recorder[uint8, int8]{}
			cache := provider(ttlcache.WithClock[uint8, int8](clock), ttlcache.WithExpiryCallback[uint8, int8](rec.Callback))

			cache.SetWithTTL(1, 1, 50*time.Millisecond)

			clock.Advance(10 * time.Millisecond)
			if v, ok := cache.Get(1); !ok || v != 1 {
				t.Errorf("Get(1) = (%d, %t), want (1, true)", v, ok)
			}
			if len(rec.Expiries()) != 0 {
				t.Error("live entry must not be notified")
			}

			clock.Set(Epoch.Add(50*time.Millisecond - time.Nanosecond))
			if !cache.Contains(1) {
				t.Error("should exist until it expires")
			}

			clock.Set(Epoch.Add(60 * time.Millisecond))
			if _, ok := cache.Get(1); ok {
				t.Error("should not exist")
			}
			if _, ok := cache.Get(1); ok {
				t.Error("should not exist again")
			}
			if df := cmp.Diff([]Expiry[uint8, int8]{{Key: 1, Value: 1, CreatedAt: Epoch}}, rec.Expiries()); df != "" {
				t.Errorf("expiries diff=%s", df)
			}
			if got := cache.Len(); got != 0 {
				t.Errorf("Len() = %d, want 0", got)
			}
			if err := cache.Validate(); err != nil {
				t.Error(err)
			}
		})

		t.Run("ExpiresAtBoundary", func(t *testing.T) {
			t.Parallel()

			clock := NewManualClock(Epoch)
			cache := provider(ttlcache.WithClock[uint8, int8](clock))

			cache.SetWithTTL(1, 1, time.Second)
			clock.Set(Epoch.Add(time.Second))
			if cache.Contains(1) {
				t.Error("entry must be expired at its expiration instant")
			}
		})

		t.Run("ZeroTTL", func(t *testing.T) {
			t.Parallel()

			clock := NewManualClock(Epoch)
			rec := &Recorder[uint8, int8]{}
			cache := provider(ttlcache.WithClock[uint8, int8](clock), ttlcache.WithExpiryCallback[uint8, int8](rec.Callback))

			cache.SetWithTTL(1, 1, 0)
			cache.SetWithTTL(2, 2, -time.Hour)
			if _, ok := cache.Get(1); ok {
				t.Error("zero ttl entry should not exist")
			}
			if _, ok := cache.Get(2); ok {
				t.Error("negative ttl entry should not exist")
			}
			want := []Expiry[uint8, int8]{
				{Key: 1, Value: 1, CreatedAt: Epoch},
				{Key: 2, Value: 2, CreatedAt: Epoch},
			}
			if df := cmp.Diff(want, rec.Expiries()); df != "" {
				t.Errorf("expiries diff=%s", df)
			}
		})

		t.Run("DefaultTTL", func(t *testing.T) {
			t.Parallel()

			clock := NewManualClock(Epoch)
			cache := provider(ttlcache.WithClock[uint8, int8](clock), ttlcache.WithDefaultTTL[uint8, int8](time.Minute))

			cache.Set(1, 1)
			clock.Set(Epoch.Add(time.Minute - time.Second))
			if !cache.Contains(1) {
				t.Error("should exist before the default ttl")
			}
			clock.Set(Epoch.Add(time.Minute))
			if cache.Contains(1) {
				t.Error("should expire after the default ttl")
			}
		})

		t.Run("RegisterExpiryCallback", func(t *testing.T) {
			t.Parallel()

			clock := NewManualClock(Epoch)
			first := &Recorder[uint8, int8]{}
			second := &Recorder[uint8, int8]{}
			cache := provider(ttlcache.WithClock[uint8, int8](clock), ttlcache.WithExpiryCallback[uint8, int8](first.Callback))

			for i := range 3 {
				cache.SetWithTTL(uint8(i), int8(i), time.Second)
			}
			clock.Advance(time.Second)

			cache.Get(0)
			cache.RegisterExpiryCallback(second.Callback)
			cache.Get(1)
			cache.RegisterExpiryCallback(nil)
			cache.Get(2)

			if df := cmp.Diff([]uint8{0}, first.Keys()); df != "" {
				t.Errorf("first callback keys diff=%s", df)
			}
			if df := cmp.Diff([]uint8{1}, second.Keys()); df != "" {
				t.Errorf("second callback keys diff=%s", df)
			}
			if got := cache.Len(); got != 0 {
				t.Errorf("Len() = %d, want 0", got)
			}
		})
	})
}

// TestSweep tests bulk reclamation of expired entries.
func TestSweep(t *testing.T, provider Provider[uint8, int8]) {
	t.Run("Sweep", func(t *testing.T) {
		t.Parallel()

		t.Run("Exactness", func(t *testing.T) {
			t.Parallel()

			clock := NewManualClock(Epoch)
			rec := &Recorder[uint8, int8]{}
			cache := provider(ttlcache.WithClock[uint8, int8](clock), ttlcache.WithExpiryCallback[uint8, int8](rec.Callback))

			for i := range 100 {
				cache.SetWithTTL(uint8(i), int8(i), time.Duration(i)*time.Second)
			}

			if n := cache.Sweep(Epoch.Add(50 * time.Second)); n != 51 {
				t.Errorf("Sweep() = %d, want 51", n)
			}
			want := make([]uint8, 0, 51)
			for i := range 51 {
				want = append(want, uint8(i))
			}
			got := rec.Keys()
			slices.Sort(got)
			if df := cmp.Diff(want, got); df != "" {
				t.Errorf("swept keys diff=%s", df)
			}
			for i := 51; i < 100; i++ {
				if !cache.Contains(uint8(i)) {
					t.Errorf("key %d should survive the sweep", i)
				}
			}
			if got := cache.Len(); got != 49 {
				t.Errorf("Len() = %d, want 49", got)
			}
			if err := cache.Validate(); err != nil {
				t.Error(err)
			}

			if n := cache.Sweep(Epoch.Add(50 * time.Second)); n != 0 {
				t.Errorf("second Sweep() = %d, want 0", n)
			}
			if n := cache.Sweep(Epoch.Add(time.Hour)); n != 49 {
				t.Errorf("final Sweep() = %d, want 49", n)
			}
			if got := cache.Len(); got != 0 {
				t.Errorf("Len() = %d, want 0", got)
			}
		})

		t.Run("Empty", func(t *testing.T) {
			t.Parallel()

			cache := provider()
			if n := cache.Sweep(time.Now()); n != 0 {
				t.Errorf("Sweep() = %d, want 0", n)
			}
			if n := cache.SweepExpired(); n != 0 {
				t.Errorf("SweepExpired() = %d, want 0", n)
			}
		})

		t.Run("SweepExpired", func(t *testing.T) {
			t.Parallel()

			clock := NewManualClock(Epoch)
			cache := provider(ttlcache.WithClock[uint8, int8](clock))

			cache.SetWithTTL(1, 1, time.Second)
			cache.SetWithTTL(2, 2, time.Minute)
			clock.Advance(time.Second)
			if n := cache.SweepExpired(); n != 1 {
				t.Errorf("SweepExpired() = %d, want 1", n)
			}
			if got := cache.Len(); got != 1 {
				t.Errorf("Len() = %d, want 1", got)
			}
		})

		t.Run("CallbackOverride", func(t *testing.T) {
			t.Parallel()

			clock := NewManualClock(Epoch)
			registered := &Recorder[uint8, int8]{}
			override := &Recorder[uint8, int8]{}
			cache := provider(ttlcache.WithClock[uint8, int8](clock), ttlcache.WithExpiryCallback[uint8, int8](registered.Callback))

			cache.SetWithTTL(1, 1, time.Second)
			cache.SetWithTTL(2, 2, time.Minute)

			if n := cache.Sweep(Epoch.Add(time.Second), ttlcache.WithSweepCallback(override.Callback)); n != 1 {
				t.Errorf("Sweep() = %d, want 1", n)
			}
			if df := cmp.Diff([]Expiry[uint8, int8]{{Key: 1, Value: 1, CreatedAt: Epoch}}, override.Expiries()); df != "" {
				t.Errorf("override expiries diff=%s", df)
			}
			if got := registered.Expiries(); len(got) != 0 {
				t.Errorf("registered callback must not be called: %v", got)
			}

			if n := cache.Sweep(Epoch.Add(time.Minute)); n != 1 {
				t.Errorf("Sweep() = %d, want 1", n)
			}
			if df := cmp.Diff([]uint8{2}, registered.Keys()); df != "" {
				t.Errorf("registered keys diff=%s", df)
			}
		})

		t.Run("NilSweepCallback", func(t *testing.T) {
			t.Parallel()

			registered := &Recorder[uint8, int8]{}
			cache := provider(ttlcache.WithClock[uint8, int8](NewManualClock(Epoch)), ttlcache.WithExpiryCallback[uint8, int8](registered.Callback))
			cache.SetWithTTL(1, 1, time.Second)

			if n := cache.Sweep(Epoch.Add(time.Second), ttlcache.WithSweepCallback[uint8, int8](nil)); n != 1 {
				t.Errorf("Sweep() = %d, want 1", n)
			}
			if df := cmp.Diff([]uint8{1}, registered.Keys()); df != "" {
				t.Errorf("registered keys diff=%s", df)
			}
		})

		t.Run("Batched", func(t *testing.T) {
			t.Parallel()

			run := func(opts ...ttlcache.SweepOption[uint8, int8]) (int, []uint8, error) {
				rec := &Recorder[uint8, int8]{}
				cache := provider(ttlcache.WithClock[uint8, int8](NewManualClock(Epoch)))
				for i := range 200 {
					cache.SetWithTTL(uint8(i), int8(i%20), time.Duration(i%20)*time.Second)
				}
				n := cache.Sweep(Epoch.Add(10*time.Second), append(opts, ttlcache.WithSweepCallback(rec.Callback))...)
				keys := rec.Keys()
				slices.Sort(keys)
				return n, keys, cache.Validate()
			}

			wantN, wantKeys, err := run(ttlcache.WithBatchSize[uint8, int8](0))
			if err != nil {
				t.Fatal(err)
			}
			if wantN != 110 {
				t.Errorf("unbounded Sweep() = %d, want 110", wantN)
			}
			for _, size := range []int{1, 3, 64, 1024} {
				n, keys, err := run(ttlcache.WithBatchSize[uint8, int8](size))
				if err != nil {
					t.Errorf("batch size %d: %v", size, err)
				}
				if n != wantN {
					t.Errorf("batch size %d: Sweep() = %d, want %d", size, n, wantN)
				}
				if df := cmp.Diff(wantKeys, keys); df != "" {
					t.Errorf("batch size %d: swept keys diff=%s", size, df)
				}
			}
		})

		t.Run("CallbackPanic", func(t *testing.T) {
			t.Parallel()

			clock := NewManualClock(Epoch)
			rec := &Recorder[uint8, int8]{}
			errs := &ErrorRecorder{}
			cache := provider(
				ttlcache.WithClock[uint8, int8](clock),
				ttlcache.WithErrorHandler[uint8, int8](errs.Handle),
				ttlcache.WithExpiryCallback[uint8, int8](func(key uint8, value int8, createdAt time.Time) {
					if key == 5 {
						panic("boom")
					}
					rec.Callback(key, value, createdAt)
				}),
			)

			for i := range 10 {
				cache.SetWithTTL(uint8(i), int8(i), time.Second)
			}
			if n := cache.Sweep(Epoch.Add(time.Second)); n != 10 {
				t.Errorf("Sweep() = %d, want 10", n)
			}
			if got := len(rec.Expiries()); got != 9 {
				t.Errorf("notified %d entries, want 9", got)
			}
			if got := cache.Len(); got != 0 {
				t.Errorf("Len() = %d, want 0", got)
			}

			reported := errs.Errors()
			if len(reported) != 1 {
				t.Fatalf("reported %d errors, want 1: %v", len(reported), reported)
			}
			if !errors.Is(reported[0], ttlcache.ErrCallbackFailed) {
				t.Errorf("error %v should match ErrCallbackFailed", reported[0])
			}
			var ce *ttlcache.CallbackError
			if !errors.As(reported[0], &ce) {
				t.Fatalf("error %v should be a CallbackError", reported[0])
			}
			if ce.Key != any(uint8(5)) {
				t.Errorf("CallbackError.Key = %v, want 5", ce.Key)
			}
		})

		t.Run("CallbackGoexit", func(t *testing.T) {
			t.Parallel()

			var exited atomic.Bool
			rec := &Recorder[uint8, int8]{}
			errs := &ErrorRecorder{}
			cache := provider(
				ttlcache.WithClock[uint8, int8](NewManualClock(Epoch)),
				ttlcache.WithErrorHandler[uint8, int8](errs.Handle),
				ttlcache.WithSweepBatchSize[uint8, int8](2),
				ttlcache.WithExpiryCallback[uint8, int8](func(key uint8, value int8, createdAt time.Time) {
					if exited.CompareAndSwap(false, true) {
						runtime.Goexit()
					}
					rec.Callback(key, value, createdAt)
				}),
			)
			for i := range 10 {
				cache.SetWithTTL(uint8(i), int8(i), time.Second)
			}

			done := make(chan struct{})
			go func() {
				defer close(done)
				cache.Sweep(Epoch.Add(time.Second))
				t.Error("Sweep must not return after a callback called runtime.Goexit")
			}()
			<-done

			reported := errs.Errors()
			if len(reported) != 1 {
				t.Fatalf("reported %d errors, want 1: %v", len(reported), reported)
			}
			if !errors.Is(reported[0], ttlcache.ErrCallbackFailed) || !errors.Is(reported[0], ttlcache.ErrCallbackGoexit) {
				t.Errorf("error %v should match ErrCallbackFailed and ErrCallbackGoexit", reported[0])
			}
			var ce *ttlcache.CallbackError
			if !errors.As(reported[0], &ce) {
				t.Fatalf("error %v should be a CallbackError", reported[0])
			}
			if _, ok := ce.Key.(uint8); !ok {
				t.Errorf("CallbackError.Key = %T, want uint8", ce.Key)
			}
			if err := cache.Validate(); err != nil {
				t.Error(err)
			}

			// entries left behind by the aborted sweep are reclaimed by the next one
			cache.Sweep(Epoch.Add(time.Second))
			if got := cache.Len(); got != 0 {
				t.Errorf("Len() = %d, want 0", got)
			}
			if got := len(errs.Errors()); got != 1 {
				t.Errorf("reported %d errors, want 1", got)
			}
		})
	})
}

// TestConcurrency runs a randomized workload from many goroutines and checks the index afterwards.
func TestConcurrency(t *testing.T, provider Provider[uint8, int8]) {
	t.Run("Concurrency", func(t *testing.T) {
		t.Parallel()

		clock := NewManualClock(Epoch)
		rec := &Recorder[uint8, int8]{}
		cache := provider(
			ttlcache.WithClock[uint8, int8](clock),
			ttlcache.WithExpiryCallback[uint8, int8](rec.Callback),
			ttlcache.WithSweepBatchSize[uint8, int8](7),
		)

		var eg errgroup.Group
		for w := range 8 {
			eg.Go(func() error {
				for i := range 1000 {
					key := uint8(rand.IntN(256))
					switch rand.IntN(6) {
					case 0, 1:
						cache.SetWithTTL(key, int8(w), time.Duration(rand.IntN(5000))*time.Millisecond)
					case 2:
						cache.Get(key)
					case 3:
						if err := cache.Delete(key); err != nil && !errors.Is(err, ttlcache.ErrNotFound) {
							return err
						}
					case 4:
						cache.Pop(key)
					case 5:
						cache.Contains(key)
					}
					if i%100 == 0 {
						clock.Advance(100 * time.Millisecond)
					}
				}
				return nil
			})
		}
		eg.Go(func() error {
			for range 200 {
				cache.SweepExpired()
			}
			return nil
		})
		if err := eg.Wait(); err != nil {
			t.Fatal(err)
		}

		if err := cache.Validate(); err != nil {
			t.Fatal(err)
		}
		cache.Sweep(clock.Now().Add(time.Hour))
		if got := cache.Len(); got != 0 {
			t.Errorf("Len() = %d, want 0", got)
		}
		if err := cache.Validate(); err != nil {
			t.Error(err)
		}
	})
}
