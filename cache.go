package ttlcache

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/zhuquanbin/ttl-cache/internal/keyhash"
	"github.com/zhuquanbin/ttl-cache/internal/panicutil"
)

// Cache is an in-memory key-value cache whose entries expire.
// Values are cloned on the way in and out with the configured ValueCloner.
type Cache[K KeyConstraint, V ValueConstraint] struct {
	shards         []*store[K, V]
	hashKey        func(any) int
	clock          Clock
	defaultTTL     time.Duration
	sweepBatchSize int
	cloner         ValueCloner[V]
	onError        ErrorHandler
	callback       atomic.Pointer[ExpiryCallback[K, V]]
}

// New creates a new Cache.
func New[K KeyConstraint, V ValueConstraint](opts ...Option[K, V]) *Cache[K, V] {
	options := defaultOptions[K, V]()
	for _, opt := range opts {
		opt.apply(&options)
	}
	if options.shardsSize > 1 && options.hashKey == nil {
		options.hashKey = keyhash.GetOrCreateKeyHash[K]()
	}
	if options.onError == nil {
		options.onError = logErrorHandler(options.logger)
	}

	shards := make([]*store[K, V], options.shardsSize)
	for i := range shards {
		shards[i] = newStore[K, V](options.partitionWidth)
	}

	c := &Cache[K, V]{
		shards:         shards,
		hashKey:        options.hashKey,
		clock:          options.clock,
		defaultTTL:     options.defaultTTL,
		sweepBatchSize: options.sweepBatchSize,
		cloner:         options.cloner,
		onError:        options.onError,
	}
	c.RegisterExpiryCallback(options.callback)
	return c
}

// resolveShard returns the shard that owns the given key.
func (c *Cache[K, V]) resolveShard(key K) *store[K, V] {
	if len(c.shards) == 1 {
		return c.shards[0]
	}
	return c.shards[keyhash.Shard(c.hashKey(key), len(c.shards))]
}

// Get returns the value of key.
// It reports false if the key is absent or expired; an expired entry is
// reclaimed and the registered expiry callback is called for it.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	var fx effects[K, V]
	v, ok := c.resolveShard(key).get(key, c.clock.Now(), &fx)
	c.settle(&fx, c.loadCallback())
	if !ok {
		return v, false
	}
	return c.cloner.CloneValue(v), true
}

// Contains reports whether key holds a live value.
// Like Get, it reclaims the entry if it has expired.
func (c *Cache[K, V]) Contains(key K) bool {
	var fx effects[K, V]
	_, ok := c.resolveShard(key).get(key, c.clock.Now(), &fx)
	c.settle(&fx, c.loadCallback())
	return ok
}

// Set stores value under key with the default TTL.
func (c *Cache[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores value under key, expiring ttl from now.
// A previous entry for key is replaced whether it has expired or not.
// A ttl of zero or less stores an entry that is already expired.
func (c *Cache[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	var fx effects[K, V]
	c.resolveShard(key).set(key, c.cloner.CloneValue(value), ttl, c.clock.Now(), &fx)
	c.settle(&fx, nil)
}

// Update is SetWithTTL.
func (c *Cache[K, V]) Update(key K, value V, ttl time.Duration) {
	c.SetWithTTL(key, value, ttl)
}

// Delete removes key. It returns ErrNotFound if the key is absent.
// An entry that has expired but not yet been reclaimed is removed without notification.
func (c *Cache[K, V]) Delete(key K) error {
	var fx effects[K, V]
	err := c.resolveShard(key).delete(key, &fx)
	c.settle(&fx, nil)
	return err
}

// Pop removes key and returns its value if it was live.
// If the entry had expired, the expiry callback is called and Pop reports false.
func (c *Cache[K, V]) Pop(key K) (V, bool) {
	var fx effects[K, V]
	v, ok := c.resolveShard(key).pop(key, c.clock.Now(), &fx)
	c.settle(&fx, c.loadCallback())
	return v, ok
}

// Clear removes every entry without notification.
// All shards are locked together, so no reader observes a partially cleared cache.
func (c *Cache[K, V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	for _, s := range c.shards {
		s.clearLocked()
	}
}

// Len returns the number of stored entries, including expired entries not yet reclaimed.
func (c *Cache[K, V]) Len() int {
	n := 0
	for _, s := range c.shards {
		n += s.len()
	}
	return n
}

// RegisterExpiryCallback sets the callback called for reclaimed entries until it is replaced.
// A nil callback disables notifications.
func (c *Cache[K, V]) RegisterExpiryCallback(callback ExpiryCallback[K, V]) {
	if callback == nil {
		c.callback.Store(nil)
		return
	}
	c.callback.Store(&callback)
}

func (c *Cache[K, V]) loadCallback() ExpiryCallback[K, V] {
	if p := c.callback.Load(); p != nil {
		return *p
	}
	return nil
}

// SweepOption is the interface for the options of Sweep.
type SweepOption[K KeyConstraint, V ValueConstraint] interface {
	applySweep(*sweepOptions[K, V])
}

type sweepOptionFunc[K KeyConstraint, V ValueConstraint] func(*sweepOptions[K, V])

func (f sweepOptionFunc[K, V]) applySweep(o *sweepOptions[K, V]) {
	f(o)
}

type sweepOptions[K KeyConstraint, V ValueConstraint] struct {
	callback  ExpiryCallback[K, V]
	batchSize int
}

// WithSweepCallback makes a single Sweep call notify callback instead of the registered callback.
// A nil callback is ignored and the registered callback is notified.
func WithSweepCallback[K KeyConstraint, V ValueConstraint](callback func(key K, value V, createdAt time.Time)) SweepOption[K, V] {
	return sweepOptionFunc[K, V](func(o *sweepOptions[K, V]) {
		if callback != nil {
			o.callback = callback
		}
	})
}

// WithBatchSize bounds the number of entries a single Sweep call reclaims per shard lock hold.
// Zero means no limit.
func WithBatchSize[K KeyConstraint, V ValueConstraint](size int) SweepOption[K, V] {
	return sweepOptionFunc[K, V](func(o *sweepOptions[K, V]) {
		o.batchSize = max(size, 0)
	})
}

// Sweep reclaims every entry that has expired at now and returns how many were reclaimed.
// The shard lock is released between batches so concurrent operations can interleave with a long sweep.
// Notifications go to the registered callback unless WithSweepCallback is given.
// If a callback calls runtime.Goexit, the failure is reported and the calling goroutine terminates;
// entries of later batches stay in the cache until the next sweep.
func (c *Cache[K, V]) Sweep(now time.Time, opts ...SweepOption[K, V]) int {
	o := sweepOptions[K, V]{
		callback:  c.loadCallback(),
		batchSize: c.sweepBatchSize,
	}
	for _, opt := range opts {
		opt.applySweep(&o)
	}

	total := 0
	for _, s := range c.shards {
		for {
			var fx effects[K, V]
			n, more := s.sweep(now, o.batchSize, &fx)
			c.settle(&fx, o.callback)
			total += n
			if !more {
				break
			}
		}
	}
	return total
}

// SweepExpired sweeps at the current time of the cache clock.
func (c *Cache[K, V]) SweepExpired() int {
	return c.Sweep(c.clock.Now())
}

// Validate checks that the expiration index matches the stored entries.
// It returns nil for a consistent cache; otherwise the error matches ErrIndexInconsistency.
func (c *Cache[K, V]) Validate() error {
	errs := make([]error, 0, len(c.shards))
	for _, s := range c.shards {
		errs = append(errs, s.validate())
	}
	return errors.Join(errs...)
}

// settle reports the anomalies and notifications collected under a shard lock.
func (c *Cache[K, V]) settle(fx *effects[K, V], callback ExpiryCallback[K, V]) {
	for _, err := range fx.errs {
		c.onError(err)
	}
	if callback == nil {
		return
	}
	for _, e := range fx.expired {
		s := panicutil.Sandwich{
			OnGoexit: func() {
				c.onError(&CallbackError{Key: e.Key, Err: ErrCallbackGoexit})
			},
		}
		if err := s.Invoke(func() error {
			callback(e.Key, e.Value, e.CreatedAt)
			return nil
		}); err != nil {
			c.onError(&CallbackError{Key: e.Key, Err: err})
		}
	}
}
