package ttlcache

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zhuquanbin/ttl-cache/index"
)

// DefaultTTL is the TTL used by Set unless WithDefaultTTL is given.
const DefaultTTL = 7 * 24 * time.Hour

// DefaultSweepBatchSize is the maximum number of entries a sweep reclaims per shard lock hold.
const DefaultSweepBatchSize = 1024

// Option is the interface for the options of a Cache.
type Option[K KeyConstraint, V ValueConstraint] interface {
	apply(*options[K, V])
}

type optionFunc[K KeyConstraint, V ValueConstraint] func(*options[K, V])

func (f optionFunc[K, V]) apply(o *options[K, V]) {
	f(o)
}

// WithShardsSize sets the number of shards.
// Each shard owns its own lock, primary map and index; keys are spread by hash.
// The number of shards must be a natural number.
func WithShardsSize[K KeyConstraint, V ValueConstraint](shardsSize int) Option[K, V] {
	if shardsSize <= 0 {
		panic("shardsSize must be natural number")
	}
	return optionFunc[K, V](func(o *options[K, V]) {
		o.shardsSize = shardsSize
	})
}

// WithKeyHash sets the key hash function used to pick a shard.
func WithKeyHash[K KeyConstraint, V ValueConstraint](f func(K) int) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.hashKey = func(key any) int {
			return f(key.(K))
		}
	})
}

// WithClock sets the clock of the cache.
func WithClock[K KeyConstraint, V ValueConstraint](clock Clock) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.clock = clock
	})
}

// WithDefaultTTL sets the TTL used by Set.
func WithDefaultTTL[K KeyConstraint, V ValueConstraint](ttl time.Duration) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.defaultTTL = ttl
	})
}

// WithPartitionWidth sets the width of the expiration index partitions.
// The width must be a positive whole number of seconds.
func WithPartitionWidth[K KeyConstraint, V ValueConstraint](width time.Duration) Option[K, V] {
	if err := index.CheckPartitionWidth(width); err != nil {
		panic(err.Error())
	}
	return optionFunc[K, V](func(o *options[K, V]) {
		o.partitionWidth = width
	})
}

// WithSweepBatchSize sets the default number of entries a sweep reclaims per shard lock hold.
// Zero means no limit.
func WithSweepBatchSize[K KeyConstraint, V ValueConstraint](size int) Option[K, V] {
	if size < 0 {
		panic("sweep batch size must not be negative")
	}
	return optionFunc[K, V](func(o *options[K, V]) {
		o.sweepBatchSize = size
	})
}

// WithExpiryCallback registers the initial expiry callback.
func WithExpiryCallback[K KeyConstraint, V ValueConstraint](callback ExpiryCallback[K, V]) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.callback = callback
	})
}

// WithErrorHandler sets the handler of anomalies.
// It replaces the default handler that logs through the cache logger.
func WithErrorHandler[K KeyConstraint, V ValueConstraint](handler ErrorHandler) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.onError = handler
	})
}

// WithLogger sets the logger used by the default error handler.
func WithLogger[K KeyConstraint, V ValueConstraint](logger zerolog.Logger) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.logger = logger
	})
}

// WithCloner sets the value cloner of the cache.
func WithCloner[K KeyConstraint, V ValueConstraint](cloner ValueCloner[V]) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.cloner = cloner
	})
}

type options[K KeyConstraint, V ValueConstraint] struct {
	hashKey        func(any) int
	shardsSize     int
	clock          Clock
	defaultTTL     time.Duration
	partitionWidth time.Duration
	sweepBatchSize int
	callback       ExpiryCallback[K, V]
	onError        ErrorHandler
	logger         zerolog.Logger
	cloner         ValueCloner[V]
}

func defaultOptions[K KeyConstraint, V ValueConstraint]() options[K, V] {
	return options[K, V]{
		shardsSize:     1,
		clock:          NewMonotonicClock(),
		defaultTTL:     DefaultTTL,
		partitionWidth: index.DefaultPartitionWidth,
		sweepBatchSize: DefaultSweepBatchSize,
		logger:         log.Logger,
		cloner:         DefaultValueCloner[V](),
	}
}
