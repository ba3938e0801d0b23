// Package ttlcache provides an in-memory key-value cache in which every
// entry carries an expiration instant.
//
// Expired entries are reclaimed in two ways: lazily, when a read observes
// them, and actively, by Sweep. Next to the primary map the cache keeps a
// time-partitioned index of expiration instants (see package index), so a
// sweep only visits entries that are actually due instead of the whole
// store.
//
// Basic usage:
//
//	c := ttlcache.New[string, int](
//	    ttlcache.WithDefaultTTL[string, int](time.Minute),
//	)
//	c.RegisterExpiryCallback(func(key string, value int, createdAt time.Time) {
//	    log.Printf("expired: %s=%d (created %s)", key, value, createdAt)
//	})
//	c.SetWithTTL("a", 1, 50*time.Millisecond)
//	v, ok := c.Get("a")
//
//	// reclaim everything due, e.g. from a background sweeper
//	n := c.Sweep(time.Now())
//
// A Cache is safe for concurrent use. Each operation runs under a single
// shard lock; user callbacks always run after the lock has been released.
package ttlcache
