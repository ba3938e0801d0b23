package ttlcache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zhuquanbin/ttl-cache/index"
)

// effects collects what has to happen once a store lock is released:
// expiry notifications and anomalies for the error handler.
type effects[K KeyConstraint, V ValueConstraint] struct {
	expired []ExpiredEntry[K, V]
	errs    []error
}

func (fx *effects[K, V]) expire(key K, e *Entry[V]) {
	fx.expired = append(fx.expired, ExpiredEntry[K, V]{
		Key:       key,
		Value:     e.Value,
		CreatedAt: e.CreatedAt,
		ExpiresAt: e.ExpiresAt,
	})
}

func (fx *effects[K, V]) report(err error) {
	if err != nil {
		fx.errs = append(fx.errs, err)
	}
}

// store owns a primary map and the expiration index of the same keys.
// For every key in entries there is exactly one index record
// (Partition(width), ExpiresAt, key), and no other record mentions the key.
// Every method keeps that invariant under mu and never runs user code.
type store[K KeyConstraint, V ValueConstraint] struct {
	mu      sync.RWMutex
	entries map[K]*Entry[V]
	index   *index.PartitionIndex[K]
	width   time.Duration
}

func newStore[K KeyConstraint, V ValueConstraint](width time.Duration) *store[K, V] {
	return &store[K, V]{
		entries: map[K]*Entry[V]{},
		index:   index.NewPartitionIndex[K](),
		width:   width,
	}
}

// get returns the live value of key.
// An expired entry is removed and handed to fx for notification.
func (s *store[K, V]) get(key K, now time.Time, fx *effects[K, V]) (V, bool) {
	var zero V

	s.mu.RLock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.RUnlock()
		return zero, false
	}
	if !e.IsExpired(now) {
		s.mu.RUnlock()
		return e.Value, true
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// the entry may have been replaced or removed between the locks
	e, ok = s.entries[key]
	if !ok {
		return zero, false
	}
	if !e.IsExpired(now) {
		return e.Value, true
	}
	s.removeLocked(key, e, fx)
	fx.expire(key, e)
	return zero, false
}

// set stores value under key, replacing the previous entry and its index record.
func (s *store[K, V]) set(key K, value V, ttl time.Duration, now time.Time, fx *effects[K, V]) {
	e := newEntry(value, ttl, now)

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[key]; ok {
		fx.report(s.index.Erase(old.Partition(s.width), old.ExpiresAt, key))
	}
	s.entries[key] = e
	s.index.Record(e.Partition(s.width), e.ExpiresAt, key)
}

// delete removes key regardless of its expiration.
func (s *store[K, V]) delete(key K, fx *effects[K, V]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return fmt.Errorf("%w: %v", ErrNotFound, key)
	}
	s.removeLocked(key, e, fx)
	return nil
}

// pop removes key and returns its value if it was live.
// An expired entry is handed to fx for notification and reported as a miss.
func (s *store[K, V]) pop(key K, now time.Time, fx *effects[K, V]) (V, bool) {
	var zero V

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return zero, false
	}
	s.removeLocked(key, e, fx)
	if e.IsExpired(now) {
		fx.expire(key, e)
		return zero, false
	}
	return e.Value, true
}

// clearLocked drops every entry and index record. The caller holds mu.
func (s *store[K, V]) clearLocked() {
	s.entries = map[K]*Entry[V]{}
	s.index.Clear()
}

// due is an index record selected by a sweep.
type due[K KeyConstraint] struct {
	pid     index.PartitionID
	instant time.Time
	key     K
}

// sweep reclaims entries with ExpiresAt <= now, at most limit of them (limit <= 0: no limit).
// It reports how many entries were reclaimed and whether due records were left behind because of the limit.
func (s *store[K, V]) sweep(now time.Time, limit int, fx *effects[K, V]) (n int, more bool) {
	now = now.Round(0)
	nowPartition := index.PartitionOf(now, s.width)

	s.mu.Lock()
	defer s.mu.Unlock()

	// collect first: the index must not change while it is being walked
	var victims []due[K]
walk:
	for pid, bucket := range s.index.Ascending() {
		if pid > nowPartition {
			break
		}
		for instant, keys := range bucket.Ascending() {
			if instant.After(now) {
				break
			}
			for _, key := range keys {
				if limit > 0 && len(victims) == limit {
					more = true
					break walk
				}
				victims = append(victims, due[K]{pid: pid, instant: instant, key: key})
			}
		}
	}

	for _, v := range victims {
		e, ok := s.entries[v.key]
		if !ok || !e.ExpiresAt.Equal(v.instant) || e.Partition(s.width) != v.pid {
			// the primary map is the ground truth: drop the stale record only
			fx.report(s.index.Erase(v.pid, v.instant, v.key))
			fx.report(&index.InconsistencyError{Partition: v.pid, Instant: v.instant, Key: v.key, Reason: "stale record dropped"})
			continue
		}
		delete(s.entries, v.key)
		fx.report(s.index.Erase(v.pid, v.instant, v.key))
		fx.expire(v.key, e)
		n++
	}
	return n, more
}

// removeLocked deletes key and its index record. The caller holds mu.
func (s *store[K, V]) removeLocked(key K, e *Entry[V], fx *effects[K, V]) {
	delete(s.entries, key)
	fx.report(s.index.Erase(e.Partition(s.width), e.ExpiresAt, key))
}

func (s *store[K, V]) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// validate checks the invariant between the primary map and the index.
func (s *store[K, V]) validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var errs []error
	for key, e := range s.entries {
		pid := e.Partition(s.width)
		if !s.index.Contains(pid, e.ExpiresAt, key) {
			errs = append(errs, &index.InconsistencyError{Partition: pid, Instant: e.ExpiresAt, Key: key, Reason: "entry without record"})
		}
	}

	seen := make(map[K]int, len(s.entries))
	for r := range s.index.Records() {
		seen[r.Key]++
		e, ok := s.entries[r.Key]
		switch {
		case !ok:
			errs = append(errs, &index.InconsistencyError{Partition: r.Partition, Instant: r.Instant, Key: r.Key, Reason: "record without entry"})
		case seen[r.Key] > 1:
			errs = append(errs, &index.InconsistencyError{Partition: r.Partition, Instant: r.Instant, Key: r.Key, Reason: "duplicate record"})
		case !e.ExpiresAt.Equal(r.Instant) || e.Partition(s.width) != r.Partition:
			errs = append(errs, &index.InconsistencyError{Partition: r.Partition, Instant: r.Instant, Key: r.Key, Reason: "record does not match entry"})
		}
	}
	if s.index.Len() != len(s.entries) {
		errs = append(errs, fmt.Errorf("%w: %d records for %d entries", ErrIndexInconsistency, s.index.Len(), len(s.entries)))
	}
	return errors.Join(errs...)
}
