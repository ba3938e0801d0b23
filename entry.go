package ttlcache

import (
	"time"

	"github.com/zhuquanbin/ttl-cache/index"
)

// Entry is a stored value with its creation and expiration instants.
// Entries are immutable; overwriting a key always stores a new Entry.
type Entry[V ValueConstraint] struct {
	Value     V
	CreatedAt time.Time
	ExpiresAt time.Time
}

// newEntry creates an entry that expires ttl after now.
// A non-positive ttl yields an entry that is already expired.
func newEntry[V ValueConstraint](value V, ttl time.Duration, now time.Time) *Entry[V] {
	if ttl < 0 {
		ttl = 0
	}
	now = now.Round(0)
	return &Entry[V]{
		Value:     value,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the entry is expired at now (now >= ExpiresAt).
func (e *Entry[V]) IsExpired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Partition returns the index partition of the entry for the given width.
func (e *Entry[V]) Partition(width time.Duration) index.PartitionID {
	return index.PartitionOf(e.ExpiresAt, width)
}
