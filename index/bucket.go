package index

import (
	"iter"
	"time"

	"github.com/zhuquanbin/ttl-cache/internal/orderedmap"
)

// Bucket is an ordered map from an exact expiration instant to the keys expiring at that instant.
// Instants are ordered with time.Time.Before.
type Bucket[K comparable] struct {
	instants orderedmap.Map[time.Time, map[K]struct{}]
	size     int
}

// NewBucket creates an empty Bucket.
func NewBucket[K comparable]() *Bucket[K] {
	return &Bucket[K]{
		instants: orderedmap.NewBTree[time.Time, map[K]struct{}](func(a, b time.Time) bool {
			return a.Before(b)
		}),
	}
}

// Insert adds key to the set at instant.
func (b *Bucket[K]) Insert(instant time.Time, key K) {
	keys, ok := b.instants.Get(instant)
	if !ok {
		keys = map[K]struct{}{}
		b.instants.Set(instant, keys)
	}
	if _, ok := keys[key]; ok {
		return
	}
	keys[key] = struct{}{}
	b.size++
}

// Remove removes key from the set at instant, dropping the instant once its set is empty.
// It returns an *InconsistencyError if instant or key is absent.
func (b *Bucket[K]) Remove(instant time.Time, key K) error {
	keys, ok := b.instants.Get(instant)
	if !ok {
		return &InconsistencyError{Instant: instant, Key: key, Reason: "instant not found"}
	}
	if _, ok := keys[key]; !ok {
		return &InconsistencyError{Instant: instant, Key: key, Reason: "key not found"}
	}

	delete(keys, key)
	if len(keys) == 0 {
		b.instants.Delete(instant)
	}
	b.size--
	return nil
}

// Contains reports whether key is recorded at instant.
func (b *Bucket[K]) Contains(instant time.Time, key K) bool {
	keys, ok := b.instants.Get(instant)
	if !ok {
		return false
	}
	_, ok = keys[key]
	return ok
}

// Ascending returns a sequence of (instant, keys) pairs in ascending instant order.
// The yielded slices are copies. The bucket must not be mutated while iterating.
func (b *Bucket[K]) Ascending() iter.Seq2[time.Time, []K] {
	return iter.Seq2[time.Time, []K](func(yield func(time.Time, []K) bool) {
		for instant, set := range b.instants.Ascend() {
			keys := make([]K, 0, len(set))
			for k := range set {
				keys = append(keys, k)
			}
			if !yield(instant, keys) {
				return
			}
		}
	})
}

// Len returns the number of keys in the bucket.
func (b *Bucket[K]) Len() int {
	return b.size
}

// Empty reports whether the bucket holds no keys.
func (b *Bucket[K]) Empty() bool {
	return b.size == 0
}
