package index

import (
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/zhuquanbin/ttl-cache/internal/iterutil"
	"github.com/zhuquanbin/ttl-cache/internal/orderedmap"
)

// DefaultPartitionWidth is the default width of a partition window.
const DefaultPartitionWidth = 10 * time.Second

// PartitionID identifies a partition window by its start, in epoch seconds.
type PartitionID int64

// PartitionOf returns floor(epoch_seconds(t) / width) * width.
// The width must be a positive whole number of seconds (see CheckPartitionWidth).
func PartitionOf(t time.Time, width time.Duration) PartitionID {
	w := int64(width / time.Second)
	s := t.Unix()
	q := s / w
	if s%w != 0 && s < 0 {
		q--
	}
	return PartitionID(q * w)
}

// CheckPartitionWidth reports whether width can be used as a partition width.
func CheckPartitionWidth(width time.Duration) error {
	if width < time.Second || width%time.Second != 0 {
		return fmt.Errorf("partition width must be a positive whole number of seconds: %s", width)
	}
	return nil
}

// Start returns the first instant covered by the partition.
func (p PartitionID) Start() time.Time {
	return time.Unix(int64(p), 0).UTC()
}

// Record is a single (partition, instant, key) entry of a PartitionIndex.
type Record[K comparable] struct {
	Partition PartitionID
	Instant   time.Time
	Key       K
}

// PartitionIndex is an ordered map from PartitionID to Bucket.
// A partition whose bucket is empty never persists in the index.
type PartitionIndex[K comparable] struct {
	partitions orderedmap.Map[PartitionID, *Bucket[K]]
	records    int
}

// NewPartitionIndex creates an empty PartitionIndex.
func NewPartitionIndex[K comparable]() *PartitionIndex[K] {
	return &PartitionIndex[K]{
		partitions: orderedmap.NewBTree[PartitionID, *Bucket[K]](func(a, b PartitionID) bool {
			return a < b
		}),
	}
}

// Record adds key at instant to the bucket of the given partition, creating the bucket if needed.
func (x *PartitionIndex[K]) Record(pid PartitionID, instant time.Time, key K) {
	b, ok := x.partitions.Get(pid)
	if !ok {
		b = NewBucket[K]()
		x.partitions.Set(pid, b)
	}
	before := b.Len()
	b.Insert(instant, key)
	x.records += b.Len() - before
}

// Erase removes key at instant from the bucket of the given partition.
// The partition is dropped once its bucket is empty.
// It returns an *InconsistencyError if the record does not exist.
func (x *PartitionIndex[K]) Erase(pid PartitionID, instant time.Time, key K) error {
	b, ok := x.partitions.Get(pid)
	if !ok {
		return &InconsistencyError{Partition: pid, Instant: instant, Key: key, Reason: "partition not found"}
	}
	if err := b.Remove(instant, key); err != nil {
		if ie, ok := err.(*InconsistencyError); ok {
			ie.Partition = pid
		}
		return err
	}
	x.records--
	if b.Empty() {
		x.partitions.Delete(pid)
	}
	return nil
}

// Ascending returns a sequence of partitions in ascending order.
// Each call starts a new traversal; the index must not be mutated while iterating.
func (x *PartitionIndex[K]) Ascending() iter.Seq2[PartitionID, *Bucket[K]] {
	return x.partitions.Ascend()
}

// Records returns every record in (partition, instant) order.
func (x *PartitionIndex[K]) Records() iter.Seq[Record[K]] {
	return iterutil.FlatMap2(x.Ascending(), func(pid PartitionID, b *Bucket[K]) iter.Seq[Record[K]] {
		return iterutil.FlatMap2(b.Ascending(), func(instant time.Time, keys []K) iter.Seq[Record[K]] {
			return iterutil.Map(slices.Values(keys), func(key K) Record[K] {
				return Record[K]{Partition: pid, Instant: instant, Key: key}
			})
		})
	})
}

// Contains reports whether the record exists.
func (x *PartitionIndex[K]) Contains(pid PartitionID, instant time.Time, key K) bool {
	b, ok := x.partitions.Get(pid)
	return ok && b.Contains(instant, key)
}

// Lookup returns the instants recorded for key within the given partition.
func (x *PartitionIndex[K]) Lookup(pid PartitionID, key K) []time.Time {
	b, ok := x.partitions.Get(pid)
	if !ok {
		return nil
	}
	var instants []time.Time
	for instant, keys := range b.Ascending() {
		if slices.Contains(keys, key) {
			instants = append(instants, instant)
		}
	}
	return instants
}

// Len returns the number of records.
func (x *PartitionIndex[K]) Len() int {
	return x.records
}

// Partitions returns the number of partitions.
func (x *PartitionIndex[K]) Partitions() int {
	return x.partitions.Len()
}

// Clear removes every partition.
func (x *PartitionIndex[K]) Clear() {
	x.partitions.Clear()
	x.records = 0
}
