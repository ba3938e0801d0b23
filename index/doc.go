// Package index provides the time-partitioned expiration index used by the
// ttl-cache store.
//
// The index is two levels deep:
//
//   - PartitionIndex maps a coarse PartitionID (the start of a fixed-width
//     window, in epoch seconds) to a Bucket.
//   - Bucket maps an exact expiration instant to the set of keys expiring at
//     that instant.
//
// A sweep walks partitions in ascending order and stops at the first
// partition that starts after the sweep instant, so its cost is bounded by
// the number of records that are actually due. Partitions whose bucket
// becomes empty are dropped immediately.
//
// The types in this package are not safe for concurrent use. The owner
// (ttlcache.Store) serializes access and keeps the index consistent with its
// primary map.
package index
