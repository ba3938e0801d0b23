package ttlcache

import "time"

// KeyConstraint is an interface for key constraints.
type KeyConstraint interface {
	comparable
}

// ValueConstraint is an interface for value constraints.
type ValueConstraint interface {
	any
}

// ExpiryCallback is called once for every entry reclaimed because it expired,
// either lazily on access or by a sweep.
// The return value of the callback is never inspected; a panic is recovered
// and reported to the error handler.
// A callback that calls runtime.Goexit is reported as ErrCallbackGoexit, but
// the goroutine running the operation still terminates; notifications and
// batches that were not yet delivered are left for the next sweep.
type ExpiryCallback[K KeyConstraint, V ValueConstraint] func(key K, value V, createdAt time.Time)

// ErrorHandler receives anomalies that cannot be returned to a caller,
// such as repaired index inconsistencies and failed expiry callbacks.
type ErrorHandler func(error)

// ExpiredEntry is an entry reclaimed because it expired.
type ExpiredEntry[K KeyConstraint, V ValueConstraint] struct {
	Key       K
	Value     V
	CreatedAt time.Time
	ExpiresAt time.Time
}
