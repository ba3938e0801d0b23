package cachetest

import (
	"sync"
	"time"

	ttlcache "github.com/zhuquanbin/ttl-cache"
)

// Expiry is a single expiry notification.
type Expiry[K ttlcache.KeyConstraint, V ttlcache.ValueConstraint] struct {
	Key       K
	Value     V
	CreatedAt time.Time
}

// Recorder records expiry notifications.
type Recorder[K ttlcache.KeyConstraint, V ttlcache.ValueConstraint] struct {
	mu       sync.Mutex
	expiries []Expiry[K, V]
}

// Callback records a notification. It can be registered as an ExpiryCallback.
func (r *Recorder[K, V]) Callback(key K, value V, createdAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expiries = append(r.expiries, Expiry[K, V]{Key: key, Value: value, CreatedAt: createdAt})
}

// Expiries returns the notifications recorded so far, in the order they were received.
func (r *Recorder[K, V]) Expiries() []Expiry[K, V] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Expiry[K, V](nil), r.expiries...)
}

// Keys returns the keys of the notifications recorded so far.
func (r *Recorder[K, V]) Keys() []K {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]K, len(r.expiries))
	for i, e := range r.expiries {
		keys[i] = e.Key
	}
	return keys
}

// ErrorRecorder records the errors sent to an error handler.
type ErrorRecorder struct {
	mu   sync.Mutex
	errs []error
}

// Handle records err. It can be registered as an ErrorHandler.
func (r *ErrorRecorder) Handle(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

// Errors returns the errors recorded so far.
func (r *ErrorRecorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}
