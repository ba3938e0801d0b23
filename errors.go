package ttlcache

import (
	"errors"
	"fmt"

	"github.com/zhuquanbin/ttl-cache/index"
)

var (
	// ErrNotFound is returned by Delete when the key is absent.
	ErrNotFound = errors.New("key not found")

	// ErrUnsupportedOperation is returned by operations the cache deliberately does not offer.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrCallbackFailed is matched by every CallbackError.
	ErrCallbackFailed = errors.New("expiry callback failed")

	// ErrCallbackGoexit is the cause of a CallbackError whose callback called runtime.Goexit.
	ErrCallbackGoexit = errors.New("expiry callback called runtime.Goexit")

	// ErrIndexInconsistency is matched by every index.InconsistencyError.
	ErrIndexInconsistency = index.ErrInconsistency
)

// CallbackError reports an expiry callback that panicked or called runtime.Goexit.
type CallbackError struct {
	Key any
	Err error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("expiry callback failed for key %v: %v", e.Key, e.Err)
}

func (e *CallbackError) Unwrap() []error {
	return []error{ErrCallbackFailed, e.Err}
}
