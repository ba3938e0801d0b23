package ttlcache

import "fmt"

// The methods below exist only to reject generic map operations explicitly.
// Each of them would let a caller write entries around the expiration index.

// Copy is not supported.
func (c *Cache[K, V]) Copy() (*Cache[K, V], error) {
	return nil, fmt.Errorf("%w: Copy", ErrUnsupportedOperation)
}

// SetDefault is not supported.
func (c *Cache[K, V]) SetDefault(key K, value V) (V, error) {
	var zero V
	return zero, fmt.Errorf("%w: SetDefault", ErrUnsupportedOperation)
}

// BulkUpdate is not supported.
func (c *Cache[K, V]) BulkUpdate(entries map[K]V) error {
	return fmt.Errorf("%w: BulkUpdate", ErrUnsupportedOperation)
}

// PopItem is not supported.
func (c *Cache[K, V]) PopItem() (K, V, error) {
	var (
		key   K
		value V
	)
	return key, value, fmt.Errorf("%w: PopItem", ErrUnsupportedOperation)
}
