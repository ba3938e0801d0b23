// Package orderedmap provides an ordered associative container used by the
// expiration index. Callers depend on the Map interface only; any balanced
// structure with ascending iteration satisfies it.
package orderedmap

import (
	"iter"

	"github.com/google/btree"
)

// Map is an ordered associative container keyed by K.
// Implementations are not safe for concurrent use.
type Map[K any, V any] interface {
	// Get returns the value stored for key.
	Get(key K) (V, bool)

	// Set stores value for key, replacing any previous value.
	Set(key K, value V)

	// Delete removes key and reports whether it was present.
	Delete(key K) bool

	// Len returns the number of keys.
	Len() int

	// Ascend returns a sequence over the pairs in ascending key order.
	// Each call starts a new traversal over the current contents.
	Ascend() iter.Seq2[K, V]

	// Clear removes every key.
	Clear()
}

// DefaultDegree is the B-tree degree used by NewBTree.
const DefaultDegree = 8

type pair[K any, V any] struct {
	key   K
	value V
}

// BTreeMap is a Map backed by a B-tree.
type BTreeMap[K any, V any] struct {
	tree *btree.BTreeG[pair[K, V]]
}

var _ Map[int, struct{}] = (*BTreeMap[int, struct{}])(nil)

// NewBTree creates an empty BTreeMap ordered by less.
func NewBTree[K any, V any](less func(a, b K) bool) *BTreeMap[K, V] {
	return &BTreeMap[K, V]{
		tree: btree.NewG(DefaultDegree, func(a, b pair[K, V]) bool {
			return less(a.key, b.key)
		}),
	}
}

func (m *BTreeMap[K, V]) Get(key K) (V, bool) {
	p, ok := m.tree.Get(pair[K, V]{key: key})
	return p.value, ok
}

func (m *BTreeMap[K, V]) Set(key K, value V) {
	m.tree.ReplaceOrInsert(pair[K, V]{key: key, value: value})
}

func (m *BTreeMap[K, V]) Delete(key K) bool {
	_, ok := m.tree.Delete(pair[K, V]{key: key})
	return ok
}

func (m *BTreeMap[K, V]) Len() int {
	return m.tree.Len()
}

func (m *BTreeMap[K, V]) Ascend() iter.Seq2[K, V] {
	return iter.Seq2[K, V](func(yield func(K, V) bool) {
		m.tree.Ascend(func(p pair[K, V]) bool {
			return yield(p.key, p.value)
		})
	})
}

func (m *BTreeMap[K, V]) Clear() {
	m.tree.Clear(false)
}
