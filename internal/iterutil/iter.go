package iterutil

import (
	"iter"
)

// Map returns a new iterator that applies the function to each value from the input iterator.
// The output iterator yields the results of the function calls.
func Map[V, R any](seq iter.Seq[V], f func(V) R) iter.Seq[R] {
	return iter.Seq[R](func(yield func(R) bool) {
		for v := range seq {
			if !yield(f(v)) {
				return
			}
		}
	})
}

// FlatMap2 returns a new iterator that applies the function to each pair from the input iterator
// and yields every value of the returned sequences in order.
func FlatMap2[K, V, R any](seq iter.Seq2[K, V], f func(K, V) iter.Seq[R]) iter.Seq[R] {
	return iter.Seq[R](func(yield func(R) bool) {
		for k, v := range seq {
			for r := range f(k, v) {
				if !yield(r) {
					return
				}
			}
		}
	})
}
