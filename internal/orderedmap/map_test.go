package orderedmap_test

import (
	"cmp"
	"testing"

	gocmp "github.com/google/go-cmp/cmp"
	"github.com/zhuquanbin/ttl-cache/internal/orderedmap"
)

func intLess(a, b int) bool {
	return cmp.Less(a, b)
}

func collect[K any, V any](m orderedmap.Map[K, V]) ([]K, []V) {
	var keys []K
	var values []V
	for k, v := range m.Ascend() {
		keys = append(keys, k)
		values = append(values, v)
	}
	return keys, values
}

func TestBTreeMap(t *testing.T) {
	t.Parallel()

	t.Run("Empty", func(t *testing.T) {
		t.Parallel()

		m := orderedmap.NewBTree[int, string](intLess)
		if m.Len() != 0 {
			t.Errorf("Len() = %d, want 0", m.Len())
		}
		if _, ok := m.Get(1); ok {
			t.Error("Get() must report false on an empty map")
		}
		if m.Delete(1) {
			t.Error("Delete() must report false on an empty map")
		}
		keys, _ := collect[int, string](m)
		if len(keys) != 0 {
			t.Errorf("Ascend() yielded %v", keys)
		}
	})

	t.Run("AscendingOrder", func(t *testing.T) {
		t.Parallel()

		m := orderedmap.NewBTree[int, string](intLess)
		for _, k := range []int{50, 10, 40, 20, 30, -5} {
			m.Set(k, "v")
		}
		keys, _ := collect[int, string](m)
		if df := gocmp.Diff([]int{-5, 10, 20, 30, 40, 50}, keys); df != "" {
			t.Errorf("keys diff=%s", df)
		}
	})

	t.Run("SetReplaces", func(t *testing.T) {
		t.Parallel()

		m := orderedmap.NewBTree[int, string](intLess)
		m.Set(1, "a")
		m.Set(1, "b")
		if m.Len() != 1 {
			t.Errorf("Len() = %d, want 1", m.Len())
		}
		if v, ok := m.Get(1); !ok || v != "b" {
			t.Errorf("Get(1) = %q, %v", v, ok)
		}
	})

	t.Run("DeleteAndClear", func(t *testing.T) {
		t.Parallel()

		m := orderedmap.NewBTree[int, int](intLess)
		for i := range 100 {
			m.Set(i, i*i)
		}
		for i := 0; i < 100; i += 2 {
			if !m.Delete(i) {
				t.Fatalf("Delete(%d) reported absent", i)
			}
		}
		if m.Len() != 50 {
			t.Errorf("Len() = %d, want 50", m.Len())
		}
		keys, values := collect[int, int](m)
		for i, k := range keys {
			if k%2 != 1 || values[i] != k*k {
				t.Errorf("unexpected pair %d=%d", k, values[i])
			}
		}

		m.Clear()
		if m.Len() != 0 {
			t.Errorf("Len() after Clear() = %d", m.Len())
		}
	})

	t.Run("EarlyBreak", func(t *testing.T) {
		t.Parallel()

		m := orderedmap.NewBTree[int, struct{}](intLess)
		for i := range 10 {
			m.Set(i, struct{}{})
		}
		var seen []int
		for k := range m.Ascend() {
			if k == 3 {
				break
			}
			seen = append(seen, k)
		}
		if df := gocmp.Diff([]int{0, 1, 2}, seen); df != "" {
			t.Errorf("keys diff=%s", df)
		}

		// restartable
		keys, _ := collect[int, struct{}](m)
		if len(keys) != 10 {
			t.Errorf("second traversal yielded %d keys", len(keys))
		}
	})
}
