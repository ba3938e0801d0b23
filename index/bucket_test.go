package index_test

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/zhuquanbin/ttl-cache/index"
)

var base = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

type pair struct {
	Instant time.Time
	Keys    []string
}

func collectBucket(b *index.Bucket[string]) []pair {
	var pairs []pair
	for instant, keys := range b.Ascending() {
		slices.Sort(keys)
		pairs = append(pairs, pair{Instant: instant, Keys: keys})
	}
	return pairs
}

func TestBucket(t *testing.T) {
	t.Parallel()

	t.Run("InsertOrdersByInstant", func(t *testing.T) {
		t.Parallel()

		b := index.NewBucket[string]()
		b.Insert(base.Add(3*time.Second), "c")
		b.Insert(base.Add(1*time.Second), "a")
		b.Insert(base.Add(2*time.Second), "b")
		b.Insert(base.Add(1*time.Second), "z")

		if b.Len() != 4 {
			t.Errorf("Len() = %d, want 4", b.Len())
		}
		want := []pair{
			{Instant: base.Add(1 * time.Second), Keys: []string{"a", "z"}},
			{Instant: base.Add(2 * time.Second), Keys: []string{"b"}},
			{Instant: base.Add(3 * time.Second), Keys: []string{"c"}},
		}
		if df := cmp.Diff(want, collectBucket(b)); df != "" {
			t.Errorf("bucket diff=%s", df)
		}
	})

	t.Run("InsertSameKeyTwice", func(t *testing.T) {
		t.Parallel()

		b := index.NewBucket[string]()
		b.Insert(base, "a")
		b.Insert(base, "a")
		if b.Len() != 1 {
			t.Errorf("Len() = %d, want 1", b.Len())
		}
	})

	t.Run("RemoveDropsEmptyInstant", func(t *testing.T) {
		t.Parallel()

		b := index.NewBucket[string]()
		b.Insert(base, "a")
		b.Insert(base, "b")
		b.Insert(base.Add(time.Second), "c")

		if err := b.Remove(base, "a"); err != nil {
			t.Fatal(err)
		}
		if !b.Contains(base, "b") || b.Contains(base, "a") {
			t.Error("unexpected contents after removing a")
		}
		if err := b.Remove(base, "b"); err != nil {
			t.Fatal(err)
		}
		want := []pair{{Instant: base.Add(time.Second), Keys: []string{"c"}}}
		if df := cmp.Diff(want, collectBucket(b)); df != "" {
			t.Errorf("bucket diff=%s", df)
		}
		if err := b.Remove(base.Add(time.Second), "c"); err != nil {
			t.Fatal(err)
		}
		if !b.Empty() {
			t.Errorf("bucket must be empty, Len() = %d", b.Len())
		}
	})

	t.Run("RemoveMissing", func(t *testing.T) {
		t.Parallel()

		b := index.NewBucket[string]()
		b.Insert(base, "a")

		err := b.Remove(base.Add(time.Second), "a")
		if !errors.Is(err, index.ErrInconsistency) {
			t.Errorf("missing instant: got %v", err)
		}
		err = b.Remove(base, "b")
		var ie *index.InconsistencyError
		if !errors.As(err, &ie) {
			t.Fatalf("missing key: got %T", err)
		}
		if ie.Key != "b" || !ie.Instant.Equal(base) {
			t.Errorf("unexpected error detail: %+v", ie)
		}
		if b.Len() != 1 {
			t.Errorf("failed removals must not change size, Len() = %d", b.Len())
		}
	})

	t.Run("AscendingIsSnapshotPerCall", func(t *testing.T) {
		t.Parallel()

		b := index.NewBucket[string]()
		b.Insert(base, "a")
		seq := b.Ascending()

		first := 0
		for range seq {
			first++
		}
		b.Insert(base.Add(time.Second), "b")
		second := 0
		for range seq {
			second++
		}
		if first != 1 || second != 2 {
			t.Errorf("traversals yielded %d then %d instants", first, second)
		}

		for _, keys := range b.Ascending() {
			keys[0] = "mutated"
		}
		if !b.Contains(base, "a") {
			t.Error("yielded slices must be copies")
		}
	})
}
