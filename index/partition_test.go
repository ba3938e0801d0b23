package index_test

import (
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/zhuquanbin/ttl-cache/index"
)

func TestPartitionOf(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		at    time.Time
		width time.Duration
		want  index.PartitionID
	}{
		{at: time.Unix(0, 0), width: 10 * time.Second, want: 0},
		{at: time.Unix(9, 999999999), width: 10 * time.Second, want: 0},
		{at: time.Unix(10, 0), width: 10 * time.Second, want: 10},
		{at: time.Unix(1735689605, 0), width: 10 * time.Second, want: 1735689600},
		{at: time.Unix(1735689605, 0), width: time.Second, want: 1735689605},
		{at: time.Unix(1735689605, 0), width: time.Minute, want: 1735689600},
		{at: time.Unix(-1, 0), width: 10 * time.Second, want: -10},
		{at: time.Unix(-10, 0), width: 10 * time.Second, want: -10},
	} {
		t.Run(fmt.Sprintf("%d/%s", tt.at.Unix(), tt.width), func(t *testing.T) {
			t.Parallel()

			got := index.PartitionOf(tt.at, tt.width)
			if got != tt.want {
				t.Errorf("PartitionOf() = %d, want %d", got, tt.want)
			}
			if start := got.Start(); start.After(tt.at) || !tt.at.Before(start.Add(tt.width)) {
				t.Errorf("Start() = %v does not cover %v", start, tt.at)
			}
		})
	}
}

func TestCheckPartitionWidth(t *testing.T) {
	t.Parallel()

	for _, w := range []time.Duration{time.Second, 10 * time.Second, time.Hour} {
		if err := index.CheckPartitionWidth(w); err != nil {
			t.Errorf("CheckPartitionWidth(%s) = %v", w, err)
		}
	}
	for _, w := range []time.Duration{0, -time.Second, 500 * time.Millisecond, 1500 * time.Millisecond} {
		if err := index.CheckPartitionWidth(w); err == nil {
			t.Errorf("CheckPartitionWidth(%s) must fail", w)
		}
	}
}

func TestPartitionIndex(t *testing.T) {
	t.Parallel()

	width := index.DefaultPartitionWidth
	record := func(x *index.PartitionIndex[string], at time.Time, key string) {
		x.Record(index.PartitionOf(at, width), at, key)
	}

	t.Run("RecordAndAscend", func(t *testing.T) {
		t.Parallel()

		x := index.NewPartitionIndex[string]()
		record(x, base.Add(25*time.Second), "c")
		record(x, base.Add(1*time.Second), "a")
		record(x, base.Add(2*time.Second), "b")

		if x.Len() != 3 || x.Partitions() != 2 {
			t.Errorf("Len() = %d, Partitions() = %d", x.Len(), x.Partitions())
		}
		var pids []index.PartitionID
		for pid := range x.Ascending() {
			pids = append(pids, pid)
		}
		want := []index.PartitionID{
			index.PartitionOf(base, width),
			index.PartitionOf(base.Add(20*time.Second), width),
		}
		if df := cmp.Diff(want, pids); df != "" {
			t.Errorf("partitions diff=%s", df)
		}

		records := slices.Collect(x.Records())
		wantRecords := []index.Record[string]{
			{Partition: want[0], Instant: base.Add(1 * time.Second), Key: "a"},
			{Partition: want[0], Instant: base.Add(2 * time.Second), Key: "b"},
			{Partition: want[1], Instant: base.Add(25 * time.Second), Key: "c"},
		}
		if df := cmp.Diff(wantRecords, records); df != "" {
			t.Errorf("records diff=%s", df)
		}
	})

	t.Run("EraseDropsEmptyPartition", func(t *testing.T) {
		t.Parallel()

		x := index.NewPartitionIndex[string]()
		record(x, base.Add(1*time.Second), "a")
		record(x, base.Add(2*time.Second), "b")
		record(x, base.Add(15*time.Second), "c")

		pid := index.PartitionOf(base, width)
		if err := x.Erase(pid, base.Add(1*time.Second), "a"); err != nil {
			t.Fatal(err)
		}
		if x.Partitions() != 2 {
			t.Errorf("partition with remaining records must persist, Partitions() = %d", x.Partitions())
		}
		if err := x.Erase(pid, base.Add(2*time.Second), "b"); err != nil {
			t.Fatal(err)
		}
		if x.Partitions() != 1 || x.Len() != 1 {
			t.Errorf("Partitions() = %d, Len() = %d", x.Partitions(), x.Len())
		}
		for got := range x.Ascending() {
			if got == pid {
				t.Errorf("drained partition %d still present", pid)
			}
		}
	})

	t.Run("EraseMissing", func(t *testing.T) {
		t.Parallel()

		x := index.NewPartitionIndex[string]()
		record(x, base.Add(1*time.Second), "a")
		pid := index.PartitionOf(base, width)

		var ie *index.InconsistencyError
		err := x.Erase(pid+10, base.Add(11*time.Second), "a")
		if !errors.As(err, &ie) || ie.Partition != pid+10 {
			t.Errorf("missing partition: got %v", err)
		}
		err = x.Erase(pid, base.Add(1*time.Second), "b")
		if !errors.As(err, &ie) || ie.Partition != pid || ie.Key != "b" {
			t.Errorf("missing key: got %v", err)
		}
		if x.Len() != 1 {
			t.Errorf("Len() = %d, want 1", x.Len())
		}
	})

	t.Run("Lookup", func(t *testing.T) {
		t.Parallel()

		x := index.NewPartitionIndex[string]()
		record(x, base.Add(1*time.Second), "a")
		record(x, base.Add(3*time.Second), "a")
		record(x, base.Add(2*time.Second), "b")

		pid := index.PartitionOf(base, width)
		want := []time.Time{base.Add(1 * time.Second), base.Add(3 * time.Second)}
		if df := cmp.Diff(want, x.Lookup(pid, "a")); df != "" {
			t.Errorf("lookup diff=%s", df)
		}
		if got := x.Lookup(pid+10, "a"); got != nil {
			t.Errorf("Lookup() on a missing partition = %v", got)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		t.Parallel()

		x := index.NewPartitionIndex[string]()
		for i := range 100 {
			record(x, base.Add(time.Duration(i)*time.Second), fmt.Sprint(i))
		}
		x.Clear()
		if x.Len() != 0 || x.Partitions() != 0 {
			t.Errorf("Len() = %d, Partitions() = %d", x.Len(), x.Partitions())
		}
	})
}
