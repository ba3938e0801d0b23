package ttlcache

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/zhuquanbin/ttl-cache/index"
)

func TestLogErrorHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handle := logErrorHandler(zerolog.New(&buf))

	handle(&index.InconsistencyError{Partition: 10, Instant: epoch, Key: "k", Reason: "key not found"})
	handle(&CallbackError{Key: "c", Err: errors.New("boom")})
	handle(errors.New("other"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("logged %d lines, want 3: %q", len(lines), buf.String())
	}
	for i, want := range []string{
		`"level":"warn"`,
		`"level":"error"`,
		`"level":"error"`,
	} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d = %s, want %s", i, lines[i], want)
		}
	}
	for i, want := range []string{
		`"reason":"key not found"`,
		`"error":"boom"`,
		`"error":"other"`,
	} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d = %s, want %s", i, lines[i], want)
		}
	}
	if want := `"partition_start":"1970-01-01T00:00:10Z"`; !strings.Contains(lines[0], want) {
		t.Errorf("line 0 = %s, want %s", lines[0], want)
	}
}

func TestLogErrorHandler_Throttled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handle := logErrorHandler(zerolog.New(&buf))
	for range 100 {
		handle(errors.New("flood"))
	}

	got := strings.Count(buf.String(), "flood")
	if got < 10 || got >= 100 {
		t.Errorf("logged %d of 100 errors, want a throttled burst", got)
	}
}

func TestLogErrorHandler_ThrottledPerKind(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handle := logErrorHandler(zerolog.New(&buf))
	for range 100 {
		handle(&CallbackError{Key: "c", Err: errors.New("boom")})
	}
	handle(&index.InconsistencyError{Partition: 10, Instant: epoch, Key: "k", Reason: "key not found"})

	if !strings.Contains(buf.String(), "index inconsistency repaired") {
		t.Errorf("inconsistency must be logged after a flood of callback failures: %s", buf.String())
	}
	if got := strings.Count(buf.String(), "expiry callback failed"); got >= 100 {
		t.Errorf("logged %d of 100 callback failures, want a throttled burst", got)
	}
}
