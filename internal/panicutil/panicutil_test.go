package panicutil_test

import (
	"errors"
	"runtime"
	"sync"
	"testing"

	"github.com/sourcegraph/conc/panics"
	"github.com/zhuquanbin/ttl-cache/internal/panicutil"
)

func TestCall(t *testing.T) {
	t.Parallel()

	t.Run("Normal return", func(t *testing.T) {
		t.Parallel()

		called := false
		if err := panicutil.Call(func() { called = true }); err != nil {
			t.Errorf("expected no error, got: %v", err)
		}
		if !called {
			t.Error("function was not called")
		}
	})

	t.Run("Panic with string", func(t *testing.T) {
		t.Parallel()

		err := panicutil.Call(func() { panic("boom") })
		var recoveredErr *panics.ErrRecovered
		if !errors.As(err, &recoveredErr) {
			t.Fatalf("expected *panics.ErrRecovered, got: %T", err)
		}
		if recoveredErr.Value != "boom" {
			t.Errorf("unexpected panic value: %v", recoveredErr.Value)
		}
	})

	t.Run("Panic with error", func(t *testing.T) {
		t.Parallel()

		customErr := errors.New("custom error")
		err := panicutil.Call(func() { panic(customErr) })
		var recoveredErr *panics.ErrRecovered
		if !errors.As(err, &recoveredErr) {
			t.Fatalf("expected *panics.ErrRecovered, got: %T", err)
		}
		if recoveredErr.Value != customErr {
			t.Errorf("unexpected panic value: %v", recoveredErr.Value)
		}
	})
}

func TestSandwich(t *testing.T) {
	t.Parallel()

	t.Run("Returns error of the function", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("expected error")
		var s panicutil.Sandwich
		if err := s.Invoke(func() error { return expectedErr }); err != expectedErr {
			t.Errorf("expected error %v, got: %v", expectedErr, err)
		}
	})

	t.Run("Goexit calls OnGoexit", func(t *testing.T) {
		t.Parallel()

		var wg sync.WaitGroup
		var err error
		goexited := false
		s := panicutil.Sandwich{OnGoexit: func() { goexited = true }}

		wg.Add(1)
		go func() {
			defer wg.Done()
			err = s.Invoke(func() error {
				runtime.Goexit()
				return nil // unreachable
			})
		}()
		wg.Wait()

		if err != nil {
			t.Errorf("expected no error, got: %v", err)
		}
		if !goexited {
			t.Error("OnGoexit was not called")
		}
	})

	t.Run("Nested panic", func(t *testing.T) {
		t.Parallel()

		var outer, inner panicutil.Sandwich
		err := outer.Invoke(func() error {
			return inner.Invoke(func() error {
				panic("inner panic")
			})
		})
		var recoveredErr *panics.ErrRecovered
		if !errors.As(err, &recoveredErr) {
			t.Fatalf("expected *panics.ErrRecovered, got: %T", err)
		}
		if recoveredErr.Value != "inner panic" {
			t.Errorf("unexpected panic value: %v", recoveredErr.Value)
		}
	})
}
