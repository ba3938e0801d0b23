// Package panicutil isolates user-supplied functions so that a panic inside
// them never unwinds through the cache.
package panicutil

import (
	"github.com/sourcegraph/conc/panics"
)

// Call runs f and returns a panic raised by f as *panics.ErrRecovered.
// It returns nil if f returns normally. A runtime.Goexit inside f is not
// observed; use Sandwich to be told about it.
func Call(f func()) error {
	var s Sandwich
	return s.Invoke(func() error {
		f()
		return nil
	})
}

// Sandwich tells a normal return, a panic and runtime.Goexit apart.
type Sandwich struct {
	// OnGoexit is called when the function calls runtime.Goexit.
	// It runs on the exiting goroutine, which terminates afterwards.
	OnGoexit func()
}

// Invoke runs f. A normal return yields the error returned by f, a panic is
// converted into *panics.ErrRecovered, and runtime.Goexit triggers OnGoexit.
func (s *Sandwich) Invoke(f func() error) (err error) {
	finished := false
	defer func() {
		if !finished && s.OnGoexit != nil {
			s.OnGoexit()
		}
	}()

	var catcher panics.Catcher
	catcher.Try(func() {
		err = f()
	})
	finished = true

	if r := catcher.Recovered(); r != nil {
		return r.AsError()
	}
	return err
}
