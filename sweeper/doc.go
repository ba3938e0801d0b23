// Package sweeper runs the active reclamation of a cache in the background.
//
// Lazy expiration only reclaims entries that are read again; an entry that is
// never touched after it expires stays in memory until something sweeps it.
// IntervalSweeper calls SweepExpired of its target at a fixed interval until
// its context is cancelled.
package sweeper
