// Package lazy provides install-once cells for derived state hung off
// immutable values.
//
// Computations feeding a cell must be pure: several goroutines may run the
// same computation concurrently, exactly one result is installed and every
// reader observes that result afterwards. No locks are taken.
package lazy

import "sync/atomic"

// Cell holds a value installed at most once. The zero Cell is empty and ready to use.
type Cell[T any] struct {
	v atomic.Pointer[T]
}

// Load returns the installed value, if any.
func (c *Cell[T]) Load() (T, bool) {
	if p := c.v.Load(); p != nil {
		return *p, true
	}
	var zero T
	return zero, false
}

// Installed reports whether a value has been installed.
func (c *Cell[T]) Installed() bool {
	return c.v.Load() != nil
}

// Get returns the installed value, computing and installing it first if needed.
// A losing racer discards its own result and returns the winner's.
func (c *Cell[T]) Get(compute func() T) T {
	v, _ := c.GetInstalled(compute)
	return v
}

// GetInstalled is Get that also reports whether this call installed the value.
// Side effects that must happen once per cell (events, counters) belong to the installer.
func (c *Cell[T]) GetInstalled(compute func() T) (T, bool) {
	if p := c.v.Load(); p != nil {
		return *p, false
	}
	created := compute()
	if c.v.CompareAndSwap(nil, &created) {
		return created, true
	}
	return *c.v.Load(), false
}

// GetErr is Get for fallible computations. A failed computation (for example
// a cancelled one) installs nothing, so the next reader retries.
func (c *Cell[T]) GetErr(compute func() (T, error)) (T, error) {
	if p := c.v.Load(); p != nil {
		return *p, nil
	}
	created, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}
	if c.v.CompareAndSwap(nil, &created) {
		return created, nil
	}
	return *c.v.Load(), nil
}
