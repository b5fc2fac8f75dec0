// Package clock provides the time source used by rate limiting, scheduling and normalization.
// Production code uses System, tests use Fake to move time deterministically.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// System is the wall clock
type System struct{}

// Now returns the current wall time
func (System) Now() time.Time { return time.Now() }

// Func adapts a function to Clock
type Func func() time.Time

// Now calls f
func (f Func) Now() time.Time { return f() }

// Fake is a settable clock, safe for concurrent use
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake makes a fake clock set to t
func NewFake(t time.Time) *Fake {
	return &Fake{now: t}
}

// Now returns the fake time
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set moves the clock to t
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance moves the clock forward by d
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
