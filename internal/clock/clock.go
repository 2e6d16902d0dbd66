// clock provides an injectable time source so lazy regeneration and
// deduplication windows can be tested deterministically.
package clock

import "time"

// Clock returns the current time
type Clock interface {
	Now() time.Time
}

// Real reads the system clock
type Real struct{}

// Now returns the current system time in UTC
func (Real) Now() time.Time {
	return time.Now().UTC()
}

// NewReal creates a system clock
func NewReal() *Real {
	return &Real{}
}

// Fixed is a clock pinned to a settable instant, for tests
type Fixed struct {
	current time.Time
}

// NewFixed creates a clock pinned to t
func NewFixed(t time.Time) *Fixed {
	return &Fixed{current: t}
}

// Now returns the pinned instant
func (f *Fixed) Now() time.Time {
	return f.current
}

// Set pins the clock to t
func (f *Fixed) Set(t time.Time) {
	f.current = t
}

// Advance moves the pinned instant forward by d
func (f *Fixed) Advance(d time.Duration) {
	f.current = f.current.Add(d)
}
