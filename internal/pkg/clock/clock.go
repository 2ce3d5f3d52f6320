// Package clock hides the wall clock behind an interface so expiry logic can
// be driven by a fixed instant in tests.
package clock

import "time"

// Clocker reports the current instant.
type Clocker interface {
	Now() time.Time
}

// System reads time.Now.
type System struct{}

// New returns the system clock.
func New() *System {
	return &System{}
}

// Now returns the current system time.
func (*System) Now() time.Time {
	return time.Now()
}

// Func adapts a plain function to Clocker.
type Func func() time.Time

// Now calls f.
func (f Func) Now() time.Time {
	return f()
}
