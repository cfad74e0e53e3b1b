package utils

import "time"

// Clock supplies the wall-clock reference for all expiry math. Everything
// that compares timestamps goes through one Clock so the whole system
// shares a single timezone policy (UTC).
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock, normalized to UTC.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock is a settable clock for tests.
type FixedClock struct {
	Current time.Time
}

func (c *FixedClock) Now() time.Time {
	return c.Current.UTC()
}

// Advance moves the fixed clock forward.
func (c *FixedClock) Advance(d time.Duration) {
	c.Current = c.Current.Add(d)
}
