package motion

import (
	"time"

	"github.com/benbjohnson/clock"
)

// A Timebase maps a clock onto the float64 second instants trajectories are queried with.
// Instant 0 is the moment the Timebase was created.
type Timebase struct {
	clk    clock.Clock
	origin time.Time
}

// NewTimebase creates a Timebase starting now on clk. A nil clk uses the wall clock.
func NewTimebase(clk clock.Clock) *Timebase {
	if clk == nil {
		clk = clock.New()
	}
	return &Timebase{clk: clk, origin: clk.Now()}
}

// Clock returns the underlying clock.
func (tb *Timebase) Clock() clock.Clock {
	return tb.clk
}

// Now returns the current instant.
func (tb *Timebase) Now() float64 {
	return tb.Instant(tb.clk.Now())
}

// Instant converts a wall time to an instant.
func (tb *Timebase) Instant(t time.Time) float64 {
	return t.Sub(tb.origin).Seconds()
}

// Time converts an instant back to a wall time.
func (tb *Timebase) Time(instant float64) time.Time {
	return tb.origin.Add(Seconds(instant))
}

// Until returns how long from now until instant, or 0 if it already passed.
func (tb *Timebase) Until(instant float64) time.Duration {
	d := tb.Time(instant).Sub(tb.clk.Now())
	if d < 0 {
		return 0
	}
	return d
}

// Seconds converts float seconds to a Duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
