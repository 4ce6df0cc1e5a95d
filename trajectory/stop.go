package trajectory

import (
	"fmt"
	"math"
)

// StopProfile holds the construction-time values of a Stop trajectory.
type StopProfile struct {
	Ti, Tf   float64
	Pi, Pf   float64
	P        float64 // signed displacement
	Dp       float64
	Vi       float64
	Accel    float64 // signed, opposing Vi
	Positive bool
	Duration float64
}

// A Stop trajectory decelerates from a velocity to rest and then holds the position.
//
//	   v|    vi
//	    |     |\
//	    |     | \
//	    |_____|__\___> t
//	      pi,ti   pf,tf
//	          <--->
//	         duration
type Stop struct {
	p StopProfile
}

var _ Trajectory = (*Stop)(nil)

// NewStop plans a deceleration from position pi and signed velocity vi at instant ti,
// using the magnitude of accel. The acceleration always opposes vi, whatever its sign.
// Callers holding a speed (Linear.Velocity) must sign it first, see SignedVelocity.
func NewStop(pi, vi, accel, ti float64) *Stop {
	positive := vi >= 0
	accel = math.Abs(accel)
	if positive {
		accel = -accel
	}
	duration := safeDiv(-vi, accel)
	pf := PositionFor(pi, vi, accel, duration)
	return &Stop{StopProfile{
		Ti:       ti,
		Tf:       ti + duration,
		Pi:       pi,
		Pf:       pf,
		P:        pf - pi,
		Dp:       math.Abs(pf - pi),
		Vi:       vi,
		Accel:    accel,
		Positive: positive,
		Duration: duration,
	}}
}

// Profile returns a copy of the breakpoints.
func (s *Stop) Profile() StopProfile {
	return s.p
}

// Kind returns KindStop.
func (s *Stop) Kind() Kind {
	return KindStop
}

// Start returns the instant the deceleration begins.
func (s *Stop) Start() float64 {
	return s.p.Ti
}

// End returns the instant the axis comes to rest.
func (s *Stop) End() float64 {
	return s.p.Tf
}

// Acceleration returns the signed deceleration.
func (s *Stop) Acceleration() float64 {
	return s.p.Accel
}

// Positive tells if the axis was moving towards increasing positions.
func (s *Stop) Positive() bool {
	return s.p.Positive
}

// Finished tells if the axis is at rest at instant.
func (s *Stop) Finished(instant float64) bool {
	return instant > s.p.Tf
}

// Velocity returns the signed velocity at instant.
func (s *Stop) Velocity(instant float64) (float64, error) {
	if instant < s.p.Ti {
		return 0, newInstantBeforeStartError(instant, s.p.Ti)
	}
	if instant > s.p.Tf {
		return 0, nil
	}
	return VelocityFor(s.p.Vi, s.p.Accel, instant-s.p.Ti), nil
}

// Position returns the position at instant.
func (s *Stop) Position(instant float64) (float64, error) {
	if instant < s.p.Ti {
		return 0, newInstantBeforeStartError(instant, s.p.Ti)
	}
	if instant > s.p.Tf {
		return s.p.Pf, nil
	}
	return PositionFor(s.p.Pi, s.p.Vi, s.p.Accel, instant-s.p.Ti), nil
}

func (s *Stop) String() string {
	return fmt.Sprintf("Stop(%v, %v, %v, %v)", s.p.Pi, s.p.Vi, s.p.Accel, s.p.Ti)
}
