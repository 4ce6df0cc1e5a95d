package trajectory

import (
	"fmt"
	"math"
)

// JogProfile holds the construction-time values of a Jog.
type JogProfile struct {
	Ti        float64
	Pi        float64
	Vi        float64
	Vel       float64
	Accel     float64 // signed, towards Vel
	Positive  bool
	AccelTime float64
	AccelDp   float64 // displacement during the ramp, signed by the direction of the ramp
	Ta        float64
	Pa        float64
}

// A Jog ramps from an initial velocity to a target velocity and holds it. It never
// finishes.
//
//	   v|
//	    |
//	vel |....pa,ta______
//	    |        /
//	 vi |......./
//	    |_____________________> t
//	          pi,ti
type Jog struct {
	p JogProfile
}

var _ Trajectory = (*Jog)(nil)

// NewJog plans a jog starting at position pi and velocity vi at instant ti, ramping with
// the magnitude of accel towards velocity.
func NewJog(pi, velocity, accel, vi, ti float64) *Jog {
	accel = math.Abs(accel)
	if velocity < vi {
		accel = -accel
	}
	accelTime := safeDiv(velocity-vi, accel)
	accelDp := PositionFor(0, vi, accel, accelTime)
	return &Jog{JogProfile{
		Ti:        ti,
		Pi:        pi,
		Vi:        vi,
		Vel:       velocity,
		Accel:     accel,
		Positive:  velocity >= 0,
		AccelTime: accelTime,
		AccelDp:   accelDp,
		Ta:        ti + accelTime,
		Pa:        pi + accelDp,
	}}
}

// Profile returns a copy of the jog breakpoints.
func (j *Jog) Profile() JogProfile {
	return j.p
}

// Kind returns KindJog.
func (j *Jog) Kind() Kind {
	return KindJog
}

// Start returns the instant the jog begins.
func (j *Jog) Start() float64 {
	return j.p.Ti
}

// Acceleration returns the signed ramp acceleration.
func (j *Jog) Acceleration() float64 {
	return j.p.Accel
}

// Positive tells if the target velocity is not negative.
func (j *Jog) Positive() bool {
	return j.p.Positive
}

// Finished is always false.
func (j *Jog) Finished(instant float64) bool {
	return false
}

// Velocity returns the signed velocity at instant.
func (j *Jog) Velocity(instant float64) (float64, error) {
	if instant < j.p.Ti {
		return 0, newInstantBeforeStartError(instant, j.p.Ti)
	}
	if instant < j.p.Ta {
		return VelocityFor(j.p.Vi, j.p.Accel, instant-j.p.Ti), nil
	}
	return j.p.Vel, nil
}

// Position returns the position at instant.
func (j *Jog) Position(instant float64) (float64, error) {
	if instant < j.p.Ti {
		return 0, newInstantBeforeStartError(instant, j.p.Ti)
	}
	dt := instant - j.p.Ti
	if instant < j.p.Ta {
		return PositionFor(j.p.Pi, j.p.Vi, j.p.Accel, dt), nil
	}
	return j.p.Pi + j.p.AccelDp + j.p.Vel*(dt-j.p.AccelTime), nil
}

func (j *Jog) String() string {
	return fmt.Sprintf("Jog(%v, %v, %v, %v, %v)", j.p.Pi, j.p.Vel, j.p.Accel, j.p.Vi, j.p.Ti)
}
