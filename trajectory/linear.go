package trajectory

import (
	"fmt"
	"math"
)

// LinearProfile holds the construction-time values of a Linear trajectory. Distances are
// magnitudes; Positive carries the direction.
type LinearProfile struct {
	Ti, Tf        float64
	Pi, Pf        float64
	P             float64 // signed displacement
	Dp            float64
	Vel           float64 // cruise speed, reduced for triangular moves
	Accel         float64
	Positive      bool
	Ta, Tb        float64
	Pa, Pb        float64
	AccelTime     float64
	AccelDp       float64
	TopVelTime    float64
	TopVelDp      float64
	Duration      float64
	ReachesTopVel bool
}

// A Linear trajectory moves from a start to an end position, accelerating to a cruise
// speed, holding it and decelerating to rest. When the distance is too short to reach the
// cruise speed the plateau disappears and Ta == Tb.
//
//	   v|
//	    |
//	vel |....pa,ta_________pb,tb
//	    |        /          \
//	    |_______/____________\_______> t
//	          pi,ti         pf,tf
//	            <--duration-->
type Linear struct {
	p LinearProfile

	requestedVel float64
}

var _ Trajectory = (*Linear)(nil)

// NewLinear plans a move from pi to pf starting at instant ti. velocity and accel are
// magnitudes; the direction comes from pf - pi.
func NewLinear(pi, pf, velocity, accel, ti float64) *Linear {
	velocity = math.Abs(velocity)
	accel = math.Abs(accel)
	p := LinearProfile{
		Ti:       ti,
		Pi:       pi,
		Pf:       pf,
		P:        pf - pi,
		Dp:       math.Abs(pf - pi),
		Vel:      velocity,
		Accel:    accel,
		Positive: pf > pi,
	}
	f := direction(p.Positive)

	fullAccelTime := safeDiv(velocity, accel)
	fullAccelDp := PositionFor(0, 0, accel, fullAccelTime)

	p.ReachesTopVel = p.Dp > 2*fullAccelDp
	if p.ReachesTopVel {
		p.TopVelDp = p.Dp - 2*fullAccelDp
		p.TopVelTime = safeDiv(p.TopVelDp, velocity)
		p.AccelDp = fullAccelDp
		p.AccelTime = fullAccelTime
		p.Duration = p.TopVelTime + 2*p.AccelTime
		p.Ta = ti + p.AccelTime
		p.Tb = p.Ta + p.TopVelTime
		p.Pa = pi + f*p.AccelDp
		p.Pb = p.Pa + f*p.TopVelDp
	} else {
		p.AccelDp = p.Dp / 2
		p.AccelTime = math.Sqrt(safeDiv(2*p.AccelDp, accel))
		p.Duration = 2 * p.AccelTime
		p.Vel = accel * p.AccelTime
		p.Ta = ti + p.AccelTime
		p.Tb = p.Ta
		p.Pa = pi + f*p.AccelDp
		p.Pb = p.Pa
	}
	p.Tf = ti + p.Duration
	return &Linear{p: p, requestedVel: velocity}
}

// Profile returns a copy of the breakpoints.
func (l *Linear) Profile() LinearProfile {
	return l.p
}

// Kind returns KindLinear.
func (l *Linear) Kind() Kind {
	return KindLinear
}

// Start returns the instant the move begins.
func (l *Linear) Start() float64 {
	return l.p.Ti
}

// End returns the instant the move reaches its final position.
func (l *Linear) End() float64 {
	return l.p.Tf
}

// Acceleration returns the acceleration magnitude.
func (l *Linear) Acceleration() float64 {
	return l.p.Accel
}

// Positive tells if the move goes towards increasing positions.
func (l *Linear) Positive() bool {
	return l.p.Positive
}

// Finished tells if the move is over at instant.
func (l *Linear) Finished(instant float64) bool {
	return instant > l.p.Tf
}

// Velocity returns the speed along the direction of travel at instant.
func (l *Linear) Velocity(instant float64) (float64, error) {
	switch {
	case instant < l.p.Ti:
		return 0, newInstantBeforeStartError(instant, l.p.Ti)
	case instant > l.p.Tf:
		return 0, nil
	case instant < l.p.Ta:
		return VelocityFor(0, l.p.Accel, instant-l.p.Ti), nil
	case instant > l.p.Tb:
		return VelocityFor(l.p.Vel, -l.p.Accel, instant-l.p.Tb), nil
	default:
		return l.p.Vel, nil
	}
}

// Position returns the position at instant.
func (l *Linear) Position(instant float64) (float64, error) {
	if instant < l.p.Ti {
		return 0, newInstantBeforeStartError(instant, l.p.Ti)
	}
	if instant > l.p.Tf {
		return l.p.Pf, nil
	}
	f := direction(l.p.Positive)
	if instant < l.p.Ta {
		return l.p.Pi + f*PositionFor(0, 0, l.p.Accel, instant-l.p.Ti), nil
	}
	if instant < l.p.Tb {
		return l.p.Pa + f*l.p.Vel*(instant-l.p.Ta), nil
	}
	return l.p.Pb + f*PositionFor(0, l.p.Vel, -l.p.Accel, instant-l.p.Tb), nil
}

// Instant returns when the move passes through position. Positions farther from the start
// than the move length, or behind the start, return ErrPositionOutOfRange.
func (l *Linear) Instant(position float64) (float64, error) {
	d := position - l.p.Pi
	dp := math.Abs(d)
	if dp > l.p.Dp || (dp > 0 && (d > 0) != l.p.Positive) {
		return 0, newPositionOutOfRangeError(position, l.p.Pi, l.p.Pf)
	}
	switch {
	case dp <= l.p.AccelDp:
		return l.p.Ti + math.Sqrt(safeDiv(2*dp, l.p.Accel)), nil
	case dp-l.p.AccelDp <= l.p.TopVelDp:
		return l.p.Ta + safeDiv(dp-l.p.AccelDp, l.p.Vel), nil
	default:
		// the deceleration mirrors the ramp up, measured back from the end
		return l.p.Tf - math.Sqrt(safeDiv(2*(l.p.Dp-dp), l.p.Accel)), nil
	}
}

func (l *Linear) String() string {
	return fmt.Sprintf("Linear(%v, %v, %v, %v, %v)", l.p.Pi, l.p.Pf, l.requestedVel, l.p.Accel, l.p.Ti)
}
