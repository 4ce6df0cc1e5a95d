package motion

import (
	"go.viam.com/motorlib/trajectory"
)

// Motion is a controller for a point to point move. The target is clipped into the
// limits once, at construction.
type Motion struct {
	controller
	requested float64
	clamped   bool
}

// NewMotion plans a linear move from pi to pf, clipping pf into limits. Velocity and accel
// are magnitudes. Clipping does not re-plan velocity or acceleration against the limit.
func NewMotion(pi, pf, velocity, accel float64, limits Limits, opts ...Option) *Motion {
	o := applyOptions(opts)
	target := limits.Clip(pf)
	m := &Motion{requested: pf, clamped: target != pf}
	if m.clamped {
		o.logger.Warnw("move target clipped to limits",
			"requested", pf, "target", target, "low", limits.Low, "high", limits.High)
	}
	m.init(trajectory.NewLinear(pi, target, velocity, accel, *o.start), limits, o)
	return m
}

// Clamped tells if the requested target was outside the limits.
func (m *Motion) Clamped() bool {
	return m.clamped
}

// Requested returns the target asked for, before clipping.
func (m *Motion) Requested() float64 {
	return m.requested
}

// Target returns the position the move was planned to end at.
func (m *Motion) Target() float64 {
	return m.Limits().Clip(m.requested)
}
