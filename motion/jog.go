package motion

import (
	"go.viam.com/motorlib/trajectory"
)

// Jog is a controller for an open ended move at constant velocity. Its limits are kept but
// not enforced.
type Jog struct {
	controller
}

// NewJog plans a jog from pi towards velocity, ramping with accel from the velocity given
// by WithInitialVelocity (0 by default).
func NewJog(pi, velocity, accel float64, limits Limits, opts ...Option) *Jog {
	o := applyOptions(opts)
	j := &Jog{}
	j.init(trajectory.NewJog(pi, velocity, accel, o.vi, *o.start), limits, o)
	return j
}
