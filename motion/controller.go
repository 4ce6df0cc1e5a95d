// Package motion contains the stateful controllers that own an active trajectory. A
// controller plans its trajectory once at construction; the only transition afterwards is
// Stop, which replaces the trajectory with a deceleration from the live state.
package motion

import (
	"math"

	"go.uber.org/atomic"

	"go.viam.com/motorlib/logging"
	"go.viam.com/motorlib/trajectory"
)

// active boxes a trajectory so the cell can be compared and swapped by identity.
type active struct {
	tr trajectory.Trajectory
}

// controller is the part shared by Motion and Jog.
type controller struct {
	current  atomic.Pointer[active]
	limits   Limits
	timebase *Timebase
	logger   logging.Logger
}

func (c *controller) init(tr trajectory.Trajectory, limits Limits, o options) {
	c.current.Store(&active{tr})
	c.limits = limits
	c.timebase = o.timebase
	c.logger = o.logger
}

// Trajectory returns the active trajectory.
func (c *controller) Trajectory() trajectory.Trajectory {
	return c.current.Load().tr
}

// Limits returns the limits captured at construction.
func (c *controller) Limits() Limits {
	return c.limits
}

// Timebase returns the timebase "now" is read from.
func (c *controller) Timebase() *Timebase {
	return c.timebase
}

// Stopped tells if Stop replaced the planned trajectory.
func (c *controller) Stopped() bool {
	return c.Trajectory().Kind() == trajectory.KindStop
}

// Position returns the position of the active trajectory at instant.
func (c *controller) Position(instant float64) (float64, error) {
	return c.Trajectory().Position(instant)
}

// Velocity returns the velocity of the active trajectory at instant, in the trajectory's
// own convention.
func (c *controller) Velocity(instant float64) (float64, error) {
	return c.Trajectory().Velocity(instant)
}

// SignedVelocity returns the velocity at instant signed by the direction of travel.
func (c *controller) SignedVelocity(instant float64) (float64, error) {
	return trajectory.SignedVelocity(c.Trajectory(), instant)
}

// Finished tells if the active trajectory completed by instant.
func (c *controller) Finished(instant float64) bool {
	return c.Trajectory().Finished(instant)
}

// PositionNow is Position at the timebase's now.
func (c *controller) PositionNow() (float64, error) {
	return c.Position(c.timebase.Now())
}

// VelocityNow is Velocity at the timebase's now.
func (c *controller) VelocityNow() (float64, error) {
	return c.Velocity(c.timebase.Now())
}

// FinishedNow is Finished at the timebase's now.
func (c *controller) FinishedNow() bool {
	return c.Finished(c.timebase.Now())
}

// Stop is StopAt the timebase's now.
func (c *controller) Stop() error {
	return c.StopAt(c.timebase.Now())
}

// StopAt replaces the active trajectory with a deceleration to rest starting from its
// position and velocity at instant. It is a no-op if the trajectory already finished.
// Stopping a stop plans the same deceleration again from the sampled state.
func (c *controller) StopAt(instant float64) error {
	for {
		cur := c.current.Load()
		if cur.tr.Finished(instant) {
			return nil
		}
		pos, err := cur.tr.Position(instant)
		if err != nil {
			return err
		}
		vel, err := trajectory.SignedVelocity(cur.tr, instant)
		if err != nil {
			return err
		}
		stop := trajectory.NewStop(pos, vel, math.Abs(cur.tr.Acceleration()), instant)
		if c.current.CompareAndSwap(cur, &active{stop}) {
			c.logger.Debugw("stopping", "from", cur.tr.String(), "stop", stop.String())
			return nil
		}
	}
}
