package cli

import (
	"math"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/motorlib/motion"
	"go.viam.com/motorlib/trajectory"
)

// plan is a planned trajectory and, when the plan was stopped, the stop spliced onto it.
type plan struct {
	planned trajectory.Trajectory
	active  trajectory.Trajectory
}

// at evaluates the plan: the planned trajectory until the stop, the stop afterwards.
func (p plan) at(instant float64) (trajectory.Point, error) {
	if p.active != p.planned && instant >= p.active.Start() {
		return trajectory.At(p.active, instant)
	}
	return trajectory.At(p.planned, instant)
}

func (p plan) sample(from, to float64, n int) ([]trajectory.Point, error) {
	grid, err := trajectory.Sample(p.planned, from, to, n)
	if err != nil {
		return nil, err
	}
	for i := range grid {
		if grid[i], err = p.at(grid[i].Time); err != nil {
			return nil, err
		}
	}
	return grid, nil
}

// horizon is where sampling of the plan ends by default.
func (p plan) horizon(fallback float64) float64 {
	return trajectory.Horizon(p.active, fallback)
}

func limitsFrom(c *cli.Context) motion.Limits {
	limits := motion.NoLimits
	if c.IsSet(flagLow) {
		limits.Low = c.Float64(flagLow)
	}
	if c.IsSet(flagHigh) {
		limits.High = c.Float64(flagHigh)
	}
	return limits
}

// planLinear plans the move described by the linear flags, stopping it if asked to.
func planLinear(c *cli.Context) (plan, error) {
	velocity, err := requirePositive(c, flagVelocity)
	if err != nil {
		return plan{}, err
	}
	limits := limitsFrom(c)
	if err := limits.Validate(); err != nil {
		return plan{}, err
	}
	m := motion.NewMotion(c.Float64(flagFrom), c.Float64(flagTo), velocity, c.Float64(flagAccel), limits,
		motion.WithStart(0),
		motion.WithLogger(loggerFrom(c).Sublogger("motion")),
	)
	if m.Clamped() {
		warningf(c.App.ErrWriter, "target %v is outside the limits, moving to %v instead", m.Requested(), m.Target())
	}
	return stopIfAsked(c, m)
}

type stoppable interface {
	Trajectory() trajectory.Trajectory
	StopAt(instant float64) error
}

// stopIfAsked stops ctrl at --stop-at, if given.
func stopIfAsked(c *cli.Context, ctrl stoppable) (plan, error) {
	planned := ctrl.Trajectory()
	if !c.IsSet(flagStopAt) {
		return plan{planned: planned, active: planned}, nil
	}
	instant := c.Float64(flagStopAt)
	if instant < 0 {
		return plan{}, errors.Errorf("--%s must not be negative, got %v", flagStopAt, instant)
	}
	if err := ctrl.StopAt(instant); err != nil {
		return plan{}, err
	}
	return plan{planned: planned, active: ctrl.Trajectory()}, nil
}

func printPlan(c *cli.Context, p plan, to float64) error {
	printf(c.App.Writer, "%s", describe(p.planned))
	if p.active != p.planned {
		printf(c.App.Writer, "%s", describe(p.active))
	}
	points, err := p.sample(0, to, c.Int(flagSamples))
	if err != nil {
		return err
	}
	return renderPoints(c.App.Writer, points, c.String(flagFormat))
}

// LinearAction samples a point to point move.
func LinearAction(c *cli.Context) error {
	p, err := planLinear(c)
	if err != nil {
		return err
	}
	return printPlan(c, p, p.horizon(0))
}

// JogAction samples a jog.
func JogAction(c *cli.Context) error {
	j := motion.NewJog(c.Float64(flagFrom), c.Float64(flagVelocity), c.Float64(flagAccel), motion.NoLimits,
		motion.WithStart(0),
		motion.WithInitialVelocity(c.Float64(flagInitialVelocity)),
		motion.WithLogger(loggerFrom(c).Sublogger("motion")),
	)
	p, err := stopIfAsked(c, j)
	if err != nil {
		return err
	}
	return printPlan(c, p, math.Max(c.Float64(flagUntil), trajectory.Horizon(p.active, 0)))
}

// StopAction samples a deceleration to rest.
func StopAction(c *cli.Context) error {
	s := trajectory.NewStop(c.Float64(flagFrom), c.Float64(flagVelocity), c.Float64(flagAccel), 0)
	return printPlan(c, plan{planned: s, active: s}, s.End())
}
