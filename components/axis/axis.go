// Package axis implements a simulated single motion axis. The axis has no hardware; its
// state is the active motion controller, evaluated on an injected clock.
package axis

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/motorlib/config"
	"go.viam.com/motorlib/logging"
	"go.viam.com/motorlib/motion"
	"go.viam.com/motorlib/operation"
	"go.viam.com/motorlib/trajectory"
)

// velocityEpsilon is the speed under which the axis is considered at rest.
const velocityEpsilon = 1e-9

// DefaultPollTime is how often WaitStopped checks the axis.
const DefaultPollTime = 10 * time.Millisecond

// controller is the part of motion.Motion and motion.Jog the axis drives.
type controller interface {
	Trajectory() trajectory.Trajectory
	Position(instant float64) (float64, error)
	SignedVelocity(instant float64) (float64, error)
	StopAt(instant float64) error
}

// An Axis is a simulated single axis moved by trapezoidal moves, jogs and stops.
type Axis struct {
	Name string

	mu          sync.Mutex
	ctrl        controller
	restPos     float64
	maxVelocity float64
	accel       float64
	limits      motion.Limits
	timebase    *motion.Timebase
	logger      logging.Logger
	opMgr       *operation.SingleOperationManager
	ops         *operation.Manager
	PollTime    time.Duration
}

// NewAxis creates an axis at rest at conf.StartPosition. A nil clk uses the wall clock.
func NewAxis(conf *config.Axis, clk clock.Clock, logger logging.Logger) (*Axis, error) {
	if err := conf.Validate("axis"); err != nil {
		return nil, err
	}
	tb := motion.NewTimebase(clk)
	return &Axis{
		Name:        conf.Name,
		restPos:     conf.StartPosition,
		maxVelocity: conf.MaxVelocity,
		accel:       conf.Acceleration,
		limits:      conf.MotionLimits(),
		timebase:    tb,
		logger:      logger,
		opMgr:       operation.NewSingleOperationManager(tb.Clock()),
		ops:         operation.NewManager(logger, tb.Clock()),
		PollTime:    DefaultPollTime,
	}, nil
}

// Limits returns the hard limits of the axis.
func (a *Axis) Limits() motion.Limits {
	return a.limits
}

// Timebase returns the timebase the axis evaluates its trajectories on.
func (a *Axis) Timebase() *motion.Timebase {
	return a.timebase
}

// Trajectory returns the active trajectory, or nil if the axis never moved.
func (a *Axis) Trajectory() trajectory.Trajectory {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctrl == nil {
		return nil
	}
	return a.ctrl.Trajectory()
}

// Operations returns the blocking commands currently running on the axis.
func (a *Axis) Operations() []*operation.Operation {
	return a.ops.All()
}

// Position returns the current position.
func (a *Axis) Position(ctx context.Context) (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	pos, _, err := a.stateInLock(a.timebase.Now())
	return pos, err
}

// Velocity returns the current velocity, negative when moving towards lower positions.
func (a *Axis) Velocity(ctx context.Context) (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, vel, err := a.stateInLock(a.timebase.Now())
	return vel, err
}

// IsMoving returns if the axis is moving.
func (a *Axis) IsMoving(ctx context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.isMovingInLock(a.timebase.Now())
}

func (a *Axis) stateInLock(now float64) (float64, float64, error) {
	if a.ctrl == nil {
		return a.restPos, 0, nil
	}
	pos, err := a.ctrl.Position(now)
	if err != nil {
		return 0, 0, err
	}
	vel, err := a.ctrl.SignedVelocity(now)
	if err != nil {
		return 0, 0, err
	}
	return pos, vel, nil
}

func (a *Axis) isMovingInLock(now float64) (bool, error) {
	if a.ctrl == nil {
		return false, nil
	}
	tr := a.ctrl.Trajectory()
	if tr.Kind() != trajectory.KindJog {
		return now < trajectory.Horizon(tr, 0), nil
	}
	vel, err := a.ctrl.SignedVelocity(now)
	if err != nil {
		return false, err
	}
	return math.Abs(vel) > velocityEpsilon, nil
}

// clampVelocity caps the magnitude of velocity at the axis maximum, keeping its sign.
func (a *Axis) clampVelocity(velocity float64) float64 {
	if math.Abs(velocity) > a.maxVelocity {
		a.logger.Debugf("axis %s velocity %v capped at %v", a.Name, velocity, a.maxVelocity)
		return math.Copysign(a.maxVelocity, velocity)
	}
	return velocity
}

// GoTo moves the axis to position at the given speed and waits until it gets there, the
// context is cancelled or another command replaces this one. The target is clipped into
// the limits. A moving axis is brought to rest before the move starts.
func (a *Axis) GoTo(ctx context.Context, velocity, position float64) error {
	if math.Abs(velocity) < velocityEpsilon {
		return NewZeroVelocityError(a.Name)
	}
	if operation.Get(ctx) == nil {
		var cleanup func()
		ctx, cleanup = a.ops.Create(ctx, "GoTo", map[string]float64{"velocity": velocity, "position": position})
		defer cleanup()
	}
	ctx, done := a.opMgr.New(ctx)
	defer done()

	return a.goTo(ctx, velocity, position)
}

// GoFor moves the axis by distance from its current position. The sign of the distance
// gives the direction; the sign of velocity is ignored.
func (a *Axis) GoFor(ctx context.Context, velocity, distance float64) error {
	if math.Abs(velocity) < velocityEpsilon {
		return NewZeroVelocityError(a.Name)
	}
	if operation.Get(ctx) == nil {
		var cleanup func()
		ctx, cleanup = a.ops.Create(ctx, "GoFor", map[string]float64{"velocity": velocity, "distance": distance})
		defer cleanup()
	}
	ctx, done := a.opMgr.New(ctx)
	defer done()

	if err := a.settle(ctx); err != nil {
		return err
	}
	pos, err := a.Position(ctx)
	if err != nil {
		return err
	}
	return a.goTo(ctx, velocity, pos+distance)
}

// settle stops the axis if it is moving and waits for it to come to rest.
func (a *Axis) settle(ctx context.Context) error {
	a.mu.Lock()
	now := a.timebase.Now()
	moving, err := a.isMovingInLock(now)
	if err != nil || !moving {
		a.mu.Unlock()
		return err
	}
	if err := a.ctrl.StopAt(now); err != nil {
		a.mu.Unlock()
		return err
	}
	end := trajectory.Horizon(a.ctrl.Trajectory(), 0)
	a.mu.Unlock()

	if !a.opMgr.NewTimedWaitOp(ctx, a.timebase.Until(end)) {
		return ctx.Err()
	}
	return nil
}

func (a *Axis) goTo(ctx context.Context, velocity, position float64) error {
	if err := a.settle(ctx); err != nil {
		return err
	}

	a.mu.Lock()
	now := a.timebase.Now()
	cur, _, err := a.stateInLock(now)
	if err != nil {
		a.mu.Unlock()
		return err
	}
	m := motion.NewMotion(cur, position, math.Abs(a.clampVelocity(velocity)), a.accel, a.limits,
		motion.WithTimebase(a.timebase),
		motion.WithStart(now),
		motion.WithLogger(a.logger),
	)
	a.ctrl = m
	end := m.Trajectory().(*trajectory.Linear).End()
	a.mu.Unlock()

	a.logger.Debugf("axis %s GoTo %v from %v: %s", a.Name, m.Target(), cur, m.Trajectory())
	if a.opMgr.NewTimedWaitOp(ctx, a.timebase.Until(end)) {
		return nil
	}

	// Superseded commands leave the axis to their successor; a cancelled caller stops it.
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctrl == m {
		if err := m.StopAt(a.timebase.Now()); err != nil {
			return err
		}
	}
	return ctx.Err()
}

// Jog starts moving the axis at velocity, ramping from its current velocity, and returns
// immediately. The axis keeps moving until Stop or another command. Limits are not
// enforced while jogging.
func (a *Axis) Jog(ctx context.Context, velocity float64) error {
	a.opMgr.CancelRunning(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.timebase.Now()
	pos, vel, err := a.stateInLock(now)
	if err != nil {
		return err
	}
	velocity = a.clampVelocity(velocity)
	a.ctrl = motion.NewJog(pos, velocity, a.accel, a.limits,
		motion.WithTimebase(a.timebase),
		motion.WithStart(now),
		motion.WithInitialVelocity(vel),
		motion.WithLogger(a.logger),
	)
	a.logger.Debugf("axis %s Jog %v from %v at %v", a.Name, velocity, pos, vel)
	return nil
}

// Stop cancels the running command and decelerates the axis to rest. It does not wait.
func (a *Axis) Stop(ctx context.Context) error {
	a.opMgr.CancelRunning(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctrl == nil {
		return nil
	}
	if err := a.ctrl.StopAt(a.timebase.Now()); err != nil {
		return errors.Wrapf(err, "error in Stop from axis (%s)", a.Name)
	}
	a.logger.Debugf("axis %s stopping: %s", a.Name, a.ctrl.Trajectory())
	return nil
}

// WaitStopped waits until the axis is at rest. Like any other command it replaces the one
// running. If ctx is cancelled first, the axis is stopped.
func (a *Axis) WaitStopped(ctx context.Context) error {
	if operation.Get(ctx) == nil {
		var cleanup func()
		ctx, cleanup = a.ops.Create(ctx, "WaitStopped", nil)
		defer cleanup()
	}
	ctx, done := a.opMgr.New(ctx)
	defer done()
	return a.opMgr.WaitTillStopped(ctx, a.PollTime, a, a.Stop)
}
