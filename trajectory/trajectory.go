// Package trajectory contains closed-form, single-axis motion profiles. A trajectory is
// computed once at construction and can then be queried for position and velocity at any
// instant at or after its start, without storing a sampled path.
//
// Instants are float64 seconds on an arbitrary monotonic origin; see motion.Timebase for
// the mapping from a clock.
package trajectory

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies the concrete shape behind a Trajectory.
type Kind int

const (
	// KindJog is a ramp to a target velocity that is then held forever.
	KindJog Kind = iota
	// KindLinear is a bounded point to point move, trapezoidal or triangular.
	KindLinear
	// KindStop is a deceleration to rest.
	KindStop
)

func (k Kind) String() string {
	switch k {
	case KindJog:
		return "jog"
	case KindLinear:
		return "linear"
	case KindStop:
		return "stop"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var (
	// ErrInstantBeforeStart is returned when a trajectory is queried before it started.
	ErrInstantBeforeStart = errors.New("instant cannot be less than start time")
	// ErrPositionOutOfRange is returned when an inverse lookup asks for a position the
	// trajectory never goes through.
	ErrPositionOutOfRange = errors.New("position outside trajectory")
)

func newInstantBeforeStartError(instant, start float64) error {
	return errors.Wrapf(ErrInstantBeforeStart, "instant %v, start %v", instant, start)
}

func newPositionOutOfRangeError(position, from, to float64) error {
	return errors.Wrapf(ErrPositionOutOfRange, "position %v not in [%v, %v]", position, from, to)
}

// A Trajectory is an immutable description of position and velocity over time.
// Use a type switch on *Jog, *Linear or *Stop to reach the breakpoint fields.
type Trajectory interface {
	fmt.Stringer

	// Kind returns the shape of the trajectory.
	Kind() Kind

	// Start returns the instant the trajectory begins.
	Start() float64

	// Position returns the position at the given instant.
	Position(instant float64) (float64, error)

	// Velocity returns the velocity at the given instant. Jog and Stop velocities are
	// signed; Linear velocity is the speed along the direction of travel.
	Velocity(instant float64) (float64, error)

	// Finished tells if the motion has completed by the given instant.
	Finished(instant float64) bool

	// Acceleration returns the acceleration the trajectory was planned with.
	Acceleration() float64

	// Positive tells if the trajectory moves towards increasing positions.
	Positive() bool
}

// PositionFor returns the position reached after t seconds under constant acceleration a,
// starting at p0 with velocity v0.
func PositionFor(p0, v0, a, t float64) float64 {
	return p0 + v0*t + 0.5*a*t*t
}

// VelocityFor returns the velocity reached after t seconds under constant acceleration a,
// starting with velocity v0.
func VelocityFor(v0, a, t float64) float64 {
	return v0 + a*t
}

// SignedVelocity returns the velocity of tr at instant with the sign giving the direction
// of travel. This is the frame NewStop expects its initial velocity in.
func SignedVelocity(tr Trajectory, instant float64) (float64, error) {
	v, err := tr.Velocity(instant)
	if err != nil {
		return 0, err
	}
	if tr.Kind() == KindLinear && !tr.Positive() {
		v = -v
	}
	return v, nil
}

// safeDiv returns num/den, or 0 when den is 0. Zero acceleration models actuators with no
// inertia (piezo motors) and must never fault.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func direction(positive bool) float64 {
	if positive {
		return 1
	}
	return -1
}
