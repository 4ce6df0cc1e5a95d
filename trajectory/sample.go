package trajectory

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Point is a trajectory evaluated at one instant. Velocity is signed by the direction of
// travel for every kind of trajectory.
type Point struct {
	Time     float64
	Position float64
	Velocity float64
	Finished bool
}

// At evaluates tr at instant.
func At(tr Trajectory, instant float64) (Point, error) {
	pos, err := tr.Position(instant)
	if err != nil {
		return Point{}, err
	}
	vel, err := SignedVelocity(tr, instant)
	if err != nil {
		return Point{}, err
	}
	return Point{Time: instant, Position: pos, Velocity: vel, Finished: tr.Finished(instant)}, nil
}

// Sample evaluates tr at n evenly spaced instants from from to to, both included.
func Sample(tr Trajectory, from, to float64, n int) ([]Point, error) {
	if n < 1 {
		return nil, errors.Errorf("need at least one sample, got %d", n)
	}
	if to < from {
		return nil, errors.Errorf("sample window ends (%v) before it starts (%v)", to, from)
	}
	instants := []float64{from}
	if n > 1 {
		instants = floats.Span(make([]float64, n), from, to)
	}
	points := make([]Point, 0, n)
	for _, instant := range instants {
		p, err := At(tr, instant)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

// SampleRate evaluates tr every 1/hz seconds from from, with a last sample at to.
func SampleRate(tr Trajectory, from, to, hz float64) ([]Point, error) {
	if hz <= 0 {
		return nil, errors.Errorf("sample rate must be positive, got %v", hz)
	}
	if to < from {
		return nil, errors.Errorf("sample window ends (%v) before it starts (%v)", to, from)
	}
	n := int(math.Ceil((to-from)*hz)) + 1
	if n < 1 {
		n = 1
	}
	points := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		instant := math.Min(from+float64(i)/hz, to)
		p, err := At(tr, instant)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

// Horizon returns a reasonable instant to stop sampling tr at: its end for finite
// trajectories, or fallback seconds after its last breakpoint for a jog.
func Horizon(tr Trajectory, fallback float64) float64 {
	switch t := tr.(type) {
	case *Linear:
		return t.End()
	case *Stop:
		return t.End()
	case *Jog:
		return t.Profile().Ta + fallback
	default:
		return tr.Start() + fallback
	}
}
