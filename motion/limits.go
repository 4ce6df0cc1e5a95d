package motion

import (
	"math"

	"github.com/pkg/errors"
)

// Limits are the hard positional bounds of an axis. Move targets are clipped into them.
type Limits struct {
	Low  float64
	High float64
}

// NoLimits leaves every target untouched.
var NoLimits = Limits{Low: math.Inf(-1), High: math.Inf(1)}

// Clip returns position clipped into [Low, High].
func (l Limits) Clip(position float64) float64 {
	return math.Min(math.Max(position, l.Low), l.High)
}

// Contains tells if position lies within the limits.
func (l Limits) Contains(position float64) bool {
	return position >= l.Low && position <= l.High
}

// Validate returns an error if the limits are empty or not numbers.
func (l Limits) Validate() error {
	if math.IsNaN(l.Low) || math.IsNaN(l.High) {
		return errors.New("limits must be numbers")
	}
	if l.Low > l.High {
		return errors.Errorf("low limit %v is above high limit %v", l.Low, l.High)
	}
	return nil
}
