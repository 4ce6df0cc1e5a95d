package axis

import "github.com/pkg/errors"

// NewZeroVelocityError returns an error representing a request to move an axis at zero
// velocity (i.e., moving the axis without moving the axis).
func NewZeroVelocityError(axisName string) error {
	return errors.Errorf("cannot move axis %s at a velocity that is nearly 0", axisName)
}

// NewOutsideLimitsError returns an error for a position outside the axis limits.
func NewOutsideLimitsError(axisName string, position, low, high float64) error {
	return errors.Errorf("position %v of axis %s is outside its limits [%v, %v]", position, axisName, low, high)
}
