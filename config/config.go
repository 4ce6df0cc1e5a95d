// Package config defines the configuration of a simulated axis.
package config

import (
	"math"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/motorlib/motion"
)

// Limits are the hard positional bounds of an axis.
type Limits struct {
	Low  float64 `json:"low" jsonschema:"description=lowest reachable position"`
	High float64 `json:"high" jsonschema:"description=highest reachable position"`
}

// Axis describes a simulated axis.
type Axis struct {
	Name          string  `json:"name" jsonschema:"minLength=1"`
	StartPosition float64 `json:"start_position"`
	MaxVelocity   float64 `json:"max_velocity" jsonschema:"description=speed cap for every command"`
	Acceleration  float64 `json:"acceleration" jsonschema:"minimum=0"`
	Limits        *Limits `json:"limits,omitempty"`

	// ConfigFilePath is the file the config was read from, if any.
	ConfigFilePath string `json:"-"`
}

// Schema describes the axis config file as a JSON schema.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{}
	return r.Reflect(&Axis{})
}

// MotionLimits returns the limits as motion.Limits, or motion.NoLimits when unset.
func (conf *Axis) MotionLimits() motion.Limits {
	if conf.Limits == nil {
		return motion.NoLimits
	}
	return motion.Limits{Low: conf.Limits.Low, High: conf.Limits.High}
}

// Validate ensures all parts of the config are valid. Every problem found is reported.
func (conf *Axis) Validate(path string) error {
	var errs error
	if conf.Name == "" {
		errs = multierr.Append(errs, NewConfigValidationFieldRequiredError(path, "name"))
	}
	if !isFinite(conf.StartPosition) {
		errs = multierr.Append(errs, NewConfigValidationError(path, "start_position must be a finite number"))
	}
	if !(conf.MaxVelocity > 0) || math.IsInf(conf.MaxVelocity, 0) {
		errs = multierr.Append(errs, NewConfigValidationError(path,
			"max_velocity must be positive"))
	}
	if conf.Acceleration < 0 || !isFinite(conf.Acceleration) {
		errs = multierr.Append(errs, NewConfigValidationError(path,
			"acceleration must be zero or positive"))
	}
	if conf.Limits != nil {
		limits := conf.MotionLimits()
		if err := limits.Validate(); err != nil {
			errs = multierr.Append(errs, NewConfigValidationError(path+".limits", err.Error()))
		} else if !limits.Contains(conf.StartPosition) {
			errs = multierr.Append(errs, NewConfigValidationError(path,
				"start_position is outside limits"))
		}
	}
	return errs
}

// NewConfigValidationError returns an error specifying that there's a problem with the
// config at the given path.
func NewConfigValidationError(path, msg string) error {
	return errors.Errorf("error validating %q: %s", path, msg)
}

// NewConfigValidationFieldRequiredError returns an error specifying that a required field
// is missing.
func NewConfigValidationFieldRequiredError(path, field string) error {
	return NewConfigValidationError(path, field+" is required")
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
