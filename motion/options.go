package motion

import "go.viam.com/motorlib/logging"

type options struct {
	timebase *Timebase
	start    *float64
	vi       float64
	logger   logging.Logger
}

// An Option configures a controller.
type Option func(*options)

// WithTimebase sets the timebase "now" is read from. By default each controller gets a
// Timebase on the wall clock.
func WithTimebase(tb *Timebase) Option {
	return func(o *options) {
		o.timebase = tb
	}
}

// WithStart sets the start instant instead of the timebase's now.
func WithStart(ti float64) Option {
	return func(o *options) {
		o.start = &ti
	}
}

// WithInitialVelocity sets the velocity a jog starts from. Motion ignores it.
func WithInitialVelocity(vi float64) Option {
	return func(o *options) {
		o.vi = vi
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.timebase == nil {
		o.timebase = NewTimebase(nil)
	}
	if o.logger == nil {
		o.logger = logging.NewBlankLogger("motion")
	}
	if o.start == nil {
		now := o.timebase.Now()
		o.start = &now
	}
	return o
}
