// Package cli contains the motorsim command line tool: it samples, tabulates and plots
// trajectories and drives a simulated axis live.
package cli

import (
	"io"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/motorlib/logging"
)

const (
	// Global flags.
	flagDebug   = "debug"
	flagLogFile = "log-file"

	// Trajectory flags.
	flagFrom            = "from"
	flagTo              = "to"
	flagVelocity        = "velocity"
	flagAccel           = "accel"
	flagInitialVelocity = "initial-velocity"
	flagLow             = "low"
	flagHigh            = "high"
	flagSamples         = "samples"
	flagStopAt          = "stop-at"
	flagUntil           = "until"
	flagFormat          = "format"
	flagOut             = "out"

	// Run flags.
	flagConfig   = "config"
	flagRate     = "rate"
	flagProgress = "progress"

	metadataLogger       = "logger"
	metadataFileAppender = "file-appender"
	metadataClock        = "clock"
)

var sampleFlags = []cli.Flag{
	&cli.IntFlag{
		Name:  flagSamples,
		Value: 21,
		Usage: "number of evenly spaced samples",
	},
	&cli.StringFlag{
		Name:  flagFormat,
		Value: formatTable,
		Usage: "output format, table or csv",
	},
}

var linearFlags = []cli.Flag{
	&cli.Float64Flag{
		Name:  flagFrom,
		Usage: "start position",
	},
	&cli.Float64Flag{
		Name:     flagTo,
		Required: true,
		Usage:    "target position",
	},
	&cli.Float64Flag{
		Name:     flagVelocity,
		Required: true,
		Usage:    "cruise speed",
	},
	&cli.Float64Flag{
		Name:     flagAccel,
		Required: true,
		Usage:    "acceleration magnitude",
	},
	&cli.Float64Flag{
		Name:  flagLow,
		Usage: "low limit the target is clipped to",
	},
	&cli.Float64Flag{
		Name:  flagHigh,
		Usage: "high limit the target is clipped to",
	},
	&cli.Float64Flag{
		Name:  flagStopAt,
		Usage: "stop the move at this instant, in seconds",
	},
}

// NewApp returns a new app with the motorsim commands, Writer set to out, and ErrWriter
// set to errOut. A nil clk uses the wall clock.
func NewApp(out, errOut io.Writer, clk clock.Clock) *cli.App {
	if clk == nil {
		clk = clock.New()
	}
	return &cli.App{
		Name:            "motorsim",
		Usage:           "plan, sample and simulate single axis motion",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Metadata:        map[string]interface{}{metadataClock: clk},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "also write logs to `FILE`, rotated at 10MB",
			},
		},
		Before: setupLogging,
		After:  closeLogging,
		Commands: []*cli.Command{
			{
				Name:   "linear",
				Usage:  "sample a point to point move",
				Flags:  append(append([]cli.Flag{}, linearFlags...), sampleFlags...),
				Action: LinearAction,
			},
			{
				Name:  "jog",
				Usage: "sample a jog",
				Flags: append([]cli.Flag{
					&cli.Float64Flag{
						Name:  flagFrom,
						Usage: "start position",
					},
					&cli.Float64Flag{
						Name:     flagVelocity,
						Required: true,
						Usage:    "signed target velocity",
					},
					&cli.Float64Flag{
						Name:     flagAccel,
						Required: true,
						Usage:    "acceleration magnitude",
					},
					&cli.Float64Flag{
						Name:  flagInitialVelocity,
						Usage: "signed velocity at the start",
					},
					&cli.Float64Flag{
						Name:  flagUntil,
						Value: 10,
						Usage: "sample until this instant, in seconds",
					},
					&cli.Float64Flag{
						Name:  flagStopAt,
						Usage: "stop the jog at this instant, in seconds",
					},
				}, sampleFlags...),
				Action: JogAction,
			},
			{
				Name:  "stop",
				Usage: "sample a deceleration to rest",
				Flags: append([]cli.Flag{
					&cli.Float64Flag{
						Name:  flagFrom,
						Usage: "start position",
					},
					&cli.Float64Flag{
						Name:     flagVelocity,
						Required: true,
						Usage:    "signed velocity at the start",
					},
					&cli.Float64Flag{
						Name:     flagAccel,
						Required: true,
						Usage:    "deceleration magnitude",
					},
				}, sampleFlags...),
				Action: StopAction,
			},
			{
				Name:  "plot",
				Usage: "plot position and velocity of a point to point move to a PNG",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     flagOut,
						Required: true,
						Usage:    "write the plot to `FILE`",
					},
					&cli.IntFlag{
						Name:  flagSamples,
						Value: 200,
						Usage: "number of samples per curve",
					},
				}, linearFlags...),
				Action: PlotAction,
			},
			{
				Name:  "run",
				Usage: "move a simulated axis live; interrupt to stop it",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagConfig,
						Aliases:  []string{"c"},
						Required: true,
						Usage:    "load the axis from `FILE` (.json or .toml)",
					},
					&cli.Float64Flag{
						Name:     flagTo,
						Required: true,
						Usage:    "target position",
					},
					&cli.Float64Flag{
						Name:  flagVelocity,
						Usage: "speed, defaults to the axis max_velocity",
					},
					&cli.Float64Flag{
						Name:  flagRate,
						Value: 10,
						Usage: "state reports per second",
					},
					&cli.BoolFlag{
						Name:  flagProgress,
						Usage: "show a spinner instead of state lines",
					},
				},
				Action: RunAction,
			},
			{
				Name:   "schema",
				Usage:  "print the JSON schema of an axis config file",
				Action: SchemaAction,
			},
		},
	}
}

func setupLogging(c *cli.Context) error {
	logger := logging.NewBlankLogger("motorsim")
	logger.SetLevel(logging.INFO)
	if c.Bool(flagDebug) {
		logger.SetLevel(logging.DEBUG)
	}
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	if path := c.String(flagLogFile); path != "" {
		if err := ensureDir(path); err != nil {
			return err
		}
		fileAppender := logging.NewFileAppender(logging.FileConfig{
			Filename:   path,
			MaxSizeMB:  10,
			MaxBackups: 3,
		})
		logger.AddAppender(fileAppender)
		c.App.Metadata[metadataFileAppender] = fileAppender
	}
	logging.ReplaceGlobal(logger)
	c.App.Metadata[metadataLogger] = logger
	return nil
}

func closeLogging(c *cli.Context) error {
	var err error
	if logger, ok := c.App.Metadata[metadataLogger].(logging.Logger); ok {
		err = multierr.Append(err, logger.Sync())
	}
	if fileAppender, ok := c.App.Metadata[metadataFileAppender].(*logging.FileAppender); ok {
		err = multierr.Append(err, fileAppender.Close())
	}
	return err
}

func loggerFrom(c *cli.Context) logging.Logger {
	if logger, ok := c.App.Metadata[metadataLogger].(logging.Logger); ok {
		return logger
	}
	return logging.Global()
}

func clockFrom(c *cli.Context) clock.Clock {
	if clk, ok := c.App.Metadata[metadataClock].(clock.Clock); ok {
		return clk
	}
	return clock.New()
}

func requirePositive(c *cli.Context, name string) (float64, error) {
	v := c.Float64(name)
	if !(v > 0) {
		return 0, errors.Errorf("--%s must be positive, got %v", name, v)
	}
	return v, nil
}
