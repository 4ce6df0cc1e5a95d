package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"go.viam.com/motorlib/components/axis"
	"go.viam.com/motorlib/config"
	"go.viam.com/motorlib/motion"
)

const (
	stepConfig = "config"
	stepMove   = "move"
	stepStop   = "stop"
)

// runReporter reports the state of a running axis, either as lines or on a spinner.
type runReporter struct {
	c  *cli.Context
	pm *ProgressManager
}

func (r runReporter) start(step string) {
	if r.pm != nil {
		//nolint:errcheck
		r.pm.Start(step)
	}
}

func (r runReporter) complete(step, msg string) {
	if r.pm != nil {
		//nolint:errcheck
		r.pm.CompleteWithMessage(step, msg)
		return
	}
	printf(r.c.App.Writer, "%s", msg)
}

func (r runReporter) fail(step string, err error) {
	if r.pm != nil {
		//nolint:errcheck
		r.pm.Fail(step, err)
	}
}

func (r runReporter) state(a *axis.Axis) {
	ctx := context.Background()
	pos, err := a.Position(ctx)
	if err != nil {
		return
	}
	vel, err := a.Velocity(ctx)
	if err != nil {
		return
	}
	line := fmt.Sprintf("t=%s position=%s velocity=%s",
		formatFloat(a.Timebase().Now()), formatFloat(pos), formatFloat(vel))
	if r.pm != nil {
		r.pm.UpdateText(line)
		return
	}
	printf(r.c.App.Writer, "%s", line)
}

// RunAction moves a simulated axis loaded from a config file, reporting its state at
// --rate until it arrives. An interrupt stops the axis and waits for it to come to rest.
func RunAction(c *cli.Context) error {
	rate, err := requirePositive(c, flagRate)
	if err != nil {
		return err
	}

	r := runReporter{c: c}
	if c.Bool(flagProgress) {
		r.pm = NewProgressManager(c.App.Writer, []*Step{
			{ID: stepConfig, Message: "Loading axis"},
			{ID: stepMove, Message: "Moving"},
			{ID: stepStop, Message: "Stopping", IndentLevel: 1},
		}, WithProgressClock(clockFrom(c)))
		defer r.pm.Stop()
	}

	r.start(stepConfig)
	conf, err := config.Read(c.String(flagConfig))
	if err != nil {
		r.fail(stepConfig, err)
		return err
	}
	logger := loggerFrom(c)
	a, err := axis.NewAxis(conf, clockFrom(c), logger.Sublogger("axis"))
	if err != nil {
		r.fail(stepConfig, err)
		return err
	}
	r.complete(stepConfig, fmt.Sprintf("loaded axis %s from %s", a.Name, conf.ConfigFilePath))

	velocity := conf.MaxVelocity
	if c.IsSet(flagVelocity) {
		velocity = c.Float64(flagVelocity)
	}
	target := c.Float64(flagTo)
	if limits := a.Limits(); !limits.Contains(target) {
		warningf(c.App.ErrWriter, "target %v is outside the limits, moving to %v instead", target, limits.Clip(target))
	}

	ctx, stopNotify := signal.NotifyContext(c.Context, os.Interrupt)
	defer stopNotify()

	r.start(stepMove)
	reportCtx, stopReports := context.WithCancel(c.Context)
	var g errgroup.Group
	g.Go(func() error {
		defer stopReports()
		return a.GoTo(ctx, velocity, target)
	})
	g.Go(func() error {
		r.report(reportCtx, a, rate)
		return nil
	})
	return finishRun(c, r, a, g.Wait())
}

// report prints the axis state rate times per second until ctx is done.
func (r runReporter) report(ctx context.Context, a *axis.Axis, rate float64) {
	ticker := a.Timebase().Clock().Ticker(motion.Seconds(1 / rate))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.state(a)
		}
	}
}

func finishRun(c *cli.Context, r runReporter, a *axis.Axis, moveErr error) error {
	if moveErr == nil {
		pos, err := a.Position(c.Context)
		if err != nil {
			return err
		}
		r.complete(stepMove, fmt.Sprintf("arrived at %s", formatFloat(pos)))
		return nil
	}
	if !errors.Is(moveErr, context.Canceled) || c.Context.Err() != nil {
		r.fail(stepMove, moveErr)
		return moveErr
	}

	r.fail(stepMove, errors.New("interrupted"))
	r.start(stepStop)
	loggerFrom(c).Infow("interrupted, stopping axis", "axis", a.Name)
	if err := a.WaitStopped(c.Context); err != nil {
		r.fail(stepStop, err)
		return err
	}
	pos, err := a.Position(context.Background())
	if err != nil {
		return err
	}
	r.complete(stepStop, fmt.Sprintf("stopped at %s", formatFloat(pos)))
	return nil
}
