package cli

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"go.viam.com/motorlib/trajectory"
)

// printf prints a message with no decoration.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// warningf prints a message prefixed with a bold "Warning: ".
func warningf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, "Warning: "+format+"\n", a...)
}

const (
	formatTable = "table"
	formatCSV   = "csv"
)

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

// renderPoints writes points as a table or as CSV.
func renderPoints(w io.Writer, points []trajectory.Point, format string) error {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Time", "Position", "Velocity", "Finished"})
	for _, p := range points {
		t.AppendRow(table.Row{
			formatFloat(p.Time),
			formatFloat(p.Position),
			formatFloat(p.Velocity),
			strconv.FormatBool(p.Finished),
		})
	}
	switch format {
	case formatTable:
		peak, mean, err := speedSummary(points)
		if err != nil {
			return err
		}
		t.AppendFooter(table.Row{"", "", "peak " + formatFloat(peak), ""})
		t.AppendFooter(table.Row{"", "", "mean " + formatFloat(mean), ""})
		printf(w, "%s", t.Render())
	case formatCSV:
		printf(w, "%s", t.RenderCSV())
	default:
		return errors.Errorf("unknown output format %q, expected %q or %q", format, formatTable, formatCSV)
	}
	return nil
}

// speedSummary returns the peak and mean of the sampled speeds.
func speedSummary(points []trajectory.Point) (float64, float64, error) {
	speeds := make(stats.Float64Data, len(points))
	for i, p := range points {
		speeds[i] = math.Abs(p.Velocity)
	}
	peak, err := speeds.Max()
	if err != nil {
		return 0, 0, errors.Wrap(err, "cannot summarize samples")
	}
	mean, err := speeds.Mean()
	if err != nil {
		return 0, 0, errors.Wrap(err, "cannot summarize samples")
	}
	return peak, mean, nil
}

// describe renders the breakpoints of a trajectory as a two column table.
func describe(tr trajectory.Trajectory) string {
	t := table.NewWriter()
	t.SetTitle(tr.String())
	add := func(name string, value float64) {
		t.AppendRow(table.Row{name, formatFloat(value)})
	}
	switch tr := tr.(type) {
	case *trajectory.Linear:
		p := tr.Profile()
		add("ta", p.Ta)
		add("tb", p.Tb)
		add("tf", p.Tf)
		add("pa", p.Pa)
		add("pb", p.Pb)
		add("pf", p.Pf)
		add("velocity", p.Vel)
		t.AppendRow(table.Row{"profile", profileName(p.ReachesTopVel)})
	case *trajectory.Jog:
		p := tr.Profile()
		add("ta", p.Ta)
		add("pa", p.Pa)
		add("velocity", p.Vel)
	case *trajectory.Stop:
		p := tr.Profile()
		add("tf", p.Tf)
		add("pf", p.Pf)
		add("duration", p.Duration)
	}
	return t.Render()
}

func profileName(reachesTopVel bool) string {
	if reachesTopVel {
		return "trapezoidal"
	}
	return "triangular"
}

// ensureDir creates the parent directory of path.
func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "cannot create directory")
		}
	}
	return nil
}
