package cli

import (
	"bufio"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"go.viam.com/motorlib/trajectory"
)

const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 4 * vg.Inch
	plotDPI    = 150
)

// PlotAction writes a PNG with the position and the velocity of a point to point move.
func PlotAction(c *cli.Context) error {
	p, err := planLinear(c)
	if err != nil {
		return err
	}
	n := c.Int(flagSamples)
	if n < 2 {
		return errors.Errorf("--%s must be at least 2 to draw a curve, got %d", flagSamples, n)
	}
	points, err := p.sample(0, p.horizon(0), n)
	if err != nil {
		return err
	}

	position, err := linePlot(points, "Position", "position", func(pt trajectory.Point) float64 { return pt.Position })
	if err != nil {
		return err
	}
	velocity, err := linePlot(points, "Velocity", "velocity", func(pt trajectory.Point) float64 { return pt.Velocity })
	if err != nil {
		return err
	}

	out := c.String(flagOut)
	if err := savePlotsPNG(out, position, velocity); err != nil {
		return err
	}
	printf(c.App.Writer, "wrote %s", out)
	return nil
}

func linePlot(points []trajectory.Point, title, ylabel string, value func(trajectory.Point) float64) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = title
	pl.X.Label.Text = "time (s)"
	pl.Y.Label.Text = ylabel
	pl.Add(plotter.NewGrid())

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = pt.Time
		xys[i].Y = value(pt)
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(1.5)
	pl.Add(line)
	return pl, nil
}

// savePlotsPNG stacks the plots vertically in one PNG.
func savePlotsPNG(filename string, plots ...*plot.Plot) error {
	if err := ensureDir(filename); err != nil {
		return err
	}
	img := vgimg.NewWith(
		vgimg.UseWH(plotWidth, plotHeight*vg.Length(len(plots))),
		vgimg.UseDPI(plotDPI),
	)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: len(plots), Cols: 1}
	for i, pl := range plots {
		pl.Draw(tiles.At(dc, 0, i))
	}

	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "cannot create png")
	}
	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(bw); err != nil {
		//nolint:errcheck
		f.Close()
		return errors.Wrap(err, "cannot write png")
	}
	if err := bw.Flush(); err != nil {
		//nolint:errcheck
		f.Close()
		return errors.Wrap(err, "cannot write png")
	}
	return f.Close()
}
