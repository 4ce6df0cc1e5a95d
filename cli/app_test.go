package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.viam.com/test"
)

// syncBuffer is a bytes.Buffer safe to share with a spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &syncBuffer{}, &syncBuffer{}
	err := NewApp(out, errOut, nil).Run(append([]string{"motorsim"}, args...))
	return out.String(), errOut.String(), err
}

func TestLinearCommand(t *testing.T) {
	t.Run("csv", func(t *testing.T) {
		out, _, err := runApp(t, "linear", "--to", "10", "--velocity", "2", "--accel", "1",
			"--samples", "3", "--format", "csv")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldContainSubstring, "trapezoidal")
		test.That(t, out, test.ShouldContainSubstring, "Time,Position,Velocity,Finished")
		test.That(t, out, test.ShouldContainSubstring, "0.0000,0.0000,0.0000,false")
		test.That(t, out, test.ShouldContainSubstring, "3.5000,5.0000,2.0000,false")
	})

	t.Run("table", func(t *testing.T) {
		out, _, err := runApp(t, "linear", "--to", "1", "--velocity", "10", "--accel", "1", "--samples", "2")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldContainSubstring, "triangular")
		test.That(t, out, test.ShouldContainSubstring, "POSITION")
		test.That(t, strings.ToLower(out), test.ShouldContainSubstring, "peak 0.0000")
	})

	t.Run("table summary", func(t *testing.T) {
		out, _, err := runApp(t, "linear", "--to", "10", "--velocity", "2", "--accel", "1", "--samples", "3")
		test.That(t, err, test.ShouldBeNil)
		// speeds 0, 2 and 0
		test.That(t, strings.ToLower(out), test.ShouldContainSubstring, "peak 2.0000")
		test.That(t, strings.ToLower(out), test.ShouldContainSubstring, "mean 0.6667")
	})

	t.Run("clamped target warns", func(t *testing.T) {
		out, errOut, err := runApp(t, "linear", "--to", "10", "--velocity", "2", "--accel", "1",
			"--high", "6", "--samples", "2", "--format", "csv")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, errOut, test.ShouldContainSubstring, "Warning: target 10 is outside the limits, moving to 6 instead")
		test.That(t, errOut, test.ShouldContainSubstring, "move target clipped to limits")
		test.That(t, out, test.ShouldContainSubstring, ",6.0000,0.0000,")
	})

	t.Run("stop splice", func(t *testing.T) {
		// stopped at 3s at position 4 moving at 2, rests 2s later at 6
		out, _, err := runApp(t, "linear", "--to", "10", "--velocity", "2", "--accel", "1",
			"--stop-at", "3", "--samples", "3", "--format", "csv")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldContainSubstring, "2.5000,3.0000,2.0000,false")
		test.That(t, out, test.ShouldContainSubstring, "5.0000,6.0000,0.0000")
	})

	t.Run("errors", func(t *testing.T) {
		_, _, err := runApp(t, "linear", "--to", "10", "--velocity", "0", "--accel", "1")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "--velocity must be positive")

		_, _, err = runApp(t, "linear", "--to", "10", "--velocity", "1", "--accel", "1", "--format", "xml")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, `unknown output format "xml"`)

		_, _, err = runApp(t, "linear", "--to", "10", "--velocity", "1", "--accel", "1",
			"--low", "5", "--high", "1")
		test.That(t, err, test.ShouldNotBeNil)

		_, _, err = runApp(t, "linear", "--to", "10", "--velocity", "1", "--accel", "1", "--stop-at=-1")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "--stop-at must not be negative")
	})
}

func TestJogCommand(t *testing.T) {
	out, _, err := runApp(t, "jog", "--velocity=-2", "--accel", "1", "--until", "4",
		"--samples", "5", "--format", "csv")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "2.0000,-2.0000,-2.0000,false")
	test.That(t, out, test.ShouldContainSubstring, "4.0000,-6.0000,-2.0000,false")

	// stopped at 2s at -2 moving at -2, rests 2s later at -4
	out, _, err = runApp(t, "jog", "--velocity=-2", "--accel", "1", "--until", "1", "--stop-at", "2",
		"--samples", "3", "--format", "csv")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "4.0000,-4.0000,0.0000")
}

func TestStopCommand(t *testing.T) {
	out, _, err := runApp(t, "stop", "--from", "1", "--velocity", "4", "--accel", "2",
		"--samples", "2", "--format", "csv")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "0.0000,1.0000,4.0000,false")
	test.That(t, out, test.ShouldContainSubstring, "2.0000,5.0000,0.0000")
}

func TestPlotCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots", "move.png")
	out, _, err := runApp(t, "plot", "--to", "10", "--velocity", "2", "--accel", "1", "--out", path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "wrote "+path)

	data, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(data), test.ShouldBeGreaterThan, 8)
	test.That(t, string(data[1:4]), test.ShouldEqual, "PNG")

	_, _, err = runApp(t, "plot", "--to", "10", "--velocity", "2", "--accel", "1", "--out", path, "--samples", "1")
	test.That(t, err, test.ShouldNotBeNil)
}

func writeAxisConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fast.json")
	conf := `{"name": "fast", "max_velocity": 1000, "acceleration": 10000, "limits": {"low": -5, "high": 5}}`
	test.That(t, os.WriteFile(path, []byte(conf), 0o600), test.ShouldBeNil)
	return path
}

func TestRunCommand(t *testing.T) {
	path := writeAxisConfig(t)

	out, _, err := runApp(t, "run", "--config", path, "--to", "1", "--rate", "1000")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "loaded axis fast from "+path)
	test.That(t, out, test.ShouldContainSubstring, "arrived at 1.0000")

	out, errOut, err := runApp(t, "run", "--config", path, "--to", "9")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errOut, test.ShouldContainSubstring, "moving to 5 instead")
	test.That(t, out, test.ShouldContainSubstring, "arrived at 5.0000")

	_, _, err = runApp(t, "run", "--config", path, "--to", "1", "--progress")
	test.That(t, err, test.ShouldBeNil)

	_, _, err = runApp(t, "run", "--config", filepath.Join(t.TempDir(), "missing.json"), "--to", "1")
	test.That(t, err, test.ShouldNotBeNil)

	_, _, err = runApp(t, "run", "--config", path, "--to", "1", "--rate", "0")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "motorsim.log")
	_, errOut, err := runApp(t, "--debug", "--log-file", path, "linear", "--to", "10", "--velocity", "2",
		"--accel", "1", "--stop-at", "3", "--samples", "2")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errOut, test.ShouldContainSubstring, "stopping")

	data, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldContainSubstring, "motorsim.motion")
	test.That(t, string(data), test.ShouldContainSubstring, "stopping")
}

func TestSchemaCommand(t *testing.T) {
	out, _, err := runApp(t, "schema")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, `"max_velocity"`)
	test.That(t, out, test.ShouldContainSubstring, "speed cap for every command")
}
