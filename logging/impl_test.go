package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

type axisState struct {
	Position float64
	Velocity float64
	moving   bool
}

// assertLogMatches will fuzzy match log lines. Notably, this checks the time format, but ignores
// the exact time. And it expects a match on the filename, but the exact line number can be wrong.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualParts := strings.Split(strings.TrimSuffix(output, "\n"), "\t")
	expectedParts := strings.Split(expected, "\t")
	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))
	// The length of the date is a weak check that the first column is a date.
	test.That(t, len(actualParts[0]), test.ShouldEqual, len(expectedParts[0]))
	// Level.
	test.That(t, actualParts[1], test.ShouldEqual, expectedParts[1])
	// Logger name.
	test.That(t, actualParts[2], test.ShouldEqual, expectedParts[2])

	actualFilename, actualLineNumber, found := strings.Cut(actualParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	expectedFilename, _, found := strings.Cut(expectedParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, actualFilename, test.ShouldEqual, expectedFilename)
	_, err = strconv.Atoi(actualLineNumber)
	test.That(t, err, test.ShouldBeNil)

	// Message.
	test.That(t, actualParts[4], test.ShouldEqual, expectedParts[4])
	if len(actualParts) == 5 {
		return
	}

	expectedMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(expectedParts[5]), &expectedMap), test.ShouldBeNil)
	actualMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(actualParts[5]), &actualMap), test.ShouldBeNil)
	test.That(t, actualMap, test.ShouldResemble, expectedMap)
}

func newBufferLogger(name string, level Level) (*impl, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return &impl{name, NewAtomicLevelAt(level), true, []Appender{NewWriterAppender(buf)}}, buf
}

func TestConsoleOutputFormat(t *testing.T) {
	logger, buf := newBufferLogger("axis", DEBUG)

	logger.Info("move planned")
	assertLogMatches(t, buf,
		"2024-03-01T10:02:03.123Z\tINFO\taxis\tlogging/impl_test.go:66\tmove planned")

	logger.Warnf("velocity %v exceeds limit", 12.5)
	assertLogMatches(t, buf,
		"2024-03-01T10:02:03.123Z\tWARN\taxis\tlogging/impl_test.go:70\tvelocity 12.5 exceeds limit")

	logger.Debugw("stop", "position", 4.5, "velocity", -2)
	assertLogMatches(t, buf,
		`2024-03-01T10:02:03.123Z	DEBUG	axis	logging/impl_test.go:74	stop	{"position":4.5,"velocity":-2}`)

	// Unexported fields are dropped by the json encoder.
	logger.Infow("state", "axis", axisState{Position: 1, Velocity: 2, moving: true})
	assertLogMatches(t, buf,
		`2024-03-01T10:02:03.123Z	INFO	axis	logging/impl_test.go:79	state	{"axis":{"Position":1,"Velocity":2}}`)

	// A dangling key is logged with an error value rather than dropped.
	logger.Errorw("unpaired", "key")
	assertLogMatches(t, buf,
		`2024-03-01T10:02:03.123Z	ERROR	axis	logging/impl_test.go:84	unpaired	{"key":"unpaired log key"}`)
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger("filter", WARN)

	logger.Debug("dropped")
	logger.Info("dropped")
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	logger.Warn("kept")
	assertLogMatches(t, buf,
		"2024-03-01T10:02:03.123Z\tWARN\tfilter\tlogging/impl_test.go:97\tkept")

	logger.SetLevel(DEBUG)
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)
	logger.Debug("now kept")
	assertLogMatches(t, buf,
		"2024-03-01T10:02:03.123Z\tDEBUG\tfilter\tlogging/impl_test.go:103\tnow kept")
}

func TestSublogger(t *testing.T) {
	logger, buf := newBufferLogger("cli", INFO)
	sub := logger.Sublogger("axis")

	sub.Info("hello")
	assertLogMatches(t, buf,
		"2024-03-01T10:02:03.123Z\tINFO\tcli.axis\tlogging/impl_test.go:112\thello")

	// Changing the child's level does not affect the parent.
	sub.SetLevel(ERROR)
	test.That(t, logger.GetLevel(), test.ShouldEqual, INFO)

	blank := NewBlankLogger("")
	test.That(t, blank.Sublogger("only").(*impl).name, test.ShouldEqual, "only")
}

func TestObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Warnw("clamped", "requested", 20.0, "limit", 10.0)
	logger.Debug("details")

	test.That(t, logs.Len(), test.ShouldEqual, 2)
	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	test.That(t, len(warnings), test.ShouldEqual, 1)
	test.That(t, warnings[0].Message, test.ShouldEqual, "clamped")
	test.That(t, warnings[0].ContextMap()["requested"], test.ShouldEqual, 20.0)
	test.That(t, logs.FilterMessage("details").Len(), test.ShouldEqual, 1)
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		input    string
		expected Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warn", WARN},
		{"warning", WARN},
		{"error", ERROR},
	} {
		level, err := LevelFromString(tc.input)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.expected)
	}

	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "loud")

	test.That(t, DEBUG.String(), test.ShouldEqual, "Debug")
	test.That(t, Level(42).String(), test.ShouldEqual, "Unknown")
	test.That(t, ERROR.AsZap(), test.ShouldEqual, zapcore.ErrorLevel)
}

func TestFileAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motorsim.log")
	appender := NewFileAppender(FileConfig{Filename: path, MaxSizeMB: 1, MaxBackups: 2})
	logger := NewBlankLogger("file")
	logger.AddAppender(appender)

	logger.Info("to disk")
	test.That(t, logger.Sync(), test.ShouldBeNil)
	test.That(t, appender.Close(), test.ShouldBeNil)

	matches, err := filepath.Glob(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(matches), test.ShouldEqual, 1)
}

func TestGlobalLogger(t *testing.T) {
	prev := Global()
	defer ReplaceGlobal(prev)

	logger := NewBlankLogger("global")
	ReplaceGlobal(logger)
	test.That(t, Global(), test.ShouldEqual, logger)
}

func TestConstructorLevels(t *testing.T) {
	test.That(t, NewLogger("a").GetLevel(), test.ShouldEqual, INFO)
	test.That(t, NewDebugLogger("b").GetLevel(), test.ShouldEqual, DEBUG)
	test.That(t, NewBlankLogger("c").GetLevel(), test.ShouldEqual, DEBUG)
	test.That(t, NewTestLogger(t).GetLevel(), test.ShouldEqual, DEBUG)
}
