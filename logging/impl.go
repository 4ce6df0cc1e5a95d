package logging

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type (
	impl struct {
		name  string
		level AtomicLevel
		inUTC bool

		appenders []Appender
	}

	// LogEntry embeds a zapcore Entry and slice of Fields.
	LogEntry struct {
		zapcore.Entry
		fields []zapcore.Field
	}
)

func (imp *impl) NewLogEntry() *LogEntry {
	ret := &LogEntry{}
	ret.Time = time.Now()
	ret.LoggerName = imp.name
	ret.Caller = getCaller()

	return ret
}

func (imp *impl) AddAppender(appender Appender) {
	imp.appenders = append(imp.appenders, appender)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = fmt.Sprintf("%s.%s", imp.name, subname)
	}

	return &impl{
		name:      newName,
		level:     NewAtomicLevelAt(imp.level.Get()),
		inUTC:     imp.inUTC,
		appenders: imp.appenders,
	}
}

func (imp *impl) Sync() error {
	var errs []error
	for _, appender := range imp.appenders {
		if err := appender.Sync(); err != nil {
			errs = append(errs, err)
		}
	}

	return multierr.Combine(errs...)
}

func (imp *impl) shouldLog(logLevel Level) bool {
	return logLevel >= imp.level.Get()
}

func (imp *impl) log(entry *LogEntry) {
	if imp.inUTC {
		entry.Time = entry.Time.UTC()
	}

	for _, appender := range imp.appenders {
		err := appender.Write(entry.Entry, entry.fields)
		if err != nil {
			fmt.Fprint(os.Stderr, err)
		}
	}
}

func (imp *impl) entryAt(level Level, msg string) *LogEntry {
	entry := imp.NewLogEntry()
	entry.Level = level.AsZap()
	entry.Message = msg
	return entry
}

func (imp *impl) format(level Level, args ...interface{}) *LogEntry {
	return imp.entryAt(level, fmt.Sprint(args...))
}

func (imp *impl) formatf(level Level, template string, args ...interface{}) *LogEntry {
	return imp.entryAt(level, fmt.Sprintf(template, args...))
}

// formatw pairs keysAndValues into zap fields. A key with no value is kept with an error
// as its value.
func (imp *impl) formatw(level Level, msg string, keysAndValues ...interface{}) *LogEntry {
	entry := imp.entryAt(level, msg)
	entry.fields = make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		var value interface{} = errors.New("unpaired log key")
		if i+1 < len(keysAndValues) {
			value = keysAndValues[i+1]
		}
		entry.fields = append(entry.fields, zap.Any(key, value))
	}
	return entry
}

// emit, emitf and emitw are the only paths from a level method to the appenders. getCaller
// depends on that call depth.
func (imp *impl) emit(level Level, args []interface{}) {
	if imp.shouldLog(level) {
		imp.log(imp.format(level, args...))
	}
}

func (imp *impl) emitf(level Level, template string, args []interface{}) {
	if imp.shouldLog(level) {
		imp.log(imp.formatf(level, template, args...))
	}
}

func (imp *impl) emitw(level Level, msg string, keysAndValues []interface{}) {
	if imp.shouldLog(level) {
		imp.log(imp.formatw(level, msg, keysAndValues...))
	}
}

func (imp *impl) Debug(args ...interface{}) { imp.emit(DEBUG, args) }

func (imp *impl) Debugf(template string, args ...interface{}) { imp.emitf(DEBUG, template, args) }

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) { imp.emitw(DEBUG, msg, keysAndValues) }

func (imp *impl) Info(args ...interface{}) { imp.emit(INFO, args) }

func (imp *impl) Infof(template string, args ...interface{}) { imp.emitf(INFO, template, args) }

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) { imp.emitw(INFO, msg, keysAndValues) }

func (imp *impl) Warn(args ...interface{}) { imp.emit(WARN, args) }

func (imp *impl) Warnf(template string, args ...interface{}) { imp.emitf(WARN, template, args) }

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) { imp.emitw(WARN, msg, keysAndValues) }

func (imp *impl) Error(args ...interface{}) { imp.emit(ERROR, args) }

func (imp *impl) Errorf(template string, args ...interface{}) { imp.emitf(ERROR, template, args) }

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) { imp.emitw(ERROR, msg, keysAndValues) }

// getCaller reports the caller of the public log method, e.g. "logging/impl_test.go:36".
func getCaller() zapcore.EntryCaller {
	var ok bool
	var entryCaller zapcore.EntryCaller
	const skipToLogCaller = 6
	entryCaller.PC, entryCaller.File, entryCaller.Line, ok = runtime.Caller(skipToLogCaller)
	if !ok {
		return entryCaller
	}
	entryCaller.Defined = true

	runtimeFunc := runtime.FuncForPC(entryCaller.PC)
	if runtimeFunc != nil {
		entryCaller.Function = runtimeFunc.Name()
	}

	return entryCaller
}
