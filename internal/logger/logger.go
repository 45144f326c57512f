// Package logger provides leveled logging for gryadka on top of pterm prefix printers.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/pterm/pterm"
)

// Log is the process-wide logger used by every gryadka package.
var Log = &Logger{}

type LogLevel int32

const (
	LevelTrace LogLevel = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[LogLevel]string{
	LevelTrace: "trace",
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
	LevelFatal: "fatal",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}

	return fmt.Sprintf("level(%d)", int32(l))
}

// Logger filters messages by level before handing them to pterm.
// The zero value logs at info.
type Logger struct {
	level atomic.Int32
	set   atomic.Bool
}

func (l *Logger) enabled(level LogLevel) bool {
	return level >= l.Level()
}

// Level returns the active threshold.
func (l *Logger) Level() LogLevel {
	if !l.set.Load() {
		return LevelInfo
	}

	return LogLevel(l.level.Load())
}

func (l *Logger) setLevel(level LogLevel) {
	l.level.Store(int32(level))
	l.set.Store(true)

	if level <= LevelDebug {
		pterm.EnableDebugMessages()
	} else {
		pterm.DisableDebugMessages()
	}
}

func (l *Logger) Tracef(format string, args ...interface{}) {
	if l.enabled(LevelTrace) {
		pterm.Debug.Printfln(format, args...)
	}
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.enabled(LevelDebug) {
		pterm.Debug.Printfln(format, args...)
	}
}

func (l *Logger) Infof(format string, args ...interface{}) {
	if l.enabled(LevelInfo) {
		pterm.Info.Printfln(format, args...)
	}
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	if l.enabled(LevelWarn) {
		pterm.Warning.Printfln(format, args...)
	}
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	if l.enabled(LevelError) {
		pterm.Error.Printfln(format, args...)
	}
}

func (l *Logger) Debug(args ...interface{}) {
	if l.enabled(LevelDebug) {
		pterm.Debug.Println(args...)
	}
}

func (l *Logger) Info(args ...interface{}) {
	if l.enabled(LevelInfo) {
		pterm.Info.Println(args...)
	}
}

func (l *Logger) Warn(args ...interface{}) {
	if l.enabled(LevelWarn) {
		pterm.Warning.Println(args...)
	}
}

func (l *Logger) Error(args ...interface{}) {
	if l.enabled(LevelError) {
		pterm.Error.Println(args...)
	}
}

// ParseLevel maps a level name to its LogLevel.
func ParseLevel(level string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "fatal":
		return LevelFatal, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

func SetLevel(level string) error {
	parsed, err := ParseLevel(level)
	if err != nil {
		return err
	}

	Log.setLevel(parsed)

	return nil
}

// SetOutput points every diagnostic printer at w and returns a function
// restoring the previous writers. The TUI uses it to keep log lines off the screen.
func SetOutput(w io.Writer) (restore func()) {
	info, success, warning, errPrinter, debug :=
		pterm.Info.Writer, pterm.Success.Writer, pterm.Warning.Writer, pterm.Error.Writer, pterm.Debug.Writer

	pterm.Info.Writer = w
	pterm.Success.Writer = w
	pterm.Warning.Writer = w
	pterm.Error.Writer = w
	pterm.Debug.Writer = w

	return func() {
		pterm.Info.Writer = info
		pterm.Success.Writer = success
		pterm.Warning.Writer = warning
		pterm.Error.Writer = errPrinter
		pterm.Debug.Writer = debug
	}
}
