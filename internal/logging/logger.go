package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog to provide subsystem-scoped child loggers.
type Logger struct {
	zl zerolog.Logger
}

// Options selects the console style and an optional file sink.
type Options struct {
	Level        string // applies to the file sink and, if ConsoleLevel is empty, the console
	ConsoleLevel string
	ConsoleStyle string // "pretty" | "compact" | "json"
	File         string
}

// New creates a root logger writing to the given writer at the specified level.
// If w is nil, defaults to pretty console output on stderr.
func New(w io.Writer, level string) *Logger {
	if w == nil {
		w = consoleWriter(os.Stderr, "pretty")
	}
	zl := zerolog.New(w).With().Timestamp().Logger()
	zl = zl.Level(parseLevel(level))
	return &Logger{zl: zl}
}

// Open builds a logger from Options. The returned closer releases the log
// file, if one was opened; it is never nil.
func Open(opts Options) (*Logger, io.Closer, error) {
	consoleLevel := opts.ConsoleLevel
	if consoleLevel == "" {
		consoleLevel = opts.Level
	}

	if opts.File == "" {
		return New(consoleWriter(os.Stderr, opts.ConsoleStyle), consoleLevel), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	w := zerolog.MultiLevelWriter(
		levelWriter{w: consoleWriter(os.Stderr, opts.ConsoleStyle), min: parseLevel(consoleLevel)},
		levelWriter{w: f, min: parseLevel(opts.Level)},
	)
	return New(w, minLevel(opts.Level, consoleLevel)), f, nil
}

// Sub returns a child logger tagged with a subsystem name.
func (l *Logger) Sub(subsystem string) *Logger {
	return &Logger{zl: l.zl.With().Str("subsystem", subsystem).Logger()}
}

// With returns a child logger carrying an extra string field.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, value).Logger()}
}

// Debug logs at debug level.
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }

// Info logs at info level.
func (l *Logger) Info() *zerolog.Event { return l.zl.Info() }

// Warn logs at warn level.
func (l *Logger) Warn() *zerolog.Event { return l.zl.Warn() }

// Error logs at error level.
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }

// Fatal logs at fatal level and exits.
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// Zerolog returns the underlying zerolog.Logger for advanced use.
func (l *Logger) Zerolog() zerolog.Logger { return l.zl }

func consoleWriter(out io.Writer, style string) io.Writer {
	switch style {
	case "json":
		return out
	case "compact":
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: true, PartsExclude: []string{zerolog.CallerFieldName}}
	default:
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
}

// levelWriter drops events below min so each sink can filter independently.
type levelWriter struct {
	w   io.Writer
	min zerolog.Level
}

func (lw levelWriter) Write(p []byte) (int, error) { return lw.w.Write(p) }

func (lw levelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < lw.min || lw.min == zerolog.Disabled {
		return len(p), nil
	}
	return lw.w.Write(p)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// minLevel returns the more verbose of two level names.
func minLevel(a, b string) string {
	if parseLevel(a) <= parseLevel(b) {
		return a
	}
	return b
}

func parseLevel(s string) zerolog.Level {
	switch s {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "silent":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
