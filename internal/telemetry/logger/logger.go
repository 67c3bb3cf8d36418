package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the logging interface used across the engine. Arguments are
// slog key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level: debug, info, warn (warning) or error.
	// Empty means info.
	Level string
	// Format is json (default) or text; console is an alias of text.
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
	// AddSource adds file:line to entries.
	AddSource bool
}

// level is shared by every logger built with New, so SetLevel applies to
// loggers already handed out.
var level = new(slog.LevelVar)

// New builds a logger. Session ids and secrets in attributes are masked.
func New(cfg Config) (Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactSensitive(a)
		},
	}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		h = slog.NewJSONHandler(out, opts)
	case "text", "console":
		h = slog.NewTextHandler(out, opts)
	default:
		return nil, fmt.Errorf("logger: unknown format %q", cfg.Format)
	}

	level.Set(lvl)
	return FromSlog(slog.New(h)), nil
}

// FromSlog adapts an *slog.Logger. No masking is added.
func FromSlog(l *slog.Logger) Logger {
	return adapter{l}
}

type adapter struct {
	*slog.Logger
}

func (a adapter) With(args ...any) Logger {
	return adapter{a.Logger.With(args...)}
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("logger: unknown level %q", s)
}

// SetLevel changes the level of every logger built with New. Unknown
// names leave the level unchanged.
func SetLevel(name string) {
	if lvl, err := ParseLevel(name); err == nil {
		level.Set(lvl)
	}
}

// GetLevel returns the current level name in lower case.
func GetLevel() string {
	return strings.ToLower(level.Level().String())
}

var std atomic.Pointer[Logger]

func init() {
	l, _ := New(Config{})
	SetDefault(l)
}

// SetDefault replaces the process-wide logger. nil is ignored.
func SetDefault(l Logger) {
	if l != nil {
		std.Store(&l)
	}
}

// Default returns the process-wide logger.
func Default() Logger {
	return *std.Load()
}

// Discard returns a logger that drops every entry.
func Discard() Logger {
	return adapter{slog.New(slog.DiscardHandler)}
}
