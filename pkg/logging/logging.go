// Package logging builds the zap logger used across the engine and the CLI.
// Debug and info go to stdout, warnings and errors to stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Options configures New
type Options struct {
	Level  string // debug, info, warn(ing), err(or) or disabled
	Color  string // auto, always or never
	JSON   bool   // structured output instead of console lines
	Stdout io.Writer
	Stderr io.Writer
}

// ParseLevel maps a level name to a zap level. disabled reports the
// "disabled" level, which silences all output.
func ParseLevel(name string) (level zapcore.Level, disabled bool, err error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel, false, nil
	case "info":
		return zapcore.InfoLevel, false, nil
	case "warn", "warning":
		return zapcore.WarnLevel, false, nil
	case "err", "error", "":
		return zapcore.ErrorLevel, false, nil
	case "disabled", "off", "none":
		return zapcore.InvalidLevel, true, nil
	}
	return zapcore.InvalidLevel, false, fmt.Errorf("unknown log level %q", name)
}

// New creates a logger writing to stdout and stderr. The default level is
// error.
func New(opts Options) (*zap.Logger, error) {
	level, disabled, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if disabled {
		return zap.NewNop(), nil
	}

	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	low := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= level && l < zapcore.WarnLevel
	})
	high := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= level && l >= zapcore.WarnLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(newEncoder(opts, stdout), zapcore.AddSync(stdout), low),
		zapcore.NewCore(newEncoder(opts, stderr), zapcore.AddSync(stderr), high),
	)
	return zap.New(core), nil
}

// Must is New for callers that cannot handle a bad level
func Must(opts Options) *zap.Logger {
	logger, err := New(opts)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger
}

func newEncoder(opts Options, w io.Writer) zapcore.Encoder {
	if opts.JSON {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(cfg)
	}

	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = ""
	cfg.CallerKey = ""
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if useColor(opts.Color, w) {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(cfg)
}

// useColor reports whether escape sequences should be written to w: always
// when forced, otherwise when w is a terminal or TERM is ANSI
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("TERM") == "ANSI" {
		return true
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
