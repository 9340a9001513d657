// Package logger provides a configured zerolog logger.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	Service string
	// Level is a zerolog level name; empty means info.
	Level string
	// File routes output through a rotating log file instead of stderr.
	// Set it whenever the terminal is owned by the TUI.
	File string
}

// New returns a zerolog.Logger with service and timestamp fields, and the
// closer for its output. An unparsable level falls back to info.
func New(opts Options) (zerolog.Logger, io.Closer) {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	out := output(opts.File)
	log := zerolog.New(out).
		Level(level).
		With().
		Str("service", opts.Service).
		Timestamp().
		Logger()
	return log, out
}

// stderr is never closed.
type stderr struct{ io.Writer }

func (stderr) Close() error { return nil }

func output(file string) io.WriteCloser {
	if file == "" {
		return stderr{os.Stderr}
	}
	// lumberjack creates the file lazily; the directory must exist.
	_ = os.MkdirAll(filepath.Dir(file), 0755)
	return &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
}

// Nop returns a disabled logger for tests and library defaults.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
