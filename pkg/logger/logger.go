// Package logger wraps charmbracelet/log with a process-wide default
// instance and level parsing tied to the paramflow configuration.
package logger

import (
	"fmt"
	"io"
	"os"

	charm "github.com/charmbracelet/log"

	"github.com/paramflow/paramflow/pkg/schema"
)

// Logger is a thin wrapper around a charm logger.
type Logger struct {
	*charm.Logger
}

// New creates a Logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{charm.New(w)}
}

// NewFromConfiguration builds a Logger from the Logs section of the
// configuration.
func NewFromConfiguration(cfg *schema.Configuration) (*Logger, error) {
	out, err := openLogFile(cfg.Logs.File)
	if err != nil {
		return nil, err
	}

	level, err := ParseLevel(cfg.Logs.Level)
	if err != nil {
		return nil, err
	}

	l := New(out)
	l.SetLevel(level)
	return l, nil
}

func openLogFile(file string) (io.Writer, error) {
	switch file {
	case "", "/dev/stderr":
		return os.Stderr, nil
	case "/dev/stdout":
		return os.Stdout, nil
	case "/dev/null":
		return io.Discard, nil
	default:
		return os.OpenFile(file, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	}
}

// ParseLevel converts a configuration level name to a charm log level.
// An empty level defaults to Info.
func ParseLevel(level string) (charm.Level, error) {
	switch level {
	case "", "Info":
		return charm.InfoLevel, nil
	case "Debug":
		return charm.DebugLevel, nil
	case "Warning":
		return charm.WarnLevel, nil
	case "Error":
		return charm.ErrorLevel, nil
	case "Off":
		// Nothing logs at a level above Fatal.
		return charm.FatalLevel + 1, nil
	default:
		return charm.InfoLevel, fmt.Errorf("invalid log level '%s', supported levels are Debug, Info, Warning, Error, Off", level)
	}
}
