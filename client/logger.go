package client

import (
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Logger is an optional package logger used for non-fatal warnings.
type Logger interface {
	// Warnf logs a formatted warning message.
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any) {}

type charmLogger struct {
	l *charmlog.Logger
}

func (c charmLogger) Warnf(format string, args ...any) {
	c.l.Warnf(format, args...)
}

// DefaultLogger returns a Logger writing structured warnings to stderr.
func DefaultLogger() Logger {
	return charmLogger{l: charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "ytgrab",
	})}
}
