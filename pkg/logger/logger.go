// Package logger provides the shared structured logger used across the
// storefront client. It wraps logrus with a per-component field so every
// line carries the emitting component's name.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is a component-scoped structured logger.
type Logger struct {
	entry *logrus.Entry
}

// New creates a logger for the named component writing to out at the given
// level.
func New(component string, out io.Writer, level logrus.Level) *Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &Logger{entry: l.WithField("component", component)}
}

// NewDefault creates a logger for the named component with settings taken
// from the STOREFRONT_LOG_LEVEL environment variable (info when unset).
func NewDefault(component string) *Logger {
	return New(component, os.Stderr, parseLevel(os.Getenv("STOREFRONT_LOG_LEVEL")))
}

// NewAtLevel creates a stderr logger for the named component at a level
// given as a string, falling back to info for unknown values.
func NewAtLevel(component, level string) *Logger {
	return New(component, os.Stderr, parseLevel(level))
}

// Discard returns a logger that drops everything. Intended for tests.
func Discard() *Logger {
	return New("test", io.Discard, logrus.PanicLevel)
}

func parseLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// WithField returns a logger with an extra structured field attached.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// WithError returns a logger with the error attached as a field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err)}
}

func (l *Logger) Debug(args ...interface{}) { l.entry.Debug(args...) }
func (l *Logger) Info(args ...interface{})  { l.entry.Info(args...) }
func (l *Logger) Warn(args ...interface{})  { l.entry.Warn(args...) }
func (l *Logger) Error(args ...interface{}) { l.entry.Error(args...) }

func (l *Logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
