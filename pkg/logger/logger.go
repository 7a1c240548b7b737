// Package logger provides structured logging for the storefront services.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LoggingConfig controls logger construction.
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// Logger wraps a logrus logger with a fixed component field.
type Logger struct {
	base  *logrus.Logger
	entry *logrus.Entry
}

// New builds a logger from configuration.
func New(cfg LoggingConfig) *Logger {
	base := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{})
	default:
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Output)) {
	case "", "stdout":
		base.SetOutput(os.Stdout)
	case "stderr":
		base.SetOutput(os.Stderr)
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			base.SetOutput(os.Stdout)
		} else {
			base.SetOutput(f)
		}
	}

	return &Logger{base: base, entry: logrus.NewEntry(base)}
}

// NewDefault returns an info-level text logger tagged with the component name.
func NewDefault(component string) *Logger {
	log := New(LoggingConfig{Level: "info"})
	if component != "" {
		log.entry = log.entry.WithField("component", component)
	}
	return log
}

// SetOutput redirects all log output.
func (l *Logger) SetOutput(w io.Writer) {
	l.base.SetOutput(w)
}

// WithField returns an entry carrying an extra field.
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.entry.WithField(key, value)
}

// WithFields returns an entry carrying extra fields.
func (l *Logger) WithFields(fields map[string]interface{}) *logrus.Entry {
	return l.entry.WithFields(fields)
}

// WithError returns an entry carrying the error field.
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.entry.WithError(err)
}

func (l *Logger) Debug(args ...interface{}) { l.entry.Debug(args...) }
func (l *Logger) Info(args ...interface{})  { l.entry.Info(args...) }
func (l *Logger) Warn(args ...interface{})  { l.entry.Warn(args...) }
func (l *Logger) Error(args ...interface{}) { l.entry.Error(args...) }

func (l *Logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
