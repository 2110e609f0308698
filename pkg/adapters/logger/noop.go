package logger

import "github.com/Schrubitteflau/compression-suite/pkg/ports"

// NoopLogger discards all messages. Used with --quiet and in tests.
type NoopLogger struct{}

// NewNoop creates a NoopLogger.
func NewNoop() *NoopLogger {
	return &NoopLogger{}
}

// Debug does nothing.
func (l *NoopLogger) Debug(msg string, args ...interface{}) {}

// Info does nothing.
func (l *NoopLogger) Info(msg string, args ...interface{}) {}

// Warn does nothing.
func (l *NoopLogger) Warn(msg string, args ...interface{}) {}

// Error does nothing.
func (l *NoopLogger) Error(msg string, args ...interface{}) {}

// WithComponent returns the logger unchanged.
func (l *NoopLogger) WithComponent(component string) ports.Logger {
	return l
}

// Ensure NoopLogger implements ports.Logger
var _ ports.Logger = (*NoopLogger)(nil)
