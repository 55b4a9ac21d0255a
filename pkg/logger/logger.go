// Package logger provides the small structured logging interface the
// range-download engine logs through: the writer loop and the engine's
// completion callback in pkg/rangedl log write failures, transport
// failures and completions through a Logger rather than calling
// log.Printf directly, so a caller embedding the engine can route those
// lines wherever it already logs.
package logger

import (
	"fmt"
	"log"
)

// Logger defines the interface for structured logging across the engine.
// Implementations may log to console, files, or discard everything.
type Logger interface {
	// Info logs an informational message (e.g., a session completing).
	Info(format string, args ...interface{})

	// Warning logs a warning message (e.g., a latched pause/cancel).
	Warning(format string, args ...interface{})

	// Error logs an error message (e.g., a transport or write failure).
	Error(format string, args ...interface{})

	// Close releases resources held by the logger.
	// Safe to call multiple times. Returns nil for loggers without resources.
	Close() error
}

// StandardLogger wraps the stdlib *log.Logger for console/file output.
type StandardLogger struct {
	logger *log.Logger
}

// NewStandardLogger creates a logger that wraps the given *log.Logger.
func NewStandardLogger(l *log.Logger) *StandardLogger {
	return &StandardLogger{logger: l}
}

// Info logs an informational message with [INFO] prefix.
func (s *StandardLogger) Info(format string, args ...interface{}) {
	s.logger.Printf("[INFO] "+format, args...)
}

// Warning logs a warning message with [WARNING] prefix.
func (s *StandardLogger) Warning(format string, args ...interface{}) {
	s.logger.Printf("[WARNING] "+format, args...)
}

// Error logs an error message with [ERROR] prefix.
func (s *StandardLogger) Error(format string, args ...interface{}) {
	s.logger.Printf("[ERROR] "+format, args...)
}

// Close is a no-op for StandardLogger (no resources to release).
func (s *StandardLogger) Close() error {
	return nil
}

// NopLogger is a logger that discards all messages. This is the Engine's
// default (EngineOpts.Log), matching the spec's silence on any console
// contract for the core.
type NopLogger struct{}

// NewNopLogger creates a logger that discards all messages.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

// Info discards the message.
func (n *NopLogger) Info(format string, args ...interface{}) {}

// Warning discards the message.
func (n *NopLogger) Warning(format string, args ...interface{}) {}

// Error discards the message.
func (n *NopLogger) Error(format string, args ...interface{}) {}

// Close is a no-op.
func (n *NopLogger) Close() error {
	return nil
}

// Ensure implementations satisfy the Logger interface.
var (
	_ Logger = (*StandardLogger)(nil)
	_ Logger = (*NopLogger)(nil)
)

// MockLogger implements Logger for testing purposes.
// It records all log calls for verification in tests.
type MockLogger struct {
	InfoCalls    []string
	WarningCalls []string
	ErrorCalls   []string
	CloseCalled  bool
}

// NewMockLogger creates a new MockLogger for testing.
func NewMockLogger() *MockLogger {
	return &MockLogger{
		InfoCalls:    make([]string, 0),
		WarningCalls: make([]string, 0),
		ErrorCalls:   make([]string, 0),
	}
}

// Info records the formatted message.
func (m *MockLogger) Info(format string, args ...interface{}) {
	m.InfoCalls = append(m.InfoCalls, fmt.Sprintf(format, args...))
}

// Warning records the formatted message.
func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.WarningCalls = append(m.WarningCalls, fmt.Sprintf(format, args...))
}

// Error records the formatted message.
func (m *MockLogger) Error(format string, args ...interface{}) {
	m.ErrorCalls = append(m.ErrorCalls, fmt.Sprintf(format, args...))
}

// Close records that Close was called.
func (m *MockLogger) Close() error {
	m.CloseCalled = true
	return nil
}

// Ensure MockLogger satisfies the Logger interface.
var _ Logger = (*MockLogger)(nil)

// prefixedLogger decorates a Logger, prepending a fixed label to every
// message. The engine's writer loop and completion callback both
// multiplex many sessions through one Logger; rather than have each log
// call spell out "session %d: " by hand, they wrap that Logger in one of
// these for the session being logged and log through it.
type prefixedLogger struct {
	Logger
	prefix string
}

// WithPrefix returns a Logger that prepends prefix to every message
// passed to Info/Warning/Error. Close is delegated to the wrapped
// Logger, since the prefix is a view onto it, not a separate resource.
func WithPrefix(l Logger, prefix string) Logger {
	return &prefixedLogger{Logger: l, prefix: prefix}
}

func (p *prefixedLogger) Info(format string, args ...interface{}) {
	p.Logger.Info(p.prefix+format, args...)
}

func (p *prefixedLogger) Warning(format string, args ...interface{}) {
	p.Logger.Warning(p.prefix+format, args...)
}

func (p *prefixedLogger) Error(format string, args ...interface{}) {
	p.Logger.Error(p.prefix+format, args...)
}
