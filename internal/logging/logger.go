// Package logging provides the small Logger interface every internal
// package depends on, plus helpers for dealing safely with typed-nil
// loggers handed in by callers that don't have one configured yet.
package logging

import "fmt"

// Logger is the narrow logging surface internal packages depend on.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// nilable is implemented by legacy logger types that can be a non-nil
// interface value wrapping a nil pointer.
type nilable interface {
	IsNil() bool
}

// IsNil reports whether logger is nil, or is a non-nil interface value
// wrapping a nil concrete pointer (the classic typed-nil interface trap).
func IsNil(logger Logger) bool {
	if logger == nil {
		return true
	}
	if n, ok := logger.(nilable); ok {
		return n.IsNil()
	}
	return false
}

// OrNop returns logger if it is safely usable, otherwise a Logger that
// discards everything.
func OrNop(logger Logger) Logger {
	if logger == nil || IsNil(logger) {
		return nopLogger{}
	}
	return logger
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// componentLogger prefixes every message with a component name.
type componentLogger struct {
	component string
	backend   Backend
}

// Backend is the structured sink a component logger writes through.
// internal/observability.Logger implements this.
type Backend interface {
	Log(level, format string, args ...any)
}

// NewComponentLogger wraps backend with a component-tagged Logger.
func NewComponentLogger(component string, backend Backend) Logger {
	return &componentLogger{component: component, backend: backend}
}

func (c *componentLogger) Debug(format string, args ...any) { c.log("debug", format, args...) }
func (c *componentLogger) Info(format string, args ...any)  { c.log("info", format, args...) }
func (c *componentLogger) Warn(format string, args ...any)  { c.log("warn", format, args...) }
func (c *componentLogger) Error(format string, args ...any) { c.log("error", format, args...) }

func (c *componentLogger) log(level, format string, args ...any) {
	if c.backend == nil {
		return
	}
	c.backend.Log(level, fmt.Sprintf("[%s] %s", c.component, format), args...)
}

// FromObservabilityWithComponent builds a component Logger backed by an
// observability.Logger (or anything else satisfying Backend).
func FromObservabilityWithComponent(backend Backend, component string) Logger {
	return NewComponentLogger(component, backend)
}
