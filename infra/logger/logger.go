package logger

import corelogger "github.com/plugpoint/plugpoint/core/logger"

// Logger mirrors the core logger interface for convenience.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods. Used in tests and as a
// fallback when a component is handed no logger.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// New returns a Logger for the given component. The output format is chosen
// from the APP_ENV environment variable.
func New(component string) Logger {
	return NewZerologLogger(component)
}
