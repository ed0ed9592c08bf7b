package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across sapfpad.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity
	FieldBridgeID  = "bridge_id"
	FieldSessionID = "session_id"
	FieldComponent = "component"

	// Interpreter
	FieldCommand = "command"
	FieldPID     = "pid"
	FieldState   = "state"
	FieldLine    = "line"

	// Dictionary
	FieldQuery    = "query"
	FieldCategory = "category"
	FieldSymbol   = "symbol"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount = "count"

	// Files and paths
	FieldFile   = "file"
	FieldBuffer = "buffer"
)

type contextKey string

const (
	sessionIDKey contextKey = "logger_session_id"
	componentKey contextKey = "logger_component"
)

// WithSessionID adds a session ID to the context for logging
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if sessionID, ok := ctx.Value(sessionIDKey).(string); ok && sessionID != "" {
		fields = append(fields, FieldSessionID, sessionID)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, FieldComponent, component)
	}

	return fields
}

// LoggerFromContext returns the global logger with fields extracted from context.
func LoggerFromContext(ctx context.Context) *zap.SugaredLogger {
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return Logger
	}
	return Logger.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Bridge struct {
//	    logger *zap.SugaredLogger
//	}
//
//	func newBridge() *Bridge {
//	    return &Bridge{logger: logger.ComponentLogger("bridge")}
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
