package logger

import (
	"context"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

var logContextKey = contextKey{}

// LogContext holds operation-scoped logging context for codec calls.
type LogContext struct {
	Operation string // resolve, encode, decode
	Union     string // Union name
	Variant   string // Variant name, once known
	Source    string // Where the bytes came from: argument, stdin, file path
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a LogContext for an operation on a union.
func NewLogContext(operation, union string) *LogContext {
	return &LogContext{
		Operation: operation,
		Union:     union,
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithVariant returns a copy with the variant set
func (lc *LogContext) WithVariant(variant string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Variant = variant
	}
	return clone
}

// WithSource returns a copy with the source set
func (lc *LogContext) WithSource(source string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Source = source
	}
	return clone
}
