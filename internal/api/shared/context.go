package shared

import (
	"context"
	"log/slog"

	nanoid "github.com/jaevor/go-nanoid"
)

// ContextKey is the type of context keys set by this package.
type ContextKey string

// Context keys for request-scoped values.
const (
	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the length of generated trace IDs.
	TraceIDLength = 21
)

var newTraceID = mustTraceIDGenerator()

func mustTraceIDGenerator() func() string {
	gen, err := nanoid.Standard(TraceIDLength)
	if err != nil {
		// Standard only fails for lengths outside 2..255.
		panic(err)
	}
	return gen
}

// SetTraceID adds a fresh trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, newTraceID())
}

// WithTraceID adds the given trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// TraceAttr returns the trace ID as a log attribute.
func TraceAttr(ctx context.Context) slog.Attr {
	return slog.String("trace_id", GetTraceID(ctx))
}
