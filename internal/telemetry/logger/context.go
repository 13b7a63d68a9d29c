package logger

import "context"

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const (
	loggerKey   contextKey = "graphdev.logger"
	traceIDKey  contextKey = "graphdev.trace_id"
	subgraphKey contextKey = "graphdev.subgraph"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithTraceID tags the context with the ID of one leader round trip.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext extracts the round-trip trace ID from context.
func TraceIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey).(string); ok {
		return id
	}
	return ""
}

// WithSubgraph tags the context with the subgraph this process contributes.
func WithSubgraph(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, subgraphKey, name)
}

// SubgraphFromContext extracts the subgraph name from context.
func SubgraphFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(subgraphKey).(string); ok {
		return name
	}
	return ""
}

// L is a shorthand for FromContext that also enriches the logger
// with the trace ID and subgraph name from the context.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)

	if traceID := TraceIDFromContext(ctx); traceID != "" {
		l = l.With("trace_id", traceID)
	}
	if name := SubgraphFromContext(ctx); name != "" {
		l = l.With("subgraph", name)
	}

	return l.WithContext(ctx)
}
