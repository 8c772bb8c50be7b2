package services

import "context"

type contextKey string

const (
	shotIDKey    contextKey = "shot_id"
	componentKey contextKey = "component"
	requestIDKey contextKey = "request_id"
)

// WithShotID annotates context with the shot identifier.
func WithShotID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, shotIDKey, id)
}

// ShotIDFromContext extracts the shot identifier if present.
func ShotIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(shotIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithComponent annotates context with the orchestration component name.
func WithComponent(ctx context.Context, component string) context.Context {
	if component == "" {
		return ctx
	}
	return context.WithValue(ctx, componentKey, component)
}

// ComponentFromContext returns the component name if present.
func ComponentFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(componentKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(requestIDKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
