package hubauth

import "context"

type requestIDContextKey struct{}
type currentPathContextKey struct{}

// WithRequestID attaches a caller-chosen request identifier to ctx. The
// Client stamps it on the outgoing X-Request-ID header and on audit
// events; when absent a fresh UUID is generated per request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// WithCurrentPath attaches the application route the caller is currently
// on. Auth resolution uses it to build the post-login return URL.
func WithCurrentPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, currentPathContextKey{}, path)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	requestID, _ := ctx.Value(requestIDContextKey{}).(string)
	return requestID
}

func currentPathFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	path, _ := ctx.Value(currentPathContextKey{}).(string)
	return path
}
