package httpapi

import "context"

type ctxKey string

const (
	requestIDKey      ctxKey = "request_id"
	sessionExpiredKey ctxKey = "session_expired"
)

func contextWithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

// RequestIDFromContext returns the request identifier assigned by the
// RequestID middleware.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// contextWithSessionExpired marks the request as carrying an expired
// session. The envelope writer applies the 403 override; the flag is a value
// threaded through the call, never process state.
func contextWithSessionExpired(ctx context.Context) context.Context {
	return context.WithValue(ctx, sessionExpiredKey, true)
}

func sessionExpiredFromContext(ctx context.Context) bool {
	v, ok := ctx.Value(sessionExpiredKey).(bool)
	return ok && v
}
