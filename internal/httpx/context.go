package httpx

import (
	"context"
	"net/http"

	"booklib/internal/auth"
)

type contextKey string

const (
	sessionKey   contextKey = "session"
	requestIDKey contextKey = "requestID"
)

// SessionFrom retrieves the session claims from the request context, or nil
// for anonymous requests.
func SessionFrom(r *http.Request) *auth.SessionClaims {
	if v, ok := r.Context().Value(sessionKey).(*auth.SessionClaims); ok {
		return v
	}
	return nil
}

// ContextWithSession returns a new context carrying the session claims.
func ContextWithSession(ctx context.Context, claims *auth.SessionClaims) context.Context {
	return context.WithValue(ctx, sessionKey, claims)
}

// RequestIDFrom retrieves the request ID from the request context.
func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithRequestID returns a new context carrying the request ID.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}
