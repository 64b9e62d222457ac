// Package requestcontext carries request-scoped values on a context.Context.
// Middleware writes them; services and stores read them without importing
// net/http.
package requestcontext

import (
	"context"
	"time"

	id "contactbook/pkg/domain"
)

type (
	userIDKey      struct{}
	emailKey       struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

func value[T any](ctx context.Context, key any) T {
	v, _ := ctx.Value(key).(T)
	return v
}

// UserID is the authenticated account, or the nil id for anonymous requests.
func UserID(ctx context.Context) id.UserID {
	return value[id.UserID](ctx, userIDKey{})
}

// Email is the address from the access token. The avatar cache is keyed on it.
func Email(ctx context.Context) string {
	return value[string](ctx, emailKey{})
}

// WithAccount records the caller identity taken from a verified token.
func WithAccount(ctx context.Context, userID id.UserID, email string) context.Context {
	ctx = context.WithValue(ctx, userIDKey{}, userID)
	return context.WithValue(ctx, emailKey{}, email)
}

func ClientIP(ctx context.Context) string {
	return value[string](ctx, clientIPKey{})
}

func UserAgent(ctx context.Context) string {
	return value[string](ctx, userAgentKey{})
}

func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

func RequestID(ctx context.Context) string {
	return value[string](ctx, requestIDKey{})
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now is the time the request arrived. Outside a request (CLI, tests without
// WithTime) it is the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins Now for the rest of the request.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
