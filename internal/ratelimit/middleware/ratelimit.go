// Package middleware applies per-caller sliding window limits to routes.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"contactbook/internal/platform/config"
	"contactbook/internal/platform/metrics"
	"contactbook/internal/ratelimit/models"
	dErrors "contactbook/pkg/domain-errors"
	"contactbook/pkg/platform/httputil"
	"contactbook/pkg/requestcontext"
)

// BucketStore counts requests per key inside a sliding window.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

// Limiter limits each caller per endpoint class. Callers are identified by
// user id when authenticated, else by client IP.
type Limiter struct {
	store    BucketStore
	logger   *slog.Logger
	metrics  *metrics.Metrics
	limit    int
	window   time.Duration
	disabled bool
}

type Option func(*Limiter)

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

func New(store BucketStore, cfg config.RateLimitConfig, opts ...Option) *Limiter {
	l := &Limiter{
		store:    store,
		logger:   slog.Default(),
		limit:    cfg.Requests,
		window:   cfg.Window,
		disabled: cfg.Disabled,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.disabled {
		l.logger.Info("rate limiting disabled")
	}
	return l
}

// Limit returns the middleware for one endpoint class.
func (l *Limiter) Limit(class string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := callerKey(ctx, class)

			result, err := l.store.Allow(ctx, key, l.limit, l.window)
			if err != nil {
				// fail open
				l.logger.ErrorContext(ctx, "failed to check rate limit",
					"request_id", requestcontext.RequestID(ctx),
					"class", class,
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)

			if !result.Allowed {
				l.metrics.IncrementRateLimited(class)
				l.logger.InfoContext(ctx, "rate limit exceeded",
					"request_id", requestcontext.RequestID(ctx),
					"class", class,
				)
				writeRateLimitExceeded(w, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func callerKey(ctx context.Context, class string) string {
	if userID := requestcontext.UserID(ctx); !userID.IsNil() {
		return models.BucketKey(class, models.IdentityUser, userID.String())
	}
	return models.BucketKey(class, models.IdentityIP, requestcontext.ClientIP(ctx))
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	if result.Degraded {
		w.Header().Set("X-RateLimit-Status", "degraded")
	}
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:      string(dErrors.CodeTooManyRequests),
		Message:    "Too many requests. Please try again later.",
		RetryAfter: result.RetryAfter,
	})
}
