package middleware

import (
	"context"
	"log/slog"
	"time"

	"contactbook/internal/ratelimit/models"
	"contactbook/pkg/platform/circuit"
)

// FallbackStore answers from a local store while the shared one keeps
// failing. The primary is still tried on every call so the circuit can
// close once it recovers.
type FallbackStore struct {
	primary  BucketStore
	fallback BucketStore
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewFallbackStore(primary, fallback BucketStore, breaker *circuit.Breaker, logger *slog.Logger) *FallbackStore {
	return &FallbackStore{
		primary:  primary,
		fallback: fallback,
		breaker:  breaker,
		logger:   logger,
	}
}

func (s *FallbackStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	result, err := s.primary.Allow(ctx, key, limit, window)
	if err != nil {
		useFallback, change := s.breaker.RecordFailure()
		if change.Opened {
			s.logger.WarnContext(ctx, "rate limit circuit opened, using local buckets",
				"breaker", s.breaker.Name(),
				"error", err,
			)
		}
		if !useFallback {
			return nil, err
		}
		return s.degraded(ctx, key, limit, window)
	}

	usePrimary, change := s.breaker.RecordSuccess()
	if change.Closed {
		s.logger.InfoContext(ctx, "rate limit circuit closed", "breaker", s.breaker.Name())
	}
	if !usePrimary {
		return s.degraded(ctx, key, limit, window)
	}
	return result, nil
}

func (s *FallbackStore) degraded(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	result, err := s.fallback.Allow(ctx, key, limit, window)
	if err != nil {
		return nil, err
	}
	result.Degraded = true
	return result, nil
}
