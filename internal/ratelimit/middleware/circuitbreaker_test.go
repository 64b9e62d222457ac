package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactbook/internal/platform/config"
	"contactbook/internal/ratelimit/models"
	"contactbook/internal/ratelimit/store/bucket"
	"contactbook/pkg/platform/circuit"
)

// flakyStore fails while down is set and otherwise always allows.
type flakyStore struct {
	down  bool
	calls int
}

func (f *flakyStore) Allow(_ context.Context, _ string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	f.calls++
	if f.down {
		return nil, errors.New("redis: i/o timeout")
	}
	return &models.RateLimitResult{Allowed: true, Limit: limit, Remaining: limit - 1, ResetAt: time.Now().Add(window)}, nil
}

func TestFallbackStore(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	primary := &flakyStore{down: true}
	breaker := circuit.New("ratelimit", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(2))
	store := NewFallbackStore(primary, bucket.NewInMemoryBucketStore(), breaker, logger)

	_, err := store.Allow(ctx, "k", 2, 5*time.Second)
	require.Error(t, err, "below the threshold errors surface")

	result, err := store.Allow(ctx, "k", 2, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, breaker.IsOpen())
	assert.True(t, result.Degraded)
	assert.True(t, result.Allowed)

	result, err = store.Allow(ctx, "k", 2, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	result, err = store.Allow(ctx, "k", 2, 5*time.Second)
	require.NoError(t, err)
	assert.False(t, result.Allowed, "fallback buckets still enforce the limit")

	primary.down = false
	result, err = store.Allow(ctx, "k", 2, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, result.Degraded, "one success does not close the circuit")

	result, err = store.Allow(ctx, "k", 2, 5*time.Second)
	require.NoError(t, err)
	assert.False(t, breaker.IsOpen())
	assert.False(t, result.Degraded)
	assert.True(t, result.Allowed)
	assert.Equal(t, 6, primary.calls)
}

func TestDegradedHeader(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	breaker := circuit.New("ratelimit", circuit.WithFailureThreshold(1))
	store := NewFallbackStore(&flakyStore{down: true}, bucket.NewInMemoryBucketStore(), breaker, logger)
	limiter := New(store, config.RateLimitConfig{Requests: 2, Window: 5 * time.Second}, WithLogger(logger))

	h := limiter.Limit("contacts.list")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/contacts", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "degraded", rr.Header().Get("X-RateLimit-Status"))
}
