package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactbook/internal/platform/config"
)

func memoryConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.FromEnv()
	require.NoError(t, err)
	cfg.Database.URL = ""
	cfg.Redis.URL = ""
	cfg.ImageHosting.Bucket = ""
	return cfg
}

func memoryBackends(t *testing.T) *Backends {
	t.Helper()
	b, err := OpenBackends(context.Background(), memoryConfig(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestOpenBackendsInMemory(t *testing.T) {
	b := memoryBackends(t)

	assert.Nil(t, b.DB)
	assert.Nil(t, b.Host)
	assert.NotNil(t, b.Accounts)
	assert.NotNil(t, b.Contacts)
	assert.NotNil(t, b.Cache)
	assert.NotNil(t, b.Buckets)
	assert.Empty(t, b.Checks)
}

func TestEnsureAccount(t *testing.T) {
	b := memoryBackends(t)
	ctx := context.Background()

	created, err := b.EnsureAccount(ctx, " grace.hopper@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "grace.hopper@example.com", created.Email)
	assert.Equal(t, "Grace Hopper", created.Username)

	again, err := b.EnsureAccount(ctx, "grace.hopper@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	_, err = b.EnsureAccount(ctx, "not-an-address")
	assert.Error(t, err)
}

func TestNewRouterServesAccount(t *testing.T) {
	cfg := memoryConfig(t)
	b := memoryBackends(t)
	jwtService := NewJWTService(cfg.Auth)

	acct, err := b.EnsureAccount(context.Background(), "ada@example.com")
	require.NoError(t, err)
	accessToken, err := jwtService.GenerateAccessToken(acct, cfg.Auth.AccessTokenTTL)
	require.NoError(t, err)

	router, err := NewRouter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), prometheus.NewRegistry(), jwtService, b)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"email":"ada@example.com"`)
}
