// Package app assembles stores, services and the router from configuration.
// cmd/server and the end-to-end suite both build the API through it.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	authmodels "contactbook/internal/auth/models"
	"contactbook/internal/auth/store/account"
	"contactbook/internal/auth/token"
	avatarcache "contactbook/internal/avatar/cache"
	avatarhandler "contactbook/internal/avatar/handler"
	"contactbook/internal/avatar/hosting"
	avatarservice "contactbook/internal/avatar/service"
	contacthandler "contactbook/internal/contacts/handler"
	contactservice "contactbook/internal/contacts/service"
	contactstore "contactbook/internal/contacts/store"
	"contactbook/internal/platform/config"
	"contactbook/internal/platform/metrics"
	"contactbook/internal/platform/postgres"
	redisclient "contactbook/internal/platform/redis"
	ratelimit "contactbook/internal/ratelimit/middleware"
	"contactbook/internal/ratelimit/store/bucket"
	httptransport "contactbook/internal/transport/http"
	"contactbook/pkg/email"
	"contactbook/pkg/platform/circuit"
	"contactbook/pkg/platform/sentinel"
)

// AccountStore is what the app needs from the account repository.
type AccountStore interface {
	avatarservice.AccountStore
	Save(ctx context.Context, account *authmodels.Account) error
}

// Backends holds the storage selected from configuration.
type Backends struct {
	DB       *sql.DB
	Accounts AccountStore
	Contacts contactservice.Store
	Cache    avatarservice.Cache
	Buckets  ratelimit.BucketStore
	Host     avatarservice.ImageHost
	Checks   map[string]httptransport.HealthCheck
	closers  []func() error
}

// OpenBackends picks Postgres and Redis when configured and in-memory
// stores otherwise. GCS is only opened when a bucket is set.
func OpenBackends(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Backends, error) {
	b := &Backends{Checks: make(map[string]httptransport.HealthCheck)}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if db != nil {
		b.DB = db
		b.Accounts = account.NewPostgres(db)
		b.Contacts = contactstore.NewPostgres(db)
		b.Checks["postgres"] = db.PingContext
		b.closers = append(b.closers, db.Close)
		logger.InfoContext(ctx, "using postgres stores")
	} else {
		b.Accounts = account.New()
		b.Contacts = contactstore.New()
		logger.InfoContext(ctx, "using in-memory stores")
	}

	rc, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	if rc != nil {
		b.Cache = avatarcache.NewRedis(rc.Client)
		b.Buckets = ratelimit.NewFallbackStore(
			bucket.NewRedisBucketStore(rc.Client),
			bucket.NewInMemoryBucketStore(),
			circuit.New("ratelimit-redis"),
			logger,
		)
		b.Checks["redis"] = rc.Health
		b.closers = append(b.closers, rc.Close)
		logger.InfoContext(ctx, "using redis cache and rate limit buckets")
	} else {
		b.Cache = avatarcache.NewMemory()
		b.Buckets = bucket.NewInMemoryBucketStore()
		logger.InfoContext(ctx, "using in-memory cache and rate limit buckets")
	}

	if cfg.ImageHosting.Bucket != "" {
		host, err := hosting.NewGCS(ctx, cfg.ImageHosting, logger)
		if err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("open image hosting: %w", err)
		}
		b.Host = host
		b.closers = append(b.closers, host.Close)
	} else {
		logger.InfoContext(ctx, "avatar uploads disabled, AVATAR_BUCKET not set")
	}

	return b, nil
}

// Close releases connections in reverse order of opening.
func (b *Backends) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

// EnsureAccount returns the account for address, creating it with a name
// derived from the address when missing.
func (b *Backends) EnsureAccount(ctx context.Context, address string) (*authmodels.Account, error) {
	normalized, err := email.Validate(address)
	if err != nil {
		return nil, err
	}

	var acct *authmodels.Account
	load := func(ctx context.Context) error {
		existing, err := b.Accounts.FindByEmail(ctx, normalized)
		if err == nil {
			acct = existing
			return nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}
		first, last := email.DeriveNameFromEmail(normalized)
		acct = authmodels.NewAccount(normalized, first+" "+last, time.Now().UTC())
		return b.Accounts.Save(ctx, acct)
	}

	if b.DB != nil {
		err = postgres.RunInTx(ctx, b.DB, load)
	} else {
		err = load(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("ensure account %s: %w", normalized, err)
	}
	return acct, nil
}

// NewJWTService builds the token service from the auth settings.
func NewJWTService(cfg config.AuthConfig) *token.JWTService {
	return token.NewJWTService(cfg.JWTSigningKey, cfg.Issuer, cfg.Audience)
}

// NewRouter builds the services over b and returns the HTTP API.
func NewRouter(cfg config.Config, logger *slog.Logger, reg *prometheus.Registry, jwtService *token.JWTService, b *Backends) (http.Handler, error) {
	m := metrics.New(reg)

	contacts, err := contactservice.New(b.Contacts,
		contactservice.WithLogger(logger),
		contactservice.WithMetrics(m),
	)
	if err != nil {
		return nil, err
	}

	avatarOpts := []avatarservice.Option{
		avatarservice.WithLogger(logger),
		avatarservice.WithMetrics(m),
		avatarservice.WithCacheConfig(cfg.AvatarCache),
		avatarservice.WithPublicIDPrefix(cfg.ImageHosting.Prefix),
	}
	if b.Host != nil {
		avatarOpts = append(avatarOpts, avatarservice.WithImageHost(b.Host))
	}
	avatars, err := avatarservice.New(b.Accounts, b.Cache, avatarOpts...)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.New(b.Buckets, cfg.RateLimit,
		ratelimit.WithLogger(logger),
		ratelimit.WithMetrics(m),
	)

	return httptransport.NewRouter(httptransport.Deps{
		Logger:         logger,
		Metrics:        m,
		Gatherer:       reg,
		Validator:      token.NewMiddlewareAdapter(jwtService),
		RequestTimeout: cfg.Server.RequestTimeout,
		HealthChecks:   b.Checks,
		Protected: []httptransport.Registrar{
			contacthandler.New(contacts, logger, contacthandler.WithRateLimiter(limiter)),
			avatarhandler.New(avatars, logger, cfg.ImageHosting.MaxUploadBytes),
		},
	}), nil
}
