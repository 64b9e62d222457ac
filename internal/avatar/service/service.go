// Package service orchestrates avatar uploads and the cached current-account
// view.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	authmodels "contactbook/internal/auth/models"
	"contactbook/internal/avatar/models"
	"contactbook/internal/platform/config"
	"contactbook/internal/platform/metrics"
	dErrors "contactbook/pkg/domain-errors"
	"contactbook/pkg/platform/sentinel"
	"contactbook/pkg/requestcontext"
)

const tracerName = "contactbook/internal/avatar"

// ImageHost stores raw image bytes under a public id and returns a stable URL.
type ImageHost interface {
	Upload(ctx context.Context, publicID string, raw []byte) (string, error)
}

// AccountStore is the account repository the avatar flow reads and updates.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*authmodels.Account, error)
	UpdateAvatarURL(ctx context.Context, email, avatarURL string) (*authmodels.Account, error)
}

// Cache is a key-value store with per-key expiry.
type Cache interface {
	Set(ctx context.Context, key string, value []byte) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

type Service struct {
	accounts       AccountStore
	cache          Cache
	host           ImageHost
	ttl            time.Duration
	keyPrefix      string
	publicIDPrefix string
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithImageHost enables uploads. Without it UpdateAvatar is unavailable.
func WithImageHost(host ImageHost) Option {
	return func(s *Service) {
		s.host = host
	}
}

// WithCacheConfig sets the snapshot lifetime and key prefix.
func WithCacheConfig(cfg config.AvatarCacheConfig) Option {
	return func(s *Service) {
		if cfg.TTL > 0 {
			s.ttl = cfg.TTL
		}
		s.keyPrefix = cfg.KeyPrefix
	}
}

// WithPublicIDPrefix sets the folder avatars are stored under.
func WithPublicIDPrefix(prefix string) Option {
	return func(s *Service) {
		s.publicIDPrefix = prefix
	}
}

func New(accounts AccountStore, cache Cache, opts ...Option) (*Service, error) {
	if accounts == nil {
		return nil, fmt.Errorf("account store is required")
	}
	if cache == nil {
		return nil, fmt.Errorf("avatar cache is required")
	}

	svc := &Service{
		accounts: accounts,
		cache:    cache,
		ttl:      config.AvatarCacheTTL,
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// UpdateAvatar uploads raw as the caller's avatar, persists the URL and
// refreshes the cached snapshot. A cache write failure is logged and does
// not fail the update.
func (s *Service) UpdateAvatar(ctx context.Context, raw []byte) (*models.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "avatar.UpdateAvatar")
	defer span.End()

	email, err := callerEmail(ctx)
	if err != nil {
		return nil, fail(span, err)
	}
	if s.host == nil {
		return nil, fail(span, dErrors.New(dErrors.CodeUnavailable, "avatar uploads are not configured"))
	}
	span.SetAttributes(attribute.Int("avatar.upload_bytes", len(raw)))

	avatarURL, err := s.host.Upload(ctx, s.publicID(email), raw)
	if err != nil {
		s.metrics.IncrementAvatarUploads("failure")
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			return nil, fail(span, err)
		}
		return nil, fail(span, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to upload avatar"))
	}

	account, err := s.accounts.UpdateAvatarURL(ctx, email, avatarURL)
	if err != nil {
		s.metrics.IncrementAvatarUploads("failure")
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, fail(span, dErrors.New(dErrors.CodeNotFound, "account not found"))
		}
		return nil, fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save avatar"))
	}
	s.metrics.IncrementAvatarUploads("success")

	snapshot := models.FromAccount(account)
	s.store(ctx, snapshot)

	s.logger.InfoContext(ctx, "avatar updated",
		"user_id", account.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return &snapshot, nil
}

// Me returns the caller's account snapshot, served from the cache while it
// is fresh and loaded from the account store otherwise.
func (s *Service) Me(ctx context.Context) (*models.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "avatar.Me")
	defer span.End()

	email, err := callerEmail(ctx)
	if err != nil {
		return nil, fail(span, err)
	}

	if snapshot, ok := s.lookup(ctx, email); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return &snapshot, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, fail(span, dErrors.New(dErrors.CodeNotFound, "account not found"))
		}
		return nil, fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account"))
	}

	snapshot := models.FromAccount(account)
	s.store(ctx, snapshot)
	return &snapshot, nil
}

func (s *Service) lookup(ctx context.Context, email string) (models.Snapshot, bool) {
	raw, err := s.cache.Get(ctx, s.key(email))
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "avatar cache read failed",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		s.metrics.IncrementAvatarCache(false)
		return models.Snapshot{}, false
	}

	snapshot, err := models.Decode(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "discarding unreadable avatar cache entry",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		s.metrics.IncrementAvatarCache(false)
		return models.Snapshot{}, false
	}
	s.metrics.IncrementAvatarCache(true)
	return snapshot, true
}

// store writes the snapshot and gives it a fresh lifetime. An entry whose
// expiry could not be set is removed so it is never served past its TTL.
func (s *Service) store(ctx context.Context, snapshot models.Snapshot) {
	raw, err := snapshot.Encode()
	if err != nil {
		s.warnCacheWrite(ctx, err)
		return
	}
	key := s.key(snapshot.Email)
	if err := s.cache.Set(ctx, key, raw); err != nil {
		s.warnCacheWrite(ctx, err)
		return
	}
	if err := s.cache.Expire(ctx, key, s.ttl); err != nil {
		s.warnCacheWrite(ctx, err)
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.ErrorContext(ctx, "avatar cache entry left without expiry",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}
}

func (s *Service) warnCacheWrite(ctx context.Context, err error) {
	s.logger.WarnContext(ctx, "avatar cache write failed",
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
}

func (s *Service) key(email string) string {
	return s.keyPrefix + email
}

func (s *Service) publicID(email string) string {
	if s.publicIDPrefix == "" {
		return email
	}
	return s.publicIDPrefix + "/" + email
}

func callerEmail(ctx context.Context) (string, error) {
	email := requestcontext.Email(ctx)
	if email == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return email, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
