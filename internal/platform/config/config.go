package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is built once at startup and handed to constructors; nothing reads
// the environment after FromEnv returns.
type Config struct {
	Server       Server
	Database     DatabaseConfig
	Redis        RedisConfig
	Auth         AuthConfig
	ImageHosting ImageHostingConfig
	AvatarCache  AvatarCacheConfig
	RateLimit    RateLimitConfig
	Logging      LoggingConfig
	Tracing      TracingConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	RequestTimeout    time.Duration
	ShutdownTimeout   time.Duration
}

// DatabaseConfig configures the Postgres pool. An empty URL selects the
// in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the Redis client. An empty URL selects the
// in-memory avatar cache and rate limiter.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AuthConfig holds the access token parameters.
type AuthConfig struct {
	JWTSigningKey  string
	Issuer         string
	Audience       string
	AccessTokenTTL time.Duration
}

// ImageHostingConfig configures the avatar bucket. An empty Bucket disables
// avatar uploads.
type ImageHostingConfig struct {
	Bucket          string
	Prefix          string
	PublicBaseURL   string
	Size            int
	MaxUploadBytes  int64
	EmulatorHost    string
	CredentialsFile string
}

// AvatarCacheConfig sets the lifetime of cached account snapshots. Keys are
// the account email, optionally namespaced by KeyPrefix.
type AvatarCacheConfig struct {
	TTL       time.Duration
	KeyPrefix string
}

// RateLimitConfig is the per-caller, per-endpoint sliding window.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Disabled bool
}

type LoggingConfig struct {
	Level  string
	Format string
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
}

// AvatarCacheTTL is how long an account snapshot stays readable after a write.
const AvatarCacheTTL = 300 * time.Second

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var p parser

	cfg := Config{
		Server: Server{
			Addr:              p.str("CONTACTBOOK_ADDR", ":8080"),
			ReadHeaderTimeout: p.duration("READ_HEADER_TIMEOUT", 5*time.Second),
			RequestTimeout:    p.duration("REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout:   p.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URL:             p.str("DATABASE_URL", ""),
			MaxOpenConns:    p.integer("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    p.integer("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: p.duration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          p.str("REDIS_URL", ""),
			PoolSize:     p.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: p.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Auth: AuthConfig{
			// Use a default for development - should be overridden in production
			JWTSigningKey:  p.str("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:         p.str("JWT_ISSUER", "contactbook"),
			Audience:       p.str("JWT_AUDIENCE", "contactbook-api"),
			AccessTokenTTL: p.duration("ACCESS_TOKEN_TTL", 15*time.Minute),
		},
		ImageHosting: ImageHostingConfig{
			Bucket:          p.str("AVATAR_BUCKET", ""),
			Prefix:          p.str("AVATAR_PREFIX", "contactbook"),
			PublicBaseURL:   p.str("AVATAR_PUBLIC_BASE_URL", "https://storage.googleapis.com"),
			Size:            p.integer("AVATAR_SIZE", 250),
			MaxUploadBytes:  int64(p.integer("AVATAR_MAX_UPLOAD_BYTES", 5<<20)),
			EmulatorHost:    p.str("STORAGE_EMULATOR_HOST", ""),
			CredentialsFile: p.str("GOOGLE_APPLICATION_CREDENTIALS", ""),
		},
		AvatarCache: AvatarCacheConfig{
			TTL:       p.duration("AVATAR_CACHE_TTL", AvatarCacheTTL),
			KeyPrefix: p.str("AVATAR_CACHE_PREFIX", ""),
		},
		RateLimit: RateLimitConfig{
			Requests: p.integer("RATE_LIMIT_REQUESTS", 2),
			Window:   p.duration("RATE_LIMIT_WINDOW", 5*time.Second),
			Disabled: p.boolean("DISABLE_RATE_LIMITING", false),
		},
		Logging: LoggingConfig{
			Level:  p.str("LOG_LEVEL", "info"),
			Format: p.str("LOG_FORMAT", "text"),
		},
		Tracing: TracingConfig{
			Enabled:     p.boolean("OTEL_ENABLED", false),
			ServiceName: p.str("OTEL_SERVICE_NAME", "contactbook"),
		},
	}
	if p.err != nil {
		return Config{}, p.err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.RateLimit.Requests <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.RateLimit.Requests)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", c.RateLimit.Window)
	}
	if c.AvatarCache.TTL <= 0 {
		return fmt.Errorf("AVATAR_CACHE_TTL must be positive, got %s", c.AvatarCache.TTL)
	}
	if c.ImageHosting.Size <= 0 {
		return fmt.Errorf("AVATAR_SIZE must be positive, got %d", c.ImageHosting.Size)
	}
	return nil
}

// parser records the first malformed variable and keeps returning defaults
// afterwards, so FromEnv reports one error instead of a partial config.
type parser struct {
	err error
}

func (p *parser) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func (p *parser) integer(key string, def int) int {
	v := os.Getenv(key)
	if v == "" || p.err != nil {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.err = fmt.Errorf("parse %s: %w", key, err)
		return def
	}
	return n
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" || p.err != nil {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.err = fmt.Errorf("parse %s: %w", key, err)
		return def
	}
	return d
}

func (p *parser) boolean(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" || p.err != nil {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.err = fmt.Errorf("parse %s: %w", key, err)
		return def
	}
	return b
}
