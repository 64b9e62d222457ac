//go:build e2e

// Package e2e drives the assembled API over HTTP with godog scenarios.
// Storage follows the environment like the server does, so the suite runs
// in memory by default and against Postgres and Redis when configured.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"contactbook/internal/app"
	"contactbook/internal/platform/config"
)

// TestContext is the per-scenario state shared by every step package.
type TestContext struct {
	cfg    config.Config
	logger *slog.Logger
	suffix string

	backends *app.Backends
	server   *httptest.Server
	client   *http.Client

	accessToken string
	saved       map[string]string

	lastStatus int
	lastHeader http.Header
	lastBody   []byte
}

func NewTestContext(cfg config.Config) *TestContext {
	return &TestContext{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		suffix: uuid.NewString()[:8],
		client: &http.Client{},
		saved:  make(map[string]string),
	}
}

// SetRateLimit changes the limit before the server starts.
func (tc *TestContext) SetRateLimit(requests int, window string) error {
	if tc.server != nil {
		return fmt.Errorf("rate limit must be set before the first request")
	}
	d, err := time.ParseDuration(window)
	if err != nil {
		return err
	}
	tc.cfg.RateLimit.Requests = requests
	tc.cfg.RateLimit.Window = d
	tc.cfg.RateLimit.Disabled = false
	return nil
}

func (tc *TestContext) start(ctx context.Context) error {
	if tc.server != nil {
		return nil
	}
	b, err := app.OpenBackends(ctx, tc.cfg, tc.logger)
	if err != nil {
		return err
	}
	router, err := app.NewRouter(tc.cfg, tc.logger, prometheus.NewRegistry(), app.NewJWTService(tc.cfg.Auth), b)
	if err != nil {
		_ = b.Close()
		return err
	}
	tc.backends = b
	tc.server = httptest.NewServer(router)
	return nil
}

// Close stops the server and releases its backends.
func (tc *TestContext) Close() error {
	if tc.server == nil {
		return nil
	}
	tc.server.Close()
	return tc.backends.Close()
}

// SignIn creates an account for name on a per-scenario domain and sends
// its token from now on.
func (tc *TestContext) SignIn(ctx context.Context, name string) error {
	if err := tc.start(ctx); err != nil {
		return err
	}
	acct, err := tc.backends.EnsureAccount(ctx, fmt.Sprintf("%s@%s.example.com", name, tc.suffix))
	if err != nil {
		return err
	}
	token, err := app.NewJWTService(tc.cfg.Auth).GenerateAccessToken(acct, tc.cfg.Auth.AccessTokenTTL)
	if err != nil {
		return err
	}
	tc.accessToken = token
	return nil
}

func (tc *TestContext) SignOut() {
	tc.accessToken = ""
}

// UseToken sends a raw bearer token, for invalid-token cases.
func (tc *TestContext) UseToken(token string) {
	tc.accessToken = token
}

func (tc *TestContext) GET(path string) error {
	return tc.Do(http.MethodGet, path, nil)
}

func (tc *TestContext) POST(path string, body any) error {
	return tc.Do(http.MethodPost, path, body)
}

func (tc *TestContext) PUT(path string, body any) error {
	return tc.Do(http.MethodPut, path, body)
}

func (tc *TestContext) DELETE(path string) error {
	return tc.Do(http.MethodDelete, path, nil)
}

// Do sends body as JSON and records the response.
func (tc *TestContext) Do(method, path string, body any) error {
	ctx := context.Background()
	if err := tc.start(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, tc.server.URL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.accessToken)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.lastBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	tc.lastStatus = resp.StatusCode
	tc.lastHeader = resp.Header
	return nil
}

func (tc *TestContext) LastStatus() int          { return tc.lastStatus }
func (tc *TestContext) LastHeader() http.Header { return tc.lastHeader }
func (tc *TestContext) LastBody() []byte        { return tc.lastBody }

// ResponseField reads a top-level field of a JSON object response.
func (tc *TestContext) ResponseField(field string) (any, error) {
	var obj map[string]any
	if err := json.Unmarshal(tc.lastBody, &obj); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %s", strings.TrimSpace(string(tc.lastBody)))
	}
	v, ok := obj[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response: %s", field, strings.TrimSpace(string(tc.lastBody)))
	}
	return v, nil
}

// ResponseList decodes a JSON array response.
func (tc *TestContext) ResponseList() ([]map[string]any, error) {
	var list []map[string]any
	if err := json.Unmarshal(tc.lastBody, &list); err != nil {
		return nil, fmt.Errorf("response is not a JSON array: %s", strings.TrimSpace(string(tc.lastBody)))
	}
	return list, nil
}

func (tc *TestContext) Save(name, value string) {
	tc.saved[name] = value
}

func (tc *TestContext) Saved(name string) (string, error) {
	v, ok := tc.saved[name]
	if !ok {
		return "", fmt.Errorf("nothing saved as %q", name)
	}
	return v, nil
}
