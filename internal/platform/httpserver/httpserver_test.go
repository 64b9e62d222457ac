package httpserver

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"contactbook/internal/platform/config"
)

func TestNewAppliesServerConfig(t *testing.T) {
	handler := http.NotFoundHandler()
	srv := New(config.Server{
		Addr:              ":9090",
		ReadHeaderTimeout: 2 * time.Second,
		RequestTimeout:    10 * time.Second,
	}, handler, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Equal(t, ":9090", srv.Addr)
	assert.Equal(t, 2*time.Second, srv.ReadHeaderTimeout)
	assert.Equal(t, 20*time.Second, srv.IdleTimeout)
	assert.NotNil(t, srv.ErrorLog)
	assert.NotNil(t, srv.Handler)
}
