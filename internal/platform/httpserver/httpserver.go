// Package httpserver builds the *http.Server the serve command runs.
package httpserver

import (
	"log/slog"
	"net/http"

	"contactbook/internal/platform/config"
)

// New leaves ReadTimeout unset: avatar uploads are multipart bodies, so only headers get a read deadline;
// the per-request deadline comes from the Timeout middleware.
func New(cfg config.Server, handler http.Handler, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       2 * cfg.RequestTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}
