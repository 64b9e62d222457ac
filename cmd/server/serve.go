package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"contactbook/internal/app"
	"contactbook/internal/platform/config"
	"contactbook/internal/platform/httpserver"
	"contactbook/internal/platform/logger"
	"contactbook/internal/platform/tracing"
)

var devAccountEmail string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API until SIGINT or SIGTERM.

With --dev-account the account is created if missing and an access token
for it is logged at startup. Handy with the in-memory stores, where a token
minted by a separate "contactbook token" process has no account behind it.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&devAccountEmail, "dev-account", "", "create this account at startup and log a token for it")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Error("failed to flush traces", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	b, err := app.OpenBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Error("failed to close backends", "error", err)
		}
	}()

	jwtService := app.NewJWTService(cfg.Auth)

	if devAccountEmail != "" {
		acct, err := b.EnsureAccount(ctx, devAccountEmail)
		if err != nil {
			return err
		}
		accessToken, err := jwtService.GenerateAccessToken(acct, cfg.Auth.AccessTokenTTL)
		if err != nil {
			return err
		}
		log.Info("dev account ready", "email", acct.Email, "user_id", acct.ID.String(), "access_token", accessToken)
	}

	router, err := app.NewRouter(cfg, log, reg, jwtService, b)
	if err != nil {
		return err
	}

	srv := httpserver.New(cfg.Server, router, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting contactbook", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
