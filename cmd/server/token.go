package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"contactbook/internal/app"
	"contactbook/internal/auth/store/account"
	"contactbook/internal/platform/config"
	"contactbook/internal/platform/logger"
	"contactbook/internal/platform/postgres"
)

var (
	tokenEmail string
	tokenTTL   time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token for an account",
	Long: `Create the account for --email if it does not exist and print a signed
access token for it. The account is persisted only when DATABASE_URL is set.`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "account email")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default ACCESS_TOKEN_TTL)")
	_ = tokenCmd.MarkFlagRequired("email")
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	ctx := cmd.Context()

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}

	b := &app.Backends{DB: db}
	if db != nil {
		defer db.Close()
		b.Accounts = account.NewPostgres(db)
	} else {
		log.WarnContext(ctx, "DATABASE_URL not set, the account will not be persisted")
		b.Accounts = account.New()
	}

	acct, err := b.EnsureAccount(ctx, tokenEmail)
	if err != nil {
		return err
	}

	ttl := tokenTTL
	if ttl <= 0 {
		ttl = cfg.Auth.AccessTokenTTL
	}
	accessToken, err := app.NewJWTService(cfg.Auth).GenerateAccessToken(acct, ttl)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), accessToken)
	return nil
}
