package main

import (
	"errors"

	"github.com/spf13/cobra"

	"contactbook/internal/platform/config"
	"contactbook/internal/platform/logger"
	"contactbook/internal/platform/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the accounts and contacts tables",
	Long:  `Apply the schema to DATABASE_URL. Safe to run repeatedly.`,
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
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
	if db == nil {
		return errors.New("DATABASE_URL is required to migrate")
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	log.InfoContext(ctx, "schema applied")
	return nil
}
