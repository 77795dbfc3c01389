package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/legal-aid-backend/internal/config"
	"github.com/tbourn/legal-aid-backend/internal/repo"
	"github.com/tbourn/legal-aid-backend/internal/sysutil"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the case store schema and exit",
	RunE:  runMigrate,
}

func runMigrate(*cobra.Command, []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	sysutil.ConfigureLogging(nil, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)

	db, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore(db)

	if err := repo.AutoMigrate(db); err != nil {
		return err
	}
	log.Info().Str("driver", cfg.Store.Driver).Msg("schema up to date")
	return nil
}
