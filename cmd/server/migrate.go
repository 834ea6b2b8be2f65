package main

import (
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/experiencepoints/api/internal/config"
	"github.com/experiencepoints/api/internal/db"
	"github.com/experiencepoints/api/internal/logger"
)

// withDB opens the configured database for a one-off maintenance command.
func withDB(fn func(cfg *config.Config, database *sqlx.DB) error) error {
	cfg := config.Load()

	flush := logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)
	defer flush()

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		return err
	}
	defer func() {
		closeErr := db.Close(database)
		if closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	return fn(cfg, database)
}
