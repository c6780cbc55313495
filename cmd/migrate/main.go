// Command migrate applies the database schema and exits. The API server
// also applies the schema on startup; this tool exists for deploy pipelines
// that migrate before rolling the server.
package main

import (
	"context"
	"time"

	"github.com/dvloznov/budgetx/internal/config"
	"github.com/dvloznov/budgetx/internal/logger"
	"github.com/dvloznov/budgetx/internal/store"
)

func main() {
	cfg := config.Load()
	log := logger.New()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}

	log.Info().Msg("Schema is up to date")
}
