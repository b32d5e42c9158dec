package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicbook/appointment-booking/internal/db"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "migrate").Logger()

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal().Msg("POSTGRES_DSN is required")
	}

	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = "migrations"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	applied, err := db.Migrate(ctx, pool, os.DirFS(dir))
	if err != nil {
		log.Fatal().Err(err).Int("applied", applied).Msg("migration failed")
	}
	log.Info().Int("applied", applied).Msg("migrations complete")
}
