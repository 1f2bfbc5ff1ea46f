package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rawblock/datasynth-engine/internal/api"
	"github.com/rawblock/datasynth-engine/internal/db"
	"github.com/rawblock/datasynth-engine/internal/runner"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Info().Msg("starting datasynth generation engine")

	dbUrl := os.Getenv("DATABASE_URL")
	var dbStore *db.PostgresStore
	if dbUrl != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err := db.Connect(ctx, dbUrl, log.Logger)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to postgres, continuing without run persistence")
		} else {
			defer store.Close()
			if err := store.InitSchema(context.Background()); err != nil {
				log.Warn().Err(err).Msg("schema init failed")
			}
			dbStore = store
		}
	} else {
		log.Warn().Msg("DATABASE_URL not set, run manifests and evaluation reports will not be persisted")
	}

	wsHub := api.NewHub()
	go wsHub.Run()

	outDir := getEnvOrDefault("OUTPUT_DIR", "./runs")
	manager := runner.NewManager(dbStore, wsHub, outDir, log.Logger)

	r := api.SetupRouter(dbStore, wsHub, manager)

	port := getEnvOrDefault("PORT", "5339")
	log.Info().Str("port", port).Msg("engine listening")
	if err := r.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
