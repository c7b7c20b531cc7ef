package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/frisconnections/go-server/internal/httpserver"
	"github.com/frisconnections/go-server/internal/kv"
	"github.com/frisconnections/go-server/internal/play"
	"github.com/frisconnections/go-server/internal/puzzle"
	"github.com/frisconnections/go-server/internal/telemetry"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := openDB(getEnv("DB_PATH", "./data/app.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}

	puzzles := puzzle.NewSQLStore(db, getEnv("DAILY_SALT", "local_dev_salt"))
	if getEnv("SEED_SAMPLE", "1") == "1" {
		if n, err := puzzles.Count(context.Background()); err == nil && n == 0 {
			if err := puzzles.Seed(context.Background(), puzzle.Sample()); err != nil {
				log.Warn().Err(err).Msg("seed sample puzzle")
			}
		}
	}

	store, err := kv.NewFile(getEnv("DATA_DIR", "./data/kv"))
	if err != nil {
		log.Fatal().Err(err).Msg("open kv store")
	}

	recorder := telemetry.NewRecorder(telemetry.NewSQLSink(db), 256)
	defer recorder.Close()

	manager := play.NewManager(puzzles, store, recorder, nil)
	srv := httpserver.New(puzzles, manager, puzzles)

	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting go-server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
