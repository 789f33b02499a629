package main

import (
	"os"

	"github.com/rs/zerolog"

	"vinscan-service/internal/config"
	"vinscan-service/internal/db"
	httpapi "vinscan-service/internal/http"
	"vinscan-service/internal/inference"
	"vinscan-service/internal/repository"
	"vinscan-service/internal/service"
	"vinscan-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("failed to load config")
	}

	log := newLogger(cfg.Logging)

	backend, err := newBackend(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init storage backend")
	}

	st, err := store.Open(backend, cfg.DefaultSettings(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}

	geminiClient := inference.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL, log)
	scanService := service.NewScanService(geminiClient, log)
	inventoryService := service.NewInventoryService(st, log)

	handler := httpapi.NewHandler(scanService, inventoryService, log)
	router := httpapi.NewRouter(handler)

	if !geminiClient.Configured() {
		log.Warn().Msg("gemini api key not set; scan requests will fail with a configuration error")
	}
	log.Info().
		Str("addr", cfg.Server.Addr).
		Str("backend", cfg.Storage.Backend).
		Int("records", st.Len()).
		Msg("starting vinscan service")

	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var log zerolog.Logger
	if cfg.Pretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}

func newBackend(cfg *config.Config) (store.Backend, error) {
	if cfg.Storage.Backend == "postgres" {
		conn, err := db.Connect(cfg.Storage.Postgres.DSN())
		if err != nil {
			return nil, err
		}
		return store.NewDBBackend(repository.NewStateRepository(conn)), nil
	}
	backend, err := store.NewFileBackend(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	return backend, nil
}
