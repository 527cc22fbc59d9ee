package main

import (
	"github.com/rs/zerolog/log"

	"statbridge/internal/config"
	_ "statbridge/internal/infrastructure/metrics" // Register Prometheus metrics
	"statbridge/internal/interfaces/httpserver"
	"statbridge/internal/logger"
)

type Application struct {
	config     *config.StatsConfig
	httpServer *httpserver.HTTPServer
}

func init() {
	// Initialize logger with default settings
	logger.Init("info", "json")
}

func (app *Application) Start() error {
	return app.httpServer.Run()
}

func main() {
	application, err := CreateApplication()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create application")
	}

	// Re-initialize logger with config settings
	cfg := application.config
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("http_port", cfg.HTTPPort).
		Str("log_level", cfg.LogLevel).
		Bool("exec_enabled", cfg.EnableExec).
		Msg("Starting stats API service")

	if err := application.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
