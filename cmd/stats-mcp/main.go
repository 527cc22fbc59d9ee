package main

import (
	"github.com/rs/zerolog/log"

	"statbridge/internal/config"
	_ "statbridge/internal/infrastructure/metrics" // Register Prometheus metrics
	"statbridge/internal/interfaces/mcpserver"
	"statbridge/internal/logger"
)

type Application struct {
	config    *config.BridgeConfig
	mcpServer *mcpserver.Server
}

func init() {
	// Initialize logger with default settings
	logger.Init("info", "json")
}

func (app *Application) Start() error {
	return app.mcpServer.Run()
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
		Str("stats_api_url", cfg.StatsAPIURL).
		Str("log_level", cfg.LogLevel).
		Msg("Starting stats MCP bridge")

	if err := application.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
