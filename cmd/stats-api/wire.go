//go:build wireinject

package main

import (
	"github.com/google/wire"

	"statbridge/internal/config"
	"statbridge/internal/evaluate"
	"statbridge/internal/interfaces/httpserver"
	"statbridge/internal/interfaces/httpserver/handlers"
)

func CreateApplication() (*Application, error) {
	wire.Build(
		config.LoadStats,
		evaluate.NewRuntime,
		handlers.NewStatsHandler,
		httpserver.NewHTTPServer,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil
}
