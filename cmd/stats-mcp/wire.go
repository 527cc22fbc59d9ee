//go:build wireinject

package main

import (
	"github.com/google/wire"

	"statbridge/internal/config"
	"statbridge/internal/infrastructure/statsapi"
	"statbridge/internal/infrastructure/tooldesc"
	"statbridge/internal/interfaces/mcpserver"
)

func CreateApplication() (*Application, error) {
	wire.Build(
		config.LoadBridge,
		statsapi.NewClient,
		tooldesc.Provide,
		mcpserver.NewStatsMCP,
		mcpserver.NewMCPRoute,
		mcpserver.NewServer,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil
}
