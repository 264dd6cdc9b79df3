//go:build wireinject

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/npcbrain/internal/config"
)

// InitializeApp builds the simulation from cfg.
func InitializeApp(cfg config.Config, logger *zap.Logger) (*App, func(), error) {
	wire.Build(
		wire.FieldsOf(new(config.Config), "Simulation", "Scripting"),
		provideSource,
		provideRoller,
		provideArchetype,
		provideScripts,
		provideHooks,
		provideStriker,
		providePlayer,
		provideWorld,
		provideLoop,
		provideReporter,
		provideLifecycle,
		newApp,
	)
	return nil, nil, nil
}
