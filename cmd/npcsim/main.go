// Package main runs the headless NPC behavior simulation: a ring of agents on
// a flat arena patrolling, chasing and reacting to a scripted player.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/npcbrain/internal/config"
	"github.com/cory-johannsen/npcbrain/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/npcsim.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting npcsim",
		zap.Duration("tick_interval", cfg.Simulation.TickInterval),
		zap.Duration("duration", cfg.Simulation.Duration),
		zap.Int("agents", cfg.Simulation.Agents),
		zap.String("archetype", cfg.Simulation.Archetype),
	)

	app, cleanup, err := InitializeApp(cfg, logger)
	if err != nil {
		logger.Fatal("assembling simulation", zap.Error(err))
	}
	defer cleanup()

	logger.Info("simulation ready", zap.Duration("startup", time.Since(start)))
	if err := app.Run(context.Background()); err != nil {
		logger.Error("simulation failed", zap.Error(err))
	}
}
