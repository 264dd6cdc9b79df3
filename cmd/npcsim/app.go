package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/npcbrain/internal/behavior"
	"github.com/cory-johannsen/npcbrain/internal/config"
	"github.com/cory-johannsen/npcbrain/internal/observability"
	"github.com/cory-johannsen/npcbrain/internal/scripting"
	"github.com/cory-johannsen/npcbrain/internal/server"
	"github.com/cory-johannsen/npcbrain/internal/sim"
)

// App is the assembled simulation.
type App struct {
	cfg       config.SimulationConfig
	logger    *zap.Logger
	archetype *behavior.Archetype
	scripts   *scripting.Manager
	world     *sim.World
	loop      *sim.TickLoop
	reporter  *observability.Reporter
	lifecycle *server.Lifecycle
}

func newApp(
	cfg config.SimulationConfig,
	logger *zap.Logger,
	archetype *behavior.Archetype,
	scripts *scripting.Manager,
	world *sim.World,
	loop *sim.TickLoop,
	reporter *observability.Reporter,
	lifecycle *server.Lifecycle,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		archetype: archetype,
		scripts:   scripts,
		world:     world,
		loop:      loop,
		reporter:  reporter,
		lifecycle: lifecycle,
	}
}

// Run populates the world and steps it until the configured duration elapses
// or the process is interrupted.
func (a *App) Run(ctx context.Context) error {
	a.scripts.QueryAgent = func(id string) *scripting.AgentInfo {
		v, ok := a.world.Lookup(id)
		if !ok {
			return nil
		}
		return &scripting.AgentInfo{
			ID:        v.ID,
			Archetype: v.Archetype,
			State:     v.State.String(),
			Health:    v.Health,
			MaxHealth: v.MaxHealth,
			InSight:   v.InSight,
			Distance:  v.Distance,
		}
	}

	ids, err := a.world.Populate(a.archetype, a.cfg.Agents)
	if err != nil {
		return err
	}
	a.logger.Info("agents spawned",
		zap.String("archetype", a.archetype.ID),
		zap.Int("count", len(ids)),
	)

	var punches int
	a.loop.RegisterTick("1-world", func(dt float64) {
		for _, h := range a.world.Step(dt) {
			punches++
			a.logger.Debug("hit",
				zap.String("agent", h.TargetID),
				zap.Int("damage", h.Damage),
				zap.Bool("light", h.Light),
			)
		}
	})
	a.loop.RegisterTick("2-report", a.reporter.Tick)

	a.lifecycle.Add("simulation", server.NewContextService(a.loop.Run))
	start := time.Now()
	runErr := a.lifecycle.Run(ctx)

	a.reporter.Report()
	elapsed, ticks := a.world.Elapsed()
	a.logger.Info("simulation finished",
		zap.Uint64("ticks", ticks),
		zap.Float64("simulated_seconds", elapsed),
		zap.Int("hits", punches),
		zap.Duration("wall", time.Since(start)),
	)
	return runErr
}
