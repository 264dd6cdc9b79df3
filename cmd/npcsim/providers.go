package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/npcbrain/internal/behavior"
	"github.com/cory-johannsen/npcbrain/internal/config"
	"github.com/cory-johannsen/npcbrain/internal/dice"
	"github.com/cory-johannsen/npcbrain/internal/geom"
	"github.com/cory-johannsen/npcbrain/internal/observability"
	"github.com/cory-johannsen/npcbrain/internal/scripting"
	"github.com/cory-johannsen/npcbrain/internal/server"
	"github.com/cory-johannsen/npcbrain/internal/sim"
)

// builtinArchetype is used when no archetype file overrides it.
const builtinArchetype = "default"

func provideSource(cfg config.SimulationConfig) behavior.Source {
	if cfg.Seed == 0 {
		return behavior.NewTimeSource()
	}
	return behavior.NewSeededSource(cfg.Seed)
}

func provideRoller(src behavior.Source, logger *zap.Logger) *dice.Roller {
	return dice.NewLoggedRoller(src, logger)
}

func provideArchetype(cfg config.SimulationConfig, logger *zap.Logger) (*behavior.Archetype, error) {
	byID := map[string]*behavior.Archetype{
		builtinArchetype: {ID: builtinArchetype, Name: "Default", Tuning: behavior.DefaultTuning()},
	}
	if cfg.ArchetypesDir != "" {
		start := time.Now()
		loaded, err := behavior.LoadArchetypes(cfg.ArchetypesDir)
		if err != nil {
			return nil, fmt.Errorf("loading archetypes: %w", err)
		}
		for _, a := range loaded {
			byID[a.ID] = a
		}
		logger.Info("loaded archetypes",
			zap.Int("count", len(loaded)),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	arch, ok := byID[cfg.Archetype]
	if !ok {
		return nil, fmt.Errorf("%w: unknown archetype %q", behavior.ErrConfiguration, cfg.Archetype)
	}
	return arch, nil
}

// provideScripts loads the global scripts from the root of cfg.Dir and the
// archetype's own scripts from the subdirectory named after it.
func provideScripts(cfg config.ScriptingConfig, arch *behavior.Archetype, roller *dice.Roller, logger *zap.Logger) (*scripting.Manager, func(), error) {
	mgr := scripting.NewManager(roller, logger)
	cleanup := mgr.Close
	if cfg.Dir == "" {
		logger.Info("scripting disabled")
		return mgr, cleanup, nil
	}
	if err := mgr.LoadGlobal(cfg.Dir, cfg.InstructionLimit); err != nil {
		cleanup()
		return nil, nil, err
	}
	archDir := filepath.Join(cfg.Dir, arch.ID)
	if _, err := os.Stat(archDir); err == nil {
		if err := mgr.LoadArchetype(arch.ID, archDir, cfg.InstructionLimit); err != nil {
			cleanup()
			return nil, nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		cleanup()
		return nil, nil, fmt.Errorf("scripting: %w", err)
	}
	return mgr, cleanup, nil
}

func provideHooks(mgr *scripting.Manager) behavior.Hooks {
	return mgr
}

func provideStriker(cfg config.SimulationConfig, roller *dice.Roller, logger *zap.Logger) (*sim.Striker, error) {
	s := cfg.Striker
	return sim.NewStriker(sim.StrikerConfig{
		Cooldown:       s.Cooldown,
		ActiveTime:     s.ActiveTime,
		MinHitInterval: s.MinHitInterval,
		Reach:          s.Reach,
		JabDamage:      s.JabDamage,
		StraightDamage: s.StraightDamage,
	}, roller, logger)
}

func providePlayer(cfg config.SimulationConfig, striker *sim.Striker) *sim.Player {
	path := make([]geom.Vec3, 0, len(cfg.Player.Path))
	for _, p := range cfg.Player.Path {
		path = append(path, geom.Vec3{X: p.X, Z: p.Z})
	}
	start := geom.Vec3{X: cfg.Player.Start.X, Z: cfg.Player.Start.Z}
	player := sim.NewPlayer(start, path, cfg.Player.Speed, striker)
	player.AutoPunch = cfg.Player.AutoPunch
	return player
}

func provideWorld(cfg config.SimulationConfig, player *sim.Player, hooks behavior.Hooks, src behavior.Source, logger *zap.Logger) *sim.World {
	return sim.NewWorld(cfg.ArenaRadius, player, hooks, src, logger)
}

func provideLoop(cfg config.SimulationConfig) *sim.TickLoop {
	return sim.NewTickLoop(cfg.TickInterval, cfg.MaxTicks(), cfg.Realtime)
}

func provideReporter(cfg config.SimulationConfig, world *sim.World, logger *zap.Logger) *observability.Reporter {
	return observability.NewReporter(logger, world.Views, cfg.ReportEvery())
}

func provideLifecycle(logger *zap.Logger) *server.Lifecycle {
	return server.NewLifecycle(logger)
}
