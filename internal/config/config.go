// Package config provides Viper-based configuration loading for the npcsim harness.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// PointConfig is a point on the ground plane.
type PointConfig struct {
	X float64 `mapstructure:"x"`
	Z float64 `mapstructure:"z"`
}

// PlayerConfig describes the tracked target.
type PlayerConfig struct {
	Start PointConfig   `mapstructure:"start"`
	Path  []PointConfig `mapstructure:"path"`
	// Speed is the walking speed along Path in units per second.
	Speed float64 `mapstructure:"speed"`
	// AutoPunch makes the player swing at any agent within reach.
	AutoPunch bool `mapstructure:"auto_punch"`
}

// StrikerConfig holds the player's punch settings. Times are in seconds.
type StrikerConfig struct {
	Cooldown       float64 `mapstructure:"cooldown"`
	ActiveTime     float64 `mapstructure:"active_time"`
	MinHitInterval float64 `mapstructure:"min_hit_interval"`
	Reach          float64 `mapstructure:"reach"`
	// JabDamage and StraightDamage are dice expressions such as "2d6+3".
	JabDamage      string `mapstructure:"jab_damage"`
	StraightDamage string `mapstructure:"straight_damage"`
}

// SimulationConfig holds the headless world settings.
type SimulationConfig struct {
	// TickInterval is the fixed simulation step.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// Duration is the simulated time to run; zero runs until interrupted and
	// requires Realtime.
	Duration time.Duration `mapstructure:"duration"`
	// Realtime paces ticks with a wall-clock ticker.
	Realtime bool `mapstructure:"realtime"`
	// ReportInterval is how often agent summaries are logged; zero disables.
	ReportInterval time.Duration `mapstructure:"report_interval"`
	Agents         int           `mapstructure:"agents"`
	// Seed seeds the random source; zero seeds from the clock.
	Seed        uint64  `mapstructure:"seed"`
	ArenaRadius float64 `mapstructure:"arena_radius"`
	// Archetype names the archetype every spawned agent uses.
	Archetype string `mapstructure:"archetype"`
	// ArchetypesDir holds *.yaml archetype files. Empty uses built-in tuning.
	ArchetypesDir string        `mapstructure:"archetypes_dir"`
	Player        PlayerConfig  `mapstructure:"player"`
	Striker       StrikerConfig `mapstructure:"striker"`
}

// MaxTicks returns how many ticks Duration covers, or zero for no limit.
func (s SimulationConfig) MaxTicks() uint64 {
	if s.Duration <= 0 || s.TickInterval <= 0 {
		return 0
	}
	return uint64((s.Duration + s.TickInterval - 1) / s.TickInterval)
}

// ReportEvery returns the number of ticks between summaries, or zero.
func (s SimulationConfig) ReportEvery() uint64 {
	if s.ReportInterval <= 0 || s.TickInterval <= 0 {
		return 0
	}
	return max(uint64(s.ReportInterval/s.TickInterval), 1)
}

// ScriptingConfig holds Lua hook settings.
type ScriptingConfig struct {
	// Dir holds global *.lua scripts and one subdirectory per archetype.
	// Empty disables scripting.
	Dir string `mapstructure:"dir"`
	// InstructionLimit caps the instructions one hook call may execute.
	// Zero uses the sandbox default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Scripting  ScriptingConfig  `mapstructure:"scripting"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateScripting(c.Scripting); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.tick_interval must be > 0, got %s", s.TickInterval))
	}
	if s.Duration < 0 {
		errs = append(errs, "simulation.duration must not be negative")
	}
	if s.Duration == 0 && !s.Realtime {
		errs = append(errs, "simulation.duration must be > 0 unless simulation.realtime is set")
	}
	if s.ReportInterval < 0 {
		errs = append(errs, "simulation.report_interval must not be negative")
	}
	if s.Agents < 0 {
		errs = append(errs, fmt.Sprintf("simulation.agents must be >= 0, got %d", s.Agents))
	}
	if s.ArenaRadius <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.arena_radius must be > 0, got %v", s.ArenaRadius))
	}
	if s.Archetype == "" {
		errs = append(errs, "simulation.archetype must not be empty")
	}
	if s.Player.Speed < 0 {
		errs = append(errs, fmt.Sprintf("simulation.player.speed must be >= 0, got %v", s.Player.Speed))
	}
	if err := validateStriker(s.Striker); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateStriker(s StrikerConfig) error {
	var errs []string
	if s.Cooldown < 0 {
		errs = append(errs, "simulation.striker.cooldown must not be negative")
	}
	if s.ActiveTime <= 0 {
		errs = append(errs, "simulation.striker.active_time must be > 0")
	}
	if s.MinHitInterval < 0 {
		errs = append(errs, "simulation.striker.min_hit_interval must not be negative")
	}
	if s.Reach <= 0 {
		errs = append(errs, "simulation.striker.reach must be > 0")
	}
	if s.JabDamage == "" || s.StraightDamage == "" {
		errs = append(errs, "simulation.striker damage expressions must not be empty")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateScripting(s ScriptingConfig) error {
	if s.InstructionLimit < 0 {
		return fmt.Errorf("scripting.instruction_limit must be >= 0, got %d", s.InstructionLimit)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with NPCBRAIN_ prefix
	v.SetEnvPrefix("NPCBRAIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only the default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("simulation.tick_interval", "50ms")
	v.SetDefault("simulation.duration", "30s")
	v.SetDefault("simulation.realtime", false)
	v.SetDefault("simulation.report_interval", "1s")
	v.SetDefault("simulation.agents", 4)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.arena_radius", 25.0)
	v.SetDefault("simulation.archetype", "default")
	v.SetDefault("simulation.archetypes_dir", "")
	v.SetDefault("simulation.player.speed", 3.0)
	v.SetDefault("simulation.player.auto_punch", true)

	v.SetDefault("simulation.striker.cooldown", 0.5)
	v.SetDefault("simulation.striker.active_time", 0.2)
	v.SetDefault("simulation.striker.min_hit_interval", 0.1)
	v.SetDefault("simulation.striker.reach", 1.5)
	v.SetDefault("simulation.striker.jab_damage", "10")
	v.SetDefault("simulation.striker.straight_damage", "10")

	v.SetDefault("scripting.dir", "")
	v.SetDefault("scripting.instruction_limit", 0)
}
