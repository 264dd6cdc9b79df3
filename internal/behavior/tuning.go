package behavior

import (
	"fmt"
	"math"
	"strings"

	"github.com/cory-johannsen/npcbrain/internal/geom"
)

// PatrolTuning controls wandering around the spawn point.
type PatrolTuning struct {
	Radius           float64 `yaml:"radius"`
	WalkSpeed        float64 `yaml:"walk_speed"`
	ArrivalThreshold float64 `yaml:"arrival_threshold"`
	MinWait          float64 `yaml:"min_wait"`
	MaxWait          float64 `yaml:"max_wait"`
	// Waypoints, when set, replace random sampling with a fixed route.
	Waypoints []Waypoint `yaml:"waypoints"`
	// Loop restarts the route after the last waypoint; otherwise the agent
	// stays at the last one.
	Loop bool `yaml:"loop"`
}

// Waypoint is a patrol route point given as a ground-plane offset from the
// agent's spawn.
type Waypoint struct {
	X float64 `yaml:"x"`
	Z float64 `yaml:"z"`
}

// From returns the world position of w for an agent spawned at spawn.
func (w Waypoint) From(spawn geom.Vec3) geom.Vec3 {
	return spawn.Add(geom.Vec3{X: w.X, Z: w.Z})
}

// ChaseTuning controls pursuit of a visible target. Distances are in world
// units, speeds in units per second and angles in degrees.
type ChaseTuning struct {
	SightRange              float64 `yaml:"sight_range"`
	WalkSpeed               float64 `yaml:"walk_speed"`
	RunSpeed                float64 `yaml:"run_speed"`
	WalkDistance            float64 `yaml:"walk_distance"`
	RunDistance             float64 `yaml:"run_distance"`
	CloseDistance           float64 `yaml:"close_distance"`
	FacingThreshold         float64 `yaml:"facing_threshold"`
	RotationSpeed           float64 `yaml:"rotation_speed"`
	CloseRotationMultiplier float64 `yaml:"close_rotation_multiplier"`
	FarRotationMultiplier   float64 `yaml:"far_rotation_multiplier"`
}

// ReactionTuning controls the lost-sight reaction.
type ReactionTuning struct {
	Count            int     `yaml:"count"`
	Duration         float64 `yaml:"duration"`
	TransitionBuffer float64 `yaml:"transition_buffer"`
}

// CombatTuning controls hit reactions and the knockdown sequence.
type CombatTuning struct {
	MaxHealth         int     `yaml:"max_health"`
	HitRecoveryTime   float64 `yaml:"hit_recovery_time"`
	AllowHitInterrupt bool    `yaml:"allow_hit_interrupt"`
	KnockdownDuration float64 `yaml:"knockdown_duration"`
	KnockbackForce    float64 `yaml:"knockback_force"`
	KnockbackLift     float64 `yaml:"knockback_lift"`
	// RecoverySpeed is the get-up playback multiplier.
	RecoverySpeed float64 `yaml:"recovery_speed"`
	// RecoveryTimeout bounds the wait for the get-up animation to finish.
	RecoveryTimeout float64 `yaml:"recovery_timeout"`
}

// AnimationTuning controls blend value mapping.
type AnimationTuning struct {
	ForwardSmoothTime     float64 `yaml:"forward_smooth_time"`
	TurnSmoothTime        float64 `yaml:"turn_smooth_time"`
	IdleSpeedThreshold    float64 `yaml:"idle_speed_threshold"`
	WideTurnAngle         float64 `yaml:"wide_turn_angle"`
	WideTurnBoost         float64 `yaml:"wide_turn_boost"`
	WideTurnForwardScale  float64 `yaml:"wide_turn_forward_scale"`
	SharpTurnAngle        float64 `yaml:"sharp_turn_angle"`
	SharpTurnBoost        float64 `yaml:"sharp_turn_boost"`
	SharpTurnForwardScale float64 `yaml:"sharp_turn_forward_scale"`
}

// Tuning holds every numeric parameter of one agent.
type Tuning struct {
	Patrol    PatrolTuning    `yaml:"patrol"`
	Chase     ChaseTuning     `yaml:"chase"`
	Reaction  ReactionTuning  `yaml:"reaction"`
	Combat    CombatTuning    `yaml:"combat"`
	Animation AnimationTuning `yaml:"animation"`
}

// DefaultTuning returns the stock brawler parameters.
func DefaultTuning() Tuning {
	return Tuning{
		Patrol: PatrolTuning{
			Radius:           10,
			WalkSpeed:        1.5,
			ArrivalThreshold: 1,
			MinWait:          2,
			MaxWait:          5,
			Loop:             true,
		},
		Chase: ChaseTuning{
			SightRange:              15,
			WalkSpeed:               2,
			RunSpeed:                5,
			WalkDistance:            3,
			RunDistance:             10,
			CloseDistance:           2,
			FacingThreshold:         30,
			RotationSpeed:           180,
			CloseRotationMultiplier: 2,
			FarRotationMultiplier:   1,
		},
		Reaction: ReactionTuning{
			Count:            3,
			Duration:         2,
			TransitionBuffer: 0.25,
		},
		Combat: CombatTuning{
			MaxHealth:         100,
			HitRecoveryTime:   0.5,
			KnockdownDuration: 2,
			KnockbackForce:    10,
			KnockbackLift:     0.5,
			RecoverySpeed:     1.5,
			RecoveryTimeout:   5,
		},
		Animation: AnimationTuning{
			ForwardSmoothTime:     0.1,
			TurnSmoothTime:        0.1,
			IdleSpeedThreshold:    0.1,
			WideTurnAngle:         45,
			WideTurnBoost:         1.5,
			WideTurnForwardScale:  0.5,
			SharpTurnAngle:        90,
			SharpTurnBoost:        2,
			SharpTurnForwardScale: 0.25,
		},
	}
}

// Validate checks all tuning invariants.
//
// Postcondition: Returns nil if the tuning is usable, or an error describing
// every violation.
func (t Tuning) Validate() error {
	var errs []string
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	p := t.Patrol
	if p.Radius <= 0 {
		add("patrol.radius must be > 0, got %v", p.Radius)
	}
	if p.WalkSpeed < 0 {
		add("patrol.walk_speed must be >= 0, got %v", p.WalkSpeed)
	}
	if p.ArrivalThreshold <= 0 {
		add("patrol.arrival_threshold must be > 0, got %v", p.ArrivalThreshold)
	}
	if p.MinWait < 0 || p.MaxWait < p.MinWait {
		add("patrol wait range must satisfy 0 <= min_wait <= max_wait, got [%v, %v]", p.MinWait, p.MaxWait)
	}
	for i, w := range p.Waypoints {
		if math.IsNaN(w.X) || math.IsNaN(w.Z) || math.IsInf(w.X, 0) || math.IsInf(w.Z, 0) {
			add("patrol.waypoints[%d] must be finite, got (%v, %v)", i, w.X, w.Z)
		}
	}

	c := t.Chase
	if c.SightRange < 0 {
		add("chase.sight_range must be >= 0, got %v", c.SightRange)
	}
	if c.WalkSpeed < 0 || c.RunSpeed < c.WalkSpeed {
		add("chase speeds must satisfy 0 <= walk_speed <= run_speed, got [%v, %v]", c.WalkSpeed, c.RunSpeed)
	}
	if c.WalkDistance < 0 || c.RunDistance <= c.WalkDistance {
		add("chase distances must satisfy 0 <= walk_distance < run_distance, got [%v, %v]", c.WalkDistance, c.RunDistance)
	}
	if c.CloseDistance < 0 {
		add("chase.close_distance must be >= 0, got %v", c.CloseDistance)
	}
	if c.FacingThreshold < 0 || c.FacingThreshold > 180 {
		add("chase.facing_threshold must be in [0, 180], got %v", c.FacingThreshold)
	}
	if c.RotationSpeed <= 0 {
		add("chase.rotation_speed must be > 0, got %v", c.RotationSpeed)
	}
	if c.CloseRotationMultiplier <= 0 || c.FarRotationMultiplier <= 0 {
		add("chase rotation multipliers must be > 0")
	}

	r := t.Reaction
	if r.Count < 1 {
		add("reaction.count must be >= 1, got %d", r.Count)
	}
	if r.Duration < 0 || r.TransitionBuffer < 0 {
		add("reaction duration and transition_buffer must be >= 0")
	}

	cb := t.Combat
	if cb.MaxHealth < 1 {
		add("combat.max_health must be >= 1, got %d", cb.MaxHealth)
	}
	if cb.HitRecoveryTime < 0 {
		add("combat.hit_recovery_time must be >= 0, got %v", cb.HitRecoveryTime)
	}
	if cb.KnockdownDuration < 0 {
		add("combat.knockdown_duration must be >= 0, got %v", cb.KnockdownDuration)
	}
	if cb.KnockbackForce < 0 {
		add("combat.knockback_force must be >= 0, got %v", cb.KnockbackForce)
	}
	if cb.RecoverySpeed <= 0 {
		add("combat.recovery_speed must be > 0, got %v", cb.RecoverySpeed)
	}
	if cb.RecoveryTimeout <= 0 {
		add("combat.recovery_timeout must be > 0, got %v", cb.RecoveryTimeout)
	}

	a := t.Animation
	if a.ForwardSmoothTime < 0 || a.TurnSmoothTime < 0 {
		add("animation smooth times must be >= 0")
	}
	if a.IdleSpeedThreshold < 0 {
		add("animation.idle_speed_threshold must be >= 0, got %v", a.IdleSpeedThreshold)
	}
	if a.WideTurnAngle > a.SharpTurnAngle {
		add("animation.wide_turn_angle must not exceed sharp_turn_angle")
	}

	if len(errs) > 0 {
		return fmt.Errorf("tuning validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
