package behavior

import "github.com/cory-johannsen/npcbrain/internal/geom"

// CombatStatus is the health and reaction state of an agent.
//
// Invariant: Health > 0 whenever KnockedDown is false.
type CombatStatus struct {
	Health      int
	MaxHealth   int
	KnockedDown bool
	Reacting    bool
	// ReactionTimer is the time left on the current hit reaction.
	ReactionTimer float64
	// Knockback is the impulse applied when the last knockdown began.
	Knockback geom.Vec3
}

// DamageOutcome classifies what a hit did.
type DamageOutcome uint8

const (
	DamageIgnored DamageOutcome = iota
	DamageHit
	DamageKnockdown
)

// DamageResult describes the effect of one TakeDamage call.
type DamageResult struct {
	Outcome DamageOutcome
	// Applied is the damage subtracted from health.
	Applied int
	// Direction is the hit point in the agent's local frame, normalized.
	Direction geom.Vec3
	// Intensity is 0 for a light hit and 1 for a heavy one.
	Intensity float64
	// Impulse is the knockback applied on knockdown.
	Impulse geom.Vec3
}

// Combat tracks damage for one agent.
type Combat struct {
	tuning CombatTuning
	status CombatStatus
}

// NewCombat returns a Combat at full health.
func NewCombat(tuning CombatTuning) *Combat {
	return &Combat{
		tuning: tuning,
		status: CombatStatus{Health: tuning.MaxHealth, MaxHealth: tuning.MaxHealth},
	}
}

// Status returns a copy of the current combat status.
func (c *Combat) Status() CombatStatus {
	return c.status
}

// IsKnockedDown reports whether the agent is down or still getting up.
func (c *Combat) IsKnockedDown() bool {
	return c.status.KnockedDown
}

// TakeDamage applies amount from a hit at hitPosition to an agent at pose.
//
// Hits are ignored while knocked down, while reacting unless interrupts are
// allowed, and when amount is negative. Health is restored to max the moment
// a knockdown begins.
//
// Postcondition: an ignored hit leaves the status unchanged.
func (c *Combat) TakeDamage(amount int, hitPosition geom.Vec3, isLightHit bool, pose Pose) DamageResult {
	if amount < 0 || c.status.KnockedDown || (c.status.Reacting && !c.tuning.AllowHitInterrupt) {
		return DamageResult{Outcome: DamageIgnored}
	}

	c.status.Health -= amount
	if c.status.Health <= 0 {
		impulse := c.knockback(pose, hitPosition)
		c.status.KnockedDown = true
		c.status.Reacting = false
		c.status.ReactionTimer = 0
		c.status.Health = c.status.MaxHealth
		c.status.Knockback = impulse
		return DamageResult{Outcome: DamageKnockdown, Applied: amount, Impulse: impulse}
	}

	intensity := 1.0
	if isLightHit {
		intensity = 0
	}
	c.status.Reacting = true
	c.status.ReactionTimer = c.tuning.HitRecoveryTime
	return DamageResult{
		Outcome:   DamageHit,
		Applied:   amount,
		Direction: geom.PointToLocal(pose.Position, pose.Yaw, hitPosition).Normalize(),
		Intensity: intensity,
	}
}

// Tick runs the hit reaction timer down by dt.
//
// Postcondition: returns true on the tick the reaction ends.
func (c *Combat) Tick(dt float64) bool {
	if !c.status.Reacting {
		return false
	}
	c.status.ReactionTimer -= dt
	if c.status.ReactionTimer > 0 {
		return false
	}
	c.status.Reacting = false
	c.status.ReactionTimer = 0
	return true
}

// Recover ends the knockdown sequence.
func (c *Combat) Recover() {
	c.status.KnockedDown = false
}

// knockback pushes the body away from the hit with a fixed upward lift.
func (c *Combat) knockback(pose Pose, hitPosition geom.Vec3) geom.Vec3 {
	away := pose.Position.Sub(hitPosition).Flat().Normalize()
	if away.IsZero() {
		away = geom.Forward(pose.Yaw).Scale(-1)
	}
	return away.Add(geom.Up.Scale(c.tuning.KnockbackLift)).Scale(c.tuning.KnockbackForce)
}
