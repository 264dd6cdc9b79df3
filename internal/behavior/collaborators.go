package behavior

import "github.com/cory-johannsen/npcbrain/internal/geom"

// Navigator is the pathfinding service. It is opaque to the controller: given a
// destination it reports which way to go and how far there is left.
type Navigator interface {
	SetDestination(point geom.Vec3)
	// DesiredVelocity returns the steering vector along the current path.
	DesiredVelocity() geom.Vec3
	RemainingDistance() float64
	// SampleNearestNavigablePoint snaps point onto the navigable surface
	// within radius. ok is false when nothing navigable is in range.
	SampleNearestNavigablePoint(point geom.Vec3, radius float64) (geom.Vec3, bool)
}

// NavigationToggle is implemented by navigators that can be switched off while
// the agent is knocked down.
type NavigationToggle interface {
	SetNavigationEnabled(enabled bool)
}

// AnimationSink receives animation parameters.
type AnimationSink interface {
	SetBlend(sig Signal, value, smoothTime float64)
	SetTrigger(sig Signal)
	SetBool(sig Signal, value bool)
	// NormalizedStateTime returns progress through the current state in [0, 1].
	NormalizedStateTime() float64
	IsInState(name StateName) bool
}

// SpeedControl is implemented by sinks that support a playback speed multiplier.
type SpeedControl interface {
	SetSpeed(multiplier float64)
}

// Clock supplies the elapsed simulation time for the current tick.
type Clock interface {
	DeltaTime() float64
}

// Mover is the physical body of an agent.
type Mover interface {
	Position() geom.Vec3
	SetVelocity(v geom.Vec3)
	ApplyImpulse(v geom.Vec3)
}

// GroundProbe is implemented by movers that know whether they are standing on
// the ground.
type GroundProbe interface {
	Grounded() bool
}

// Target is something an agent can see and chase.
type Target interface {
	Position() geom.Vec3
}

// Damageable is anything that can be struck.
type Damageable interface {
	TakeDamage(amount int, hitPosition geom.Vec3, isLightHit bool)
}

// Hooks lets scripted content adjust combat outcomes. A nil Hooks is valid.
type Hooks interface {
	// AdjustDamage returns the damage to apply for an incoming hit.
	AdjustDamage(agentID string, amount int, isLightHit bool) int
	// SelectReaction returns the lost-sight variant in [0, count) and true,
	// or false to fall back to a random choice.
	SelectReaction(agentID string, count int) (int, bool)
}

// Collaborators bundles the engine services an Agent drives.
type Collaborators struct {
	Navigator Navigator
	Animation AnimationSink
	Clock     Clock
	Mover     Mover
	// Target is optional; without one the agent only patrols.
	Target Target
	// Hooks is optional.
	Hooks Hooks
	// Random is optional; a time-seeded source is used when nil.
	Random Source
}
