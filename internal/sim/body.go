package sim

import (
	"math"

	"github.com/cory-johannsen/npcbrain/internal/geom"
)

const (
	// Gravity pulls airborne bodies down, in units per second squared.
	Gravity = 9.81
	// KnockbackDrag is the fraction of horizontal knockback speed lost per second.
	KnockbackDrag = 4.0
	groundEpsilon = 1e-3
)

// Body is a kinematic point mass. Locomotion velocity is replaced every tick
// by the controller; knockback velocity from impulses decays on its own so a
// knocked-down agent still slides while the controller holds it still.
// It satisfies behavior.Mover and behavior.GroundProbe.
type Body struct {
	pos   geom.Vec3
	vel   geom.Vec3
	knock geom.Vec3
	mass  float64
}

// NewBody returns a body resting at pos.
//
// Precondition: mass > 0.
func NewBody(pos geom.Vec3, mass float64) *Body {
	if mass <= 0 {
		panic("sim.NewBody: mass must be > 0")
	}
	return &Body{pos: pos, mass: mass}
}

func (b *Body) Position() geom.Vec3 { return b.pos }

// SetVelocity sets the horizontal locomotion velocity.
func (b *Body) SetVelocity(v geom.Vec3) { b.vel = v.Flat() }

// ApplyImpulse adds impulse / mass to the knockback velocity.
func (b *Body) ApplyImpulse(impulse geom.Vec3) {
	b.knock = b.knock.Add(impulse.Scale(1 / b.mass))
}

// Grounded reports whether the body rests on the floor.
func (b *Body) Grounded() bool { return b.pos.Y <= groundEpsilon }

// Velocity returns the combined locomotion and knockback velocity.
func (b *Body) Velocity() geom.Vec3 { return b.vel.Add(b.knock) }

// Step integrates the body over dt seconds.
func (b *Body) Step(dt float64) {
	if dt <= 0 {
		return
	}
	if !b.Grounded() || b.knock.Y > 0 {
		b.knock.Y -= Gravity * dt
	}
	b.pos = b.pos.Add(b.Velocity().Scale(dt))
	if b.pos.Y <= 0 {
		b.pos.Y = 0
		b.knock.Y = 0
	}

	decay := math.Max(0, 1-KnockbackDrag*dt)
	b.knock.X *= decay
	b.knock.Z *= decay
	if math.Hypot(b.knock.X, b.knock.Z) < groundEpsilon {
		b.knock.X, b.knock.Z = 0, 0
	}
}
