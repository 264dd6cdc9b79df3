package behavior

import (
	"math"

	"github.com/cory-johannsen/npcbrain/internal/geom"
)

// settleEpsilon is the magnitude below which a decaying blend snaps to zero.
const settleEpsilon = 1e-4

// AnimationIntent is the animation output of one tick.
type AnimationIntent struct {
	Forward  float64
	Turn     float64
	Grounded bool
	// Triggers lists the one-shot signals fired since the previous tick.
	Triggers []Signal
}

// MapInput is what the Mapper needs to derive blend values.
type MapInput struct {
	// Velocity is the agent's world-space velocity.
	Velocity geom.Vec3
	Yaw      float64
	// ReferenceSpeed is the speed that maps to a forward blend of 1.
	ReferenceSpeed float64
	FacingError    float64
	Close          bool
	// TurningInPlace keeps turn blends alive while the agent is stationary.
	TurningInPlace bool
}

// Mapper turns velocity and facing error into smoothed forward/turn blends.
type Mapper struct {
	tuning  AnimationTuning
	forward float64
	turn    float64
}

// NewMapper returns a Mapper with both blends at rest.
func NewMapper(tuning AnimationTuning) *Mapper {
	return &Mapper{tuning: tuning}
}

// Targets returns the unsmoothed forward and turn blends for in.
//
// Postcondition: both values are in [-1, 1]; both are zero when the agent is
// effectively stationary and not turning in place.
func (m *Mapper) Targets(in MapInput) (forward, turn float64) {
	speed := in.Velocity.Flat().Len()
	if speed < m.tuning.IdleSpeedThreshold && !in.TurningInPlace {
		return 0, 0
	}

	if in.ReferenceSpeed > 0 {
		local := geom.ToLocal(in.Yaw, in.Velocity)
		forward = geom.Clamp(local.Z/in.ReferenceSpeed, -1, 1)
	}
	turn = geom.Clamp(in.FacingError/180, -1, 1)

	if in.Close {
		angle := math.Abs(in.FacingError)
		switch {
		case angle > m.tuning.SharpTurnAngle:
			turn *= m.tuning.SharpTurnBoost
			forward *= m.tuning.SharpTurnForwardScale
		case angle > m.tuning.WideTurnAngle:
			turn *= m.tuning.WideTurnBoost
			forward *= m.tuning.WideTurnForwardScale
		}
	}
	return geom.Clamp(forward, -1, 1), geom.Clamp(turn, -1, 1)
}

// Update moves the smoothed blends towards the targets for in over dt seconds
// and returns them.
func (m *Mapper) Update(in MapInput, dt float64) (forward, turn float64) {
	tf, tt := m.Targets(in)
	m.forward = approach(m.forward, tf, m.tuning.ForwardSmoothTime, dt)
	m.turn = approach(m.turn, tt, m.tuning.TurnSmoothTime, dt)
	return m.forward, m.turn
}

// Reset drops both blends to zero immediately.
func (m *Mapper) Reset() {
	m.forward, m.turn = 0, 0
}

// Values returns the current smoothed blends.
func (m *Mapper) Values() (forward, turn float64) {
	return m.forward, m.turn
}

// approach moves current towards target with time constant smooth.
func approach(current, target, smooth, dt float64) float64 {
	if smooth <= 0 || dt <= 0 {
		if dt <= 0 {
			return current
		}
		return target
	}
	next := current + (target-current)*(1-math.Exp(-dt/smooth))
	if target == 0 && math.Abs(next) < settleEpsilon {
		return 0
	}
	return next
}
