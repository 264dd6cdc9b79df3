package behavior

import "github.com/cory-johannsen/npcbrain/internal/geom"

// PerceptionResult is what an agent knows about its target this tick.
type PerceptionResult struct {
	InSight  bool
	Distance float64
	// Direction is the horizontal unit vector towards the target; zero when
	// the target is directly above or below.
	Direction geom.Vec3
	// FacingError is the signed yaw, in degrees, needed to face the target.
	FacingError float64
	// Acquired is set on the tick the target comes into sight.
	Acquired bool
	// Lost is set on the tick the target leaves sight.
	Lost bool
}

// Perceive evaluates sight of a target. Sight is purely distance based; there
// is no occlusion test. The boundary distance counts as in sight.
func Perceive(agentPosition geom.Vec3, agentFacing float64, targetPosition geom.Vec3, sightRange float64) PerceptionResult {
	offset := targetPosition.Sub(agentPosition)
	dir := offset.Flat().Normalize()
	d := offset.Len()
	return PerceptionResult{
		InSight:     d <= sightRange,
		Distance:    d,
		Direction:   dir,
		FacingError: geom.SignedAngle(agentFacing, dir),
	}
}

// Perception tracks sight of one target across ticks so that sight changes
// can be reported as edges.
type Perception struct {
	sightRange float64
	inSight    bool
}

// NewPerception returns a Perception that starts with the target out of sight.
func NewPerception(sightRange float64) *Perception {
	return &Perception{sightRange: sightRange}
}

// Update perceives target from the given pose and records the result.
// A nil target is never in sight.
//
// Postcondition: Acquired and Lost are never both set.
func (p *Perception) Update(position geom.Vec3, facing float64, target Target) PerceptionResult {
	var res PerceptionResult
	if target != nil {
		res = Perceive(position, facing, target.Position(), p.sightRange)
	}
	res.Acquired = res.InSight && !p.inSight
	res.Lost = !res.InSight && p.inSight
	p.inSight = res.InSight
	return res
}

// InSight reports the sight status recorded by the last Update.
func (p *Perception) InSight() bool {
	return p.inSight
}
