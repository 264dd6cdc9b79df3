package behavior

import (
	"math"

	"github.com/cory-johannsen/npcbrain/internal/geom"
)

// Pose is an agent's position and yaw in degrees.
type Pose struct {
	Position geom.Vec3
	Yaw      float64
}

// Goal is where the active state wants to go.
type Goal struct {
	Point geom.Vec3
	Set   bool
}

// FacingMode says what a plan wants the agent to look at.
type FacingMode uint8

const (
	// FacingHold keeps the current yaw.
	FacingHold FacingMode = iota
	// FacingTarget turns towards the goal point even when not moving.
	FacingTarget
	// FacingVelocity turns towards the direction of travel.
	FacingVelocity
)

// Plan is the movement and facing intent for one tick.
type Plan struct {
	Destination    geom.Vec3
	HasDestination bool
	// Speed is the target ground speed; zero means stand still.
	Speed float64
	// ReferenceSpeed normalizes velocity for animation blending.
	ReferenceSpeed float64
	Facing         FacingMode
	// TurnRate is the maximum rotation in degrees per second.
	TurnRate float64
	// Distance to the goal; zero without one.
	Distance float64
	// FacingError is the signed yaw to the goal in degrees.
	FacingError float64
	// Close is set when a chase goal is within CloseDistance.
	Close bool
}

// Planner chooses destination and speed for each state. Path search is left to
// the Navigator.
type Planner struct {
	tuning Tuning
}

// NewPlanner returns a Planner for tuning.
func NewPlanner(tuning Tuning) *Planner {
	return &Planner{tuning: tuning}
}

// ChaseSpeed blends between walk and run speed by distance.
//
// Postcondition: WalkSpeed at or below WalkDistance, RunSpeed at or above
// RunDistance, linear and non-decreasing in between.
func ChaseSpeed(t ChaseTuning, distance float64) float64 {
	return geom.Lerp(t.WalkSpeed, t.RunSpeed, geom.InverseLerp(t.WalkDistance, t.RunDistance, distance))
}

// Plan returns the intent for state at pose towards goal. ReactingHit is not
// planned directly; callers pass the interrupted state instead.
func (p *Planner) Plan(state State, pose Pose, goal Goal) Plan {
	switch state {
	case StatePatrol:
		return p.planPatrol(pose, goal)
	case StateChase:
		return p.planChase(pose, goal)
	default:
		return Plan{Facing: FacingHold}
	}
}

func (p *Planner) planPatrol(pose Pose, goal Goal) Plan {
	t := p.tuning.Patrol
	if !goal.Set {
		return Plan{Facing: FacingHold, ReferenceSpeed: t.WalkSpeed}
	}
	dir := goal.Point.Sub(pose.Position).Flat()
	return Plan{
		Destination:    goal.Point,
		HasDestination: true,
		Speed:          t.WalkSpeed,
		ReferenceSpeed: t.WalkSpeed,
		Facing:         FacingVelocity,
		TurnRate:       p.tuning.Chase.RotationSpeed * p.tuning.Chase.FarRotationMultiplier,
		Distance:       dir.Len(),
		FacingError:    geom.SignedAngle(pose.Yaw, dir),
	}
}

func (p *Planner) planChase(pose Pose, goal Goal) Plan {
	t := p.tuning.Chase
	if !goal.Set {
		return Plan{Facing: FacingHold, ReferenceSpeed: t.RunSpeed}
	}
	offset := goal.Point.Sub(pose.Position)
	distance := offset.Len()
	facingError := geom.SignedAngle(pose.Yaw, offset)
	near := distance <= t.CloseDistance

	rate := t.RotationSpeed * t.FarRotationMultiplier
	if near {
		rate = t.RotationSpeed * t.CloseRotationMultiplier
	}

	speed := 0.0
	if !near && math.Abs(facingError) <= t.FacingThreshold {
		speed = ChaseSpeed(t, distance)
	}

	return Plan{
		Destination:    goal.Point,
		HasDestination: true,
		Speed:          speed,
		ReferenceSpeed: t.RunSpeed,
		Facing:         FacingTarget,
		TurnRate:       rate,
		Distance:       distance,
		FacingError:    facingError,
		Close:          near,
	}
}
