package behavior

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/npcbrain/internal/geom"
)

// PatrolPlan is the wandering state of an agent with nothing to chase.
//
// Invariant: Wait is only counted down while HasPoint is false.
type PatrolPlan struct {
	Point    geom.Vec3
	Wait     float64
	HasPoint bool
	// Next indexes the waypoint being walked to, or the one after the wait.
	Next int
	// Done is set once a non-looping route has reached its last waypoint.
	Done bool
}

// Waiting reports whether the agent is standing still between patrol points.
func (p *PatrolPlan) Waiting() bool {
	return !p.HasPoint
}

// Invalidate drops the current point so a fresh one is chosen immediately.
// A route keeps its position.
func (p *PatrolPlan) Invalidate() {
	p.HasPoint = false
	p.Wait = 0
}

// Update advances the plan by dt seconds for an agent at position.
//
// An unreached point is never replaced. On arrival the point is cleared and a
// wait in [MinWait, MaxWait] begins. Once the wait has run out the next point
// is chosen: the next waypoint when t.Waypoints is set, otherwise a random
// navigable point within Radius of spawn.
//
// Random points are reached when position is within ArrivalThreshold of them.
// Waypoints are reached when nav reports at most ArrivalThreshold of path
// left; the agent steers nav at Point on every patrol tick.
//
// Postcondition: returns an error wrapping ErrNavigationFailure when no
// navigable point could be sampled; the next call samples again.
func (p *PatrolPlan) Update(position, spawn geom.Vec3, dt float64, t PatrolTuning, nav Navigator, src Source) error {
	route := len(t.Waypoints) > 0
	if p.HasPoint {
		var arrived bool
		if route {
			arrived = nav.RemainingDistance() <= t.ArrivalThreshold
		} else {
			arrived = geom.FlatDistance(position, p.Point) < t.ArrivalThreshold
		}
		if arrived {
			p.HasPoint = false
			p.Wait = rangeFloat(src, t.MinWait, t.MaxWait)
			if route {
				p.advance(t)
			}
		}
		return nil
	}

	if p.Wait > 0 {
		p.Wait -= dt
		if p.Wait > 0 {
			return nil
		}
	}
	p.Wait = 0

	if route {
		if p.Done {
			return nil
		}
		p.Point = t.Waypoints[p.Next%len(t.Waypoints)].From(spawn)
		p.HasPoint = true
		return nil
	}

	candidate := randomPointInDisk(spawn, t.Radius, src)
	point, ok := nav.SampleNearestNavigablePoint(candidate, t.Radius)
	if !ok {
		return fmt.Errorf("%w: no navigable point near (%.2f, %.2f, %.2f)",
			ErrNavigationFailure, candidate.X, candidate.Y, candidate.Z)
	}
	p.Point = point
	p.HasPoint = true
	return nil
}

// advance moves the route past the waypoint just reached.
func (p *PatrolPlan) advance(t PatrolTuning) {
	n := len(t.Waypoints)
	switch {
	case t.Loop:
		p.Next = (p.Next + 1) % n
	case p.Next < n-1:
		p.Next++
	default:
		p.Done = true
	}
}

// randomPointInDisk returns a uniformly distributed ground-plane point within
// radius of center.
func randomPointInDisk(center geom.Vec3, radius float64, src Source) geom.Vec3 {
	angle := 2 * math.Pi * src.Float64()
	r := radius * math.Sqrt(src.Float64())
	return center.Add(geom.Vec3{X: r * math.Cos(angle), Z: r * math.Sin(angle)})
}
