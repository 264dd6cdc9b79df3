// Package sim is a headless harness that drives behavior agents on a flat,
// obstacle-free arena. It stands in for the navigation, physics and animation
// engines with the simplest models that exercise the controller.
package sim

import "github.com/cory-johannsen/npcbrain/internal/geom"

// Positioner reports a body position.
type Positioner interface {
	Position() geom.Vec3
}

// FlatNavigator steers in a straight line across a circular arena.
// It satisfies behavior.Navigator and behavior.NavigationToggle.
type FlatNavigator struct {
	body    Positioner
	center  geom.Vec3
	radius  float64
	dest    geom.Vec3
	hasDest bool
	enabled bool
}

// NewFlatNavigator returns a navigator for body inside the arena of radius
// around center.
//
// Precondition: body must be non-nil and radius > 0.
func NewFlatNavigator(body Positioner, center geom.Vec3, radius float64) *FlatNavigator {
	if body == nil {
		panic("sim.NewFlatNavigator: body must not be nil")
	}
	if radius <= 0 {
		panic("sim.NewFlatNavigator: radius must be > 0")
	}
	return &FlatNavigator{body: body, center: center.Flat(), radius: radius, enabled: true}
}

// SetDestination sets the point to steer towards, clamped into the arena.
func (n *FlatNavigator) SetDestination(p geom.Vec3) {
	n.dest = n.clamp(p)
	n.hasDest = true
}

// DesiredVelocity points from the body to the destination. It is zero while
// navigation is disabled or no destination is set.
func (n *FlatNavigator) DesiredVelocity() geom.Vec3 {
	if !n.enabled || !n.hasDest {
		return geom.Vec3{}
	}
	return n.dest.Sub(n.body.Position()).Flat()
}

// RemainingDistance is the ground distance to the destination.
func (n *FlatNavigator) RemainingDistance() float64 {
	if !n.hasDest {
		return 0
	}
	return geom.FlatDistance(n.body.Position(), n.dest)
}

// SampleNearestNavigablePoint snaps p onto the arena floor. Points farther
// than radius outside the arena are not navigable.
func (n *FlatNavigator) SampleNearestNavigablePoint(p geom.Vec3, radius float64) (geom.Vec3, bool) {
	if geom.FlatDistance(p, n.center)-n.radius > radius {
		return geom.Vec3{}, false
	}
	return n.clamp(p), true
}

// SetNavigationEnabled switches steering on or off.
func (n *FlatNavigator) SetNavigationEnabled(enabled bool) {
	n.enabled = enabled
}

// Enabled reports whether steering is on.
func (n *FlatNavigator) Enabled() bool {
	return n.enabled
}

func (n *FlatNavigator) clamp(p geom.Vec3) geom.Vec3 {
	off := p.Flat().Sub(n.center)
	if d := off.Len(); d > n.radius {
		off = off.Scale(n.radius / d)
	}
	return n.center.Add(off)
}
