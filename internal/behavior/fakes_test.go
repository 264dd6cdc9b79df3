package behavior_test

import (
	"github.com/cory-johannsen/npcbrain/internal/behavior"
	"github.com/cory-johannsen/npcbrain/internal/geom"
)

// fakeMover is a body that only moves when the test integrates it.
type fakeMover struct {
	pos      geom.Vec3
	vel      geom.Vec3
	impulses []geom.Vec3
}

func (m *fakeMover) Position() geom.Vec3      { return m.pos }
func (m *fakeMover) SetVelocity(v geom.Vec3)  { m.vel = v }
func (m *fakeMover) ApplyImpulse(v geom.Vec3) { m.impulses = append(m.impulses, v) }
func (m *fakeMover) integrate(dt float64)     { m.pos = m.pos.Add(m.vel.Scale(dt)) }
func (m *fakeMover) teleport(p geom.Vec3)     { m.pos = p }

// fakeNav steers in a straight line from the mover to the destination.
type fakeNav struct {
	mover       *fakeMover
	dest        geom.Vec3
	destSet     int
	failSamples int
	samples     int
	enabled     bool
	toggles     []bool
}

func newFakeNav(m *fakeMover) *fakeNav {
	return &fakeNav{mover: m, enabled: true}
}

func (n *fakeNav) SetDestination(p geom.Vec3) {
	n.dest = p
	n.destSet++
}

func (n *fakeNav) DesiredVelocity() geom.Vec3 {
	return n.dest.Sub(n.mover.pos).Flat()
}

func (n *fakeNav) RemainingDistance() float64 {
	return geom.FlatDistance(n.mover.pos, n.dest)
}

func (n *fakeNav) SampleNearestNavigablePoint(p geom.Vec3, _ float64) (geom.Vec3, bool) {
	n.samples++
	if n.failSamples > 0 {
		n.failSamples--
		return geom.Vec3{}, false
	}
	return p, true
}

func (n *fakeNav) SetNavigationEnabled(enabled bool) {
	n.enabled = enabled
	n.toggles = append(n.toggles, enabled)
}

// fakeSink records every animation parameter it is given.
type fakeSink struct {
	blends   map[behavior.Signal]float64
	bools    map[behavior.Signal]bool
	triggers []behavior.Signal
	state    behavior.StateName
	normTime float64
	speed    float64
}

func newFakeSink() *fakeSink {
	return &fakeSink{
		blends: make(map[behavior.Signal]float64),
		bools:  make(map[behavior.Signal]bool),
		speed:  1,
	}
}

func (s *fakeSink) SetBlend(sig behavior.Signal, v, _ float64) { s.blends[sig] = v }
func (s *fakeSink) SetTrigger(sig behavior.Signal)             { s.triggers = append(s.triggers, sig) }
func (s *fakeSink) SetBool(sig behavior.Signal, v bool)        { s.bools[sig] = v }
func (s *fakeSink) NormalizedStateTime() float64               { return s.normTime }
func (s *fakeSink) IsInState(name behavior.StateName) bool     { return s.state == name }
func (s *fakeSink) SetSpeed(m float64)                         { s.speed = m }

func (s *fakeSink) fired(sig behavior.Signal) int {
	n := 0
	for _, t := range s.triggers {
		if t == sig {
			n++
		}
	}
	return n
}

type fixedClock struct{ dt float64 }

func (c fixedClock) DeltaTime() float64 { return c.dt }

type pointTarget struct{ pos geom.Vec3 }

func (t *pointTarget) Position() geom.Vec3 { return t.pos }

// stubHooks scales damage and pins the reaction variant.
type stubHooks struct {
	scale    int
	reaction int
	calls    int
}

func (h *stubHooks) AdjustDamage(_ string, amount int, _ bool) int {
	h.calls++
	return amount * h.scale
}

func (h *stubHooks) SelectReaction(_ string, count int) (int, bool) {
	if h.reaction < 0 || h.reaction >= count {
		return 0, false
	}
	return h.reaction, true
}

// rig bundles an agent with its fakes.
type rig struct {
	agent  *behavior.Agent
	mover  *fakeMover
	nav    *fakeNav
	sink   *fakeSink
	target *pointTarget
}

func newRig(tuning behavior.Tuning, dt float64, hooks behavior.Hooks) (*rig, error) {
	mover := &fakeMover{}
	nav := newFakeNav(mover)
	sink := newFakeSink()
	target := &pointTarget{pos: geom.Vec3{Z: 100}}
	agent, err := behavior.NewAgent("npc-1", tuning, behavior.Collaborators{
		Navigator: nav,
		Animation: sink,
		Clock:     fixedClock{dt: dt},
		Mover:     mover,
		Target:    target,
		Hooks:     hooks,
		Random:    behavior.NewSeededSource(7),
	}, nil)
	if err != nil {
		return nil, err
	}
	return &rig{agent: agent, mover: mover, nav: nav, sink: sink, target: target}, nil
}
