package sim

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/npcbrain/internal/behavior"
	"github.com/cory-johannsen/npcbrain/internal/geom"
)

// DefaultBodyMass is the mass of a spawned agent body.
const DefaultBodyMass = 1.0

// HookBinder is implemented by hook providers that route calls per archetype.
type HookBinder interface {
	Bind(agentID, archetypeID string)
	Unbind(agentID string)
}

// AgentView is a read-only view of one agent for reporting.
type AgentView struct {
	behavior.Snapshot
	Archetype   string
	MaxHealth   int
	KnockedDown bool
	Grounded    bool
}

type entry struct {
	agent     *behavior.Agent
	body      *Body
	nav       *FlatNavigator
	sink      *AnimationSink
	archetype string
	maxHealth int
}

func (e *entry) ID() string          { return e.agent.ID() }
func (e *entry) Position() geom.Vec3 { return e.body.Position() }
func (e *entry) TakeDamage(amount int, hitPosition geom.Vec3, isLightHit bool) {
	e.agent.TakeDamage(amount, hitPosition, isLightHit)
}

// World owns the agents, their engine stand-ins and the player, and advances
// them in lockstep. It satisfies behavior.Clock for its agents.
//
// World is safe for concurrent use.
type World struct {
	mu     sync.Mutex
	logger *zap.Logger
	center geom.Vec3
	radius float64
	player *Player
	hooks  behavior.Hooks
	src    behavior.Source
	clip   float64

	dt      float64
	elapsed float64
	ticks   uint64
	agents  map[string]*entry
	order   []string
	// published is rebuilt whenever mu is released after a change.
	published atomic.Pointer[map[string]AgentView]
}

// NewWorld creates an empty world on an arena of radius around the origin.
//
// Precondition: player, src and logger must be non-nil; radius > 0.
// hooks may be nil.
func NewWorld(radius float64, player *Player, hooks behavior.Hooks, src behavior.Source, logger *zap.Logger) *World {
	if player == nil || src == nil || logger == nil {
		panic("sim.NewWorld: player, src and logger must not be nil")
	}
	if radius <= 0 {
		panic("sim.NewWorld: radius must be > 0")
	}
	return &World{
		logger: logger,
		radius: radius,
		player: player,
		hooks:  hooks,
		src:    src,
		clip:   DefaultGetUpClip,
		agents: make(map[string]*entry),
	}
}

// DeltaTime returns the step currently being simulated.
func (w *World) DeltaTime() float64 { return w.dt }

// Player returns the tracked target.
func (w *World) Player() *Player { return w.player }

// Spawn creates an agent of arch at pos and returns its ID.
//
// Postcondition: on error nothing is registered; configuration problems wrap
// behavior.ErrConfiguration.
func (w *World) Spawn(arch *behavior.Archetype, pos geom.Vec3) (string, error) {
	if arch == nil {
		return "", fmt.Errorf("%w: nil archetype", behavior.ErrConfiguration)
	}
	id := uuid.New().String()
	body := NewBody(pos, DefaultBodyMass)
	nav := NewFlatNavigator(body, w.center, w.radius)
	sink := NewAnimationSink(w.clip)

	agent, err := behavior.NewAgent(id, arch.Tuning, behavior.Collaborators{
		Navigator: nav,
		Animation: sink,
		Clock:     w,
		Mover:     body,
		Target:    w.player,
		Hooks:     w.hooks,
		Random:    w.src,
	}, w.logger)
	if err != nil {
		return "", err
	}
	if b, ok := w.hooks.(HookBinder); ok {
		b.Bind(id, arch.ID)
	}

	w.mu.Lock()
	w.agents[id] = &entry{agent: agent, body: body, nav: nav, sink: sink, archetype: arch.ID, maxHealth: arch.Tuning.Combat.MaxHealth}
	w.order = append(w.order, id)
	w.publish()
	w.mu.Unlock()

	w.logger.Info("agent spawned",
		zap.String("agent", id),
		zap.String("archetype", arch.ID),
		zap.Float64("x", pos.X),
		zap.Float64("z", pos.Z),
	)
	return id, nil
}

// Populate spawns n agents of arch evenly spaced on a circle of half the
// arena radius. Agents that fail configuration are logged and skipped.
//
// Postcondition: returns the IDs spawned and the first non-configuration error.
func (w *World) Populate(arch *behavior.Archetype, n int) ([]string, error) {
	var ids []string
	ring := w.radius / 2
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(max(n, 1))
		pos := geom.Vec3{X: ring * math.Sin(a), Z: ring * math.Cos(a)}
		id, err := w.Spawn(arch, pos)
		if errors.Is(err, behavior.ErrConfiguration) {
			w.logger.Error("skipping agent", zap.Int("index", i), zap.Error(err))
			continue
		}
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Despawn removes the agent with id.
func (w *World) Despawn(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.agents[id]; !ok {
		return fmt.Errorf("agent %q not found", id)
	}
	delete(w.agents, id)
	for i, o := range w.order {
		if o == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	w.publish()
	if b, ok := w.hooks.(HookBinder); ok {
		b.Unbind(id)
	}
	w.logger.Info("agent despawned", zap.String("agent", id))
	return nil
}

// Step advances the player and every agent by dt seconds and returns the
// punches that landed.
func (w *World) Step(dt float64) []Hit {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.dt = dt
	targets := make([]Hittable, 0, len(w.order))
	for _, id := range w.order {
		targets = append(targets, w.agents[id])
	}
	hits := w.player.Step(dt, targets)

	for _, id := range w.order {
		e := w.agents[id]
		e.agent.Tick()
		e.body.Step(dt)
		e.sink.Advance(dt)
	}
	w.elapsed += dt
	w.ticks++
	w.publish()
	return hits
}

// Lookup returns agent id as of the end of the last step, spawn or despawn.
// It never blocks, so hooks running inside Step may call it.
func (w *World) Lookup(id string) (AgentView, bool) {
	m := w.published.Load()
	if m == nil {
		return AgentView{}, false
	}
	v, ok := (*m)[id]
	return v, ok
}

// publish requires w.mu.
func (w *World) publish() {
	m := make(map[string]AgentView, len(w.agents))
	for id, e := range w.agents {
		m[id] = e.view()
	}
	w.published.Store(&m)
}

// Elapsed returns the simulated seconds and the number of steps taken.
func (w *World) Elapsed() (float64, uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.elapsed, w.ticks
}

// Views returns every agent in spawn order.
func (w *World) Views() []AgentView {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]AgentView, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.agents[id].view())
	}
	return out
}

// View returns the agent with id.
func (w *World) View(id string) (AgentView, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.agents[id]
	if !ok {
		return AgentView{}, false
	}
	return e.view(), true
}

// Animation returns the animation sink of agent id, for inspection.
func (w *World) Animation(id string) (*AnimationSink, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.agents[id]
	if !ok {
		return nil, false
	}
	return e.sink, true
}

func (e *entry) view() AgentView {
	return AgentView{
		Snapshot:    e.agent.Snapshot(),
		Archetype:   e.archetype,
		MaxHealth:   e.maxHealth,
		KnockedDown: e.agent.IsKnockedDown(),
		Grounded:    e.body.Grounded(),
	}
}
