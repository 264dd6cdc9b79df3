// Package behavior implements the NPC behavior controller: perception of a
// single target, a patrol/chase/reaction/knockdown state machine, locomotion
// planning, damage handling and animation blend mapping.
//
// The controller is engine independent. Pathfinding, physics and animation
// playback are collaborators behind small interfaces; the controller only
// parameterizes them once per tick. Timed behaviors are countdown fields
// advanced by the tick's delta time, so one goroutine can drive many agents.
package behavior

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/npcbrain/internal/geom"
)

// turnInPlaceEpsilon is the facing error, in degrees, above which a
// stationary agent still counts as turning.
const turnInPlaceEpsilon = 0.5

// Snapshot is a read-only view of an agent after a tick.
type Snapshot struct {
	ID       string
	State    State
	Pose     Pose
	Velocity geom.Vec3
	Health   int
	InSight  bool
	Distance float64
	// StateElapsed and StateRemaining are the seconds spent in State and
	// left on its timer.
	StateElapsed   float64
	StateRemaining float64
	// Waiting is set while a patrolling agent stands between points.
	Waiting bool
	Forward float64
	Turn    float64
}

// Agent is one NPC driven by the behavior controller.
//
// Agent is not safe for concurrent use; Tick and TakeDamage must be called
// from the goroutine that owns the simulation.
type Agent struct {
	id     string
	tuning Tuning
	logger *zap.Logger

	nav    Navigator
	anim   AnimationSink
	clock  Clock
	mover  Mover
	target Target
	hooks  Hooks
	rng    Source

	spawn    geom.Vec3
	pose     Pose
	velocity geom.Vec3

	sm         *StateMachine
	perception *Perception
	patrol     PatrolPlan
	planner    *Planner
	combat     *Combat
	mapper     *Mapper

	last          PerceptionResult
	reactionIndex float64
	pending       []Signal
}

// NewAgent creates an agent at the mover's current position, facing +Z, in
// the Patrol state.
//
// Precondition: logger may be nil, in which case logging is discarded.
// Postcondition: returns an error wrapping ErrConfiguration when id is empty,
// a required collaborator is missing, or tuning is invalid.
func NewAgent(id string, tuning Tuning, c Collaborators, logger *zap.Logger) (*Agent, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: agent id must not be empty", ErrConfiguration)
	}
	var missing []string
	if c.Navigator == nil {
		missing = append(missing, "navigator")
	}
	if c.Animation == nil {
		missing = append(missing, "animation sink")
	}
	if c.Clock == nil {
		missing = append(missing, "clock")
	}
	if c.Mover == nil {
		missing = append(missing, "mover")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: agent %q missing %v", ErrConfiguration, id, missing)
	}
	if err := tuning.Validate(); err != nil {
		return nil, fmt.Errorf("%w: agent %q: %w", ErrConfiguration, id, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	rng := c.Random
	if rng == nil {
		rng = NewTimeSource()
	}

	spawn := c.Mover.Position()
	a := &Agent{
		id:         id,
		tuning:     tuning,
		logger:     logger.With(zap.String("agent", id)),
		nav:        c.Navigator,
		anim:       c.Animation,
		clock:      c.Clock,
		mover:      c.Mover,
		target:     c.Target,
		hooks:      c.Hooks,
		rng:        rng,
		spawn:      spawn,
		pose:       Pose{Position: spawn},
		sm:         NewStateMachine(),
		perception: NewPerception(tuning.Chase.SightRange),
		planner:    NewPlanner(tuning),
		combat:     NewCombat(tuning.Combat),
		mapper:     NewMapper(tuning.Animation),
	}
	a.anim.SetBool(SignalIsKnockedDown, false)
	a.anim.SetBool(SignalCrouch, false)
	return a, nil
}

// ID returns the agent's identifier.
func (a *Agent) ID() string { return a.id }

// State returns the active behavior state.
func (a *Agent) State() State { return a.sm.Current() }

// Pose returns the agent's position and yaw as of the last tick.
func (a *Agent) Pose() Pose { return a.pose }

// SetFacing sets the agent's yaw in degrees.
func (a *Agent) SetFacing(yaw float64) { a.pose.Yaw = geom.WrapAngle(yaw) }

// Spawn returns the point patrols are centered on.
func (a *Agent) Spawn() geom.Vec3 { return a.spawn }

// Velocity returns the locomotion velocity chosen on the last tick.
func (a *Agent) Velocity() geom.Vec3 { return a.velocity }

// CombatStatus returns the current health and reaction status.
func (a *Agent) CombatStatus() CombatStatus { return a.combat.Status() }

// IsKnockedDown reports whether the agent is down or getting up. Other
// systems use it to suppress navigation and input.
func (a *Agent) IsKnockedDown() bool { return a.combat.IsKnockedDown() }

// PatrolPlan returns a copy of the patrol plan.
func (a *Agent) PatrolPlan() PatrolPlan { return a.patrol }

// LastPerception returns the perception computed on the last tick.
func (a *Agent) LastPerception() PerceptionResult { return a.last }

// ReactionIndex returns the normalized lost-sight variant last selected.
func (a *Agent) ReactionIndex() float64 { return a.reactionIndex }

// Snapshot returns a read-only view of the agent.
func (a *Agent) Snapshot() Snapshot {
	forward, turn := a.mapper.Values()
	return Snapshot{
		ID:             a.id,
		State:          a.sm.Current(),
		Pose:           a.pose,
		Velocity:       a.velocity,
		Health:         a.combat.Status().Health,
		InSight:        a.last.InSight,
		Distance:       a.last.Distance,
		StateElapsed:   a.sm.Elapsed(),
		StateRemaining: math.Max(a.sm.Remaining(), 0),
		Waiting:        a.sm.Current() == StatePatrol && a.patrol.Waiting(),
		Forward:        forward,
		Turn:           turn,
	}
}

// TakeDamage applies a hit. It satisfies Damageable.
//
// Hits landing while the agent is knocked down, or while it is reacting and
// interrupts are disallowed, are ignored without consulting hooks.
func (a *Agent) TakeDamage(amount int, hitPosition geom.Vec3, isLightHit bool) {
	status := a.combat.Status()
	if status.KnockedDown || (status.Reacting && !a.tuning.Combat.AllowHitInterrupt) {
		a.logger.Debug("hit ignored", zap.Int("amount", amount), zap.Stringer("state", a.sm.Current()))
		return
	}
	if a.hooks != nil {
		amount = a.hooks.AdjustDamage(a.id, amount, isLightHit)
	}

	pose := Pose{Position: a.mover.Position(), Yaw: a.pose.Yaw}
	res := a.combat.TakeDamage(amount, hitPosition, isLightHit, pose)
	switch res.Outcome {
	case DamageHit:
		a.logger.Debug("hit taken",
			zap.Int("amount", res.Applied),
			zap.Int("health", a.combat.Status().Health),
			zap.Bool("light", isLightHit),
		)
		a.enterHitReaction(res)
	case DamageKnockdown:
		a.logger.Info("knocked down",
			zap.Int("amount", res.Applied),
			zap.Float64("impulse_x", res.Impulse.X),
			zap.Float64("impulse_y", res.Impulse.Y),
			zap.Float64("impulse_z", res.Impulse.Z),
		)
		a.enterKnockdown(res)
	default:
		a.logger.Debug("hit ignored", zap.Int("amount", amount))
	}
}

// Tick advances the agent by one clock step and returns the animation output.
func (a *Agent) Tick() AnimationIntent {
	dt := math.Max(a.clock.DeltaTime(), 0)
	a.pose.Position = a.mover.Position()

	perc := a.perception.Update(a.pose.Position, a.pose.Yaw, a.target)
	if perc.Acquired && !a.sm.Current().Incapacitated() && !perc.Direction.IsZero() {
		a.pose.Yaw = geom.YawOf(perc.Direction)
		perc.FacingError = 0
	}
	a.last = perc

	reactionEnded := a.combat.Tick(dt)
	a.step(perc, dt, reactionEnded)

	if a.combat.IsKnockedDown() || a.sm.Current() == StateReactingLostSight {
		a.halt()
		return a.flush(0, 0)
	}

	plan := a.plan(dt)
	a.move(plan, dt)

	// Blends follow the facing error measured before this tick's rotation.
	forward, turn := a.mapper.Update(MapInput{
		Velocity:       a.velocity,
		Yaw:            a.pose.Yaw,
		ReferenceSpeed: plan.ReferenceSpeed,
		FacingError:    plan.FacingError,
		Close:          plan.Close,
		TurningInPlace: plan.Facing == FacingTarget && plan.Speed == 0 && math.Abs(plan.FacingError) > turnInPlaceEpsilon,
	}, dt)
	a.anim.SetBlend(SignalForward, forward, 0)
	a.anim.SetBlend(SignalTurn, turn, 0)
	return a.flush(forward, turn)
}

// step performs the state machine transition check for this tick.
func (a *Agent) step(perc PerceptionResult, dt float64, reactionEnded bool) {
	switch a.sm.Current() {
	case StateKnockedDown:
		if a.sm.Advance(dt) {
			a.enterRecovering()
		}
	case StateRecovering:
		expired := a.sm.Advance(dt)
		switch {
		case a.anim.IsInState(AnimStateGetUp) && a.anim.NormalizedStateTime() >= 1:
			a.finishRecovery(perc)
		case expired:
			a.logger.Warn("get-up animation did not finish, forcing recovery",
				zap.Float64("timeout", a.tuning.Combat.RecoveryTimeout))
			a.finishRecovery(perc)
		}
	case StateReactingLostSight:
		if a.sm.Advance(dt) {
			a.enterPatrol()
		}
	case StateReactingHit:
		a.sm.Advance(dt)
		if !reactionEnded {
			return
		}
		switch {
		case perc.InSight:
			a.transition(StateChase, 0)
		case a.sm.Resume() == StateChase:
			a.enterLostSight()
		default:
			a.enterPatrol()
		}
	case StatePatrol:
		a.sm.Advance(dt)
		if perc.InSight {
			a.transition(StateChase, 0)
		}
	case StateChase:
		a.sm.Advance(dt)
		if !perc.InSight {
			a.enterLostSight()
		}
	}
}

// plan produces this tick's locomotion intent for the active policy.
func (a *Agent) plan(dt float64) Plan {
	policy := a.sm.Resume()
	var goal Goal
	switch policy {
	case StatePatrol:
		if err := a.patrol.Update(a.pose.Position, a.spawn, dt, a.tuning.Patrol, a.nav, a.rng); err != nil {
			a.logger.Debug("patrol point unavailable", zap.Error(err))
		}
		if a.patrol.HasPoint {
			goal = Goal{Point: a.patrol.Point, Set: true}
		}
	case StateChase:
		if a.target != nil {
			goal = Goal{Point: a.target.Position(), Set: true}
		}
	}
	return a.planner.Plan(policy, a.pose, goal)
}

// move applies plan to the navigator and mover.
func (a *Agent) move(plan Plan, dt float64) {
	if plan.HasDestination {
		a.nav.SetDestination(plan.Destination)
	}

	var velocity geom.Vec3
	if plan.Speed > 0 {
		velocity = a.nav.DesiredVelocity().Flat().Normalize().Scale(plan.Speed)
	}

	targetYaw := a.pose.Yaw
	switch plan.Facing {
	case FacingTarget:
		targetYaw = a.pose.Yaw + plan.FacingError
	case FacingVelocity:
		if !velocity.IsZero() {
			targetYaw = geom.YawOf(velocity)
		}
	}
	a.pose.Yaw = geom.RotateTowards(a.pose.Yaw, targetYaw, plan.TurnRate*dt)

	a.velocity = velocity
	a.mover.SetVelocity(velocity)
}

// halt stops locomotion and zeroes the blends.
func (a *Agent) halt() {
	a.velocity = geom.Vec3{}
	a.mover.SetVelocity(geom.Vec3{})
	a.mapper.Reset()
	a.anim.SetBlend(SignalForward, 0, 0)
	a.anim.SetBlend(SignalTurn, 0, 0)
}

func (a *Agent) transition(to State, duration float64) bool {
	from := a.sm.Current()
	if err := a.sm.Transition(to, duration); err != nil {
		a.logger.Warn("ignoring transition", zap.Error(err))
		return false
	}
	a.logger.Debug("state changed",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
	)
	return true
}

func (a *Agent) enterPatrol() {
	keep := a.sm.Current() == StateReactingHit && a.sm.Resume() == StatePatrol
	if a.transition(StatePatrol, 0) && !keep {
		a.patrol.Invalidate()
	}
}

func (a *Agent) enterLostSight() {
	r := a.tuning.Reaction
	if !a.transition(StateReactingLostSight, r.Duration+r.TransitionBuffer) {
		return
	}
	a.halt()

	idx := -1
	if a.hooks != nil {
		if i, ok := a.hooks.SelectReaction(a.id, r.Count); ok && i >= 0 && i < r.Count {
			idx = i
		}
	}
	if idx < 0 {
		idx = a.rng.Intn(r.Count)
	}
	a.reactionIndex = 0
	if r.Count > 1 {
		a.reactionIndex = float64(idx) / float64(r.Count-1)
	}
	a.anim.SetBlend(SignalReactionIndex, a.reactionIndex, 0)
	a.fire(SignalReactionTrigger)
}

func (a *Agent) enterHitReaction(res DamageResult) {
	if !a.transition(StateReactingHit, a.tuning.Combat.HitRecoveryTime) {
		return
	}
	a.anim.SetBlend(SignalHitDirectionX, res.Direction.X, 0)
	a.anim.SetBlend(SignalHitDirectionZ, res.Direction.Z, 0)
	a.anim.SetBlend(SignalHitIntensity, res.Intensity, 0)
	a.fire(SignalHitTrigger)
}

func (a *Agent) enterKnockdown(res DamageResult) {
	a.transition(StateKnockedDown, a.tuning.Combat.KnockdownDuration)
	a.anim.SetBool(SignalIsKnockedDown, true)
	a.fire(SignalKnockdownTrigger)
	a.anim.SetBlend(SignalKnockdownIndex, float64(a.rng.Intn(2)), 0)
	a.mover.ApplyImpulse(res.Impulse)
	a.halt()
	a.setNavigation(false)
}

func (a *Agent) enterRecovering() {
	if !a.transition(StateRecovering, a.tuning.Combat.RecoveryTimeout) {
		return
	}
	a.fire(SignalGetUpTrigger)
	if sc, ok := a.anim.(SpeedControl); ok {
		sc.SetSpeed(a.tuning.Combat.RecoverySpeed)
	}
}

func (a *Agent) finishRecovery(perc PerceptionResult) {
	next := StatePatrol
	if perc.InSight {
		next = StateChase
	}
	if next == StatePatrol {
		a.enterPatrol()
	} else {
		a.transition(next, 0)
	}
	a.combat.Recover()
	if sc, ok := a.anim.(SpeedControl); ok {
		sc.SetSpeed(1)
	}
	a.anim.SetBool(SignalIsKnockedDown, false)
	a.setNavigation(true)
}

func (a *Agent) setNavigation(enabled bool) {
	if t, ok := a.nav.(NavigationToggle); ok {
		t.SetNavigationEnabled(enabled)
	}
}

func (a *Agent) fire(sig Signal) {
	a.anim.SetTrigger(sig)
	a.pending = append(a.pending, sig)
}

// flush builds the tick's intent and clears the pending triggers.
func (a *Agent) flush(forward, turn float64) AnimationIntent {
	grounded := true
	if g, ok := a.mover.(GroundProbe); ok {
		grounded = g.Grounded()
	}
	a.anim.SetBool(SignalGrounded, grounded)
	intent := AnimationIntent{
		Forward:  forward,
		Turn:     turn,
		Grounded: grounded,
		Triggers: a.pending,
	}
	a.pending = nil
	return intent
}
