package behavior

import "fmt"

// State is one node of the behavior state machine.
type State uint8

const (
	StatePatrol State = iota
	StateChase
	StateReactingLostSight
	StateReactingHit
	StateKnockedDown
	StateRecovering
)

var stateNames = [...]string{
	StatePatrol:            "patrol",
	StateChase:             "chase",
	StateReactingLostSight: "reacting_lost_sight",
	StateReactingHit:       "reacting_hit",
	StateKnockedDown:       "knocked_down",
	StateRecovering:        "recovering",
}

// String returns the snake_case name of s.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Incapacitated reports whether s is part of the knockdown sequence.
func (s State) Incapacitated() bool {
	return s == StateKnockedDown || s == StateRecovering
}

// transitions lists the allowed target states for every source state.
var transitions = map[State][]State{
	StatePatrol:            {StateChase, StateReactingHit, StateKnockedDown},
	StateChase:             {StateReactingLostSight, StateReactingHit, StateKnockedDown},
	StateReactingLostSight: {StatePatrol, StateReactingHit, StateKnockedDown},
	StateReactingHit:       {StatePatrol, StateChase, StateReactingLostSight, StateReactingHit, StateKnockedDown},
	StateKnockedDown:       {StateRecovering},
	StateRecovering:        {StatePatrol, StateChase},
}

// CanTransition reports whether the table allows from → to.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// StateMachine holds the active state and its countdown timer.
//
// Invariant: exactly one state is active; only Transition changes it.
type StateMachine struct {
	current State
	// resume is the locomotion policy kept alive while reacting to a hit.
	resume State
	timer  float64
	// elapsed is the time spent in the current state.
	elapsed float64
}

// NewStateMachine returns a machine in the Patrol state.
func NewStateMachine() *StateMachine {
	return &StateMachine{current: StatePatrol, resume: StatePatrol}
}

// Current returns the active state.
func (m *StateMachine) Current() State {
	return m.current
}

// Resume returns the state whose locomotion policy applies while reacting to
// a hit. Outside ReactingHit it equals Current.
func (m *StateMachine) Resume() State {
	if m.current == StateReactingHit {
		return m.resume
	}
	return m.current
}

// Transition moves to state to and arms the state timer with duration seconds.
//
// Postcondition: on error the machine is unchanged and the error wraps
// ErrInvalidTransition.
func (m *StateMachine) Transition(to State, duration float64) error {
	if !CanTransition(m.current, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.current, to)
	}
	if to == StateReactingHit && m.current != StateReactingHit {
		m.resume = m.current
	}
	m.current = to
	m.timer = duration
	m.elapsed = 0
	return nil
}

// Advance runs the state timer down by dt seconds.
//
// Postcondition: returns true once the timer has reached zero.
func (m *StateMachine) Advance(dt float64) bool {
	m.elapsed += dt
	m.timer -= dt
	return m.timer <= 0
}

// Remaining returns the seconds left on the state timer.
func (m *StateMachine) Remaining() float64 {
	return m.timer
}

// Elapsed returns the seconds spent in the current state.
func (m *StateMachine) Elapsed() float64 {
	return m.elapsed
}
