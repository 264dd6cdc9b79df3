package sim

import (
	"sync"

	"github.com/cory-johannsen/npcbrain/internal/behavior"
)

// DefaultGetUpClip is the length in seconds of the get-up animation at
// normal playback speed.
const DefaultGetUpClip = 1.2

// AnimationSink records every parameter it receives and plays a single
// get-up state so the controller can wait on its normalized time.
// It satisfies behavior.AnimationSink and behavior.SpeedControl.
// It is safe for concurrent use.
type AnimationSink struct {
	mu       sync.Mutex
	blends   map[behavior.Signal]float64
	bools    map[behavior.Signal]bool
	triggers map[behavior.Signal]int
	state    behavior.StateName
	elapsed  float64
	clip     float64
	speed    float64
}

// NewAnimationSink returns a sink whose get-up state lasts clip seconds.
// A non-positive clip uses DefaultGetUpClip.
func NewAnimationSink(clip float64) *AnimationSink {
	if clip <= 0 {
		clip = DefaultGetUpClip
	}
	return &AnimationSink{
		blends:   make(map[behavior.Signal]float64),
		bools:    make(map[behavior.Signal]bool),
		triggers: make(map[behavior.Signal]int),
		clip:     clip,
		speed:    1,
	}
}

func (s *AnimationSink) SetBlend(sig behavior.Signal, value, _ float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blends[sig] = value
}

// SetTrigger records sig. The get-up trigger starts the get-up state.
func (s *AnimationSink) SetTrigger(sig behavior.Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triggers[sig]++
	if sig == behavior.SignalGetUpTrigger {
		s.state = behavior.AnimStateGetUp
		s.elapsed = 0
	}
}

// SetBool records sig. Clearing IsKnockedDown leaves the get-up state.
func (s *AnimationSink) SetBool(sig behavior.Signal, value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bools[sig] = value
	if sig == behavior.SignalIsKnockedDown && !value {
		s.state = ""
		s.elapsed = 0
	}
}

func (s *AnimationSink) NormalizedStateTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == "" {
		return 0
	}
	return min(s.elapsed/s.clip, 1)
}

func (s *AnimationSink) IsInState(name behavior.StateName) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != "" && s.state == name
}

func (s *AnimationSink) SetSpeed(multiplier float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speed = multiplier
}

// Advance plays the current state for dt seconds at the current speed.
func (s *AnimationSink) Advance(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != "" && dt > 0 {
		s.elapsed += dt * s.speed
	}
}

// Blend returns the last value set for sig.
func (s *AnimationSink) Blend(sig behavior.Signal) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blends[sig]
}

// Bool returns the last value set for sig.
func (s *AnimationSink) Bool(sig behavior.Signal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bools[sig]
}

// Fired returns how many times sig has been triggered.
func (s *AnimationSink) Fired(sig behavior.Signal) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.triggers[sig]
}

// Speed returns the playback multiplier.
func (s *AnimationSink) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}
