package behavior

// Signal identifies one animation parameter driven by the controller.
type Signal uint8

const (
	SignalForward Signal = iota
	SignalTurn
	SignalGrounded
	SignalCrouch
	SignalHitTrigger
	SignalHitDirectionX
	SignalHitDirectionZ
	SignalHitIntensity
	SignalKnockdownTrigger
	SignalKnockdownIndex
	SignalGetUpTrigger
	SignalIsKnockedDown
	SignalReactionTrigger
	SignalReactionIndex
)

var signalNames = [...]string{
	SignalForward:          "Forward",
	SignalTurn:             "Turn",
	SignalGrounded:         "Grounded",
	SignalCrouch:           "Crouch",
	SignalHitTrigger:       "Hit",
	SignalHitDirectionX:    "HitDirectionX",
	SignalHitDirectionZ:    "HitDirectionZ",
	SignalHitIntensity:     "HitIntensity",
	SignalKnockdownTrigger: "KnockDown",
	SignalKnockdownIndex:   "KnockdownIndex",
	SignalGetUpTrigger:     "GetUp",
	SignalIsKnockedDown:    "IsKnockedDown",
	SignalReactionTrigger:  "LostSight",
	SignalReactionIndex:    "LostSightIndex",
}

// String returns the animation parameter identifier for s.
func (s Signal) String() string {
	if int(s) < len(signalNames) {
		return signalNames[s]
	}
	return "Unknown"
}

// Signals returns every defined signal in declaration order.
func Signals() []Signal {
	out := make([]Signal, len(signalNames))
	for i := range signalNames {
		out[i] = Signal(i)
	}
	return out
}

// StateName identifies an animation state the sink can be queried about.
type StateName string

// AnimStateGetUp is the animation state played while recovering from a knockdown.
const AnimStateGetUp StateName = "GetUp"
