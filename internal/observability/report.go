package observability

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/npcbrain/internal/sim"
)

// Reporter logs one summary line per agent every N ticks.
type Reporter struct {
	logger *zap.Logger
	views  func() []sim.AgentView
	every  uint64
	ticks  uint64
}

// NewReporter returns a Reporter that reads agents from views.
// An every of zero never reports.
//
// Precondition: logger and views must be non-nil.
func NewReporter(logger *zap.Logger, views func() []sim.AgentView, every uint64) *Reporter {
	if logger == nil || views == nil {
		panic("observability.NewReporter: logger and views must not be nil")
	}
	return &Reporter{logger: logger.Named("report"), views: views, every: every}
}

// Tick counts one simulation step and reports when due. It has the shape of
// a sim.TickLoop callback.
func (r *Reporter) Tick(float64) {
	r.ticks++
	if r.every == 0 || r.ticks%r.every != 0 {
		return
	}
	r.Report()
}

// Report logs every agent now.
func (r *Reporter) Report() {
	for _, v := range r.views() {
		r.logger.Info("agent",
			zap.String("agent", v.ID),
			zap.String("archetype", v.Archetype),
			zap.Stringer("state", v.State),
			zap.Int("health", v.Health),
			zap.Bool("in_sight", v.InSight),
			zap.Float64("distance", v.Distance),
			zap.Float64("x", v.Pose.Position.X),
			zap.Float64("z", v.Pose.Position.Z),
			zap.Float64("yaw", v.Pose.Yaw),
			zap.Float64("speed", v.Velocity.Len()),
			zap.Float64("state_elapsed", v.StateElapsed),
			zap.Float64("state_remaining", v.StateRemaining),
			zap.Bool("waiting", v.Waiting),
			zap.Float64("forward", v.Forward),
			zap.Float64("turn", v.Turn),
			zap.Uint64("tick", r.ticks),
		)
	}
}
