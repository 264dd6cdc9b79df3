package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/npcbrain/internal/behavior"
	"github.com/cory-johannsen/npcbrain/internal/sim"
)

func TestReporter_LogsEveryN(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	views := func() []sim.AgentView {
		return []sim.AgentView{
			{Snapshot: behavior.Snapshot{ID: "a", State: behavior.StateChase, Health: 80}, Archetype: "thug"},
			{Snapshot: behavior.Snapshot{ID: "b"}, Archetype: "thug"},
		}
	}
	r := NewReporter(zap.New(core), views, 3)

	r.Tick(0.1)
	r.Tick(0.1)
	assert.Zero(t, logs.Len())
	r.Tick(0.1)
	assert.Equal(t, 2, logs.Len())

	entry := logs.All()[0]
	assert.Equal(t, "report", entry.LoggerName)
	fields := entry.ContextMap()
	assert.Equal(t, "a", fields["agent"])
	assert.Equal(t, "chase", fields["state"])
	assert.Equal(t, int64(80), fields["health"])
	assert.Equal(t, uint64(3), fields["tick"])
}

func TestReporter_LogsTimersAndBlends(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := NewReporter(zap.New(core), func() []sim.AgentView {
		return []sim.AgentView{{Snapshot: behavior.Snapshot{
			ID:             "a",
			State:          behavior.StateReactingLostSight,
			StateElapsed:   0.5,
			StateRemaining: 1.75,
			Forward:        0.25,
			Turn:           -0.5,
		}}}
	}, 1)
	r.Report()

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, 0.5, fields["state_elapsed"])
	assert.Equal(t, 1.75, fields["state_remaining"])
	assert.Equal(t, false, fields["waiting"])
	assert.Equal(t, 0.25, fields["forward"])
	assert.Equal(t, -0.5, fields["turn"])
}

func TestReporter_ZeroNeverReports(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := NewReporter(zap.New(core), func() []sim.AgentView {
		return []sim.AgentView{{Snapshot: behavior.Snapshot{ID: "a"}}}
	}, 0)
	for i := 0; i < 10; i++ {
		r.Tick(0.1)
	}
	assert.Zero(t, logs.Len())
}

func TestNewReporter_Panics(t *testing.T) {
	assert.Panics(t, func() { NewReporter(nil, func() []sim.AgentView { return nil }, 1) })
	assert.Panics(t, func() { NewReporter(zap.NewNop(), nil, 1) })
}
