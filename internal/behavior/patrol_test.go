package behavior_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/npcbrain/internal/behavior"
	"github.com/cory-johannsen/npcbrain/internal/geom"
)

func TestPatrolPlan_SamplesWithinRadius(t *testing.T) {
	tun := behavior.DefaultTuning().Patrol
	nav := newFakeNav(&fakeMover{})
	var p behavior.PatrolPlan
	spawn := geom.Vec3{X: 3, Z: -2}

	require.NoError(t, p.Update(spawn, spawn, 0.1, tun, nav, behavior.NewSeededSource(1)))
	require.True(t, p.HasPoint)
	assert.LessOrEqual(t, geom.FlatDistance(spawn, p.Point), tun.Radius)
}

func TestPatrolPlan_NavigationFailureRetries(t *testing.T) {
	tun := behavior.DefaultTuning().Patrol
	nav := newFakeNav(&fakeMover{})
	nav.failSamples = 1
	var p behavior.PatrolPlan
	src := behavior.NewSeededSource(1)

	err := p.Update(geom.Vec3{}, geom.Vec3{}, 0.1, tun, nav, src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, behavior.ErrNavigationFailure))
	assert.False(t, p.HasPoint)

	require.NoError(t, p.Update(geom.Vec3{}, geom.Vec3{}, 0.1, tun, nav, src))
	assert.True(t, p.HasPoint)
	assert.Equal(t, 2, nav.samples)
}

func TestPatrolPlan_ArrivalStartsWait(t *testing.T) {
	tun := behavior.DefaultTuning().Patrol
	nav := newFakeNav(&fakeMover{})
	p := behavior.PatrolPlan{Point: geom.Vec3{Z: 0.5}, HasPoint: true}

	require.NoError(t, p.Update(geom.Vec3{}, geom.Vec3{}, 0.1, tun, nav, behavior.NewSeededSource(3)))
	assert.True(t, p.Waiting())
	assert.GreaterOrEqual(t, p.Wait, tun.MinWait)
	assert.LessOrEqual(t, p.Wait, tun.MaxWait)
	assert.Equal(t, 0, nav.samples, "no new point while waiting")
}

func TestPatrolPlan_WaitExpiresThenSamples(t *testing.T) {
	tun := behavior.DefaultTuning().Patrol
	nav := newFakeNav(&fakeMover{})
	p := behavior.PatrolPlan{Wait: 1}
	src := behavior.NewSeededSource(3)

	require.NoError(t, p.Update(geom.Vec3{}, geom.Vec3{}, 0.5, tun, nav, src))
	assert.False(t, p.HasPoint)
	require.NoError(t, p.Update(geom.Vec3{}, geom.Vec3{}, 0.5, tun, nav, src))
	assert.True(t, p.HasPoint)
}

func TestProperty_PatrolPlan_UnreachedPointIsStable(t *testing.T) {
	tun := behavior.DefaultTuning().Patrol
	rapid.Check(t, func(rt *rapid.T) {
		nav := newFakeNav(&fakeMover{})
		src := behavior.NewSeededSource(rapid.Uint64().Draw(rt, "seed"))
		var p behavior.PatrolPlan
		if err := p.Update(geom.Vec3{}, geom.Vec3{}, 0.1, tun, nav, src); err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		// Stand somewhere guaranteed to be away from the point.
		away := p.Point.Add(geom.Vec3{X: tun.ArrivalThreshold * 3})
		first := p.Point
		n := rapid.IntRange(1, 50).Draw(rt, "ticks")
		for i := 0; i < n; i++ {
			if err := p.Update(away, geom.Vec3{}, 0.1, tun, nav, src); err != nil {
				rt.Fatalf("unexpected error: %v", err)
			}
		}
		if p.Point != first || !p.HasPoint {
			rt.Fatalf("patrol point changed from %v to %v", first, p.Point)
		}
		if nav.samples != 1 {
			rt.Fatalf("expected a single sample, got %d", nav.samples)
		}
	})
}

func routeTuning(loop bool) behavior.PatrolTuning {
	tun := behavior.DefaultTuning().Patrol
	tun.MinWait, tun.MaxWait = 0, 0
	tun.Loop = loop
	tun.Waypoints = []behavior.Waypoint{{X: 4}, {X: 4, Z: 4}, {Z: 4}}
	return tun
}

// walkRoute drives p the way an agent does: choose, steer nav, arrive.
func walkRoute(t *testing.T, p *behavior.PatrolPlan, spawn geom.Vec3, tun behavior.PatrolTuning, nav *fakeNav, legs int) []geom.Vec3 {
	t.Helper()
	src := behavior.NewSeededSource(5)
	var visited []geom.Vec3
	for i := 0; i < legs; i++ {
		require.NoError(t, p.Update(nav.mover.pos, spawn, 0.1, tun, nav, src))
		if !p.HasPoint {
			break
		}
		visited = append(visited, p.Point)
		nav.SetDestination(p.Point)
		nav.mover.teleport(p.Point)
		require.NoError(t, p.Update(nav.mover.pos, spawn, 0.1, tun, nav, src))
		require.False(t, p.HasPoint, "leg %d should be reached", i)
	}
	return visited
}

func TestPatrolPlan_WaypointsLoop(t *testing.T) {
	tun := routeTuning(true)
	spawn := geom.Vec3{X: 1, Z: 1}
	nav := newFakeNav(&fakeMover{pos: spawn})
	var p behavior.PatrolPlan

	visited := walkRoute(t, &p, spawn, tun, nav, 5)
	assert.Equal(t, []geom.Vec3{
		{X: 5, Z: 1}, {X: 5, Z: 5}, {X: 1, Z: 5}, {X: 5, Z: 1}, {X: 5, Z: 5},
	}, visited)
	assert.Equal(t, 0, nav.samples, "routes never sample random points")
	assert.False(t, p.Done)
}

func TestPatrolPlan_WaypointsWithoutLoopStopAtLast(t *testing.T) {
	tun := routeTuning(false)
	nav := newFakeNav(&fakeMover{})
	var p behavior.PatrolPlan

	visited := walkRoute(t, &p, geom.Vec3{}, tun, nav, 5)
	assert.Equal(t, []geom.Vec3{{X: 4}, {X: 4, Z: 4}, {Z: 4}}, visited)
	assert.True(t, p.Done)
	assert.True(t, p.Waiting())

	require.NoError(t, p.Update(nav.mover.pos, geom.Vec3{}, 10, tun, nav, behavior.NewSeededSource(1)))
	assert.False(t, p.HasPoint)
}

func TestPatrolPlan_WaypointArrivalUsesRemainingPath(t *testing.T) {
	tun := routeTuning(true)
	nav := newFakeNav(&fakeMover{})
	var p behavior.PatrolPlan
	src := behavior.NewSeededSource(1)

	require.NoError(t, p.Update(geom.Vec3{}, geom.Vec3{}, 0.1, tun, nav, src))
	require.True(t, p.HasPoint)
	// The navigator clamped the destination short of the waypoint.
	nav.SetDestination(geom.Vec3{X: 3})
	nav.mover.teleport(geom.Vec3{X: 2.5})
	require.NoError(t, p.Update(nav.mover.pos, geom.Vec3{}, 0.1, tun, nav, src))
	assert.False(t, p.HasPoint)
	assert.Equal(t, 1, p.Next)
}

func TestPatrolPlan_InvalidateKeepsRoutePosition(t *testing.T) {
	tun := routeTuning(true)
	nav := newFakeNav(&fakeMover{})
	p := behavior.PatrolPlan{Next: 2}

	require.NoError(t, p.Update(geom.Vec3{}, geom.Vec3{}, 0.1, tun, nav, behavior.NewSeededSource(1)))
	require.Equal(t, geom.Vec3{Z: 4}, p.Point)
	p.Invalidate()
	require.NoError(t, p.Update(geom.Vec3{}, geom.Vec3{}, 0.1, tun, nav, behavior.NewSeededSource(1)))
	assert.Equal(t, geom.Vec3{Z: 4}, p.Point)
	assert.Equal(t, 2, p.Next)
}

func TestProperty_PatrolPlan_UnreachedWaypointIsStable(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tun := routeTuning(rapid.Bool().Draw(rt, "loop"))
		nav := newFakeNav(&fakeMover{})
		src := behavior.NewSeededSource(rapid.Uint64().Draw(rt, "seed"))
		p := behavior.PatrolPlan{Next: rapid.IntRange(0, len(tun.Waypoints)-1).Draw(rt, "next")}
		if err := p.Update(geom.Vec3{}, geom.Vec3{}, 0.1, tun, nav, src); err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		first, next := p.Point, p.Next
		nav.SetDestination(first)
		nav.mover.teleport(first.Add(geom.Vec3{X: tun.ArrivalThreshold * 3}))
		n := rapid.IntRange(1, 50).Draw(rt, "ticks")
		for i := 0; i < n; i++ {
			if err := p.Update(nav.mover.pos, geom.Vec3{}, 0.1, tun, nav, src); err != nil {
				rt.Fatalf("unexpected error: %v", err)
			}
		}
		if !p.HasPoint || p.Point != first || p.Next != next {
			rt.Fatalf("waypoint changed from %v (#%d) to %v (#%d)", first, next, p.Point, p.Next)
		}
	})
}
