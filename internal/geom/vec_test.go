package geom_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/npcbrain/internal/geom"
)

func TestSignedAngle_RightIsPositive(t *testing.T) {
	assert.InDelta(t, 90, geom.SignedAngle(0, geom.Vec3{X: 1}), 1e-9)
	assert.InDelta(t, -90, geom.SignedAngle(0, geom.Vec3{X: -1}), 1e-9)
	assert.InDelta(t, 0, geom.SignedAngle(90, geom.Vec3{X: 1}), 1e-9)
}

func TestSignedAngle_ZeroDirection(t *testing.T) {
	assert.Equal(t, 0.0, geom.SignedAngle(45, geom.Vec3{}))
}

func TestToLocal_ForwardAndRight(t *testing.T) {
	local := geom.ToLocal(90, geom.Vec3{X: 1})
	assert.InDelta(t, 0, local.X, 1e-9)
	assert.InDelta(t, 1, local.Z, 1e-9)

	local = geom.ToLocal(90, geom.Vec3{Z: -1})
	assert.InDelta(t, 1, local.X, 1e-9)
	assert.InDelta(t, 0, local.Z, 1e-9)
}

func TestRotateTowards_LimitsStep(t *testing.T) {
	assert.InDelta(t, 10, geom.RotateTowards(0, 90, 10), 1e-9)
	assert.InDelta(t, -10, geom.RotateTowards(0, -90, 10), 1e-9)
	assert.InDelta(t, 90, geom.RotateTowards(85, 90, 10), 1e-9)
	// Shortest way round the wrap.
	assert.InDelta(t, 180, math.Abs(geom.RotateTowards(175, -175, 5)), 1e-9)
}

func TestLerp_Clamped(t *testing.T) {
	assert.Equal(t, 2.0, geom.Lerp(2, 6, -1))
	assert.Equal(t, 6.0, geom.Lerp(2, 6, 3))
	assert.Equal(t, 4.0, geom.Lerp(2, 6, 0.5))
}

func TestInverseLerp_EqualBounds(t *testing.T) {
	assert.Equal(t, 1.0, geom.InverseLerp(3, 3, 3))
	assert.Equal(t, 0.0, geom.InverseLerp(3, 3, 2))
}

func TestProperty_WrapAngle_InRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		deg := rapid.Float64Range(-5000, 5000).Draw(rt, "deg")
		w := geom.WrapAngle(deg)
		if w < -180 || w > 180 {
			rt.Fatalf("WrapAngle(%v) = %v out of range", deg, w)
		}
	})
}

func TestProperty_Normalize_UnitOrZero(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := geom.Vec3{
			X: rapid.Float64Range(-100, 100).Draw(rt, "x"),
			Y: rapid.Float64Range(-100, 100).Draw(rt, "y"),
			Z: rapid.Float64Range(-100, 100).Draw(rt, "z"),
		}
		n := v.Normalize()
		if v.IsZero() {
			if n != (geom.Vec3{}) {
				rt.Fatalf("expected zero vector, got %v", n)
			}
			return
		}
		if math.Abs(n.Len()-1) > 1e-9 {
			rt.Fatalf("expected unit length, got %v", n.Len())
		}
	})
}
