package behavior_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/npcbrain/internal/behavior"
	"github.com/cory-johannsen/npcbrain/internal/geom"
)

func TestCombat_LightHitFromTheRight(t *testing.T) {
	c := behavior.NewCombat(behavior.DefaultTuning().Combat)
	res := c.TakeDamage(10, geom.Vec3{X: 2}, true, behavior.Pose{})
	require.Equal(t, behavior.DamageHit, res.Outcome)
	assert.Equal(t, 90, c.Status().Health)
	assert.InDelta(t, 1, res.Direction.X, 1e-9)
	assert.InDelta(t, 0, res.Direction.Z, 1e-9)
	assert.Equal(t, 0.0, res.Intensity)
	assert.True(t, c.Status().Reacting)
}

func TestCombat_HeavyHitIntensity(t *testing.T) {
	c := behavior.NewCombat(behavior.DefaultTuning().Combat)
	res := c.TakeDamage(10, geom.Vec3{Z: 1}, false, behavior.Pose{})
	assert.Equal(t, 1.0, res.Intensity)
}

func TestCombat_HitWhileReactingIsIgnored(t *testing.T) {
	c := behavior.NewCombat(behavior.DefaultTuning().Combat)
	c.TakeDamage(10, geom.Vec3{Z: 1}, true, behavior.Pose{})
	before := c.Status()

	res := c.TakeDamage(30, geom.Vec3{Z: 1}, false, behavior.Pose{})
	assert.Equal(t, behavior.DamageIgnored, res.Outcome)
	assert.Equal(t, before, c.Status())
}

func TestCombat_InterruptAllowed(t *testing.T) {
	tun := behavior.DefaultTuning().Combat
	tun.AllowHitInterrupt = true
	c := behavior.NewCombat(tun)
	c.TakeDamage(10, geom.Vec3{Z: 1}, true, behavior.Pose{})
	res := c.TakeDamage(10, geom.Vec3{Z: 1}, true, behavior.Pose{})
	assert.Equal(t, behavior.DamageHit, res.Outcome)
	assert.Equal(t, 80, c.Status().Health)
}

func TestCombat_ReactionTimerEnds(t *testing.T) {
	c := behavior.NewCombat(behavior.DefaultTuning().Combat)
	c.TakeDamage(10, geom.Vec3{Z: 1}, true, behavior.Pose{})
	assert.False(t, c.Tick(0.25))
	assert.True(t, c.Tick(0.25))
	assert.False(t, c.Status().Reacting)
	assert.False(t, c.Tick(0.25), "ending is reported once")
}

func TestCombat_LethalHitKnocksDownAndRestoresHealth(t *testing.T) {
	tun := behavior.DefaultTuning().Combat
	c := behavior.NewCombat(tun)
	res := c.TakeDamage(150, geom.Vec3{Z: 1}, false, behavior.Pose{})
	require.Equal(t, behavior.DamageKnockdown, res.Outcome)

	st := c.Status()
	assert.True(t, st.KnockedDown)
	assert.Equal(t, st.MaxHealth, st.Health)
	// Hit in front pushes backwards and up.
	assert.InDelta(t, -tun.KnockbackForce, res.Impulse.Z, 1e-9)
	assert.InDelta(t, tun.KnockbackLift*tun.KnockbackForce, res.Impulse.Y, 1e-9)
	assert.Equal(t, res.Impulse, st.Knockback)

	assert.Equal(t, behavior.DamageIgnored, c.TakeDamage(10, geom.Vec3{}, true, behavior.Pose{}).Outcome)
	c.Recover()
	assert.False(t, c.IsKnockedDown())
}

func TestCombat_KnockbackAtSamePointPushesBackwards(t *testing.T) {
	tun := behavior.DefaultTuning().Combat
	c := behavior.NewCombat(tun)
	res := c.TakeDamage(500, geom.Vec3{}, true, behavior.Pose{Yaw: 90})
	assert.InDelta(t, -tun.KnockbackForce, res.Impulse.X, 1e-9)
}

func TestProperty_Combat_HealthPositiveUnlessDown(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tun := behavior.DefaultTuning().Combat
		tun.AllowHitInterrupt = rapid.Bool().Draw(rt, "interrupt")
		c := behavior.NewCombat(tun)
		hits := rapid.SliceOfN(rapid.IntRange(0, 80), 1, 20).Draw(rt, "hits")
		for _, h := range hits {
			c.TakeDamage(h, geom.Vec3{Z: 1}, h%2 == 0, behavior.Pose{})
			c.Tick(0.1)
			st := c.Status()
			if st.Health <= 0 {
				rt.Fatalf("health %d with knocked down %v", st.Health, st.KnockedDown)
			}
			if st.KnockedDown && st.Reacting {
				rt.Fatal("knocked down and reacting at the same time")
			}
		}
	})
}
