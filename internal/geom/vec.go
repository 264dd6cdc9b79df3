// Package geom provides the small amount of 3D vector math the behavior
// controller needs on a Y-up world whose ground plane is XZ.
//
// Facing is expressed as a yaw angle in degrees. Yaw 0 looks down +Z and
// positive yaw turns clockwise when viewed from above (towards +X).
package geom

import "math"

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-6

// Vec3 is a 3-component vector.
type Vec3 struct {
	X, Y, Z float64
}

// Up is the world up axis.
var Up = Vec3{Y: 1}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Len returns the Euclidean length of v.
func (v Vec3) Len() float64 { return math.Sqrt(v.Dot(v)) }

// Flat returns v projected onto the ground plane.
func (v Vec3) Flat() Vec3 { return Vec3{X: v.X, Z: v.Z} }

// IsZero reports whether v is shorter than Epsilon.
func (v Vec3) IsZero() bool { return v.Len() < Epsilon }

// Normalize returns v scaled to unit length, or the zero vector when v is
// shorter than Epsilon.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < Epsilon {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Distance returns the straight-line distance between a and b.
func Distance(a, b Vec3) float64 { return b.Sub(a).Len() }

// FlatDistance returns the distance between a and b ignoring height.
func FlatDistance(a, b Vec3) float64 { return b.Sub(a).Flat().Len() }

// Forward returns the unit ground-plane vector for yaw degrees.
func Forward(yaw float64) Vec3 {
	r := yaw * math.Pi / 180
	return Vec3{X: math.Sin(r), Z: math.Cos(r)}
}

// YawOf returns the yaw in degrees of dir's ground-plane component.
// The zero vector yields 0.
func YawOf(dir Vec3) float64 {
	if dir.Flat().IsZero() {
		return 0
	}
	return math.Atan2(dir.X, dir.Z) * 180 / math.Pi
}

// WrapAngle maps deg into [-180, 180].
func WrapAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	switch {
	case deg > 180:
		deg -= 360
	case deg < -180:
		deg += 360
	}
	return deg
}

// SignedAngle returns the angle in degrees, in [-180, 180], that a body with
// the given yaw must turn to face dir. Positive values turn right.
// A zero dir yields 0.
func SignedAngle(yaw float64, dir Vec3) float64 {
	if dir.Flat().IsZero() {
		return 0
	}
	return WrapAngle(YawOf(dir) - yaw)
}

// RotateTowards turns yaw towards target by at most maxDelta degrees and
// returns the new yaw in [-180, 180].
func RotateTowards(yaw, target, maxDelta float64) float64 {
	delta := WrapAngle(target - yaw)
	if math.Abs(delta) <= maxDelta {
		return WrapAngle(target)
	}
	if delta < 0 {
		maxDelta = -maxDelta
	}
	return WrapAngle(yaw + maxDelta)
}

// ToLocal expresses a world-space direction in the frame of a body with the
// given yaw: +Z is the body's forward, +X its right.
func ToLocal(yaw float64, v Vec3) Vec3 {
	r := yaw * math.Pi / 180
	s, c := math.Sin(r), math.Cos(r)
	return Vec3{
		X: v.X*c - v.Z*s,
		Y: v.Y,
		Z: v.X*s + v.Z*c,
	}
}

// PointToLocal expresses a world-space point relative to a body at origin with
// the given yaw.
func PointToLocal(origin Vec3, yaw float64, p Vec3) Vec3 {
	return ToLocal(yaw, p.Sub(origin))
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// Lerp linearly interpolates from a to b by t clamped to [0, 1].
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*Clamp(t, 0, 1)
}

// InverseLerp returns where x lies between a and b, clamped to [0, 1].
// Equal bounds yield 1 when x >= a and 0 otherwise.
func InverseLerp(a, b, x float64) float64 {
	if a == b {
		if x >= a {
			return 1
		}
		return 0
	}
	return Clamp((x-a)/(b-a), 0, 1)
}
