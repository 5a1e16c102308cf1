// Package astro provides the kinematics of the scene: the planet's orbit and spin,
// the surface frame of a ground observer, and sky geometry seen from that observer.
//
// World frame conventions:
//   - The star sits at the origin (configurable, see Planet.Star).
//   - The orbital plane is XZ; +Y is the orbital-plane normal.
//   - The planet spins about its local +Y axis, which is tilted about world +Z by the
//     axial tilt.
//
// Every function in this package is a pure function of its inputs.
package astro

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a world-space vector.
type Vec3 = mgl64.Vec3

// Unit axes.
var (
	AxisX = Vec3{1, 0, 0}
	AxisY = Vec3{0, 1, 0}
	AxisZ = Vec3{0, 0, 1}
)

// minNorm is the length below which a vector is treated as degenerate.
const minNorm = 1e-12

// NormalizeOr returns v scaled to unit length, or fallback when v is too short
// (or not finite) to carry a direction.
func NormalizeOr(v, fallback Vec3) Vec3 {
	n := v.Len()
	if n < minNorm || math.IsNaN(n) || math.IsInf(n, 0) {
		return fallback
	}
	return v.Mul(1 / n)
}

// RotateAbout rotates v by angle radians (right-handed) about axis.
// A degenerate axis falls back to +Y.
func RotateAbout(v, axis Vec3, angle float64) Vec3 {
	return mgl64.QuatRotate(angle, NormalizeOr(axis, AxisY)).Rotate(v)
}

// AngleBetween returns the unsigned angle between a and b in radians.
// Uses atan2 so it stays accurate for nearly parallel vectors.
func AngleBetween(a, b Vec3) float64 {
	return math.Atan2(a.Cross(b).Len(), a.Dot(b))
}

// RejectFrom returns the component of v perpendicular to the unit vector axis.
func RejectFrom(v, axis Vec3) Vec3 {
	return v.Sub(axis.Mul(v.Dot(axis)))
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// WrapAngle normalizes an angle in radians to (-π, π].
func WrapAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// Wrap normalizes x to [0, period). Non-finite input and non-positive periods yield 0.
func Wrap(x, period float64) float64 {
	if period <= 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	r := math.Mod(x, period)
	if r < 0 {
		r += period
	}
	// r+period can round up to period for tiny negative r
	if r >= period {
		r = 0
	}
	return r
}
