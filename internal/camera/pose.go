// Package camera computes the render camera: eased transitions between
// viewpoints and the ground anchor that rides the spinning planet.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/litescript/ls-orrery/internal/astro"
)

// Pose is a camera placement.
type Pose struct {
	Position astro.Vec3 `json:"position"`
	Target   astro.Vec3 `json:"target"`
	Up       astro.Vec3 `json:"up"`
}

// Lerp interpolates linearly toward to. Position and target are interpolated
// componentwise; up is interpolated and renormalized, falling back to to.Up
// when the two ups cancel.
func (p Pose) Lerp(to Pose, t float64) Pose {
	return Pose{
		Position: lerpVec(p.Position, to.Position, t),
		Target:   lerpVec(p.Target, to.Target, t),
		Up:       astro.NormalizeOr(lerpVec(p.Up, to.Up, t), to.Up),
	}
}

func lerpVec(a, b astro.Vec3, t float64) astro.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Forward returns the unit view direction, or -Z if position and target coincide.
func (p Pose) Forward() astro.Vec3 {
	return astro.NormalizeOr(p.Target.Sub(p.Position), astro.Vec3{0, 0, -1})
}

// ViewMatrix returns the right-handed look-at matrix for the pose.
func (p Pose) ViewMatrix() mgl64.Mat4 {
	return mgl64.LookAtV(p.Position, p.Target, p.Up)
}

// Distance returns how far p's position is from q's.
func (p Pose) Distance(q Pose) float64 {
	return p.Position.Sub(q.Position).Len()
}

// Altitude is the height of the pose's position above a sphere of radius
// centred at centre.
func Altitude(p Pose, centre astro.Vec3, radius float64) float64 {
	return p.Position.Sub(centre).Len() - radius
}

// EaseOutCubic maps linear progress t to 1-(1-t)³. t is clamped to [0, 1].
func EaseOutCubic(t float64) float64 {
	if math.IsNaN(t) || t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	u := 1 - t
	return 1 - u*u*u
}
