package astro

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Planet bundles the configuration needed to place and orient the planet.
type Planet struct {
	Orbit  OrbitParameters
	Radius float64

	// ReferenceLonDeg is the longitude that faces the star at 12:00.
	ReferenceLonDeg float64

	// Star is the fixed star position.
	Star Vec3

	// DefaultAxis replaces directions that cannot be normalized. Zero means +Y.
	DefaultAxis Vec3
}

// PlanetState is the per-tick derived state of the planet.
type PlanetState struct {
	Position     Vec3    `json:"position"`
	SpinAngle    float64 `json:"spin_angle"`
	SpinAxis     Vec3    `json:"spin_axis"`
	StarDistance float64 `json:"star_distance"`
}

func (p Planet) fallback() Vec3 {
	if p.DefaultAxis.Len() < minNorm {
		return AxisY
	}
	return p.DefaultAxis.Normalize()
}

// TiltRadians returns the axial tilt in radians.
func (p Planet) TiltRadians() float64 {
	return DegToRad(p.Orbit.AxialTiltDeg)
}

// TiltRotation is the fixed rotation from the planet's untilted frame to world.
func (p Planet) TiltRotation() mgl64.Quat {
	return mgl64.QuatRotate(p.TiltRadians(), AxisZ)
}

// SpinAxis returns the planet's rotation axis (north) in world space.
func (p Planet) SpinAxis() Vec3 {
	return p.TiltRotation().Rotate(AxisY)
}

// Position returns the planet centre for a day of year.
func (p Planet) Position(day float64) Vec3 {
	return p.Orbit.PlanetPosition(day)
}

// StarAzimuth returns the azimuth, atan2(x, z), of the planet-to-star direction
// measured in the planet's tilted frame, i.e. in the frame the spin acts in.
// With zero tilt this is the azimuth of the world direction.
func (p Planet) StarAzimuth(planetPos Vec3) float64 {
	toStar := NormalizeOr(p.Star.Sub(planetPos), p.fallback())
	body := p.TiltRotation().Conjugate().Rotate(toStar)
	if math.Hypot(body.X(), body.Z()) < minNorm {
		// star on the spin axis: every meridian faces it equally
		return 0
	}
	return math.Atan2(body.X(), body.Z())
}

// SpinAngleAt returns the rotation about the spin axis for a planet at planetPos.
//
// Calibrated against solar time: at hour 12 the meridian of ReferenceLonDeg
// contains the star direction for every orbital position.
func (p Planet) SpinAngleAt(planetPos Vec3, hour float64) float64 {
	timeOffset := (hour - 12) / 24 * 2 * math.Pi
	return p.StarAzimuth(planetPos) - DegToRad(p.ReferenceLonDeg) + timeOffset
}

// SpinAngle returns the spin angle in radians for a day of year and hour of day.
func (p Planet) SpinAngle(day, hour float64) float64 {
	return p.SpinAngleAt(p.Position(day), hour)
}

// State derives the planet state for a day of year and hour of day.
func (p Planet) State(day, hour float64) PlanetState {
	pos := p.Position(day)
	return PlanetState{
		Position:     pos,
		SpinAngle:    p.SpinAngleAt(pos, hour),
		SpinAxis:     p.SpinAxis(),
		StarDistance: p.Star.Sub(pos).Len(),
	}
}

// ObserverFrame places geo on the planet described by state.
func (p Planet) ObserverFrame(geo GeoCoordinate, state PlanetState) ObserverFrame {
	return ObserverFrameAt(geo, p.Radius, state.Position, state.SpinAngle, p.TiltRadians(), p.fallback())
}
