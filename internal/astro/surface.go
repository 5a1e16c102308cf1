package astro

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// LongitudeAzimuthOffsetDeg aligns longitude with the renderer's sphere mapping.
// Combined with the (−sinφ·cosθ, cosφ, sinφ·sinθ) convention in SurfaceLocal it
// puts the meridian of longitude λ at azimuth atan2(x, z) = λ, with east in the
// direction of spin.
const LongitudeAzimuthOffsetDeg = 90.0

// GeoCoordinate identifies a point on the planet surface.
type GeoCoordinate struct {
	LatDeg float64 `json:"lat_deg"` // north positive, [-90, 90]
	LonDeg float64 `json:"lon_deg"` // east positive, [-180, 180)
	Name   string  `json:"name,omitempty"`
}

// Clamp returns the coordinate brought into range: latitude is clamped,
// longitude wrapped. Non-finite values become 0.
func (g GeoCoordinate) Clamp() GeoCoordinate {
	lat := g.LatDeg
	if math.IsNaN(lat) {
		lat = 0
	}
	g.LatDeg = mgl64.Clamp(lat, -90, 90)
	if math.IsNaN(g.LonDeg) || math.IsInf(g.LonDeg, 0) {
		g.LonDeg = 0
	} else {
		g.LonDeg = Wrap(g.LonDeg+180, 360) - 180
	}
	return g
}

// LocalFrame is a surface point and its tangent basis in the planet's own
// (unspun, untilted) frame.
type LocalFrame struct {
	Point Vec3 // offset from planet centre
	Up    Vec3 // surface normal
	South Vec3 // toward decreasing latitude
	East  Vec3 // toward increasing longitude
}

// SurfaceLocal converts geo into the planet-local frame for a sphere of radius.
// South and east are analytic derivatives of the unit position, so they stay
// defined at the poles.
func SurfaceLocal(geo GeoCoordinate, radius float64, fallback Vec3) LocalFrame {
	g := geo.Clamp()
	phi := DegToRad(90 - g.LatDeg)
	theta := DegToRad(g.LonDeg + LongitudeAzimuthOffsetDeg)

	sinPhi, cosPhi := math.Sincos(phi)
	sinTheta, cosTheta := math.Sincos(theta)

	point := Vec3{
		-radius * sinPhi * cosTheta,
		radius * cosPhi,
		radius * sinPhi * sinTheta,
	}

	return LocalFrame{
		Point: point,
		Up:    NormalizeOr(point, fallback),
		South: Vec3{-cosPhi * cosTheta, -sinPhi, cosPhi * sinTheta},
		East:  Vec3{sinTheta, 0, cosTheta},
	}
}

// ObserverFrame is the ground observer's world-space placement.
type ObserverFrame struct {
	Position Vec3 `json:"position"`
	Offset   Vec3 `json:"offset"` // Position minus planet centre
	Up       Vec3 `json:"up"`
	South    Vec3 `json:"south"`
	East     Vec3 `json:"east"`

	// Orientation maps planet-local vectors to world (tilt·spin).
	Orientation mgl64.Quat `json:"orientation"`
}

// SurfaceOrientation composes the spin rotation (about local +Y) followed by the
// axial tilt rotation (about world +Z).
func SurfaceOrientation(spin, tiltRad float64) mgl64.Quat {
	return mgl64.QuatRotate(tiltRad, AxisZ).Mul(mgl64.QuatRotate(spin, AxisY))
}

// ObserverFrameAt places geo on a planet of radius centred at planetPos with the
// given spin and tilt. Point, up, south and east all go through the same rotation
// so the basis stays orthonormal.
func ObserverFrameAt(geo GeoCoordinate, radius float64, planetPos Vec3, spin, tiltRad float64, fallback Vec3) ObserverFrame {
	local := SurfaceLocal(geo, radius, fallback)
	q := SurfaceOrientation(spin, tiltRad)

	offset := q.Rotate(local.Point)
	return ObserverFrame{
		Position:    planetPos.Add(offset),
		Offset:      offset,
		Up:          NormalizeOr(q.Rotate(local.Up), fallback),
		South:       q.Rotate(local.South),
		East:        q.Rotate(local.East),
		Orientation: q,
	}
}

// North returns the horizontal direction toward increasing latitude.
func (f ObserverFrame) North() Vec3 {
	return f.South.Mul(-1)
}

// Basis returns the ground-grid basis with columns (east, up, south).
func (f ObserverFrame) Basis() mgl64.Mat3 {
	return mgl64.Mat3FromCols(f.East, f.Up, f.South)
}
