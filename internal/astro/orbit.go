package astro

import (
	"errors"
	"fmt"
	"math"
)

// DaysPerYear is the length of the simulated year.
const DaysPerYear = 365.0

// Errors returned by OrbitParameters.Validate.
var (
	ErrSemiMajorAxis = errors.New("semi-major axis must be positive")
	ErrEccentricity  = errors.New("eccentricity must be in [0, 1)")
	ErrAxialTilt     = errors.New("axial tilt must be within [-90, 90] degrees")
)

// OrbitParameters describes the planet's fixed elliptical orbit.
//
// The orbit is a constant-angular-rate approximation: the mean anomaly is used
// directly as the orbital angle, so the planet sweeps equal angles (not equal
// areas) per day. No Kepler equation is solved; positions are a closed-form,
// reversible function of the day of year.
type OrbitParameters struct {
	SemiMajorAxis float64 `json:"semi_major_axis"`
	Eccentricity  float64 `json:"eccentricity"`
	PerihelionDay float64 `json:"perihelion_day"`
	AxialTiltDeg  float64 `json:"axial_tilt_deg"`
}

// Validate reports every invalid parameter.
func (o OrbitParameters) Validate() error {
	var errs []error
	if !(o.SemiMajorAxis > 0) || math.IsInf(o.SemiMajorAxis, 0) {
		errs = append(errs, fmt.Errorf("%w: got %v", ErrSemiMajorAxis, o.SemiMajorAxis))
	}
	if !(o.Eccentricity >= 0 && o.Eccentricity < 1) {
		errs = append(errs, fmt.Errorf("%w: got %v", ErrEccentricity, o.Eccentricity))
	}
	if !(o.AxialTiltDeg >= -90 && o.AxialTiltDeg <= 90) {
		errs = append(errs, fmt.Errorf("%w: got %v", ErrAxialTilt, o.AxialTiltDeg))
	}
	return errors.Join(errs...)
}

// SemiMinorAxis returns b = a·√(1−e²).
func (o OrbitParameters) SemiMinorAxis() float64 {
	return o.SemiMajorAxis * math.Sqrt(1-o.Eccentricity*o.Eccentricity)
}

// FocalOffset returns c = a·e, the distance from the ellipse centre to a focus.
func (o OrbitParameters) FocalOffset() float64 {
	return o.SemiMajorAxis * o.Eccentricity
}

// PerihelionDistance returns the nearest star distance, a(1−e).
func (o OrbitParameters) PerihelionDistance() float64 {
	return o.SemiMajorAxis * (1 - o.Eccentricity)
}

// AphelionDistance returns the farthest star distance, a(1+e).
func (o OrbitParameters) AphelionDistance() float64 {
	return o.SemiMajorAxis * (1 + o.Eccentricity)
}

// OrbitAngle returns the angle on the ellipse (about its centre) for a day of year.
// The phase puts the perihelion, angle π, at PerihelionDay.
func (o OrbitParameters) OrbitAngle(day float64) float64 {
	meanAnomaly := day / DaysPerYear * 2 * math.Pi
	phase := math.Pi - o.PerihelionDay/DaysPerYear*2*math.Pi
	return meanAnomaly + phase
}

// PlanetPosition returns the planet's world position for a day of year.
// The ellipse centre is shifted by +c along X so the star (origin) sits at the
// focus nearest the perihelion point.
func (o OrbitParameters) PlanetPosition(day float64) Vec3 {
	return o.pointAt(o.OrbitAngle(day))
}

// Distance returns the planet-to-origin distance for a day of year.
func (o OrbitParameters) Distance(day float64) float64 {
	return o.PlanetPosition(day).Len()
}

func (o OrbitParameters) pointAt(angle float64) Vec3 {
	return Vec3{
		o.FocalOffset() + math.Cos(angle)*o.SemiMajorAxis,
		0,
		math.Sin(angle) * o.SemiMinorAxis(),
	}
}

// OrbitPath returns the closed orbit polyline with segments+1 points; the last
// point repeats the first. segments below 3 are raised to 3.
func (o OrbitParameters) OrbitPath(segments int) []Vec3 {
	if segments < 3 {
		segments = 3
	}
	points := make([]Vec3, segments+1)
	for i := 0; i < segments; i++ {
		points[i] = o.pointAt(float64(i) / float64(segments) * 2 * math.Pi)
	}
	points[segments] = points[0]
	return points
}
