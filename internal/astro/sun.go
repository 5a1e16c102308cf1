package astro

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Horizontal is a direction in the observer's local horizon system.
type Horizontal struct {
	ElevationDeg float64 `json:"elevation_deg"` // 0 = horizon, 90 = zenith
	AzimuthDeg   float64 `json:"azimuth_deg"`   // 0 = north, 90 = east, [0, 360)
}

// SunHorizontal returns the star's elevation and azimuth as seen from frame.
func SunHorizontal(frame ObserverFrame, star Vec3) Horizontal {
	dir := NormalizeOr(star.Sub(frame.Position), frame.Up)

	el := math.Asin(mgl64.Clamp(dir.Dot(frame.Up), -1, 1))
	az := math.Atan2(dir.Dot(frame.East), dir.Dot(frame.North()))

	return Horizontal{
		ElevationDeg: RadToDeg(el),
		AzimuthDeg:   Wrap(RadToDeg(az), 360),
	}
}

// DayPhase describes the light at the observer.
type DayPhase string

const (
	PhaseNight DayPhase = "night"
	PhaseDawn  DayPhase = "dawn"
	PhaseDay   DayPhase = "day"
	PhaseDusk  DayPhase = "dusk"
)

// TwilightDeg is the half-width of the twilight band around the horizon.
const TwilightDeg = 6.0

// PhaseFor classifies the star elevation; twilight before local noon is dawn,
// after it dusk.
func PhaseFor(elevationDeg, hour float64) DayPhase {
	switch {
	case elevationDeg >= TwilightDeg:
		return PhaseDay
	case elevationDeg > -TwilightDeg:
		if hour < 12 {
			return PhaseDawn
		}
		return PhaseDusk
	default:
		return PhaseNight
	}
}

// ElevationSample is the star position at one hour of the simulated day.
type ElevationSample struct {
	Hour         float64 `json:"hour"`
	ElevationDeg float64 `json:"elevation_deg"`
	AzimuthDeg   float64 `json:"azimuth_deg"`
}

// ElevationTrace is the star elevation over one simulated day at one site.
type ElevationTrace struct {
	Day     float64           `json:"day"`
	Site    GeoCoordinate     `json:"site"`
	Samples []ElevationSample `json:"samples"`
}

// SunElevationTrace samples the star elevation at evenly spaced hours of day.
func SunElevationTrace(p Planet, geo GeoCoordinate, day float64, samples int) ElevationTrace {
	trace := ElevationTrace{Day: day, Site: geo}
	if samples <= 0 {
		return trace
	}

	trace.Samples = make([]ElevationSample, samples)
	for i := 0; i < samples; i++ {
		hour := float64(i) * 24 / float64(samples)
		frame := p.ObserverFrame(geo, p.State(day, hour))
		h := SunHorizontal(frame, p.Star)
		trace.Samples[i] = ElevationSample{
			Hour:         hour,
			ElevationDeg: h.ElevationDeg,
			AzimuthDeg:   h.AzimuthDeg,
		}
	}
	return trace
}

// At returns the sample closest to hour, or nil if the trace is empty.
func (t ElevationTrace) At(hour float64) *ElevationSample {
	if len(t.Samples) == 0 {
		return nil
	}

	var closest *ElevationSample
	minDelta := math.Inf(1)
	for i := range t.Samples {
		delta := math.Abs(t.Samples[i].Hour - hour)
		// hours are cyclic: 23.5 is close to 0
		if 24-delta < delta {
			delta = 24 - delta
		}
		if delta < minDelta {
			minDelta = delta
			closest = &t.Samples[i]
		}
	}
	return closest
}

// Peak returns the highest sample. ok is false for an empty trace.
func (t ElevationTrace) Peak() (s ElevationSample, ok bool) {
	for i, sample := range t.Samples {
		if i == 0 || sample.ElevationDeg > s.ElevationDeg {
			s = sample
		}
	}
	return s, len(t.Samples) > 0
}

// DaylightHours estimates the hours with the star above the horizon.
func (t ElevationTrace) DaylightHours() float64 {
	if len(t.Samples) == 0 {
		return 0
	}
	above := 0
	for _, s := range t.Samples {
		if s.ElevationDeg > 0 {
			above++
		}
	}
	return 24 * float64(above) / float64(len(t.Samples))
}
