// Package config defines the scene configuration and loads it from JSON.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/camera"
	"github.com/litescript/ls-orrery/internal/clock"
	"github.com/litescript/ls-orrery/internal/view"
)

// Sentinel errors wrapped by Validate. Callers test with errors.Is.
var (
	ErrSemiMajorAxis   = astro.ErrSemiMajorAxis
	ErrEccentricity    = astro.ErrEccentricity
	ErrAxialTilt       = astro.ErrAxialTilt
	ErrSpeedBounds     = clock.ErrSpeedBounds
	ErrCalibration     = clock.ErrCalibration
	ErrDuration        = camera.ErrDuration
	ErrCameraDistances = camera.ErrCameraDistances
	ErrRadius          = errors.New("planet radius must be positive")
	ErrInitialMode     = errors.New("invalid initial view mode")
	ErrDefaultAxis     = errors.New("default axis must be a finite non-zero vector")
	ErrEventBuffer     = errors.New("event buffer size must be positive")
)

// PlanetConfig describes the planet body.
// The spin is calibrated on the observer's longitude, so there is no separate
// reference longitude to configure.
type PlanetConfig struct {
	Radius float64 `json:"radius"`
}

// ViewConfig selects the starting viewpoint.
type ViewConfig struct {
	Initial string `json:"initial"`
}

// SceneConfig places the fixed bodies and sets scene-wide fallbacks.
type SceneConfig struct {
	StarPosition astro.Vec3 `json:"star_position"`
	GalaxyCenter astro.Vec3 `json:"galaxy_center"`

	// DefaultAxis replaces vectors too short to normalize.
	DefaultAxis astro.Vec3 `json:"default_axis"`

	// OrbitSegments is the polyline resolution of the drawn orbit.
	OrbitSegments int `json:"orbit_segments"`

	// MaxEvents bounds the event ring buffer.
	MaxEvents int `json:"max_events"`
}

// Config is the complete scene configuration.
type Config struct {
	Orbit    astro.OrbitParameters `json:"orbit"`
	Planet   PlanetConfig          `json:"planet"`
	Observer astro.GeoCoordinate   `json:"observer"`
	Clock    clock.Settings        `json:"clock"`
	Camera   camera.Settings       `json:"camera"`
	View     ViewConfig            `json:"view"`
	Scene    SceneConfig           `json:"scene"`
}

// DefaultConfig returns the reference scene: an Earth-like planet on a slightly
// eccentric orbit, observed from Beijing.
func DefaultConfig() Config {
	return Config{
		Orbit: astro.OrbitParameters{
			SemiMajorAxis: 10,
			Eccentricity:  0.0167,
			PerihelionDay: 3,
			AxialTiltDeg:  23.5,
		},
		Planet: PlanetConfig{
			Radius: 0.5,
		},
		Observer: astro.GeoCoordinate{LatDeg: 39.9, LonDeg: 116.4, Name: "Beijing"},
		Clock:    clock.DefaultSettings(),
		Camera:   camera.DefaultSettings(),
		View:     ViewConfig{Initial: view.System.String()},
		Scene: SceneConfig{
			StarPosition:  astro.Vec3{0, 0, 0},
			GalaxyCenter:  astro.Vec3{-25, 0, 0},
			DefaultAxis:   astro.AxisY,
			OrbitSegments: 128,
			MaxEvents:     50,
		},
	}
}

// Load reads a JSON file over the defaults. An empty path returns the defaults.
// Fields missing from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// InitialMode returns the parsed initial view mode.
func (c Config) InitialMode() (view.Mode, error) {
	return view.ParseMode(c.View.Initial)
}

// Validate checks every rule and reports all violations joined together.
// Values a setter would clamp (latitude, start day, speed) are not errors.
func (c Config) Validate() error {
	var errs []error

	if err := c.Orbit.Validate(); err != nil {
		errs = append(errs, err)
	}
	if !(c.Planet.Radius > 0) || math.IsInf(c.Planet.Radius, 0) {
		errs = append(errs, fmt.Errorf("%w: got %v", ErrRadius, c.Planet.Radius))
	} else if c.Planet.Radius >= c.Orbit.PerihelionDistance() && c.Orbit.Validate() == nil {
		errs = append(errs, fmt.Errorf("%w: radius %v reaches the star at perihelion", ErrRadius, c.Planet.Radius))
	}
	if err := c.Clock.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Camera.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.InitialMode(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInitialMode, err))
	}
	if n := c.Scene.DefaultAxis.Len(); !(n > 1e-12) || math.IsInf(n, 0) {
		errs = append(errs, fmt.Errorf("%w: got %v", ErrDefaultAxis, c.Scene.DefaultAxis))
	}
	if c.Scene.MaxEvents <= 0 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrEventBuffer, c.Scene.MaxEvents))
	}

	return errors.Join(errs...)
}

// Body returns the kinematic description of the configured planet. The
// observer's longitude faces the star at 12:00.
func (c Config) Body() astro.Planet {
	return astro.Planet{
		Orbit:           c.Orbit,
		Radius:          c.Planet.Radius,
		ReferenceLonDeg: c.Observer.Clamp().LonDeg,
		Star:            c.Scene.StarPosition,
		DefaultAxis:     c.Scene.DefaultAxis,
	}
}
