package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/litescript/ls-orrery/internal/camera"
	"github.com/litescript/ls-orrery/internal/view"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}

	mode, err := cfg.InitialMode()
	if err != nil || mode != view.System {
		t.Errorf("InitialMode() = %v, %v, want system", mode, err)
	}

	body := cfg.Body()
	if body.Radius != 0.5 || body.Orbit.SemiMajorAxis != 10 {
		t.Errorf("Body() = %+v", body)
	}
	if math.Abs(body.ReferenceLonDeg-cfg.Observer.LonDeg) > 1e-9 {
		t.Errorf("Body().ReferenceLonDeg = %v, want observer longitude %v", body.ReferenceLonDeg, cfg.Observer.LonDeg)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Clock.Speed != 60 {
		t.Errorf("Clock.Speed = %v, want default 60", cfg.Clock.Speed)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `{
		"orbit": {"eccentricity": 0.2},
		"observer": {"lat_deg": -33.9, "lon_deg": 151.2, "name": "Sydney"},
		"camera": {"strategy": "direct"},
		"view": {"initial": "ground"}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Orbit.Eccentricity != 0.2 {
		t.Errorf("Eccentricity = %v, want 0.2", cfg.Orbit.Eccentricity)
	}
	if cfg.Orbit.SemiMajorAxis != 10 {
		t.Errorf("SemiMajorAxis = %v, want default kept", cfg.Orbit.SemiMajorAxis)
	}
	if cfg.Observer.Name != "Sydney" || cfg.Observer.LatDeg != -33.9 {
		t.Errorf("Observer = %+v", cfg.Observer)
	}
	if cfg.Camera.Strategy != camera.Direct {
		t.Errorf("Strategy = %v, want direct", cfg.Camera.Strategy)
	}
	if cfg.Camera.Height != 0.2 {
		t.Errorf("Camera.Height = %v, want default kept", cfg.Camera.Height)
	}
	if mode, _ := cfg.InitialMode(); mode != view.Ground {
		t.Errorf("InitialMode() = %v, want ground", mode)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", `{"orbit": `},
		{"unknown field", `{"orbits": {}}`},
		{"bad strategy", `{"camera": {"strategy": "sideways"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, tt.content)); err == nil {
				t.Error("Load() error = nil, want parse error")
			}
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) = %v, want ErrNotExist", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   []error
	}{
		{"eccentricity", func(c *Config) { c.Orbit.Eccentricity = 1 }, []error{ErrEccentricity}},
		{"axis", func(c *Config) { c.Orbit.SemiMajorAxis = 0 }, []error{ErrSemiMajorAxis}},
		{"radius", func(c *Config) { c.Planet.Radius = -1 }, []error{ErrRadius}},
		{"radius too large", func(c *Config) { c.Planet.Radius = 20 }, []error{ErrRadius}},
		{"negative duration", func(c *Config) { c.Camera.TransitionSeconds = -2 }, []error{ErrDuration}},
		{"NaN duration", func(c *Config) { c.Camera.TransitionSeconds = math.NaN() }, []error{ErrDuration}},
		{"camera height", func(c *Config) { c.Camera.Height = 0 }, []error{ErrCameraDistances}},
		{"speed bounds", func(c *Config) { c.Clock.MaxSpeed = -1 }, []error{ErrSpeedBounds}},
		{"calibration", func(c *Config) { c.Clock.SimSecondsPerRealSecond = 0 }, []error{ErrCalibration}},
		{"initial mode", func(c *Config) { c.View.Initial = "orbit" }, []error{ErrInitialMode}},
		{"default axis", func(c *Config) { c.Scene.DefaultAxis = [3]float64{} }, []error{ErrDefaultAxis}},
		{"events", func(c *Config) { c.Scene.MaxEvents = 0 }, []error{ErrEventBuffer}},
		{
			"all at once",
			func(c *Config) {
				c.Orbit.Eccentricity = 2
				c.Camera.TransitionSeconds = -1
				c.View.Initial = ""
			},
			[]error{ErrEccentricity, ErrDuration, ErrInitialMode},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			for _, want := range tt.want {
				if !errors.Is(err, want) {
					t.Errorf("Validate() = %v, want %v", err, want)
				}
			}
		})
	}
}

func TestValidateClampableValuesAccepted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Observer.LatDeg = 120
	cfg.Clock.DayOfYear = 400
	cfg.Clock.Speed = 1e9

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil for values the setters clamp", err)
	}
}
