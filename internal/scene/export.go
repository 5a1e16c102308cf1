package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/version"
)

// traceSamples is the sun trace resolution in exports: one sample per 15 minutes.
const traceSamples = 96

// Export is the JSON snapshot written by headless mode.
type Export struct {
	GeneratedAt  time.Time            `json:"generated_at"`
	Version      string               `json:"version"`
	Frame        Frame                `json:"frame"`
	ViewMatrix   [16]float64          `json:"view_matrix"` // column-major
	OrbitPath    []astro.Vec3         `json:"orbit_path"`
	GalaxyCenter astro.Vec3           `json:"galaxy_center"`
	Star         astro.Vec3           `json:"star"`
	SunTrace     astro.ElevationTrace `json:"sun_trace"`
}

// Export builds a snapshot of the current frame. It ticks once with a zero
// delta if no frame exists yet.
func (e *Engine) Export(now time.Time) *Export {
	f, ok := e.Frame()
	if !ok {
		f = e.Tick(0)
	}
	return &Export{
		GeneratedAt:  now,
		Version:      version.Version,
		Frame:        f,
		ViewMatrix:   f.Camera.ViewMatrix(),
		OrbitPath:    e.OrbitPath(0),
		GalaxyCenter: e.cfg.Scene.GalaxyCenter,
		Star:         e.planet.Star,
		SunTrace:     e.SunTrace(traceSamples),
	}
}

// WriteJSON writes the snapshot as indented JSON.
func (x *Export) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(x); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// WriteSummary writes a short text report of a frame.
func WriteSummary(w io.Writer, f Frame) {
	fmt.Fprintf(w, "Scene @ day %.2f %s (tick %d)\n", f.Clock.DayOfYear, FormatHour(f.Clock.HourOfDay), f.Tick)
	fmt.Fprintln(w, strings.Repeat("─", 60))

	state := "running"
	if f.Clock.Paused {
		state = "paused"
	}
	fmt.Fprintf(w, "%-14s %s\n", "View", f.Mode)
	fmt.Fprintf(w, "%-14s x%.0f (%s)\n", "Speed", f.Clock.Speed, state)
	fmt.Fprintf(w, "%-14s %s\n", "Planet", formatVec(f.Planet.Position))
	fmt.Fprintf(w, "%-14s %.3f\n", "Star distance", f.Planet.StarDistance)
	fmt.Fprintf(w, "%-14s %.4f rad\n", "Spin", astro.WrapAngle(f.Planet.SpinAngle))
	fmt.Fprintf(w, "%-14s %s\n", "Observer", FormatSite(f.Site))
	fmt.Fprintf(w, "%-14s el %.1f° az %.1f° (%s)\n", "Sun", f.Sun.ElevationDeg, f.Sun.AzimuthDeg, f.Phase)
	fmt.Fprintf(w, "%-14s %s -> %s\n", "Camera", formatVec(f.Camera.Position), formatVec(f.Camera.Target))
	if f.Anchored() {
		fmt.Fprintf(w, "%-14s %.4f\n", "Altitude", f.CameraAltitude)
	}
	if f.Transitioning {
		fmt.Fprintf(w, "%-14s %.0f%%\n", "Transition", f.TransitionProgress*100)
	}
}

// FormatHour renders an hour of day as HH:MM.
func FormatHour(h float64) string {
	total := int(h*60 + 0.5)
	return fmt.Sprintf("%02d:%02d", (total/60)%24, total%60)
}

func formatVec(v astro.Vec3) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X(), v.Y(), v.Z())
}

// FormatSite renders a site as "Name 39.9°N 116.4°E".
func FormatSite(g astro.GeoCoordinate) string {
	ns, ew := "N", "E"
	lat, lon := g.LatDeg, g.LonDeg
	if lat < 0 {
		ns, lat = "S", -lat
	}
	if lon < 0 {
		ew, lon = "W", -lon
	}
	s := fmt.Sprintf("%.1f°%s %.1f°%s", lat, ns, lon, ew)
	if g.Name != "" {
		s = g.Name + " " + s
	}
	return s
}
