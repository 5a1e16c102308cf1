package scene

import (
	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/camera"
	"github.com/litescript/ls-orrery/internal/clock"
	"github.com/litescript/ls-orrery/internal/view"
)

// Frame is everything a renderer needs for one tick.
type Frame struct {
	Tick    uint64        `json:"tick"`
	Clock   clock.State   `json:"clock"`
	Advance clock.Advance `json:"-"`

	Planet   astro.PlanetState   `json:"planet"`
	Observer astro.ObserverFrame `json:"observer"`
	Site     astro.GeoCoordinate `json:"site"`

	Mode         view.Mode  `json:"mode"`
	PreviousMode *view.Mode `json:"previous_mode,omitempty"`

	Camera             camera.Pose `json:"camera"`
	CameraUpdated      bool        `json:"camera_updated"`
	Transitioning      bool        `json:"transitioning"`
	TransitionProgress float64     `json:"transition_progress"`
	CameraAltitude     float64     `json:"camera_altitude"`

	Sun   astro.Horizontal `json:"sun"`
	Phase astro.DayPhase   `json:"phase"`
}

// AltitudeDrift returns the relative deviation of the ground camera altitude
// from height. It is only meaningful in ground mode outside a transition.
func (f Frame) AltitudeDrift(height float64) float64 {
	if height == 0 {
		return 0
	}
	d := (f.CameraAltitude - height) / height
	if d < 0 {
		return -d
	}
	return d
}

// Anchored reports whether the frame's camera is riding the ground anchor.
func (f Frame) Anchored() bool {
	return f.Mode == view.Ground && !f.Transitioning && f.CameraUpdated
}
