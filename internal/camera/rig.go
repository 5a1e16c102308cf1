package camera

import (
	"errors"
	"fmt"
	"math"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/view"
)

// Errors returned by Settings.Validate.
var (
	ErrDuration        = errors.New("transition duration must be >= 0")
	ErrCameraDistances = errors.New("camera height and look distance must be positive")
)

// Settings configures a Rig.
type Settings struct {
	Height            float64  `json:"height"`
	LookDistance      float64  `json:"look_distance"`
	TransitionSeconds float64  `json:"transition_seconds"`
	Strategy          Strategy `json:"strategy"`
	SystemPose        Pose     `json:"system_pose"`
	GalacticPose      Pose     `json:"galactic_pose"`
}

// DefaultSettings returns the reference camera.
func DefaultSettings() Settings {
	return Settings{
		Height:            0.2,
		LookDistance:      5,
		TransitionSeconds: 2,
		Strategy:          Incremental,
		SystemPose: Pose{
			Position: astro.Vec3{0, 20, 20},
			Target:   astro.Vec3{0, 0, 0},
			Up:       astro.AxisY,
		},
		GalacticPose: Pose{
			Position: astro.Vec3{-25, 60, 80},
			Target:   astro.Vec3{-25, 0, 0},
			Up:       astro.AxisY,
		},
	}
}

// Validate reports settings that cannot produce a usable camera.
func (s Settings) Validate() error {
	var errs []error
	if !(s.TransitionSeconds >= 0) || math.IsInf(s.TransitionSeconds, 0) {
		errs = append(errs, fmt.Errorf("%w: got %v", ErrDuration, s.TransitionSeconds))
	}
	if !(s.Height > 0) || !(s.LookDistance > 0) {
		errs = append(errs, fmt.Errorf("%w: height %v, look distance %v", ErrCameraDistances, s.Height, s.LookDistance))
	}
	return errors.Join(errs...)
}

// Rig produces the camera pose each tick: the preset pose in system and
// galactic mode, the anchored pose on the ground, and an eased transition
// after every mode switch.
type Rig struct {
	settings Settings
	anchor   *Anchor

	transition *Transition
	toMode     view.Mode
	elapsed    float64

	pose       Pose
	hasPose    bool
	lastGround Pose
	hasGround  bool
}

// NewRig returns a rig with no pose yet; the first Update with kinematics
// establishes it.
func NewRig(s Settings) *Rig {
	return &Rig{
		settings: s,
		anchor:   NewAnchor(s.Strategy, s.Height, s.LookDistance),
	}
}

// Anchor exposes the ground anchor.
func (r *Rig) Anchor() *Anchor { return r.anchor }

// Preset returns the fixed pose for system and galactic mode. Ground has no
// preset; ok is false.
func (r *Rig) Preset(mode view.Mode) (Pose, bool) {
	switch mode {
	case view.System:
		return r.settings.SystemPose, true
	case view.Galactic:
		return r.settings.GalacticPose, true
	default:
		return Pose{}, false
	}
}

// Begin starts the transition for an accepted mode switch, replacing any
// transition in progress.
//
// The start pose depends only on the mode being left: the last anchored pose
// when leaving the ground, otherwise that mode's preset. The same switch from
// the same previous mode therefore always follows the same path.
func (r *Rig) Begin(change view.Change) {
	start, ok := r.Preset(change.From)
	if !ok {
		switch {
		case r.hasGround:
			start, ok = r.lastGround, true
		case r.hasPose:
			start, ok = r.pose, true
		}
	}

	end, _ := r.Preset(change.To)
	if change.To == view.Ground {
		// end is resolved each tick from the live anchor
		r.anchor.Reset()
	}

	r.toMode = change.To
	r.elapsed = 0
	if !ok {
		// nothing rendered yet: jump straight to the new mode
		r.transition = nil
		return
	}
	r.transition = &Transition{Start: start, End: end, Duration: r.settings.TransitionSeconds}
}

// Update advances the rig by dt real seconds in mode. It returns false and
// leaves the pose untouched when kin is nil: without planet state there is
// nothing to anchor to.
func (r *Rig) Update(dt float64, mode view.Mode, kin *Kinematics) (Pose, bool) {
	if kin == nil {
		return r.pose, false
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		dt = 0
	}

	var live Pose
	if mode == view.Ground {
		live = r.anchor.Update(*kin)
		r.lastGround = live
		r.hasGround = true
	} else {
		live, _ = r.Preset(mode)
	}

	if r.transition != nil && r.toMode != mode {
		r.transition = nil
	}

	pose := live
	if r.transition != nil {
		r.elapsed += dt
		tr := *r.transition
		if mode == view.Ground {
			tr.End = live
		}
		pose = tr.Sample(r.elapsed)
		if tr.Done(r.elapsed) {
			r.transition = nil
		}
	}

	r.pose = pose
	r.hasPose = true
	return pose, true
}

// Pose returns the last computed pose; ok is false before the first update.
func (r *Rig) Pose() (Pose, bool) {
	return r.pose, r.hasPose
}

// Transitioning reports whether a transition is in progress.
func (r *Rig) Transitioning() bool {
	return r.transition != nil
}

// TransitionProgress returns the linear progress of the current transition,
// or 1 when none is running.
func (r *Rig) TransitionProgress() float64 {
	if r.transition == nil {
		return 1
	}
	return r.transition.Progress(r.elapsed)
}

// Settings returns the rig configuration.
func (r *Rig) Settings() Settings {
	return r.settings
}
