// Package scene drives the kinematics once per frame: clock, then orbit and
// spin, then the surface frame, then the camera.
package scene

import (
	"fmt"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/camera"
	"github.com/litescript/ls-orrery/internal/clock"
	"github.com/litescript/ls-orrery/internal/config"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/view"
)

// Engine owns the clock, the view state machine and the camera rig, and
// derives everything else from them each tick. It is not safe for concurrent
// use; state.Manager serializes access.
type Engine struct {
	cfg    config.Config
	planet astro.Planet
	site   astro.GeoCoordinate

	clock   *clock.Clock
	machine *view.Machine
	rig     *camera.Rig

	log *logging.Logger

	ticks    uint64
	frame    Frame
	hasFrame bool
}

// New validates cfg and builds an engine at the configured start time.
// A nil logger discards output.
func New(cfg config.Config, log *logging.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if log == nil {
		log = logging.Discard()
	}
	initial, _ := cfg.InitialMode()

	e := &Engine{
		cfg:     cfg,
		planet:  cfg.Body(),
		site:    cfg.Observer.Clamp(),
		clock:   clock.New(cfg.Clock),
		machine: view.NewMachine(initial),
		rig:     camera.NewRig(cfg.Camera),
		log:     log.Named("scene"),
	}
	e.clock.SetGroundMode(initial == view.Ground)

	e.machine.Subscribe(func(c view.Change) {
		e.rig.Begin(c)
		e.clock.SetGroundMode(c.To == view.Ground)
		e.log.Info("view %s -> %s", c.From, c.To)
	})

	e.log.Debug("engine ready: mode=%s site=%.2f,%.2f strategy=%s",
		initial, e.site.LatDeg, e.site.LonDeg, cfg.Camera.Strategy)
	return e, nil
}

// Tick advances the scene by realDelta seconds and returns the new frame.
//
// The steps run in dependency order, so the camera always reads the planet
// and observer state of this tick, never the previous one.
func (e *Engine) Tick(realDelta float64) Frame {
	adv := e.clock.Advance(realDelta)
	cs := e.clock.State()

	ps := e.planet.State(cs.DayOfYear, cs.HourOfDay)
	obs := e.planet.ObserverFrame(e.site, ps)

	mode := e.machine.Current()
	pose, updated := e.rig.Update(realDelta, mode, &camera.Kinematics{Planet: ps, Observer: obs})

	sun := astro.SunHorizontal(obs, e.planet.Star)

	e.ticks++
	f := Frame{
		Tick:               e.ticks,
		Clock:              cs,
		Advance:            adv,
		Planet:             ps,
		Observer:           obs,
		Site:               e.site,
		Mode:               mode,
		Camera:             pose,
		CameraUpdated:      updated,
		Transitioning:      e.rig.Transitioning(),
		TransitionProgress: e.rig.TransitionProgress(),
		CameraAltitude:     camera.Altitude(pose, ps.Position, e.planet.Radius),
		Sun:                sun,
		Phase:              astro.PhaseFor(sun.ElevationDeg, cs.HourOfDay),
	}
	if prev, ok := e.machine.Previous(); ok {
		f.PreviousMode = &prev
	}

	e.frame = f
	e.hasFrame = true
	return f
}

// Frame returns the most recent frame; ok is false before the first tick.
func (e *Engine) Frame() (Frame, bool) {
	return e.frame, e.hasFrame
}

// SetMode requests a viewpoint change. It reports whether the mode changed.
func (e *Engine) SetMode(m view.Mode) bool {
	_, ok := e.machine.Switch(m)
	return ok
}

// CycleMode switches to the next mode in tab order.
func (e *Engine) CycleMode() view.Mode {
	next := e.machine.Current().Next()
	e.machine.Switch(next)
	return next
}

// Mode returns the current viewpoint.
func (e *Engine) Mode() view.Mode {
	return e.machine.Current()
}

// Subscribe registers fn for accepted mode switches.
func (e *Engine) Subscribe(fn func(view.Change)) func() {
	return e.machine.Subscribe(fn)
}

func (e *Engine) SetSpeed(v float64) { e.clock.SetSpeed(v) }
func (e *Engine) ScaleSpeed(factor float64) { e.clock.ScaleSpeed(factor) }
func (e *Engine) SetPaused(p bool) { e.clock.SetPaused(p) }
func (e *Engine) TogglePause() bool { return e.clock.TogglePause() }
func (e *Engine) SetDayOfYear(d float64) { e.clock.SetDayOfYear(d) }
func (e *Engine) SetHourOfDay(h float64) { e.clock.SetHourOfDay(h) }
func (e *Engine) SetMonth(m int) { e.clock.SetMonth(m) }

// Clock returns a snapshot of the clock.
func (e *Engine) Clock() clock.State {
	return e.clock.State()
}

// SetLatitude moves the observer to lat (clamped to [-90, 90]).
func (e *Engine) SetLatitude(lat float64) {
	site := e.site
	site.LatDeg = lat
	e.setSite(site)
}

// SetLongitude moves the observer to lon (wrapped to [-180, 180)).
func (e *Engine) SetLongitude(lon float64) {
	site := e.site
	site.LonDeg = lon
	e.setSite(site)
}

func (e *Engine) setSite(site astro.GeoCoordinate) {
	site = site.Clamp()
	if site == e.site {
		return
	}
	e.site = site
	// local noon follows the observer
	e.planet.ReferenceLonDeg = site.LonDeg
	// the observer moved across the surface, not with it
	e.rig.Anchor().Reset()
	e.log.Debug("observer moved to %.2f,%.2f", site.LatDeg, site.LonDeg)
}

// Site returns the observer's geographic position.
func (e *Engine) Site() astro.GeoCoordinate {
	return e.site
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Planet returns the planet description.
func (e *Engine) Planet() astro.Planet {
	return e.planet
}

// OrbitPath returns the orbit polyline. segments <= 0 uses the configured
// resolution.
func (e *Engine) OrbitPath(segments int) []astro.Vec3 {
	if segments <= 0 {
		segments = e.cfg.Scene.OrbitSegments
	}
	return e.cfg.Orbit.OrbitPath(segments)
}

// SunNow returns the star as seen by the observer at the current clock time,
// without ticking. After a setter it reflects the new time or site.
func (e *Engine) SunNow() astro.Horizontal {
	cs := e.clock.State()
	obs := e.planet.ObserverFrame(e.site, e.planet.State(cs.DayOfYear, cs.HourOfDay))
	return astro.SunHorizontal(obs, e.planet.Star)
}

// SunTrace samples the star elevation at the observer over the current day.
func (e *Engine) SunTrace(samples int) astro.ElevationTrace {
	return astro.SunElevationTrace(e.planet, e.site, e.clock.State().DayOfYear, samples)
}
