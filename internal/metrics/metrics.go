// Package metrics exposes scene engine telemetry to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
)

// Recorder bundles the engine metrics. A nil *Recorder is valid and records
// nothing.
type Recorder struct {
	gatherer prometheus.Gatherer

	Ticks          prometheus.Counter
	TickDurations  prometheus.Histogram
	SkippedUpdates prometheus.Counter
	Events         *prometheus.CounterVec
	ModeSwitches   *prometheus.CounterVec

	DayOfYear      prometheus.Gauge
	HourOfDay      prometheus.Gauge
	Speed          prometheus.Gauge
	CameraAltitude prometheus.Gauge
	AltitudeDrift  prometheus.Gauge
	SunElevation   prometheus.Gauge
}

// NewRecorder registers the metrics against reg, defaulting to the global
// registry when nil.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	r := &Recorder{
		gatherer: gatherer,
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orrery_ticks_total",
			Help: "Number of scene ticks.",
		}),
		TickDurations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "orrery_tick_duration_seconds",
			Help:    "Wall time spent computing one scene tick.",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		SkippedUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orrery_camera_skipped_updates_total",
			Help: "Ticks on which the camera rig had no kinematics to follow.",
		}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orrery_events_total",
			Help: "Scene events, labeled by type.",
		}, []string{"type"}),
		ModeSwitches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orrery_mode_switches_total",
			Help: "Accepted view mode switches, labeled by target mode.",
		}, []string{"to"}),
		DayOfYear: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orrery_day_of_year",
			Help: "Simulated day of year.",
		}),
		HourOfDay: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orrery_hour_of_day",
			Help: "Simulated hour of day.",
		}),
		Speed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orrery_time_speed",
			Help: "Current time multiplier.",
		}),
		CameraAltitude: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orrery_camera_altitude",
			Help: "Camera distance above the planet surface.",
		}),
		AltitudeDrift: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orrery_camera_altitude_drift",
			Help: "Deviation of the anchored camera from its configured height.",
		}),
		SunElevation: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orrery_sun_elevation_degrees",
			Help: "Star elevation above the observer horizon.",
		}),
	}

	collectors := []prometheus.Collector{
		r.Ticks, r.TickDurations, r.SkippedUpdates, r.Events, r.ModeSwitches,
		r.DayOfYear, r.HourOfDay, r.Speed, r.CameraAltitude, r.AltitudeDrift, r.SunElevation,
	}
	var errs []error
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	return r, nil
}

// ObserveFrame records one tick.
func (r *Recorder) ObserveFrame(f scene.Frame, height float64, took time.Duration) {
	if r == nil {
		return
	}
	r.Ticks.Inc()
	r.TickDurations.Observe(took.Seconds())
	if !f.CameraUpdated {
		r.SkippedUpdates.Inc()
	}

	r.DayOfYear.Set(f.Clock.DayOfYear)
	r.HourOfDay.Set(f.Clock.HourOfDay)
	r.Speed.Set(f.Clock.Speed)
	r.CameraAltitude.Set(f.CameraAltitude)
	r.SunElevation.Set(f.Sun.ElevationDeg)
	if f.Anchored() {
		r.AltitudeDrift.Set(f.AltitudeDrift(height))
	} else {
		r.AltitudeDrift.Set(0)
	}
}

// ObserveEvent counts e, and mode switches by target.
func (r *Recorder) ObserveEvent(e state.Event, to string) {
	if r == nil {
		return
	}
	r.Events.WithLabelValues(string(e.Type)).Inc()
	if e.Type == state.EventModeSwitch && to != "" {
		r.ModeSwitches.WithLabelValues(to).Inc()
	}
}

// Attach records every tick of m until the returned function is called.
func (r *Recorder) Attach(m *state.Manager, height float64) func() {
	return m.Subscribe(func(f scene.Frame, events []state.Event) {
		r.ObserveFrame(f, height, m.Snapshot().TickDuration)
		for _, e := range events {
			_, to, _ := strings.Cut(e.Detail, " -> ")
			r.ObserveEvent(e, to)
		}
	})
}

// Handler exposes a ready-to-use /metrics handler.
func (r *Recorder) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if r != nil && r.gatherer != nil {
		gatherer = r.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
