// Package clock advances simulated time from real elapsed time.
package clock

import (
	"errors"
	"fmt"
	"math"

	"github.com/litescript/ls-orrery/internal/astro"
)

const (
	HoursPerDay    = 24.0
	SecondsPerHour = 3600.0

	// DaysPerMonth is the nominal month used by SetMonth.
	DaysPerMonth = 30.4
)

// Errors returned by Settings.Validate.
var (
	ErrSpeedBounds = errors.New("invalid speed bounds")
	ErrCalibration = errors.New("sim seconds per real second must be positive")
)

// Settings configures a Clock.
type Settings struct {
	DayOfYear float64 `json:"day_of_year"`
	HourOfDay float64 `json:"hour_of_day"`
	Speed     float64 `json:"speed"`
	Paused    bool    `json:"paused"`

	MinSpeed       float64 `json:"min_speed"`
	MaxSpeed       float64 `json:"max_speed"`
	GroundMaxSpeed float64 `json:"ground_max_speed"`

	// SimSecondsPerRealSecond converts real time at speed 1 into sim time.
	SimSecondsPerRealSecond float64 `json:"sim_seconds_per_real_second"`
}

// DefaultSettings returns the reference clock: noon on day 0 at speed 60.
func DefaultSettings() Settings {
	return Settings{
		DayOfYear:               0,
		HourOfDay:               12,
		Speed:                   60,
		MinSpeed:                0,
		MaxSpeed:                10000,
		GroundMaxSpeed:          30,
		SimSecondsPerRealSecond: 10,
	}
}

// Validate reports bounds that cannot be clamped into a usable range.
// Out-of-range start values are not errors; New clamps them.
func (s Settings) Validate() error {
	var errs []error
	if !(s.MinSpeed >= 0) || math.IsInf(s.MinSpeed, 0) {
		errs = append(errs, fmt.Errorf("%w: min_speed %v must be >= 0", ErrSpeedBounds, s.MinSpeed))
	}
	if !(s.MaxSpeed >= s.MinSpeed) || math.IsInf(s.MaxSpeed, 0) {
		errs = append(errs, fmt.Errorf("%w: max_speed %v must be >= min_speed %v", ErrSpeedBounds, s.MaxSpeed, s.MinSpeed))
	}
	if !(s.GroundMaxSpeed >= s.MinSpeed) {
		errs = append(errs, fmt.Errorf("%w: ground_max_speed %v must be >= min_speed %v", ErrSpeedBounds, s.GroundMaxSpeed, s.MinSpeed))
	}
	if !(s.SimSecondsPerRealSecond > 0) || math.IsInf(s.SimSecondsPerRealSecond, 0) {
		errs = append(errs, fmt.Errorf("%w: got %v", ErrCalibration, s.SimSecondsPerRealSecond))
	}
	return errors.Join(errs...)
}

// State is a value snapshot of the clock.
type State struct {
	DayOfYear  float64 `json:"day_of_year"`
	HourOfDay  float64 `json:"hour_of_day"`
	Speed      float64 `json:"speed"`
	Paused     bool    `json:"paused"`
	GroundMode bool    `json:"ground_mode"`
	Year       int     `json:"year"` // whole years elapsed since start

	// EffectiveMaxSpeed is the speed ceiling in the current mode.
	EffectiveMaxSpeed float64 `json:"effective_max_speed"`
}

// Month returns the nominal month (1..12) containing the current day.
func (s State) Month() int {
	m := int(s.DayOfYear/DaysPerMonth) + 1
	if m > 12 {
		m = 12
	}
	return m
}

// Advance reports what one call to Clock.Advance crossed.
type Advance struct {
	SimHours     float64
	DaysCrossed  int
	YearsCrossed int
}

// Clock owns the simulated day of year, hour of day and speed multiplier.
// It is not safe for concurrent use; the state manager serializes access.
type Clock struct {
	settings Settings

	day    float64
	hour   float64
	speed  float64
	paused bool
	ground bool
	year   int
}

// New returns a clock at the settings' start time. Start values are wrapped
// and clamped the same way the setters do.
func New(s Settings) *Clock {
	c := &Clock{settings: s, paused: s.Paused}
	c.SetDayOfYear(s.DayOfYear)
	c.SetHourOfDay(s.HourOfDay)
	c.speed = s.MinSpeed
	c.SetSpeed(s.Speed)
	return c
}

// Advance moves simulated time forward by realDelta seconds scaled by the speed
// multiplier. Paused clocks and non-positive or non-finite deltas do nothing.
func (c *Clock) Advance(realDelta float64) Advance {
	if c.paused || !(realDelta > 0) || math.IsInf(realDelta, 0) {
		return Advance{}
	}

	simHours := realDelta * c.speed * c.settings.SimSecondsPerRealSecond / SecondsPerHour
	if simHours <= 0 {
		return Advance{}
	}

	hours := c.hour + simHours
	days := math.Floor(hours / HoursPerDay)
	c.hour = astro.Wrap(hours-days*HoursPerDay, HoursPerDay)

	total := c.day + days
	years := math.Floor(total / astro.DaysPerYear)
	c.day = astro.Wrap(total-years*astro.DaysPerYear, astro.DaysPerYear)
	c.year += int(years)

	return Advance{
		SimHours:     simHours,
		DaysCrossed:  int(days),
		YearsCrossed: int(years),
	}
}

// SetSpeed sets the speed multiplier, clamped to [MinSpeed, EffectiveMaxSpeed].
// NaN is ignored.
func (c *Clock) SetSpeed(v float64) {
	if math.IsNaN(v) {
		return
	}
	c.speed = math.Max(c.settings.MinSpeed, math.Min(v, c.EffectiveMaxSpeed()))
}

// ScaleSpeed multiplies the current speed by factor. From a frozen clock,
// scaling up starts at 1.
func (c *Clock) ScaleSpeed(factor float64) {
	if c.speed == 0 && factor > 1 {
		c.SetSpeed(1)
		return
	}
	c.SetSpeed(c.speed * factor)
}

// EffectiveMaxSpeed is the speed ceiling in the current mode.
func (c *Clock) EffectiveMaxSpeed() float64 {
	if c.ground {
		return math.Min(c.settings.MaxSpeed, c.settings.GroundMaxSpeed)
	}
	return c.settings.MaxSpeed
}

// SetGroundMode switches the lower ground ceiling on or off and re-clamps the
// current speed. Leaving ground mode does not restore a previously capped speed.
func (c *Clock) SetGroundMode(ground bool) {
	c.ground = ground
	c.SetSpeed(c.speed)
}

func (c *Clock) SetPaused(paused bool) { c.paused = paused }

// TogglePause flips the pause flag and returns the new value.
func (c *Clock) TogglePause() bool {
	c.paused = !c.paused
	return c.paused
}

// SetDayOfYear sets the day, wrapped into [0, 365). NaN is ignored.
func (c *Clock) SetDayOfYear(day float64) {
	if math.IsNaN(day) || math.IsInf(day, 0) {
		return
	}
	c.day = astro.Wrap(day, astro.DaysPerYear)
}

// SetHourOfDay sets the hour, wrapped into [0, 24). NaN is ignored.
func (c *Clock) SetHourOfDay(hour float64) {
	if math.IsNaN(hour) || math.IsInf(hour, 0) {
		return
	}
	c.hour = astro.Wrap(hour, HoursPerDay)
}

// SetMonth jumps to the start of a nominal month; month is clamped to 1..12.
func (c *Clock) SetMonth(month int) {
	month = max(1, min(month, 12))
	c.SetDayOfYear(float64(month-1) * DaysPerMonth)
}

// State returns a snapshot.
func (c *Clock) State() State {
	return State{
		DayOfYear:  c.day,
		HourOfDay:  c.hour,
		Speed:      c.speed,
		Paused:     c.paused,
		GroundMode: c.ground,
		Year:       c.year,

		EffectiveMaxSpeed: c.EffectiveMaxSpeed(),
	}
}

// Settings returns the settings the clock was built with.
func (c *Clock) Settings() Settings {
	return c.settings
}
