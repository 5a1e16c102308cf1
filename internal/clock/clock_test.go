package clock

import (
	"errors"
	"math"
	"testing"
)

// realSecondsFor returns the real delta that advances hours of sim time at speed.
func realSecondsFor(hours, speed float64) float64 {
	return hours * SecondsPerHour / (speed * DefaultSettings().SimSecondsPerRealSecond)
}

// yearHours flattens a clock state to hours since the start of the year.
func yearHours(s State) float64 {
	return s.DayOfYear*HoursPerDay + s.HourOfDay
}

func TestNewClock(t *testing.T) {
	c := New(DefaultSettings())
	s := c.State()

	if s.DayOfYear != 0 || s.HourOfDay != 12 || s.Speed != 60 || s.Paused {
		t.Errorf("State() = %+v, want day 0, hour 12, speed 60, running", s)
	}
}

func TestAdvanceCalibration(t *testing.T) {
	c := New(DefaultSettings())

	// speed 60 at 10 sim seconds per real second: one real second is 1/6 sim hour
	adv := c.Advance(1)
	if math.Abs(adv.SimHours-1.0/6) > 1e-12 {
		t.Errorf("SimHours = %v, want 1/6", adv.SimHours)
	}
	if math.Abs(c.State().HourOfDay-(12+1.0/6)) > 1e-12 {
		t.Errorf("HourOfDay = %v", c.State().HourOfDay)
	}
}

func TestAdvanceFullDay(t *testing.T) {
	c := New(DefaultSettings())
	adv := c.Advance(realSecondsFor(24, 60))

	s := c.State()
	if s.HourOfDay != 12 || s.DayOfYear != 1 {
		t.Errorf("after 24h: day %v hour %v, want day 1 hour 12", s.DayOfYear, s.HourOfDay)
	}
	if adv.DaysCrossed != 1 || adv.YearsCrossed != 0 {
		t.Errorf("Advance = %+v, want one day crossed", adv)
	}
}

func TestAdvanceRollover(t *testing.T) {
	tests := []struct {
		name      string
		day, hour float64
		addHours  float64
		wantDay   float64
		wantHour  float64
		wantDays  int
		wantYears int
	}{
		{"within day", 10, 3, 5, 10, 8, 0, 0},
		{"hour overflow", 10, 23, 2, 11, 1, 1, 0},
		{"year overflow", 364, 23, 2, 0, 1, 1, 1},
		{"many days", 0, 0, 24 * 400, 35, 0, 400, 1},
		{"exactly midnight", 5, 18, 6, 6, 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			s.DayOfYear, s.HourOfDay, s.Speed = tt.day, tt.hour, 100
			c := New(s)

			adv := c.Advance(realSecondsFor(tt.addHours, 100))
			got := c.State()

			if math.Abs(got.DayOfYear-tt.wantDay) > 1e-9 || math.Abs(got.HourOfDay-tt.wantHour) > 1e-9 {
				t.Errorf("day %v hour %v, want day %v hour %v", got.DayOfYear, got.HourOfDay, tt.wantDay, tt.wantHour)
			}
			if adv.DaysCrossed != tt.wantDays || adv.YearsCrossed != tt.wantYears {
				t.Errorf("Advance = %+v, want %d days %d years", adv, tt.wantDays, tt.wantYears)
			}
			if got.Year != tt.wantYears {
				t.Errorf("Year = %d, want %d", got.Year, tt.wantYears)
			}
			if got.HourOfDay < 0 || got.HourOfDay >= 24 || got.DayOfYear < 0 || got.DayOfYear >= 365 {
				t.Errorf("state out of range: %+v", got)
			}
		})
	}
}

func TestAdvanceIsAdditive(t *testing.T) {
	pairs := [][2]float64{
		{0.5, 0.25},
		{3, 7},
		{100, 1000},
		{0, 12.3},
		{1e-3, 4321},
	}

	for _, p := range pairs {
		a := New(DefaultSettings())
		a.Advance(p[0])
		a.Advance(p[1])

		b := New(DefaultSettings())
		b.Advance(p[0] + p[1])

		diff := math.Abs(yearHours(a.State()) - yearHours(b.State()))
		diff = math.Min(diff, 365*24-diff)
		if diff > 1e-9 {
			t.Errorf("advance(%v)+advance(%v) differs from advance(%v) by %v h", p[0], p[1], p[0]+p[1], diff)
		}
	}
}

func TestAdvanceIgnoredInputs(t *testing.T) {
	for _, delta := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		c := New(DefaultSettings())
		before := c.State()
		if adv := c.Advance(delta); adv != (Advance{}) {
			t.Errorf("Advance(%v) = %+v, want zero", delta, adv)
		}
		if c.State() != before {
			t.Errorf("Advance(%v) changed state", delta)
		}
	}
}

func TestAdvancePaused(t *testing.T) {
	c := New(DefaultSettings())
	c.SetPaused(true)
	c.Advance(1000)

	if c.State().HourOfDay != 12 || c.State().DayOfYear != 0 {
		t.Errorf("paused clock moved: %+v", c.State())
	}

	if c.TogglePause() {
		t.Fatal("TogglePause should resume")
	}
	c.Advance(1)
	if c.State().HourOfDay == 12 {
		t.Error("resumed clock did not move")
	}
}

func TestFrozenSpeed(t *testing.T) {
	s := DefaultSettings()
	s.Speed = 0
	c := New(s)
	c.Advance(500)

	if c.State().HourOfDay != 12 {
		t.Errorf("speed 0 moved the clock to %v", c.State().HourOfDay)
	}
}

func TestSetSpeedClamps(t *testing.T) {
	c := New(DefaultSettings())

	tests := []struct {
		in   float64
		want float64
	}{
		{120, 120},
		{-3, 0},
		{1e9, 10000},
		{math.Inf(1), 10000},
		{math.NaN(), 10000}, // ignored, keeps previous
	}
	for _, tt := range tests {
		c.SetSpeed(tt.in)
		if got := c.State().Speed; got != tt.want {
			t.Errorf("SetSpeed(%v) -> %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGroundModeCap(t *testing.T) {
	c := New(DefaultSettings())
	c.SetSpeed(500)

	c.SetGroundMode(true)
	if got := c.State().Speed; got != 30 {
		t.Errorf("entering ground: speed %v, want 30", got)
	}
	if c.EffectiveMaxSpeed() != 30 {
		t.Errorf("EffectiveMaxSpeed() = %v, want 30", c.EffectiveMaxSpeed())
	}
	if got := c.State().EffectiveMaxSpeed; got != 30 {
		t.Errorf("State().EffectiveMaxSpeed = %v, want 30", got)
	}

	c.SetSpeed(200)
	if got := c.State().Speed; got != 30 {
		t.Errorf("ground SetSpeed(200) -> %v, want 30", got)
	}

	c.SetGroundMode(false)
	if got := c.State().Speed; got != 30 {
		t.Errorf("leaving ground restored speed to %v, want 30", got)
	}
	if got := c.State().EffectiveMaxSpeed; got != 10000 {
		t.Errorf("State().EffectiveMaxSpeed after ground = %v, want 10000", got)
	}
	c.SetSpeed(200)
	if got := c.State().Speed; got != 200 {
		t.Errorf("SetSpeed(200) after ground -> %v", got)
	}
}

func TestScaleSpeed(t *testing.T) {
	c := New(DefaultSettings())

	c.ScaleSpeed(2)
	if got := c.State().Speed; got != 120 {
		t.Errorf("ScaleSpeed(2) -> %v, want 120", got)
	}

	c.SetSpeed(0)
	c.ScaleSpeed(2)
	if got := c.State().Speed; got != 1 {
		t.Errorf("ScaleSpeed(2) from 0 -> %v, want 1", got)
	}
	c.ScaleSpeed(0.5)
	if got := c.State().Speed; got != 0.5 {
		t.Errorf("ScaleSpeed(0.5) -> %v, want 0.5", got)
	}
}

func TestCyclicSetters(t *testing.T) {
	tests := []struct {
		name     string
		set      func(*Clock)
		wantDay  float64
		wantHour float64
	}{
		{"day wraps", func(c *Clock) { c.SetDayOfYear(370) }, 5, 12},
		{"negative day", func(c *Clock) { c.SetDayOfYear(-1) }, 364, 12},
		{"hour wraps", func(c *Clock) { c.SetHourOfDay(25.5) }, 0, 1.5},
		{"negative hour", func(c *Clock) { c.SetHourOfDay(-2) }, 0, 22},
		{"NaN day ignored", func(c *Clock) { c.SetDayOfYear(math.NaN()) }, 0, 12},
		{"NaN hour ignored", func(c *Clock) { c.SetHourOfDay(math.NaN()) }, 0, 12},
		{"month 3", func(c *Clock) { c.SetMonth(3) }, 60.8, 12},
		{"month clamps", func(c *Clock) { c.SetMonth(15) }, 334.4, 12},
		{"month low", func(c *Clock) { c.SetMonth(-2) }, 0, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(DefaultSettings())
			tt.set(c)
			s := c.State()
			if math.Abs(s.DayOfYear-tt.wantDay) > 1e-9 || math.Abs(s.HourOfDay-tt.wantHour) > 1e-9 {
				t.Errorf("day %v hour %v, want day %v hour %v", s.DayOfYear, s.HourOfDay, tt.wantDay, tt.wantHour)
			}
		})
	}
}

func TestStateMonth(t *testing.T) {
	tests := []struct {
		day  float64
		want int
	}{
		{0, 1},
		{30.3, 1},
		{30.4, 2},
		{364.9, 12},
	}
	for _, tt := range tests {
		if got := (State{DayOfYear: tt.day}).Month(); got != tt.want {
			t.Errorf("Month() at day %v = %d, want %d", tt.day, got, tt.want)
		}
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr error
	}{
		{"defaults", func(*Settings) {}, nil},
		{"negative min", func(s *Settings) { s.MinSpeed = -1 }, ErrSpeedBounds},
		{"max below min", func(s *Settings) { s.MinSpeed = 5; s.MaxSpeed = 1 }, ErrSpeedBounds},
		{"ground below min", func(s *Settings) { s.MinSpeed = 50 }, ErrSpeedBounds},
		{"zero calibration", func(s *Settings) { s.SimSecondsPerRealSecond = 0 }, ErrCalibration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
