// Package state provides thread-safe access to the scene engine.
package state

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/view"
)

// EventType represents the type of scene event.
type EventType string

const (
	EventModeSwitch EventType = "MODE_SWITCH"
	EventNewDay     EventType = "NEW_DAY"
	EventNewYear    EventType = "NEW_YEAR"
	EventPerihelion EventType = "PERIHELION"
	EventSunrise    EventType = "SUNRISE"
	EventSunset     EventType = "SUNSET"
)

// Event represents a notable change in the scene.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Tick      uint64    `json:"tick"`
	DayOfYear float64   `json:"day_of_year"`
	HourOfDay float64   `json:"hour_of_day"`
	Detail    string    `json:"detail,omitempty"`
}

// Listener receives every frame with the events it produced.
type Listener func(f scene.Frame, events []Event)

// Manager owns the engine and serializes ticks and mutations. Mutations go
// through Apply, so a mode switch or setter is applied between ticks and is
// visible to the whole of the next one.
type Manager struct {
	mu sync.RWMutex

	engine *scene.Engine

	// Current state
	current      scene.Frame
	hasFrame     bool
	lastTick     time.Time
	tickDuration time.Duration

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	// events raised since the last tick; handed to listeners
	pending []Event

	listeners map[int]Listener
	nextID    int

	now func() time.Time
}

// Config holds configuration for the state manager.
type Config struct {
	MaxEvents int
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxEvents: 50, // Last 50 events
	}
}

// NewManager wraps engine. The manager takes ownership: the engine must not be
// used directly afterwards.
func NewManager(engine *scene.Engine, cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	m := &Manager{
		engine:    engine,
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
		listeners: make(map[int]Listener),
		now:       time.Now,
	}

	// switches happen inside Apply, which holds the lock
	engine.Subscribe(func(c view.Change) {
		cs := engine.Clock()
		m.addEvent(Event{
			Type:      EventModeSwitch,
			Timestamp: m.now(),
			Tick:      m.current.Tick,
			DayOfYear: cs.DayOfYear,
			HourOfDay: cs.HourOfDay,
			Detail:    fmt.Sprintf("%s -> %s", c.From, c.To),
		})
	})
	return m
}

// Tick advances the engine by realDelta seconds, records events and notifies
// listeners. It returns the new frame.
func (m *Manager) Tick(realDelta float64) scene.Frame {
	m.mu.Lock()

	start := m.now()
	hadPrev := m.hasFrame
	// baseline at the start of this advance, so setter jumps since the last
	// frame are not mistaken for a sunrise or sunset
	sunBefore := m.engine.SunNow().ElevationDeg
	f := m.engine.Tick(realDelta)
	m.tickDuration = m.now().Sub(start)
	m.lastTick = start

	if hadPrev {
		m.detectEvents(sunBefore, f)
	}
	m.current = f
	m.hasFrame = true

	raised := m.pending
	m.pending = nil
	listeners := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(f, raised)
	}
	return f
}

// detectEvents inspects the advance that produced f. sunBefore is the star
// elevation when the advance began. Only time that the clock actually ran is
// considered; setter jumps raise nothing.
func (m *Manager) detectEvents(sunBefore float64, f scene.Frame) {
	adv := f.Advance
	if adv.SimHours <= 0 {
		return
	}

	at := func(t EventType, detail string) Event {
		return Event{
			Type:      t,
			Timestamp: m.now(),
			Tick:      f.Tick,
			DayOfYear: f.Clock.DayOfYear,
			HourOfDay: f.Clock.HourOfDay,
			Detail:    detail,
		}
	}

	if adv.DaysCrossed > 0 {
		m.addEvent(at(EventNewDay, fmt.Sprintf("day %d", int(f.Clock.DayOfYear))))
	}
	if adv.YearsCrossed > 0 {
		m.addEvent(at(EventNewYear, fmt.Sprintf("year %d", f.Clock.Year)))
	}

	// perihelion: count whole years since the perihelion day before and after
	peri := m.engine.Config().Orbit.PerihelionDay
	end := float64(f.Clock.Year)*astro.DaysPerYear + f.Clock.DayOfYear + f.Clock.HourOfDay/24
	begin := end - adv.SimHours/24
	if math.Floor((end-peri)/astro.DaysPerYear) > math.Floor((begin-peri)/astro.DaysPerYear) {
		m.addEvent(at(EventPerihelion, fmt.Sprintf("distance %.3f", f.Planet.StarDistance)))
	}

	after := f.Sun.ElevationDeg
	switch {
	case sunBefore <= 0 && after > 0:
		m.addEvent(at(EventSunrise, fmt.Sprintf("azimuth %.1f", f.Sun.AzimuthDeg)))
	case sunBefore > 0 && after <= 0:
		m.addEvent(at(EventSunset, fmt.Sprintf("azimuth %.1f", f.Sun.AzimuthDeg)))
	}
}

// addEvent adds an event to the ring buffer. Callers hold m.mu.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
	m.pending = append(m.pending, e)
}

// Apply runs fn with exclusive access to the engine, between ticks.
func (m *Manager) Apply(fn func(e *scene.Engine)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.engine)
}

// Read runs fn with shared access to the engine. fn must not mutate it.
func (m *Manager) Read(fn func(e *scene.Engine)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn(m.engine)
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Frame        scene.Frame
	HasFrame     bool
	LastTick     time.Time
	TickDuration time.Duration
	Events       []Event
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Snapshot{
		Frame:        m.current,
		HasFrame:     m.hasFrame,
		LastTick:     m.lastTick,
		TickDuration: m.tickDuration,
		Events:       m.getEventsOrdered(),
	}
}

// Frame returns the latest frame; ok is false before the first tick.
func (m *Manager) Frame() (scene.Frame, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, m.hasFrame
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// Subscribe registers fn to run after every tick, outside the lock.
// The returned function removes it.
func (m *Manager) Subscribe(fn Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// HasData returns true once the engine has ticked.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasFrame
}
