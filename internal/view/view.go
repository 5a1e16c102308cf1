// Package view holds the viewpoint state machine: which of the three scene
// scales the camera currently frames.
package view

import (
	"fmt"
	"strings"
	"sync"
)

// Mode is one of the three viewpoints.
type Mode int

const (
	Ground Mode = iota
	System
	Galactic
)

// Modes lists every mode in tab-cycling order.
var Modes = []Mode{Ground, System, Galactic}

func (m Mode) String() string {
	switch m {
	case Ground:
		return "ground"
	case System:
		return "system"
	case Galactic:
		return "galactic"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	return m >= Ground && m <= Galactic
}

// Next returns the following mode in cycling order.
func (m Mode) Next() Mode {
	if !m.Valid() {
		return System
	}
	return Modes[(int(m)+1)%len(Modes)]
}

// MarshalText encodes the mode by name so it reads well in JSON.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid view mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMode converts a mode name (case-insensitive) to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ground":
		return Ground, nil
	case "system":
		return System, nil
	case "galactic", "galaxy":
		return Galactic, nil
	default:
		return System, fmt.Errorf("unknown view mode %q (want ground, system or galactic)", s)
	}
}

// Change describes one accepted mode switch.
type Change struct {
	From Mode
	To   Mode
}

// Machine tracks the current and previous viewpoint.
//
// The previous mode exists only after the first accepted switch. Requests for
// the mode already in effect are ignored and do not touch the previous mode.
type Machine struct {
	mu       sync.RWMutex
	current  Mode
	previous Mode
	hasPrev  bool

	subscribers map[int]func(Change)
	nextID      int
}

// NewMachine returns a machine starting in initial.
func NewMachine(initial Mode) *Machine {
	if !initial.Valid() {
		initial = System
	}
	return &Machine{
		current:     initial,
		subscribers: make(map[int]func(Change)),
	}
}

// Current returns the active mode.
func (m *Machine) Current() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Previous returns the mode before the last accepted switch.
func (m *Machine) Previous() (Mode, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.previous, m.hasPrev
}

// Switch requests a change to mode to. It returns the change and true when the
// mode actually changed; invalid or same-mode requests return false.
func (m *Machine) Switch(to Mode) (Change, bool) {
	if !to.Valid() {
		return Change{}, false
	}

	m.mu.Lock()
	if to == m.current {
		m.mu.Unlock()
		return Change{}, false
	}
	change := Change{From: m.current, To: to}
	m.previous = m.current
	m.hasPrev = true
	m.current = to

	subs := make([]func(Change), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	// notify outside the lock so subscribers may read the machine
	for _, fn := range subs {
		fn(change)
	}
	return change, true
}

// Subscribe registers fn to be called after every accepted switch.
// The returned function removes the subscription.
func (m *Machine) Subscribe(fn func(Change)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.subscribers[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}
