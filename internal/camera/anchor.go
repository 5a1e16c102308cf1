package camera

import (
	"fmt"
	"strings"

	"github.com/litescript/ls-orrery/internal/astro"
)

// Strategy selects how the ground anchor follows the spinning surface.
type Strategy int

const (
	// Incremental rotates the previous camera-to-centre vector by the per-tick
	// spin delta about the planet's axis, through the planet centre.
	Incremental Strategy = iota

	// Direct recomputes the camera from the observer frame every tick.
	Direct
)

func (s Strategy) String() string {
	switch s {
	case Incremental:
		return "incremental"
	case Direct:
		return "direct"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy converts a strategy name to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "incremental", "":
		return Incremental, nil
	case "direct":
		return Direct, nil
	default:
		return Incremental, fmt.Errorf("unknown anchor strategy %q (want incremental or direct)", s)
	}
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Kinematics is the per-tick upstream state the camera reads.
type Kinematics struct {
	Planet   astro.PlanetState
	Observer astro.ObserverFrame
}

// Anchor keeps a camera locked above a ground observer.
type Anchor struct {
	Strategy     Strategy
	Height       float64
	LookDistance float64

	rel      astro.Vec3 // camera position minus planet centre
	prevSpin float64
	seeded   bool
}

// NewAnchor returns an unseeded anchor.
func NewAnchor(strategy Strategy, height, lookDistance float64) *Anchor {
	return &Anchor{Strategy: strategy, Height: height, LookDistance: lookDistance}
}

// Reset drops the accumulated state; the next Update reseeds from the frame.
// Call it when the observer moves to a new site. Day and hour jumps keep the
// state: the stored offset is rotated by the spin delta like any tick.
func (a *Anchor) Reset() {
	a.seeded = false
	a.rel = astro.Vec3{}
	a.prevSpin = 0
}

// Seeded reports whether the anchor has state from a previous tick.
func (a *Anchor) Seeded() bool { return a.seeded }

// Update returns the ground pose for this tick.
//
// The camera sits Height above the observer along its up vector, looks toward
// the point LookDistance to the south and keeps the observer's up, so the
// horizon stays level as the planet turns. With Incremental the position is
// carried from the previous tick by rotating about the axis through the planet
// centre, which keeps the camera geosynchronous without the wobble a rotation
// about the observer point would introduce. Orbital motion is carried by
// storing the offset relative to the planet centre.
func (a *Anchor) Update(k Kinematics) Pose {
	frame := k.Observer
	centre := k.Planet.Position

	if a.Strategy == Direct || !a.seeded {
		a.rel = frame.Offset.Add(frame.Up.Mul(a.Height))
		a.seeded = true
	} else {
		delta := astro.WrapAngle(k.Planet.SpinAngle - a.prevSpin)
		a.rel = astro.RotateAbout(a.rel, k.Planet.SpinAxis, delta)
	}
	a.prevSpin = k.Planet.SpinAngle

	return Pose{
		Position: centre.Add(a.rel),
		Target:   frame.Position.Add(frame.South.Mul(a.LookDistance)),
		Up:       frame.Up,
	}
}
