package camera

import "math"

// Transition is a one-shot eased move from Start to End over Duration seconds.
type Transition struct {
	Start    Pose
	End      Pose
	Duration float64
}

// Progress returns the linear progress in [0, 1] after elapsed seconds.
// A non-positive duration completes immediately.
func (t Transition) Progress(elapsed float64) float64 {
	if !(t.Duration > 0) {
		return 1
	}
	if math.IsNaN(elapsed) || elapsed <= 0 {
		return 0
	}
	return math.Min(elapsed/t.Duration, 1)
}

// Sample returns the pose after elapsed seconds. The endpoints are returned
// exactly, without interpolation error.
func (t Transition) Sample(elapsed float64) Pose {
	p := t.Progress(elapsed)
	switch {
	case p <= 0:
		return t.Start
	case p >= 1:
		return t.End
	}
	return t.Start.Lerp(t.End, EaseOutCubic(p))
}

// Done reports whether the transition has reached End.
func (t Transition) Done(elapsed float64) bool {
	return t.Progress(elapsed) >= 1
}
