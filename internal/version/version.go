// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Websocket frame feed, Prometheus metrics, sun elevation sparkline
// 0.2.0 - Incremental ground anchoring, eased view transitions, tilt-frame noon calibration
// 0.1.0 - Initial release: clock, elliptical orbit, spin, surface frame, TUI
