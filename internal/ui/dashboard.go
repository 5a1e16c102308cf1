package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
)

// Styles for the dashboard
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// maxPanelEvents is how many recent events the panel lists.
const maxPanelEvents = 5

// DashboardModel is the status panel: clock, planet, observer, camera and the
// most recent scene events.
type DashboardModel struct {
	width        int
	height       int
	snapshot     state.Snapshot
	cameraHeight float64
}

// NewDashboardModel creates a panel that reports drift against cameraHeight.
func NewDashboardModel(cameraHeight float64) DashboardModel {
	return DashboardModel{cameraHeight: cameraHeight}
}

// Init implements the Bubble Tea model interface.
func (m DashboardModel) Init() tea.Cmd {
	return nil
}

// SetSize updates the viewport size.
func (m DashboardModel) SetSize(width, height int) DashboardModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new data.
func (m DashboardModel) UpdateData(snapshot state.Snapshot) DashboardModel {
	m.snapshot = snapshot
	return m
}

// View renders the panel.
func (m DashboardModel) View() string {
	if !m.snapshot.HasFrame {
		return "Waiting for first frame...\n"
	}
	f := m.snapshot.Frame

	var b strings.Builder
	b.WriteString(m.renderClock(f))
	b.WriteString("\n")
	b.WriteString(m.renderCamera(f))
	if events := m.renderEvents(); events != "" {
		b.WriteString("\n")
		b.WriteString(events)
	}
	return b.String()
}

func (m DashboardModel) renderClock(f scene.Frame) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Clock"))
	b.WriteString("\n")

	c := f.Clock
	speed := fmt.Sprintf("x%.0f", c.Speed)
	if c.Paused {
		speed += " " + pausedStyle.Render("[paused]")
	}
	if c.GroundMode {
		speed += labelStyle.Render(" (ground cap)")
	}

	rows := [][2]string{
		{"Time", fmt.Sprintf("year %d  day %.2f  %s  (month %d)", c.Year, c.DayOfYear, scene.FormatHour(c.HourOfDay), c.Month())},
		{"Speed", speed},
		{"Star dist", fmt.Sprintf("%.4f", f.Planet.StarDistance)},
		{"Spin", fmt.Sprintf("%.3f rad", astro.WrapAngle(f.Planet.SpinAngle))},
		{"Sun", fmt.Sprintf("el %5.1f°  az %5.1f°  %s", f.Sun.ElevationDeg, f.Sun.AzimuthDeg, f.Phase)},
	}
	for _, r := range rows {
		b.WriteString("  " + labelStyle.Render(fmt.Sprintf("%-10s", r[0])) + " " + rowStyle.Render(r[1]) + "\n")
	}
	return b.String()
}

func (m DashboardModel) renderCamera(f scene.Frame) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Camera"))
	b.WriteString("\n")

	mode := f.Mode.String()
	if f.PreviousMode != nil {
		mode += labelStyle.Render(" (from " + f.PreviousMode.String() + ")")
	}
	b.WriteString("  " + labelStyle.Render(fmt.Sprintf("%-10s", "View")) + " " + rowStyle.Render(mode) + "\n")
	b.WriteString("  " + labelStyle.Render(fmt.Sprintf("%-10s", "Altitude")) + " " +
		rowStyle.Render(fmt.Sprintf("%.4f", f.CameraAltitude)))
	if f.Anchored() {
		b.WriteString(labelStyle.Render(fmt.Sprintf("  drift %.1e", f.AltitudeDrift(m.cameraHeight))))
	}
	b.WriteString("\n")

	if f.Transitioning {
		b.WriteString("  " + labelStyle.Render(fmt.Sprintf("%-10s", "Transition")) + " " +
			m.renderProgressBar(f.TransitionProgress, 20) + "\n")
	} else if !f.CameraUpdated {
		b.WriteString("  " + errorStyle.Render("camera held: no kinematics") + "\n")
	}
	return b.String()
}

// renderProgressBar draws a bar filling from left as progress goes 0 to 1.
func (m DashboardModel) renderProgressBar(progress float64, width int) string {
	filled := int(progress * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	var style lipgloss.Style
	switch {
	case progress >= 0.8:
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("46")) // green
	case progress >= 0.4:
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("226")) // yellow
	default:
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("39")) // blue
	}

	return "[" + style.Render(bar) + "]" + fmt.Sprintf(" %3.0f%%", progress*100)
}

func (m DashboardModel) renderEvents() string {
	events := m.snapshot.Events
	if len(events) == 0 {
		return ""
	}
	if len(events) > maxPanelEvents {
		events = events[len(events)-maxPanelEvents:]
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Events"))
	b.WriteString("\n")
	// newest first
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		line := fmt.Sprintf("%-12s day %6.2f %s  %s",
			e.Type, e.DayOfYear, scene.FormatHour(e.HourOfDay), truncate(e.Detail, 28))
		b.WriteString("  " + eventStyle(e.Type).Render(line) + "\n")
	}
	return b.String()
}

func eventStyle(t state.EventType) lipgloss.Style {
	switch t {
	case state.EventSunrise:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	case state.EventSunset:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("166"))
	case state.EventModeSwitch:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	case state.EventPerihelion, state.EventNewYear:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("51"))
	default:
		return rowStyle
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
