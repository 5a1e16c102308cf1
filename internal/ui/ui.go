// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/version"
	"github.com/litescript/ls-orrery/internal/view"
)

// Frame pacing.
const (
	frameInterval = 33 * time.Millisecond
	animInterval  = 80 * time.Millisecond

	// maxFrameDelta caps the real time fed to one tick, so a stalled
	// terminal does not jump the simulation.
	maxFrameDelta = 0.25

	traceSamples = 96
	siteStepDeg  = 5
)

// Msg types for Bubble Tea
type (
	// TickMsg advances the scene by the wall time since the previous one.
	TickMsg time.Time

	// AnimTickMsg triggers spinner animation updates.
	AnimTickMsg time.Time
)

// traceKey identifies the day and site a sun trace was computed for.
type traceKey struct {
	day  int
	site astro.GeoCoordinate
}

// Model is the root Bubble Tea model. It owns the tick loop: every TickMsg
// advances the manager by the elapsed wall time.
type Model struct {
	// Dependencies
	state *state.Manager

	// UI state
	width     int
	height    int
	ready     bool
	statusMsg string
	animTick  int
	lastTick  time.Time

	// Sub-models
	dashboard DashboardModel
	sky       SkyViewModel
	orrery    OrreryModel

	snapshot state.Snapshot
	trace    astro.ElevationTrace
	traced   traceKey
	hasTrace bool
}

// New creates a new root UI model.
func New(mgr *state.Manager) Model {
	var (
		orbit        []astro.Vec3
		star, galaxy astro.Vec3
		height       float64
	)
	mgr.Read(func(e *scene.Engine) {
		orbit = e.OrbitPath(0)
		star = e.Planet().Star
		galaxy = e.Config().Scene.GalaxyCenter
		height = e.Config().Camera.Height
	})

	m := Model{
		state:     mgr,
		dashboard: NewDashboardModel(height),
		sky:       NewSkyViewModel(),
		orrery:    NewOrreryModel(orbit, star, galaxy),
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		animTickCmd(),
		m.dashboard.Init(),
	)
}

// keyActions maps global keys to engine mutations. Each returns a status
// line, or "" to keep the current one.
var keyActions = map[string]func(e *scene.Engine) string{
	"1": func(e *scene.Engine) string { return switchTo(e, view.Ground) },
	"g": func(e *scene.Engine) string { return switchTo(e, view.Ground) },
	"2": func(e *scene.Engine) string { return switchTo(e, view.System) },
	"s": func(e *scene.Engine) string { return switchTo(e, view.System) },
	"3": func(e *scene.Engine) string { return switchTo(e, view.Galactic) },
	"G": func(e *scene.Engine) string { return switchTo(e, view.Galactic) },
	"tab": func(e *scene.Engine) string {
		return "View: " + e.CycleMode().String()
	},
	" ": func(e *scene.Engine) string {
		if e.TogglePause() {
			return "Paused"
		}
		return "Running"
	},
	"+": func(e *scene.Engine) string { e.ScaleSpeed(2); return speedStatus(e) },
	"=": func(e *scene.Engine) string { e.ScaleSpeed(2); return speedStatus(e) },
	"-": func(e *scene.Engine) string { e.ScaleSpeed(0.5); return speedStatus(e) },
	"]": func(e *scene.Engine) string {
		e.SetDayOfYear(e.Clock().DayOfYear + 1)
		return fmt.Sprintf("Day %.0f", e.Clock().DayOfYear)
	},
	"[": func(e *scene.Engine) string {
		e.SetDayOfYear(e.Clock().DayOfYear - 1)
		return fmt.Sprintf("Day %.0f", e.Clock().DayOfYear)
	},
	".": func(e *scene.Engine) string {
		e.SetHourOfDay(e.Clock().HourOfDay + 1)
		return "Time " + scene.FormatHour(e.Clock().HourOfDay)
	},
	",": func(e *scene.Engine) string {
		e.SetHourOfDay(e.Clock().HourOfDay - 1)
		return "Time " + scene.FormatHour(e.Clock().HourOfDay)
	},
	"up": func(e *scene.Engine) string {
		e.SetLatitude(e.Site().LatDeg + siteStepDeg)
		return "Site " + scene.FormatSite(e.Site())
	},
	"down": func(e *scene.Engine) string {
		e.SetLatitude(e.Site().LatDeg - siteStepDeg)
		return "Site " + scene.FormatSite(e.Site())
	},
	"right": func(e *scene.Engine) string {
		e.SetLongitude(e.Site().LonDeg + siteStepDeg)
		return "Site " + scene.FormatSite(e.Site())
	},
	"left": func(e *scene.Engine) string {
		e.SetLongitude(e.Site().LonDeg - siteStepDeg)
		return "Site " + scene.FormatSite(e.Site())
	},
}

func switchTo(e *scene.Engine, mode view.Mode) string {
	if !e.SetMode(mode) {
		return ""
	}
	return "View: " + mode.String()
}

func speedStatus(e *scene.Engine) string {
	return fmt.Sprintf("Speed x%.0f (max %.0f)", e.Clock().Speed, e.Clock().EffectiveMaxSpeed)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if key == "q" || key == "ctrl+c" {
			return m, tea.Quit
		}
		if action, ok := keyActions[key]; ok {
			var status string
			m.state.Apply(func(e *scene.Engine) { status = action(e) })
			if status != "" {
				m.statusMsg = status
			}
			m.refresh()
		} else {
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Header takes 4 lines, footer 2, the dashboard panel sits on the right
		contentHeight := msg.Height - 6
		canvasWidth := msg.Width
		if msg.Width >= 120 {
			canvasWidth = msg.Width - 52
		}
		m.dashboard = m.dashboard.SetSize(msg.Width-canvasWidth, contentHeight)
		m.sky = m.sky.SetSize(canvasWidth, contentHeight)
		m.orrery = m.orrery.SetSize(canvasWidth, contentHeight)

	case TickMsg:
		now := time.Time(msg)
		dt := 0.0
		if !m.lastTick.IsZero() {
			dt = now.Sub(m.lastTick).Seconds()
			if dt > maxFrameDelta {
				dt = maxFrameDelta
			}
		}
		m.lastTick = now
		m.state.Tick(dt)
		m.refresh()
		cmds = append(cmds, tickCmd())

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

// refresh pulls a fresh snapshot and pushes it to the sub-models. The sun
// trace is recomputed only when the day or the site changes.
func (m *Model) refresh() {
	m.snapshot = m.state.Snapshot()
	if !m.snapshot.HasFrame {
		return
	}
	f := m.snapshot.Frame

	key := traceKey{day: int(f.Clock.DayOfYear), site: f.Site}
	if !m.hasTrace || key != m.traced {
		m.state.Read(func(e *scene.Engine) { m.trace = e.SunTrace(traceSamples) })
		m.traced = key
		m.hasTrace = true
	}

	m.dashboard = m.dashboard.UpdateData(m.snapshot)
	m.sky = m.sky.UpdateData(f, m.trace)
	m.orrery = m.orrery.UpdateData(f)
}

// mode is the view in effect for rendering.
func (m Model) mode() view.Mode {
	if m.snapshot.HasFrame {
		return m.snapshot.Frame.Mode
	}
	var mode view.Mode
	m.state.Read(func(e *scene.Engine) { mode = e.Mode() })
	return mode
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.mode() {
	case view.Ground:
		m.sky, cmd = m.sky.Update(msg)
	default:
		m.orrery, cmd = m.orrery.Update(msg)
	}
	return cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.mode() {
	case view.Ground:
		content = m.sky.View()
	default:
		content = m.orrery.View()
	}

	if m.width >= 120 {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, "  ", m.dashboard.View())
	}

	return m.renderFrame(content)
}

func (m Model) renderFrame(content string) string {
	header := m.renderHeader()
	footer := m.renderFooter()

	return header + "\n" + content + "\n" + footer
}

func (m Model) renderHeader() string {
	return m.renderLogo() + m.renderTabs() + "\n"
}

func (m Model) renderLogo() string {
	title := "  ls-orrery "
	var b strings.Builder
	b.WriteString("\n")

	runes := []rune(title)
	for col, r := range runes {
		color := gradientColor(col, 0, len(runes), 1)
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).Render(string(r)))
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render(fmt.Sprintf("· Celestial kinematics · v%s", version.Version)))
	b.WriteString("\n")
	return b.String()
}

// gradientColor returns a hex color for a position in the title gradient.
// Creates a vibrant nebula effect: blue -> purple -> magenta -> pink
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	// Blue (#3B82F6) -> Purple (#8B5CF6) -> Magenta (#D946EF) -> Pink (#EC4899)
	var r, g, b float64

	if xRatio < 0.33 {
		t := xRatio / 0.33
		r = 59 + t*(139-59)
		g = 130 + t*(92-130)
		b = 246
	} else if xRatio < 0.66 {
		t := (xRatio - 0.33) / 0.33
		r = 139 + t*(217-139)
		g = 92 + t*(70-92)
		b = 246 + t*(239-246)
	} else {
		t := (xRatio - 0.66) / 0.34
		r = 217 + t*(236-217)
		g = 70 + t*(72-70)
		b = 239 + t*(153-239)
	}

	// Vertical fade: brighter at top, darker toward bottom
	brightnessFactor := 1.0 - (yRatio * 0.5)

	return fmt.Sprintf("#%02X%02X%02X",
		clampByte(r*brightnessFactor), clampByte(g*brightnessFactor), clampByte(b*brightnessFactor))
}

func clampByte(v float64) int {
	switch {
	case v > 255:
		return 255
	case v < 0:
		return 0
	default:
		return int(v)
	}
}

func (m Model) renderTabs() string {
	tabs := []struct {
		mode  view.Mode
		label string
	}{
		{view.Ground, "[1] Ground"},
		{view.System, "[2] System"},
		{view.Galactic, "[3] Galactic"},
	}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	current := m.mode()
	var parts []string
	for _, tab := range tabs {
		if tab.mode == current {
			parts = append(parts, activeStyle.Render("▶ "+tab.label))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab.label))
		}
	}

	line := "  " + strings.Join(parts, "  ")
	if m.snapshot.HasFrame {
		c := m.snapshot.Frame.Clock
		line += "    " + headerStyle.Render(fmt.Sprintf("Day %.1f %s", c.DayOfYear, scene.FormatHour(c.HourOfDay)))
	}
	return line
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	// Animated spinner frames
	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var status string
	switch {
	case !m.snapshot.HasFrame:
		status = accentStyle.Render(spinner) + dimStyle.Render(" starting...")
	case m.snapshot.Frame.Clock.Paused:
		status = pausedStyle.Render("❚❚ paused")
	default:
		status = accentStyle.Render(spinner) + dimStyle.Render(fmt.Sprintf(" x%.0f", m.snapshot.Frame.Clock.Speed))
		if m.snapshot.TickDuration > 0 {
			status += dimStyle.Render(" (" + m.snapshot.TickDuration.Round(time.Microsecond).String() + ")")
		}
	}

	var help string
	switch m.mode() {
	case view.Ground:
		help = dimStyle.Render("a/d: look | c: south | t: sun path | ↑↓←→: move site")
	default:
		help = dimStyle.Render("i/o: zoom | l: labels | v: camera")
	}
	help += dimStyle.Render(" | tab: view | space: pause | +/-: speed | [/]: day | ,/.: hour | q: quit")

	footer := "  " + status + "  " + dimStyle.Render("|") + "  " + help

	if m.statusMsg != "" {
		footer += "\n  " + dimStyle.Render(m.statusMsg)
	}

	return footer
}

// Snapshot returns the snapshot the model last rendered from.
func (m Model) Snapshot() state.Snapshot {
	return m.snapshot
}

// StatusMessage returns the last status line.
func (m Model) StatusMessage() string {
	return m.statusMsg
}

func tickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(animInterval, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}
