package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/scene"
)

// Field of view of the ground sky canvas, in degrees.
const (
	fovAz = 180.0
	fovEl = 90.0
)

// Glyphs used in the sky canvas.
const (
	glyphSun     = '☀'
	glyphPath    = '·'
	glyphHorizon = '─'
)

// Sky colors by phase.
var skyColors = map[astro.DayPhase]lipgloss.Color{
	astro.PhaseNight: "61",
	astro.PhaseDawn:  "173",
	astro.PhaseDay:   "81",
	astro.PhaseDusk:  "168",
}

// SkyViewModel renders the sky as seen by the ground observer: the horizon,
// the cardinal points, the star and its path over the day.
type SkyViewModel struct {
	width    int
	height   int
	frame    scene.Frame
	hasFrame bool
	trace    astro.ElevationTrace

	camAz     float64 // azimuth at the centre of the canvas
	showTrace bool
}

// NewSkyViewModel creates a sky view facing south, like the ground camera.
func NewSkyViewModel() SkyViewModel {
	return SkyViewModel{
		camAz:     180,
		showTrace: true,
	}
}

// SetSize updates the viewport size.
func (m SkyViewModel) SetSize(width, height int) SkyViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData sets the frame and the day's sun trace.
func (m SkyViewModel) UpdateData(f scene.Frame, trace astro.ElevationTrace) SkyViewModel {
	m.frame = f
	m.hasFrame = true
	m.trace = trace
	return m
}

// Update handles input messages.
func (m SkyViewModel) Update(msg tea.Msg) (SkyViewModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "a":
			m.camAz = astro.Wrap(m.camAz-15, 360)
		case "d":
			m.camAz = astro.Wrap(m.camAz+15, 360)
		case "c":
			m.camAz = 180
		case "t":
			m.showTrace = !m.showTrace
		}
	}
	return m, nil
}

// View renders the sky view.
func (m SkyViewModel) View() string {
	if m.width < 40 || m.height < 10 {
		return "Terminal too small for sky view"
	}
	if !m.hasFrame {
		return "Waiting for first frame..."
	}

	canvasH := m.height - 4
	if canvasH < 5 {
		canvasH = 5
	}

	var b strings.Builder
	b.WriteString(m.renderSkyCanvas(m.width, canvasH))
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(RenderSunSparkline(m.trace, m.frame.Clock.HourOfDay))
	return b.String()
}

func (m SkyViewModel) renderStatus() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	sun := m.frame.Sun
	where := ""
	if sun.ElevationDeg <= 0 {
		where = dimStyle.Render(" (below horizon)")
	}
	return dimStyle.Render("Sun ") +
		valueStyle.Render(fmt.Sprintf("el %.1f° az %.1f°", sun.ElevationDeg, sun.AzimuthDeg)) + where +
		dimStyle.Render("  Facing ") + valueStyle.Render(fmt.Sprintf("%.0f°", m.camAz)) +
		dimStyle.Render("  Site ") + valueStyle.Render(scene.FormatSite(m.frame.Site)) + "\n"
}

func (m SkyViewModel) renderSkyCanvas(width, height int) string {
	canvas := make([][]rune, height)
	colors := make([][]lipgloss.Color, height)
	for y := 0; y < height; y++ {
		canvas[y] = make([]rune, width)
		colors[y] = make([]lipgloss.Color, width)
		for x := 0; x < width; x++ {
			canvas[y][x] = ' '
			colors[y][x] = "236"
		}
	}

	horizonY := height - 2
	for x := 0; x < width; x++ {
		canvas[horizonY][x] = glyphHorizon
		colors[horizonY][x] = "238"
	}

	m.drawCardinal(canvas, colors, width, height, "N", 0)
	m.drawCardinal(canvas, colors, width, height, "E", 90)
	m.drawCardinal(canvas, colors, width, height, "S", 180)
	m.drawCardinal(canvas, colors, width, height, "W", 270)

	if m.showTrace {
		for _, s := range m.trace.Samples {
			if s.ElevationDeg <= 0 {
				continue
			}
			x, y, ok := m.projectToScreen(s.AzimuthDeg, s.ElevationDeg, width, height)
			if ok && x >= 0 && x < width && y >= 0 && y < horizonY && canvas[y][x] == ' ' {
				canvas[y][x] = glyphPath
				colors[y][x] = "240"
			}
		}
	}

	sun := m.frame.Sun
	if x, y, ok := m.projectToScreen(sun.AzimuthDeg, sun.ElevationDeg, width, height); ok && sun.ElevationDeg > 0 {
		if x >= 0 && x < width && y >= 0 && y < horizonY {
			canvas[y][x] = glyphSun
			colors[y][x] = "220"
		}
	}

	var b strings.Builder
	sky := skyColors[m.frame.Phase]
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			ch := canvas[y][x]
			if ch == ' ' {
				b.WriteRune(ch)
				continue
			}
			color := colors[y][x]
			if ch == glyphHorizon && sky != "" {
				color = sky
			}
			b.WriteString(lipgloss.NewStyle().Foreground(color).Render(string(ch)))
		}
		b.WriteRune('\n')
	}
	return b.String()
}

func (m SkyViewModel) drawCardinal(canvas [][]rune, colors [][]lipgloss.Color, width, height int, label string, az float64) {
	x, _, visible := m.projectToScreen(az, 0, width, height)
	if !visible {
		return
	}
	y := height - 2 // horizon line

	if x >= 0 && x < width && y >= 0 && y < height {
		canvas[y][x] = rune(label[0])
		colors[y][x] = "252"
	}
}

// projectToScreen converts az/el to screen coordinates relative to the
// canvas centre azimuth.
func (m SkyViewModel) projectToScreen(az, el float64, width, height int) (int, int, bool) {
	dAz := normalizeAngle(az - m.camAz)

	if dAz < -fovAz/2 || dAz > fovAz/2 {
		return 0, 0, false
	}
	if el < 0 || el > fovEl {
		return 0, 0, false
	}

	// X: -fovAz/2..+fovAz/2 -> 0..width
	// Y: fovEl..0 -> 0..horizonY
	horizonY := height - 2

	x := int((dAz + fovAz/2) / fovAz * float64(width-1))
	y := int((fovEl - el) / fovEl * float64(horizonY))

	return x, y, true
}

// normalizeAngle wraps angle to -180..+180 range
func normalizeAngle(a float64) float64 {
	return astro.Wrap(a+180, 360) - 180
}
