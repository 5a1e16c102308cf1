package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/view"
)

// Glyphs used in the orrery canvas.
const (
	glyphStar    = '☉'
	glyphPlanet  = '●'
	glyphCamera  = '◉'
	glyphGalaxy  = '✷'
	glyphOrbit   = '·'
	glyphSightPt = '∙'
)

// Discrete zoom levels for clean stepping
var zoomLevels = []float64{0.25, 0.5, 0.75, 1.0, 1.5, 2.0, 3.0, 5.0, 10.0}

// OrreryModel renders a top-down view of the system, looking down the world
// Y axis: the orbit, the star, the planet and the camera. In galactic mode the
// galactic centre is framed as well.
type OrreryModel struct {
	width    int
	height   int
	frame    scene.Frame
	hasFrame bool

	orbit        []astro.Vec3
	star         astro.Vec3
	galaxyCenter astro.Vec3

	zoomLevel  int
	showLabels bool
	showCamera bool
}

// NewOrreryModel creates the view over a fixed orbit path.
func NewOrreryModel(orbit []astro.Vec3, star, galaxyCenter astro.Vec3) OrreryModel {
	return OrreryModel{
		orbit:        orbit,
		star:         star,
		galaxyCenter: galaxyCenter,
		zoomLevel:    3, // Index of 1.0 in zoomLevels
		showLabels:   true,
		showCamera:   true,
	}
}

// scale returns the current zoom scale.
func (m OrreryModel) scale() float64 {
	if m.zoomLevel < 0 || m.zoomLevel >= len(zoomLevels) {
		return 1.0
	}
	return zoomLevels[m.zoomLevel]
}

// SetSize updates the viewport size.
func (m OrreryModel) SetSize(width, height int) OrreryModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData sets the frame to draw.
func (m OrreryModel) UpdateData(f scene.Frame) OrreryModel {
	m.frame = f
	m.hasFrame = true
	return m
}

// Update handles input messages.
func (m OrreryModel) Update(msg tea.Msg) (OrreryModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "i":
			if m.zoomLevel < len(zoomLevels)-1 {
				m.zoomLevel++
			}
		case "o":
			if m.zoomLevel > 0 {
				m.zoomLevel--
			}
		case "l":
			m.showLabels = !m.showLabels
		case "v":
			m.showCamera = !m.showCamera
		}
	}
	return m, nil
}

// View renders the orrery.
func (m OrreryModel) View() string {
	if m.width < 40 || m.height < 10 {
		return "Terminal too small for orrery view"
	}
	if !m.hasFrame {
		return "Waiting for first frame..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.buildCanvas(), m.renderHUD())
}

// bodyPos tracks a glyph's screen position for label rendering.
type bodyPos struct {
	x, y int
	name string
}

// framing returns the world point at the canvas centre and the world
// distance that must fit in half the canvas.
func (m OrreryModel) framing() (astro.Vec3, float64) {
	centre := m.star
	if m.frame.Mode == view.Galactic {
		centre = m.star.Add(m.galaxyCenter).Mul(0.5)
	}

	extent := 0.0
	for _, p := range m.orbit {
		extent = math.Max(extent, planarDist(p, centre))
	}
	if m.frame.Mode == view.Galactic {
		extent = math.Max(extent, planarDist(m.galaxyCenter, centre))
	}
	if m.showCamera {
		extent = math.Max(extent, planarDist(m.frame.Camera.Position, centre))
	}
	if extent == 0 {
		extent = 1
	}
	return centre, extent
}

// planarDist is the distance between a and b in the X-Z plane.
func planarDist(a, b astro.Vec3) float64 {
	return math.Hypot(a.X()-b.X(), a.Z()-b.Z())
}

// buildCanvas renders the scene to a string canvas.
func (m OrreryModel) buildCanvas() string {
	// Reserve space for HUD (2 lines)
	canvasH := m.height - 3
	if canvasH < 5 {
		canvasH = 5
	}
	canvasW := m.width

	grid := make([][]rune, canvasH)
	for y := range grid {
		grid[y] = make([]rune, canvasW)
		for x := range grid[y] {
			grid[y][x] = ' '
		}
	}

	screenCenterX := canvasW / 2
	screenCenterY := canvasH / 2

	centre, extent := m.framing()
	// characters are about twice as tall as wide
	maxDisplayR := float64(min(screenCenterX, screenCenterY*2)) * 0.9
	displayScale := maxDisplayR / extent * m.scale()

	toScreen := func(p astro.Vec3) (int, int, bool) {
		sx := screenCenterX + int(math.Round((p.X()-centre.X())*displayScale))
		sy := screenCenterY + int(math.Round((p.Z()-centre.Z())*displayScale*0.5))
		return sx, sy, sx >= 0 && sx < canvasW && sy >= 0 && sy < canvasH
	}
	plot := func(p astro.Vec3, glyph rune, overwrite bool) (int, int, bool) {
		x, y, ok := toScreen(p)
		if ok && (overwrite || grid[y][x] == ' ') {
			grid[y][x] = glyph
		}
		return x, y, ok
	}

	m.drawOrbit(plot)

	var positions []bodyPos
	if m.frame.Mode == view.Galactic {
		if x, y, ok := plot(m.galaxyCenter, glyphGalaxy, true); ok {
			positions = append(positions, bodyPos{x, y, "Galactic centre"})
		}
	}
	if x, y, ok := plot(m.star, glyphStar, true); ok {
		positions = append(positions, bodyPos{x, y, "Star"})
	}
	if x, y, ok := plot(m.frame.Planet.Position, glyphPlanet, true); ok {
		positions = append(positions, bodyPos{x, y, "Planet"})
	}
	if m.showCamera {
		// dotted line of sight from the camera to its target
		cam := m.frame.Camera
		for i := 1; i < 8; i++ {
			plot(cam.Position.Add(cam.Target.Sub(cam.Position).Mul(float64(i)/8)), glyphSightPt, false)
		}
		if x, y, ok := plot(cam.Position, glyphCamera, true); ok {
			positions = append(positions, bodyPos{x, y, "Camera"})
		}
	}

	if m.showLabels {
		m.renderLabels(grid, canvasW, positions)
	}

	return m.renderGrid(grid)
}

// drawOrbit joins consecutive orbit vertices with interpolated dots.
func (m OrreryModel) drawOrbit(plot func(astro.Vec3, rune, bool) (int, int, bool)) {
	for i := 1; i < len(m.orbit); i++ {
		a, b := m.orbit[i-1], m.orbit[i]
		for s := 0; s < 4; s++ {
			plot(a.Add(b.Sub(a).Mul(float64(s)/4)), glyphOrbit, false)
		}
	}
}

func (m OrreryModel) renderLabels(grid [][]rune, width int, positions []bodyPos) {
	for _, p := range positions {
		label := []rune(p.name)
		x := p.x + 2
		if x+len(label) >= width {
			// no room on the right, try the left
			x = p.x - 1 - len(label)
		}
		if x < 0 {
			continue
		}
		// only write into empty cells
		free := true
		for i := range label {
			if grid[p.y][x+i] != ' ' {
				free = false
				break
			}
		}
		if !free {
			continue
		}
		for i, r := range label {
			grid[p.y][x+i] = r
		}
	}
}

func (m OrreryModel) renderGrid(grid [][]rune) string {
	var b strings.Builder

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	sightStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	sunStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	planetStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	cameraStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	galaxyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("141")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("249"))

	for _, row := range grid {
		for _, ch := range row {
			var style lipgloss.Style

			switch ch {
			case ' ':
				b.WriteRune(ch)
				continue
			case glyphOrbit:
				style = dimStyle
			case glyphSightPt:
				style = sightStyle
			case glyphStar:
				style = sunStyle
			case glyphPlanet:
				style = planetStyle
			case glyphCamera:
				style = cameraStyle
			case glyphGalaxy:
				style = galaxyStyle
			default:
				// Label text characters
				style = labelStyle
			}

			b.WriteString(style.Render(string(ch)))
		}
		b.WriteRune('\n')
	}

	return b.String()
}

func (m OrreryModel) renderHUD() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	f := m.frame
	b.WriteString(headerStyle.Render("● Planet"))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Star dist: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.3f", f.Planet.StarDistance)))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Axis: "))
	axis := f.Planet.SpinAxis
	b.WriteString(valueStyle.Render(fmt.Sprintf("(%.2f, %.2f, %.2f)", axis.X(), axis.Y(), axis.Z())))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Camera alt: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.2f", f.CameraAltitude)))
	b.WriteString("\n")

	onOff := func(v bool) string {
		if v {
			return "on"
		}
		return "off"
	}
	b.WriteString(dimStyle.Render("Zoom:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.2gx", m.scale())))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Labels:"))
	b.WriteString(valueStyle.Render(onOff(m.showLabels)))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Camera:"))
	b.WriteString(valueStyle.Render(onOff(m.showCamera)))

	return b.String()
}
