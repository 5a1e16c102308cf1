package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/scene"
)

// SparklineWidth is the fixed width of the sun elevation sparkline.
const SparklineWidth = 48

// sparklineBlocks are the Unicode block characters for sparkline (0 = lowest, 7 = highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// elevColorLow is the color for low elevation (dark blue).
var elevColorLow = [3]uint8{0x1b, 0x2b, 0x4b}

// elevColorMid is the color for mid elevation (amber).
var elevColorMid = [3]uint8{0xc0, 0x78, 0x34}

// elevColorHigh is the color for high elevation (pale yellow).
var elevColorHigh = [3]uint8{0xff, 0xe9, 0x8b}

// RenderSunSparkline draws the star elevation over the simulated day, with a
// caret under the current hour. Night samples sit on the lowest block.
func RenderSunSparkline(trace astro.ElevationTrace, hour float64) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	samples := resampleElevation(trace.Samples, SparklineWidth)
	if len(samples) == 0 {
		return dimStyle.Render("No sun trace")
	}

	var sb strings.Builder
	for _, elev := range samples {
		// Clamp to valid range
		if elev < 0 {
			elev = 0
		}
		if elev > 90 {
			elev = 90
		}

		t := elev / 90.0
		blockIdx := int(t * 7.0)
		if blockIdx > 7 {
			blockIdx = 7
		}

		r, g, b := interpolateElevColor(t)
		color := fmt.Sprintf("#%02x%02x%02x", r, g, b)
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(sparklineBlocks[blockIdx])))
	}

	if s := trace.At(hour); s != nil {
		nowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
		sb.WriteString(nowStyle.Render(fmt.Sprintf(" now: %.0f°", s.ElevationDeg)))
	}
	if peak, ok := trace.Peak(); ok {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  peak %.0f° at %s  daylight %.1fh",
			peak.ElevationDeg, scene.FormatHour(peak.Hour), trace.DaylightHours())))
	}

	// caret row
	pos := int(astro.Wrap(hour, 24) / 24 * SparklineWidth)
	if pos >= SparklineWidth {
		pos = SparklineWidth - 1
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", pos))
	sb.WriteString(dimStyle.Render("^"))

	return sb.String()
}

// interpolateElevColor returns RGB color for elevation value t in [0, 1].
// Gradient: low (dark blue) → mid (amber) → high (pale yellow).
func interpolateElevColor(t float64) (uint8, uint8, uint8) {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	var r, g, b uint8
	if t < 0.5 {
		s := t * 2
		r = uint8(float64(elevColorLow[0])*(1-s) + float64(elevColorMid[0])*s)
		g = uint8(float64(elevColorLow[1])*(1-s) + float64(elevColorMid[1])*s)
		b = uint8(float64(elevColorLow[2])*(1-s) + float64(elevColorMid[2])*s)
	} else {
		s := (t - 0.5) * 2
		r = uint8(float64(elevColorMid[0])*(1-s) + float64(elevColorHigh[0])*s)
		g = uint8(float64(elevColorMid[1])*(1-s) + float64(elevColorHigh[1])*s)
		b = uint8(float64(elevColorMid[2])*(1-s) + float64(elevColorHigh[2])*s)
	}

	return r, g, b
}

// resampleElevation averages samples into a fixed number of buckets.
func resampleElevation(samples []astro.ElevationSample, width int) []float64 {
	if len(samples) == 0 || width <= 0 {
		return nil
	}

	result := make([]float64, width)
	samplesPerBucket := float64(len(samples)) / float64(width)

	for i := 0; i < width; i++ {
		startIdx := int(float64(i) * samplesPerBucket)
		endIdx := int(float64(i+1) * samplesPerBucket)
		if endIdx <= startIdx {
			endIdx = startIdx + 1
		}
		if endIdx > len(samples) {
			endIdx = len(samples)
			startIdx = min(startIdx, endIdx-1)
		}

		sum := 0.0
		count := 0
		for j := startIdx; j < endIdx; j++ {
			sum += samples[j].ElevationDeg
			count++
		}
		if count > 0 {
			result[i] = sum / float64(count)
		}
	}

	return result
}
