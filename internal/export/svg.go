package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/plantsim/internal/analysis"
	"github.com/san-kum/plantsim/internal/trajectory"
)

const (
	outputColor = "#00ff88"
	inputColor  = "#00ccff"
)

type series struct {
	xs, ys []float64
	color  string
}

// TrajectorySVG plots the output of t against time, and the input as a
// second line when recorded. Both share one vertical scale.
func TrajectorySVG(t *trajectory.Trajectory, width, height int) string {
	if t.Len() < 2 {
		return ""
	}
	lines := []series{{xs: t.Time, ys: t.Output, color: outputColor}}
	if t.HasInput() {
		lines = append(lines, series{xs: t.Time, ys: t.Input, color: inputColor})
	}
	return render(lines, width, height)
}

// PortraitSVG plots a phase portrait.
func PortraitSVG(p *analysis.Portrait, width, height int) string {
	if len(p.Points) < 2 {
		return ""
	}
	xs := make([]float64, len(p.Points))
	ys := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		xs[i], ys[i] = pt.X, pt.Y
	}
	return render([]series{{xs: xs, ys: ys, color: outputColor}}, width, height)
}

func render(lines []series, width, height int) string {
	minX, maxX := lines[0].xs[0], lines[0].xs[0]
	minY, maxY := lines[0].ys[0], lines[0].ys[0]
	for _, s := range lines {
		for i := range s.xs {
			minX, maxX = min(minX, s.xs[i]), max(maxX, s.xs[i])
			minY, maxY = min(minY, s.ys[i]), max(maxY, s.ys[i])
		}
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.05
	minY -= rangeY * 0.1
	rangeX *= 1.1
	rangeY *= 1.2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	if minY < 0 && minY+rangeY > 0 {
		y0 := float64(height) - (0-minY)/rangeY*float64(height)
		fmt.Fprintf(&sb, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444466" stroke-width="1"/>
`, y0, width, y0)
	}

	for _, s := range lines {
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, s.color)
		for i := range s.xs {
			x := (s.xs[i] - minX) / rangeX * float64(width)
			y := float64(height) - (s.ys[i]-minY)/rangeY*float64(height)
			if i == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}
