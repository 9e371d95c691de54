package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/plantsim/internal/golden"
	"github.com/san-kum/plantsim/internal/metrics"
	"github.com/san-kum/plantsim/internal/trajectory"
)

type PlotOptions struct {
	Width     int
	Height    int
	WithInput bool
}

var DefaultPlotOptions = PlotOptions{Width: 80, Height: 12, WithInput: true}

// Plot draws the output of t, and its input as a second series when
// requested and present.
func Plot(name string, t *trajectory.Trajectory, opts PlotOptions) string {
	if t.Len() == 0 {
		return Subtle.Render(name + ": empty trajectory")
	}
	end := t.Time[t.Len()-1]
	caption := fmt.Sprintf("%s  output over %.4gs (%d samples)", name, end, t.Len())
	graphOpts := []asciigraph.Option{
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
	}

	if opts.WithInput && t.HasInput() {
		caption = fmt.Sprintf("%s  output (green) and input (blue) over %.4gs", name, end)
		graphOpts = append(graphOpts,
			asciigraph.Caption(caption),
			asciigraph.SeriesColors(asciigraph.Green, asciigraph.Blue),
		)
		return asciigraph.PlotMany([][]float64{t.Output, t.Input}, graphOpts...)
	}
	graphOpts = append(graphOpts, asciigraph.Caption(caption))
	return asciigraph.Plot(t.Output, graphOpts...)
}

// MetricsTable lists metric results one per line.
func MetricsTable(results []metrics.Result) string {
	var b strings.Builder
	for _, r := range results {
		v := "n/a"
		if !math.IsNaN(r.Value) {
			v = fmt.Sprintf("%.6g", r.Value)
		}
		b.WriteString(MetricLabel.Render(r.Name) + MetricValue.Render(v) + "\n")
	}
	return b.String()
}

// ReportTable renders golden comparison reports with a pass/fail marker.
func ReportTable(reports []golden.Report) string {
	var b strings.Builder
	for _, r := range reports {
		mark := StatusRunning.Render("PASS")
		if !r.OK() {
			mark = StatusFailed.Render("FAIL")
		}
		b.WriteString(mark + " " + r.String() + "\n")
	}
	return b.String()
}
