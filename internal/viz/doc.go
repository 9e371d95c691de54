// Package viz renders trajectories and comparison results in the terminal.
//
// [Plot] draws a trajectory with asciigraph, [MetricsTable] and
// [ReportTable] format results with lipgloss, and [LiveModel] is a Bubble
// Tea program that drives a plant in real time.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset the plant
//	Up/K  - Raise input gain
//	Down/J - Lower input gain
//	Q     - Quit
package viz
