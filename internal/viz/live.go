package viz

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/plantsim/internal/trajectory"
)

const (
	historyCapacity = 600
	frameRate       = 30
)

type TickMsg time.Time

// LiveModel drives a plant with a profile in real time and charts the most
// recent input and output samples.
type LiveModel struct {
	plant   trajectory.Plant
	profile trajectory.Profile
	title   string
	dt      float64
	gain    float64
	k       int
	perTick int
	running bool
	inputs  []float64
	outputs []float64
	err     error
	width   int
}

func NewLiveModel(p trajectory.Plant, profile trajectory.Profile, dt float64, title string) LiveModel {
	return LiveModel{
		plant:   p,
		profile: profile,
		title:   title,
		dt:      dt,
		gain:    1,
		perTick: max(1, int(math.Round(1/(frameRate*dt)))),
		running: true,
		inputs:  make([]float64, 0, historyCapacity),
		outputs: make([]float64, 0, historyCapacity),
		width:   80,
	}
}

func (m LiveModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "space":
			m.running = !m.running
		case "r":
			m.reset()
		case "up", "k":
			m.gain *= 1.1
		case "down", "j":
			m.gain /= 1.1
		}
	case tea.WindowSizeMsg:
		m.width = max(msg.Width-12, 20)
	case TickMsg:
		if m.running {
			m.advance(m.perTick)
		}
		return m, tick()
	}
	return m, nil
}

func (m *LiveModel) advance(n int) {
	ctx := context.Background()
	for range n {
		u := m.gain * m.profile.Value(m.k, float64(m.k)*m.dt)
		y, err := m.plant.Step(ctx, u)
		if err != nil {
			m.err = err
			m.running = false
			return
		}
		m.inputs = appendCapped(m.inputs, u)
		m.outputs = appendCapped(m.outputs, y)
		m.k++
	}
}

func (m *LiveModel) reset() {
	if err := m.plant.Reset(context.Background()); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.k = 0
	m.inputs = m.inputs[:0]
	m.outputs = m.outputs[:0]
}

func appendCapped(s []float64, v float64) []float64 {
	if len(s) == historyCapacity {
		copy(s, s[1:])
		s = s[:len(s)-1]
	}
	return append(s, v)
}

func (m LiveModel) View() string {
	var s strings.Builder
	s.WriteString(HeaderStyle.Render(m.title) + "\n\n")

	if len(m.outputs) > 1 {
		chart := asciigraph.PlotMany([][]float64{m.outputs, m.inputs},
			asciigraph.Height(12),
			asciigraph.Width(m.width),
			asciigraph.SeriesColors(asciigraph.Green, asciigraph.Blue),
		)
		s.WriteString(chart + "\n\n")
	}

	status := StatusRunning.Render("RUNNING")
	switch {
	case m.err != nil:
		status = StatusFailed.Render("ERROR")
	case !m.running:
		status = StatusPaused.Render("PAUSED")
	}
	stats := []string{
		MetricLabel.Render("status") + status,
		MetricLabel.Render("time") + MetricValue.Render(fmt.Sprintf("%.3fs", float64(m.k)*m.dt)),
		MetricLabel.Render("gain") + MetricValue.Render(fmt.Sprintf("%.3f", m.gain)),
	}
	if n := len(m.outputs); n > 0 {
		stats = append(stats,
			MetricLabel.Render("input") + MetricValue.Render(fmt.Sprintf("%.6g", m.inputs[n-1])),
			MetricLabel.Render("output") + MetricValue.Render(fmt.Sprintf("%.6g", m.outputs[n-1])),
			MetricLabel.Render("recent") + Sparkline(m.outputs, 40),
		)
	}
	if m.err != nil {
		stats = append(stats, StatusFailed.Render(m.err.Error()))
	}
	s.WriteString(Panel.Render(lipgloss.JoinVertical(lipgloss.Left, stats...)) + "\n")
	s.WriteString(KeyHint.Render("space pause · r reset · ↑/↓ gain · q quit") + "\n")
	return s.String()
}

// RunLive runs the model full screen until the user quits.
func RunLive(m LiveModel) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
