package trajectory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/plantsim/internal/plant"
)

// Ensemble generates several scenarios against one discrete model in
// parallel. Each scenario runs on its own freshly initialized Simulator, so
// no state is shared between goroutines.
type Ensemble struct {
	model   *plant.Discrete
	workers int
	log     *slog.Logger
}

type EnsembleOption func(*Ensemble)

// WithWorkers bounds the number of concurrently running scenarios.
func WithWorkers(n int) EnsembleOption {
	return func(e *Ensemble) { e.workers = n }
}

func WithLogger(l *slog.Logger) EnsembleOption {
	return func(e *Ensemble) { e.log = l }
}

func NewEnsemble(m *plant.Discrete, opts ...EnsembleOption) *Ensemble {
	e := &Ensemble{model: m, workers: 4, log: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Run generates every scenario and returns the trajectories keyed by
// scenario name. The first failure cancels the remaining work.
func (e *Ensemble) Run(ctx context.Context, scenarios []Scenario) (map[string]*Trajectory, error) {
	seen := make(map[string]bool, len(scenarios))
	for _, sc := range scenarios {
		if sc.Name == "" {
			return nil, fmt.Errorf("%w: scenario without a name", plant.ErrInvalidParameter)
		}
		if seen[sc.Name] {
			return nil, fmt.Errorf("%w: duplicate scenario %q", plant.ErrInvalidParameter, sc.Name)
		}
		seen[sc.Name] = true
	}

	if !e.model.Stable() {
		e.log.Warn("plant is not asymptotically stable", "spectral_radius", e.model.SpectralRadius())
	} else if gain, err := e.model.DCGain(); err == nil {
		e.log.Debug("plant model", "order", e.model.Order(), "dc_gain", gain)
	}

	var mu sync.Mutex
	results := make(map[string]*Trajectory, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	if e.workers > 0 {
		g.SetLimit(e.workers)
	}
	for _, sc := range scenarios {
		g.Go(func() error {
			sim := plant.NewSimulator()
			if err := sim.Initialize(e.model); err != nil {
				return err
			}
			traj, err := Generate(ctx, sim, sc.Span, e.model.SampleInterval(), sc.Profile)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", sc.Name, err)
			}
			if sc.OmitInput {
				traj.Input = nil
			}
			e.log.Debug("scenario generated", "name", sc.Name, "samples", traj.Len())

			mu.Lock()
			results[sc.Name] = traj
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
