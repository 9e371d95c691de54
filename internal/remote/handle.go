package remote

import (
	"log/slog"

	"github.com/san-kum/plantsim/internal/plant"
)

// Handle owns the single simulator served to remote callers. It keeps the
// last discretization so a repeated init_plant with identical parameters
// skips the matrix exponential.
//
// A Handle is not safe for concurrent use; the server admits one session at
// a time.
type Handle struct {
	sim  *plant.Simulator
	key  InitParams
	disc *plant.Discrete
	log  *slog.Logger
}

func NewHandle(log *slog.Logger) *Handle {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Handle{sim: plant.NewSimulator(), log: log}
}

// Init discretizes the plant (or reuses the cached model) and initializes
// the simulator with zero state.
func (h *Handle) Init(p InitParams) (InitResult, error) {
	reused := h.disc != nil && h.key == p
	if !reused {
		m, err := plant.NewSecondOrder(p.Wn, p.Zeta, p.Dt)
		if err != nil {
			return InitResult{}, err
		}
		d, err := m.Discretize()
		if err != nil {
			return InitResult{}, err
		}
		h.disc, h.key = d, p
		h.log.Info("plant discretized", "wn", p.Wn, "zeta", p.Zeta, "dt", p.Dt, "spectral_radius", d.SpectralRadius())
		if !d.Stable() {
			h.log.Warn("plant is not asymptotically stable; outputs will not settle")
		}
	}
	if err := h.sim.Initialize(h.disc); err != nil {
		return InitResult{}, err
	}
	return InitResult{Order: h.disc.Order(), Reused: reused}, nil
}

func (h *Handle) Step(u float64) (float64, error) {
	return h.sim.Step(u)
}

func (h *Handle) Reset() error {
	return h.sim.Reset()
}

func (h *Handle) Ready() bool {
	return h.sim.Ready()
}

// State returns a copy of the simulator state, nil before Init.
func (h *Handle) State() plant.State {
	return h.sim.State()
}
