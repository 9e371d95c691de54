package analysis

import (
	"context"
	"fmt"

	"github.com/san-kum/plantsim/internal/plant"
	"github.com/san-kum/plantsim/internal/trajectory"
)

type Point struct {
	X, Y float64
}

// Portrait holds a 2D phase space trajectory.
type Portrait struct {
	XIndex, YIndex int
	Points         []Point
}

// PhasePortrait resets sim, drives it with p over span and records the pair
// of state components (xIdx, yIdx) before every step. For the canonical
// second-order plant index 0 is position and index 1 velocity.
func PhasePortrait(ctx context.Context, sim *plant.Simulator, xIdx, yIdx int, span, dt float64, p trajectory.Profile) (*Portrait, error) {
	if err := sim.Reset(); err != nil {
		return nil, err
	}
	order := sim.Model().Order()
	if xIdx < 0 || yIdx < 0 || xIdx >= order || yIdx >= order {
		return nil, fmt.Errorf("%w: state index out of range for order %d", plant.ErrInvalidParameter, order)
	}

	portrait := &Portrait{XIndex: xIdx, YIndex: yIdx}
	seq, err := trajectory.Samples(trajectory.StepperFunc(func(u float64) (float64, error) {
		x := sim.State()
		portrait.Points = append(portrait.Points, Point{X: x[xIdx], Y: x[yIdx]})
		return sim.Step(u)
	}), span, dt, p)
	if err != nil {
		return nil, err
	}

	for s, err := range seq {
		if err != nil {
			return nil, err
		}
		if s.Index%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
	return portrait, nil
}

// Bounds returns the extent of the portrait.
func (p *Portrait) Bounds() (minX, maxX, minY, maxY float64) {
	if len(p.Points) == 0 {
		return 0, 0, 0, 0
	}
	minX, maxX = p.Points[0].X, p.Points[0].X
	minY, maxY = p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
	}
	return
}
