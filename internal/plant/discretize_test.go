package plant

import (
	"errors"
	"math"
	"testing"
)

func TestDiscretizeFirstOrder(t *testing.T) {
	const a, b, dt = 3.0, 2.0, 0.05
	ss, _ := NewStateSpace([][]float64{{-a}}, [][]float64{{b}}, [][]float64{{1}}, [][]float64{{0.5}})

	d, err := Discretize(ss, dt)
	if err != nil {
		t.Fatalf("Discretize failed: %v", err)
	}

	wantAd := math.Exp(-a * dt)
	wantBd := b / a * (1 - math.Exp(-a*dt))
	if math.Abs(d.Ad().At(0, 0)-wantAd) > 1e-15 {
		t.Errorf("Ad = %.17g, want %.17g", d.Ad().At(0, 0), wantAd)
	}
	if math.Abs(d.Bd().At(0, 0)-wantBd) > 1e-15 {
		t.Errorf("Bd = %.17g, want %.17g", d.Bd().At(0, 0), wantBd)
	}
	if d.Cd().At(0, 0) != 1 || d.Dd().At(0, 0) != 0.5 {
		t.Error("Cd and Dd must pass through unchanged")
	}
}

func TestDiscretizeSingularA(t *testing.T) {
	const dt = 0.1
	ss, _ := NewStateSpace(
		[][]float64{{0, 1}, {0, 0}},
		[][]float64{{0}, {1}},
		[][]float64{{1, 0}},
		[][]float64{{0}},
	)

	d, err := Discretize(ss, dt)
	if err != nil {
		t.Fatalf("Discretize failed: %v", err)
	}

	ad, bd := d.Ad(), d.Bd()
	if math.Abs(ad.At(0, 0)-1) > 1e-15 || math.Abs(ad.At(0, 1)-dt) > 1e-15 ||
		ad.At(1, 0) != 0 || math.Abs(ad.At(1, 1)-1) > 1e-15 {
		t.Errorf("Ad = %v, want [1 %g; 0 1]", ad, dt)
	}
	if math.Abs(bd.At(0, 0)-dt*dt/2) > 1e-15 || math.Abs(bd.At(1, 0)-dt) > 1e-15 {
		t.Errorf("Bd = %v, want [%g; %g]", bd, dt*dt/2, dt)
	}
}

func TestDiscretizeSecondOrderDCGain(t *testing.T) {
	tests := []struct {
		wn, zeta, dt float64
	}{
		{10, 0.7, 0.001},
		{10, 0.7, 0.01},
		{2, 0.1, 0.05},
		{50, 1.0, 0.001},
		{1, 3.0, 0.1},
	}

	for _, tt := range tests {
		m, err := NewSecondOrder(tt.wn, tt.zeta, tt.dt)
		if err != nil {
			t.Fatalf("NewSecondOrder failed: %v", err)
		}
		d, err := m.Discretize()
		if err != nil {
			t.Fatalf("Discretize failed: %v", err)
		}
		gain, err := d.DCGain()
		if err != nil {
			t.Fatalf("DCGain failed: %v", err)
		}
		if math.Abs(gain-1) > 1e-9 {
			t.Errorf("wn=%g zeta=%g dt=%g: DC gain %.12f, want 1", tt.wn, tt.zeta, tt.dt, gain)
		}
		if d.SampleInterval() != tt.dt || d.Order() != 2 {
			t.Errorf("unexpected discrete model metadata: dt=%g order=%d", d.SampleInterval(), d.Order())
		}
	}
}

func TestDiscretizeIllConditioned(t *testing.T) {
	ss, _ := NewStateSpace([][]float64{{1e6}}, [][]float64{{1}}, [][]float64{{1}}, [][]float64{{0}})
	_, err := Discretize(ss, 1.0)
	if !errors.Is(err, ErrIllConditioned) {
		t.Errorf("expected ErrIllConditioned, got %v", err)
	}
}

func TestDiscretizeInvalidInterval(t *testing.T) {
	ss, _ := Params{Wn: 10, Zeta: 0.7}.StateSpace()
	for _, dt := range []float64{0, -1} {
		if _, err := Discretize(ss, dt); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("dt=%v: expected ErrInvalidParameter, got %v", dt, err)
		}
	}
}

func TestDCGainIntegrator(t *testing.T) {
	ss, _ := NewStateSpace([][]float64{{0}}, [][]float64{{1}}, [][]float64{{1}}, [][]float64{{0}})
	d, err := Discretize(ss, 0.1)
	if err != nil {
		t.Fatalf("Discretize failed: %v", err)
	}
	if _, err := d.DCGain(); !errors.Is(err, ErrIllConditioned) {
		t.Errorf("expected ErrIllConditioned for a pure integrator, got %v", err)
	}
}

func TestSpectralRadius(t *testing.T) {
	const wn, zeta, dt = 10.0, 0.7, 0.001
	m, _ := NewSecondOrder(wn, zeta, dt)
	d, _ := m.Discretize()

	want := math.Exp(-zeta * wn * dt)
	if got := d.SpectralRadius(); math.Abs(got-want) > 1e-12 {
		t.Errorf("SpectralRadius = %.15f, want %.15f", got, want)
	}
	if !d.Stable() {
		t.Error("damped plant should be stable")
	}

	undamped, _ := NewSecondOrder(wn, 0, dt)
	ud, _ := undamped.Discretize()
	if r := ud.SpectralRadius(); math.Abs(r-1) > 1e-12 {
		t.Errorf("undamped SpectralRadius = %.15f, want 1", r)
	}
}

func TestSpectralRadiusHigherOrder(t *testing.T) {
	ss, _ := NewStateSpace(
		[][]float64{{-1, 0, 0}, {0, -0.2, 0}, {0, 0, -3}},
		[][]float64{{1}, {1}, {1}},
		[][]float64{{1, 1, 1}},
		[][]float64{{0}},
	)
	d, err := Discretize(ss, 0.5)
	if err != nil {
		t.Fatalf("Discretize failed: %v", err)
	}
	want := math.Exp(-0.2 * 0.5)
	if got := d.SpectralRadius(); math.Abs(got-want) > 1e-9 {
		t.Errorf("SpectralRadius = %.12f, want %.12f", got, want)
	}
}
