package golden

import (
	"fmt"
	"math"

	"github.com/san-kum/plantsim/internal/trajectory"
)

// Tolerance bounds the accepted deviation of a sample:
// |got - want| <= Abs + Rel·|want|.
type Tolerance struct {
	Rel float64 `yaml:"rel" json:"rel"`
	Abs float64 `yaml:"abs" json:"abs"`
}

var DefaultTolerance = Tolerance{Rel: 1e-9, Abs: 1e-12}

func (t Tolerance) Accepts(want, got float64) bool {
	return math.Abs(got-want) <= t.Abs+t.Rel*math.Abs(want)
}

// Report summarises one trajectory comparison.
type Report struct {
	Name     string
	Samples  int
	Failures int
	MaxError float64
	// WorstIndex is the sample with the largest absolute output error, -1
	// when no sample was compared.
	WorstIndex int
	// Mismatch explains a structural failure such as differing lengths.
	Mismatch string
}

func (r Report) OK() bool {
	return r.Mismatch == "" && r.Failures == 0
}

func (r Report) String() string {
	if r.Mismatch != "" {
		return fmt.Sprintf("%s: %s", r.Name, r.Mismatch)
	}
	status := "ok"
	if r.Failures > 0 {
		status = fmt.Sprintf("%d/%d samples out of tolerance", r.Failures, r.Samples)
	}
	return fmt.Sprintf("%s: %s (max error %.3g at sample %d)", r.Name, status, r.MaxError, r.WorstIndex)
}

// Compare checks got against want sample by sample. Time stamps must agree
// within the same tolerance. Inputs are compared when both carry them.
func Compare(want, got *trajectory.Trajectory, tol Tolerance) Report {
	r := Report{WorstIndex: -1, Samples: want.Len()}
	if want.Len() != got.Len() {
		r.Mismatch = fmt.Sprintf("length %d, want %d", got.Len(), want.Len())
		return r
	}
	if want.HasInput() && got.HasInput() {
		for i := range want.Input {
			if !tol.Accepts(want.Input[i], got.Input[i]) {
				r.Mismatch = fmt.Sprintf("input differs at sample %d", i)
				return r
			}
		}
	}

	for i := range want.Output {
		if !tol.Accepts(want.Time[i], got.Time[i]) {
			r.Mismatch = fmt.Sprintf("time differs at sample %d", i)
			return r
		}
		e := math.Abs(got.Output[i] - want.Output[i])
		if e > r.MaxError || r.WorstIndex < 0 {
			r.MaxError, r.WorstIndex = e, i
		}
		if !tol.Accepts(want.Output[i], got.Output[i]) {
			r.Failures++
		}
	}
	return r
}

// CompareDatasets requires identical plant parameters and sample time, then
// compares every trajectory of want against the one of the same name in got.
func CompareDatasets(want, got *Dataset, tol Tolerance) ([]Report, error) {
	if want.Params != got.Params {
		return nil, fmt.Errorf("plant parameters differ: %+v vs %+v", want.Params, got.Params)
	}
	if want.SampleTime != got.SampleTime {
		return nil, fmt.Errorf("sample time differs: %v vs %v", want.SampleTime, got.SampleTime)
	}

	reports := make([]Report, 0, len(want.Trajectories))
	for _, name := range want.Names() {
		g, ok := got.Trajectories[name]
		if !ok {
			reports = append(reports, Report{Name: name, WorstIndex: -1, Mismatch: "missing"})
			continue
		}
		r := Compare(want.Trajectories[name], g, tol)
		r.Name = name
		reports = append(reports, r)
	}
	return reports, nil
}
