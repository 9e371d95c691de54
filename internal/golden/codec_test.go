package golden

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/san-kum/plantsim/internal/plant"
	"github.com/san-kum/plantsim/internal/trajectory"
)

func referenceDataset(t *testing.T) *Dataset {
	t.Helper()
	ds, err := Build(context.Background(), plant.Params{Wn: 10, Zeta: 0.7}, 0.001, []trajectory.Scenario{
		{Name: "step", Span: 1, Profile: trajectory.Step{Amplitude: 1}},
		{Name: "sine", Span: 0.5, Profile: trajectory.Sine{Amplitude: 0.3, Frequency: 4, Phase: 0.1}},
		{Name: "free", Span: 0.1, Profile: trajectory.Zero{}, OmitInput: true},
	})
	require.NoError(t, err)
	return ds
}

func TestRoundTripExact(t *testing.T) {
	ds := referenceDataset(t)

	data, err := Encode(ds)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, ds.Params, got.Params)
	require.Equal(t, ds.SampleTime, got.SampleTime)
	require.Equal(t, ds.Names(), got.Names())
	for _, name := range ds.Names() {
		require.Equal(t, ds.Trajectories[name], got.Trajectories[name], name)
	}
	require.Nil(t, got.Trajectories["free"].Input)
}

func TestRoundTripIndented(t *testing.T) {
	ds := referenceDataset(t)

	data, err := EncodeIndent(ds)
	require.NoError(t, err)
	require.Contains(t, string(data), "\n  ")

	got, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, ds.Trajectories["step"].Output, got.Trajectories["step"].Output)
}

func TestEncodeMemberOrder(t *testing.T) {
	ds := &Dataset{
		Params:     plant.Params{Wn: 2, Zeta: 0.5},
		SampleTime: 0.1,
		Trajectories: map[string]*trajectory.Trajectory{
			"zeta_sweep": {Time: []float64{0}, Output: []float64{0}},
			"alpha":      {Time: []float64{0}, Output: []float64{0}},
		},
	}
	data, err := Encode(ds)
	require.NoError(t, err)
	s := string(data)

	order := []string{`"plant_params"`, `"sample_time"`, `"alpha"`, `"zeta_sweep"`}
	last := -1
	for _, key := range order {
		i := strings.Index(s, key)
		require.Greater(t, i, last, "key %s out of order in %s", key, s)
		last = i
	}
	require.Equal(t,
		`{"plant_params":{"wn":2,"zeta":0.5},"sample_time":0.1,"alpha":{"time":[0],"output":[0]},"zeta_sweep":{"time":[0],"output":[0]}}`,
		s)
}

func TestEncodeFloatForms(t *testing.T) {
	values := []float64{0.1, 1e-7, 123456.789, -2.5e-300, 1.7976931348623157e308, 1.0 / 3.0}
	ds := &Dataset{
		Params:     plant.Params{Wn: 10, Zeta: 0.7},
		SampleTime: 0.001,
		Trajectories: map[string]*trajectory.Trajectory{
			"v": {Time: make([]float64, len(values)), Output: values},
		},
	}
	data, err := Encode(ds)
	require.NoError(t, err)
	require.Contains(t, string(data), "1e-07")

	got, err := Decode(data)
	require.NoError(t, err)
	for i, v := range values {
		require.Equal(t, math.Float64bits(v), math.Float64bits(got.Trajectories["v"].Output[i]))
	}
}

func TestEncodeRejects(t *testing.T) {
	base := func() *Dataset {
		return &Dataset{
			Params:     plant.Params{Wn: 10, Zeta: 0.7},
			SampleTime: 0.01,
			Trajectories: map[string]*trajectory.Trajectory{
				"a": {Time: []float64{0, 0.01}, Output: []float64{0, 1}},
			},
		}
	}

	tests := map[string]func(*Dataset) *Dataset{
		"nil dataset":          func(*Dataset) *Dataset { return nil },
		"reserved name":        func(d *Dataset) *Dataset { d.Trajectories["sample_time"] = d.Trajectories["a"]; return d },
		"nil trajectory":       func(d *Dataset) *Dataset { d.Trajectories["b"] = nil; return d },
		"length mismatch":      func(d *Dataset) *Dataset { d.Trajectories["a"].Output = []float64{0}; return d },
		"input mismatch":       func(d *Dataset) *Dataset { d.Trajectories["a"].Input = []float64{1}; return d },
		"NaN output":           func(d *Dataset) *Dataset { d.Trajectories["a"].Output[1] = math.NaN(); return d },
		"infinite wn":          func(d *Dataset) *Dataset { d.Params.Wn = math.Inf(1); return d },
		"infinite sample time": func(d *Dataset) *Dataset { d.SampleTime = math.Inf(-1); return d },
		"zero wn":              func(d *Dataset) *Dataset { d.Params.Wn = 0; return d },
		"negative zeta":        func(d *Dataset) *Dataset { d.Params.Zeta = -0.1; return d },
		"zero sample time":     func(d *Dataset) *Dataset { d.SampleTime = 0; return d },
		"time not increasing":  func(d *Dataset) *Dataset { d.Trajectories["a"].Time = []float64{0.01, 0.01}; return d },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Encode(mutate(base()))
			require.ErrorIs(t, err, plant.ErrInvalidParameter)
		})
	}
}

func TestDecodeSchemaMismatch(t *testing.T) {
	const head = `"plant_params":{"wn":10,"zeta":0.7},"sample_time":0.001`
	tests := map[string]string{
		"invalid json":           `{"plant_params":`,
		"array top level":        `[1,2,3]`,
		"missing plant_params":   `{"sample_time":0.001}`,
		"missing sample_time":    `{"plant_params":{"wn":10,"zeta":0.7}}`,
		"params not object":      `{"plant_params":[10,0.7],"sample_time":0.001}`,
		"wn not number":          `{"plant_params":{"wn":"10","zeta":0.7},"sample_time":0.001}`,
		"missing zeta":           `{"plant_params":{"wn":10},"sample_time":0.001}`,
		"unknown param":          `{"plant_params":{"wn":10,"zeta":0.7,"k":1},"sample_time":0.001}`,
		"sample_time not number": `{"plant_params":{"wn":10,"zeta":0.7},"sample_time":null}`,
		"trajectory not object":  `{` + head + `,"step":[0,1]}`,
		"missing output":         `{` + head + `,"step":{"time":[0,0.001],"input":[1,1]}}`,
		"missing time":           `{` + head + `,"step":{"output":[0,1]}}`,
		"output not array":       `{` + head + `,"step":{"time":[0],"output":0}}`,
		"non-numeric element":    `{` + head + `,"step":{"time":[0,0.001],"output":[0,"x"]}}`,
		"unknown trajectory key": `{` + head + `,"step":{"time":[0],"output":[0],"state":[0]}}`,
		"output length mismatch": `{` + head + `,"step":{"time":[0,0.001],"output":[0]}}`,
		"input length mismatch":  `{` + head + `,"step":{"time":[0,0.001],"input":[1],"output":[0,1]}}`,
		"duplicate trajectory":   `{` + head + `,"a":{"time":[0],"output":[0]},"a":{"time":[0],"output":[0]}}`,
		"number out of range":    `{` + head + `,"step":{"time":[0],"output":[1e999]}}`,
		"time not increasing":    `{` + head + `,"step":{"time":[0.5,0.1,0.1],"output":[0,0,0]}}`,
		"repeated time":          `{` + head + `,"step":{"time":[0,0],"output":[0,1]}}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(doc))
			require.ErrorIs(t, err, ErrSchemaMismatch)
		})
	}
}

func TestDecodeMinimal(t *testing.T) {
	ds, err := Decode([]byte(`{"sample_time":0.5,"plant_params":{"zeta":0,"wn":1}}`))
	require.NoError(t, err)
	require.Equal(t, plant.Params{Wn: 1, Zeta: 0}, ds.Params)
	require.Equal(t, 0.5, ds.SampleTime)
	require.Empty(t, ds.Trajectories)
}

func TestDatasetSourceReplays(t *testing.T) {
	ds := referenceDataset(t)

	got, err := ds.Source().Trajectory(context.Background(), trajectory.Scenario{Name: "step"})
	require.NoError(t, err)
	require.Equal(t, ds.Trajectories["step"], got)

	_, err = ds.Source().Trajectory(context.Background(), trajectory.Scenario{Name: "ramp"})
	require.ErrorIs(t, err, trajectory.ErrUnknownTrajectory)
}
