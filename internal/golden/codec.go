package golden

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/san-kum/plantsim/internal/trajectory"
)

// Encode serialises d as a single JSON object: plant_params, then
// sample_time, then one member per trajectory in name order. Numbers are
// written in their shortest exact form, so Decode(Encode(d)) reproduces every
// value bit for bit.
func Encode(d *Dataset) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	b := make([]byte, 0, encodedSize(d))
	b = append(b, '{')
	b = appendKey(b, keyParams)
	b = append(b, `{"wn":`...)
	b = appendFloat(b, d.Params.Wn)
	b = append(b, `,"zeta":`...)
	b = appendFloat(b, d.Params.Zeta)
	b = append(b, "},"...)
	b = appendKey(b, keySampleTime)
	b = appendFloat(b, d.SampleTime)

	for _, name := range d.Names() {
		t := d.Trajectories[name]
		b = append(b, ',')
		b = appendKey(b, name)
		b = append(b, `{"time":`...)
		b = appendArray(b, t.Time)
		if t.Input != nil {
			b = append(b, `,"input":`...)
			b = appendArray(b, t.Input)
		}
		b = append(b, `,"output":`...)
		b = appendArray(b, t.Output)
		b = append(b, '}')
	}
	b = append(b, '}')
	return b, nil
}

// EncodeIndent is Encode followed by indentation for human review. Member
// order is preserved.
func EncodeIndent(d *Dataset) ([]byte, error) {
	b, err := Encode(d)
	if err != nil {
		return nil, err
	}
	return pretty.PrettyOptions(b, &pretty.Options{Width: 120, Indent: "  "}), nil
}

func encodedSize(d *Dataset) int {
	n := 128
	for _, t := range d.Trajectories {
		n += 64 + 24*(len(t.Time)+len(t.Input)+len(t.Output))
	}
	return n
}

func appendKey(b []byte, k string) []byte {
	q, _ := json.Marshal(k)
	b = append(b, q...)
	return append(b, ':')
}

func appendFloat(b []byte, v float64) []byte {
	format := byte('f')
	if abs := math.Abs(v); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	return strconv.AppendFloat(b, v, format, -1, 64)
}

func appendArray(b []byte, vs []float64) []byte {
	b = append(b, '[')
	for i, v := range vs {
		if i > 0 {
			b = append(b, ',')
		}
		b = appendFloat(b, v)
	}
	return append(b, ']')
}

// Decode parses a golden file. Any deviation from the expected shape is
// reported as ErrSchemaMismatch.
func Decode(data []byte) (*Dataset, error) {
	if !gjson.ValidBytes(data) {
		return nil, schemaErr("invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, schemaErr("top level is not an object")
	}

	ds := &Dataset{Trajectories: make(map[string]*trajectory.Trajectory)}
	seen := make(map[string]bool)
	var err error
	root.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if seen[name] {
			err = schemaErr("duplicate key %q", name)
			return false
		}
		seen[name] = true

		switch name {
		case keyParams:
			err = decodeParams(value, ds)
		case keySampleTime:
			ds.SampleTime, err = decodeNumber(value, keySampleTime)
		default:
			var t *trajectory.Trajectory
			t, err = decodeTrajectory(name, value)
			ds.Trajectories[name] = t
		}
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	if !seen[keyParams] {
		return nil, schemaErr("missing %s", keyParams)
	}
	if !seen[keySampleTime] {
		return nil, schemaErr("missing %s", keySampleTime)
	}
	return ds, nil
}

func decodeParams(v gjson.Result, ds *Dataset) error {
	if !v.IsObject() {
		return schemaErr("%s is not an object", keyParams)
	}
	var haveWn, haveZeta bool
	var err error
	v.ForEach(func(key, value gjson.Result) bool {
		switch key.String() {
		case "wn":
			ds.Params.Wn, err = decodeNumber(value, keyParams+".wn")
			haveWn = true
		case "zeta":
			ds.Params.Zeta, err = decodeNumber(value, keyParams+".zeta")
			haveZeta = true
		default:
			err = schemaErr("unknown key %q in %s", key.String(), keyParams)
		}
		return err == nil
	})
	if err != nil {
		return err
	}
	if !haveWn || !haveZeta {
		return schemaErr("%s needs wn and zeta", keyParams)
	}
	return nil
}

func decodeTrajectory(name string, v gjson.Result) (*trajectory.Trajectory, error) {
	if !v.IsObject() {
		return nil, schemaErr("trajectory %q is not an object", name)
	}
	t := &trajectory.Trajectory{}
	var haveTime, haveOutput bool
	var err error
	v.ForEach(func(key, value gjson.Result) bool {
		field := key.String()
		switch field {
		case "time":
			t.Time, err = decodeArray(value, name, field)
			haveTime = true
		case "input":
			t.Input, err = decodeArray(value, name, field)
		case "output":
			t.Output, err = decodeArray(value, name, field)
			haveOutput = true
		default:
			err = schemaErr("unknown key %q in trajectory %q", field, name)
		}
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	if !haveTime {
		return nil, schemaErr("trajectory %q has no time", name)
	}
	if !haveOutput {
		return nil, schemaErr("trajectory %q has no output", name)
	}
	if len(t.Output) != len(t.Time) {
		return nil, schemaErr("trajectory %q: %d time samples but %d output samples", name, len(t.Time), len(t.Output))
	}
	if t.Input != nil && len(t.Input) != len(t.Time) {
		return nil, schemaErr("trajectory %q: %d time samples but %d input samples", name, len(t.Time), len(t.Input))
	}
	if err := t.Validate(); err != nil {
		return nil, schemaErr("trajectory %q: %v", name, err)
	}
	return t, nil
}

func decodeArray(v gjson.Result, name, field string) ([]float64, error) {
	if !v.IsArray() {
		return nil, schemaErr("trajectory %q: %s is not an array", name, field)
	}
	elems := v.Array()
	out := make([]float64, 0, len(elems))
	for i, e := range elems {
		f, err := decodeNumber(e, fmt.Sprintf("%s.%s[%d]", name, field, i))
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func decodeNumber(v gjson.Result, path string) (float64, error) {
	if v.Type != gjson.Number {
		return 0, schemaErr("%s is not a number", path)
	}
	f := v.Float()
	if !isFinite(f) {
		return 0, schemaErr("%s is out of range", path)
	}
	return f, nil
}

func schemaErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchemaMismatch, fmt.Sprintf(format, args...))
}
