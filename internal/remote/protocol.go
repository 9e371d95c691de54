// Package remote exposes one plant simulator to other processes over
// JSON-RPC 2.0, either on a websocket or on line-delimited stdio, and
// provides the matching Go client.
//
// Three methods make up the call surface:
//
//	init_plant  {"wn": float, "zeta": float, "dt": float} -> {"order": int, "reused": bool}
//	plant_step  {"u": float}                              -> {"y": float}
//	plant_reset                                           -> {"ok": true}
//
// Parameters may also be given by position. Failures come back as JSON-RPC
// error objects whose data.kind names the simulator error.
package remote

import (
	"encoding/json"
	"errors"

	"github.com/san-kum/plantsim/internal/plant"
	"github.com/san-kum/plantsim/internal/trajectory"
)

const Version = "2.0"

const (
	MethodInit  = "init_plant"
	MethodStep  = "plant_step"
	MethodReset = "plant_reset"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternal       = -32603
	CodeApplication    = -32000
)

// Kind classifies an error carried in an error object's data member.
type Kind string

const (
	KindInvalidParameter Kind = "INVALID_PARAMETER"
	KindIllConditioned   Kind = "ILL_CONDITIONED_MODEL"
	KindNotInitialized   Kind = "NOT_INITIALIZED"
	KindInvalidSpan      Kind = "INVALID_SPAN"
	KindNonFiniteOutput  Kind = "NON_FINITE_OUTPUT"
	KindParseError       Kind = "PARSE_ERROR"
	KindInvalidRequest   Kind = "INVALID_REQUEST"
	KindMethodNotFound   Kind = "METHOD_NOT_FOUND"
	KindInternal         Kind = "INTERNAL_ERROR"
)

var kindSentinels = map[Kind]error{
	KindInvalidParameter: plant.ErrInvalidParameter,
	KindIllConditioned:   plant.ErrIllConditioned,
	KindNotInitialized:   plant.ErrNotInitialized,
	KindInvalidSpan:      trajectory.ErrInvalidSpan,
	KindNonFiniteOutput:  ErrNonFiniteOutput,
}

// ErrNonFiniteOutput reports a step whose output overflowed. The state has
// already advanced; plant_reset or init_plant recovers.
var ErrNonFiniteOutput = errors.New("remote: plant output is not finite")

// KindOf maps a simulator error to its wire kind.
func KindOf(err error) Kind {
	for k, s := range kindSentinels {
		if errors.Is(err, s) {
			return k
		}
	}
	return KindInternal
}

// Sentinel returns the domain error a kind stands for, or nil.
func (k Kind) Sentinel() error {
	return kindSentinels[k]
}

type Request struct {
	Version string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request expects no response.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0
}

type Response struct {
	Version string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

type ErrorObject struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    *ErrorData `json:"data,omitempty"`
}

type ErrorData struct {
	Kind Kind `json:"kind"`
}

type InitParams struct {
	Wn   float64 `json:"wn"`
	Zeta float64 `json:"zeta"`
	Dt   float64 `json:"dt"`
}

type InitResult struct {
	Order  int  `json:"order"`
	Reused bool `json:"reused"`
}

type StepParams struct {
	U float64 `json:"u"`
}

type StepResult struct {
	Y float64 `json:"y"`
}

type ResetResult struct {
	OK bool `json:"ok"`
}
