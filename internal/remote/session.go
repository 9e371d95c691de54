package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/tidwall/gjson"
)

// Session is one client's conversation with a Handle. Closing the session
// resets the simulator so the next client starts from zero state with the
// same model.
type Session struct {
	handle *Handle
	log    *slog.Logger
	calls  int
}

func NewSession(h *Handle, log *slog.Logger) *Session {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Session{handle: h, log: log}
}

// Process handles one raw message. It returns the encoded response and
// false when the message was a notification.
func (s *Session) Process(raw []byte) ([]byte, bool) {
	raw = bytes.TrimSpace(raw)
	if !gjson.ValidBytes(raw) {
		return s.encode(errorResponse(nil, CodeParseError, KindParseError, "invalid JSON")), true
	}
	if len(raw) > 0 && raw[0] == '[' {
		return s.encode(errorResponse(nil, CodeInvalidRequest, KindInvalidRequest, "batch requests are not supported")), true
	}

	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return s.encode(errorResponse(nil, CodeInvalidRequest, KindInvalidRequest, err.Error())), true
	}
	rsp := s.Dispatch(&req)
	if req.IsNotification() {
		return nil, false
	}
	return s.encode(rsp), true
}

// Dispatch runs one request against the handle.
func (s *Session) Dispatch(req *Request) *Response {
	s.calls++
	if req.Version != Version || req.Method == "" {
		return errorResponse(req.ID, CodeInvalidRequest, KindInvalidRequest, "not a JSON-RPC 2.0 request")
	}

	var (
		result any
		err    error
	)
	switch req.Method {
	case MethodInit:
		var v []float64
		if v, err = floatParams(req.Params, "wn", "zeta", "dt"); err != nil {
			return errorResponse(req.ID, CodeInvalidParams, KindInvalidParameter, err.Error())
		}
		result, err = s.handle.Init(InitParams{Wn: v[0], Zeta: v[1], Dt: v[2]})
	case MethodStep:
		var v []float64
		if v, err = floatParams(req.Params, "u"); err != nil {
			return errorResponse(req.ID, CodeInvalidParams, KindInvalidParameter, err.Error())
		}
		var y float64
		y, err = s.handle.Step(v[0])
		if err == nil && (math.IsNaN(y) || math.IsInf(y, 0)) {
			err = fmt.Errorf("%w: y=%v", ErrNonFiniteOutput, y)
		}
		result = StepResult{Y: y}
	case MethodReset:
		err = s.handle.Reset()
		result = ResetResult{OK: err == nil}
	default:
		return errorResponse(req.ID, CodeMethodNotFound, KindMethodNotFound, fmt.Sprintf("method %q not found", req.Method))
	}

	if err != nil {
		s.log.Debug("call failed", "method", req.Method, "error", err)
		return errorResponse(req.ID, CodeApplication, KindOf(err), err.Error())
	}
	body, err := json.Marshal(result)
	if err != nil {
		return errorResponse(req.ID, CodeInternal, KindInternal, err.Error())
	}
	return &Response{Version: Version, ID: req.ID, Result: body}
}

// Close tears the session down. The simulator is reset, not discarded.
func (s *Session) Close() error {
	s.log.Debug("session closed", "calls", s.calls)
	if !s.handle.Ready() {
		return nil
	}
	return s.handle.Reset()
}

func (s *Session) encode(rsp *Response) []byte {
	b, err := json.Marshal(rsp)
	if err != nil {
		s.log.Error("encode response", "error", err)
		b, _ = json.Marshal(errorResponse(rsp.ID, CodeInternal, KindInternal, "response encoding failed"))
	}
	return b
}

func errorResponse(id json.RawMessage, code int, kind Kind, msg string) *Response {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	return &Response{
		Version: Version,
		ID:      id,
		Error:   &ErrorObject{Code: code, Message: msg, Data: &ErrorData{Kind: kind}},
	}
}

// floatParams reads numeric parameters given either by name in an object or
// by position in an array.
func floatParams(raw json.RawMessage, names ...string) ([]float64, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing params %v", names)
	}
	p := gjson.ParseBytes(raw)
	out := make([]float64, len(names))
	switch {
	case p.IsArray():
		elems := p.Array()
		if len(elems) != len(names) {
			return nil, fmt.Errorf("expected %d positional params, got %d", len(names), len(elems))
		}
		for i, e := range elems {
			f, err := number(e, names[i])
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
	case p.IsObject():
		for i, n := range names {
			v := p.Get(n)
			if !v.Exists() {
				return nil, fmt.Errorf("missing param %s", n)
			}
			f, err := number(v, n)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
	default:
		return nil, fmt.Errorf("params must be an object or an array")
	}
	return out, nil
}

func number(v gjson.Result, name string) (float64, error) {
	if v.Type != gjson.Number {
		return 0, fmt.Errorf("param %s is not a number", name)
	}
	f := v.Float()
	if math.IsInf(f, 0) {
		return 0, fmt.Errorf("param %s is out of range", name)
	}
	return f, nil
}
