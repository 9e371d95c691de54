package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrBusy indicates the server already serves another session.
var ErrBusy = errors.New("remote: plant session already in use")

var errClientClosed = errors.New("client closed")

// RemoteError is a failure reported by the server. It unwraps to the
// domain sentinel named by Kind, so errors.Is(err, plant.ErrNotInitialized)
// works across the process boundary.
type RemoteError struct {
	Method  string
	Code    int
	Kind    Kind
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s: %s (%s, code %d)", e.Method, e.Message, e.Kind, e.Code)
}

func (e *RemoteError) Unwrap() error {
	return e.Kind.Sentinel()
}

// TransportError is a failure to reach the server or to exchange a message
// with it. The call may or may not have been executed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("remote transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client drives a remote plant over websocket. It implements
// trajectory.Plant. Calls are serialised; a Client is safe for concurrent
// use but concurrent callers interleave steps on the same plant.
type Client struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	nextID int64
	closed bool
}

// Dial opens a session at url, e.g. ws://127.0.0.1:7654/plant.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, rsp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if rsp != nil && rsp.StatusCode == http.StatusConflict {
			err = ErrBusy
		}
		return nil, &TransportError{Op: "dial", Err: err}
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Init(ctx context.Context, wn, zeta, dt float64) (InitResult, error) {
	var res InitResult
	err := c.call(ctx, MethodInit, InitParams{Wn: wn, Zeta: zeta, Dt: dt}, &res)
	return res, err
}

func (c *Client) Step(ctx context.Context, u float64) (float64, error) {
	var res StepResult
	if err := c.call(ctx, MethodStep, StepParams{U: u}, &res); err != nil {
		return 0, err
	}
	return res.Y, nil
}

func (c *Client) Reset(ctx context.Context) error {
	var res ResetResult
	return c.call(ctx, MethodReset, nil, &res)
}

// Close ends the session; the server resets the plant.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.conn.Close()
}

func (c *Client) call(ctx context.Context, method string, params, result any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return &TransportError{Op: method, Err: errClientClosed}
	}

	c.nextID++
	req := Request{Version: Version, ID: json.RawMessage(strconv.FormatInt(c.nextID, 10)), Method: method}
	if params != nil {
		p, err := json.Marshal(params)
		if err != nil {
			return err
		}
		req.Params = p
	}

	deadline, _ := ctx.Deadline()
	c.conn.SetWriteDeadline(deadline)
	c.conn.SetReadDeadline(deadline)
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	fail := func(op string, err error) error {
		var ne net.Error
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		} else if _, ok := ctx.Deadline(); ok && errors.As(err, &ne) && ne.Timeout() {
			err = context.DeadlineExceeded
		}
		return &TransportError{Op: method + " " + op, Err: err}
	}

	if err := c.conn.WriteJSON(&req); err != nil {
		return fail("write", err)
	}
	var rsp Response
	if err := c.conn.ReadJSON(&rsp); err != nil {
		return fail("read", err)
	}
	if string(rsp.ID) != string(req.ID) {
		return &TransportError{Op: method, Err: fmt.Errorf("response id %s does not match request id %s", rsp.ID, req.ID)}
	}
	if rsp.Error != nil {
		re := &RemoteError{Method: method, Code: rsp.Error.Code, Message: rsp.Error.Message}
		if rsp.Error.Data != nil {
			re.Kind = rsp.Error.Data.Kind
		}
		return re
	}
	if err := json.Unmarshal(rsp.Result, result); err != nil {
		return &TransportError{Op: method, Err: fmt.Errorf("decode result: %w", err)}
	}
	return nil
}
