package remote

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Server serves a Handle over websocket. Only one session may be open at a
// time; further upgrade attempts are refused with 409 Conflict until the
// active session ends.
type Server struct {
	handle   *Handle
	log      *slog.Logger
	upgrader websocket.Upgrader
	busy     atomic.Bool
	idle     time.Duration
}

type ServerOption func(*Server)

func WithServerLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.log = l }
}

// WithIdleTimeout closes a session that sends nothing for d. Zero disables
// the timeout.
func WithIdleTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.idle = d }
}

func NewServer(h *Handle, opts ...ServerOption) *Server {
	s := &Server{
		handle: h,
		log:    slog.New(slog.DiscardHandler),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.busy.CompareAndSwap(false, true) {
		s.log.Warn("session refused, another session is active", "remote", r.RemoteAddr)
		http.Error(w, "plant session already in use", http.StatusConflict)
		return
	}
	defer s.busy.Store(false)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	log := s.log.With("remote", r.RemoteAddr)
	log.Info("session opened")
	sess := NewSession(s.handle, log)
	defer func() {
		if err := sess.Close(); err != nil {
			log.Warn("session teardown", "error", err)
		}
		log.Info("session closed")
	}()

	for {
		if s.idle > 0 {
			conn.SetReadDeadline(time.Now().Add(s.idle))
		}
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("read failed", "error", err)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		rsp, ok := sess.Process(data)
		if !ok {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, rsp); err != nil {
			log.Warn("write failed", "error", err)
			return
		}
	}
}

// ListenAndServe serves the websocket endpoint at path on addr until ctx is
// done.
func (s *Server) ListenAndServe(ctx context.Context, addr, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, s)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	s.log.Info("listening", "addr", ln.Addr().String(), "path", path)

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
