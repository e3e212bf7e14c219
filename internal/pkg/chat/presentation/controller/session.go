package controller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"cht-gateway/internal/infrastructure/realtime"
	"cht-gateway/internal/infrastructure/security"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// State is the lifecycle stage of a gateway session.
type State int32

const (
	StateConnecting State = iota
	StateAuthenticated
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	closeReasonUnauthorized = "UNAUTHORIZED"
	closeReasonShutdown     = "server shutdown"
)

var errDraining = errors.New("session draining")

// SessionConfig holds per-connection transport limits.
type SessionConfig struct {
	ReadLimit   int64
	ReadTimeout time.Duration
	SendBuffer  int
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.ReadLimit <= 0 {
		c.ReadLimit = 64 << 10
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 60 * time.Second
	}
	return c
}

// pingPeriod keeps server pings inside the read deadline so an idle but healthy
// client always has a pong in flight before the deadline expires.
func (c SessionConfig) pingPeriod() time.Duration {
	return c.ReadTimeout * 9 / 10
}

// Session drives one upgraded socket through Connecting, Authenticated, Active and Closed.
// Frames are read and dispatched one at a time, so a sender's messages reach the
// store in the order they were sent.
type Session struct {
	ws         *websocket.Conn
	verifier   security.Verifier
	registry   *realtime.Registry
	dispatcher *Dispatcher
	cfg        SessionConfig
	logger     *zap.Logger

	state  atomic.Int32
	userID string
	conn   *realtime.Connection

	mu       sync.Mutex
	draining bool
}

func NewSession(ws *websocket.Conn, verifier security.Verifier, registry *realtime.Registry, dispatcher *Dispatcher, cfg SessionConfig, logger *zap.Logger) *Session {
	return &Session{
		ws:         ws,
		verifier:   verifier,
		registry:   registry,
		dispatcher: dispatcher,
		cfg:        cfg.withDefaults(),
		logger:     logger,
	}
}

func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) transition(to State) {
	from := State(s.state.Swap(int32(to)))
	s.logger.Debug("session state", zap.Stringer("from", from), zap.Stringer("to", to))
}

// Run authenticates token and, on success, serves frames until the transport closes.
func (s *Session) Run(ctx context.Context, token string) {
	defer s.transition(StateClosed)

	userID, err := s.verifier.Verify(token)
	if err != nil {
		s.logger.Warn("handshake rejected", zap.Error(err))
		_ = s.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(realtime.CloseUnauthorized, closeReasonUnauthorized),
			time.Now().Add(time.Second))
		_ = s.ws.Close()
		return
	}
	s.userID = userID
	s.logger = s.logger.With(zap.String("user_id", userID))
	s.transition(StateAuthenticated)

	s.conn = realtime.NewConnection(userID, s.ws, realtime.ConnectionOptions{
		SendBuffer: s.cfg.SendBuffer,
		PingPeriod: s.cfg.pingPeriod(),
	})
	s.conn.Start()
	s.registry.Register(userID, s.conn)
	defer func() {
		s.registry.Unregister(userID, s.conn)
		if s.isDraining() {
			s.conn.Close(realtime.CloseGoingAway, closeReasonShutdown)
			return
		}
		s.conn.Close(realtime.CloseNormal, "session closed")
	}()

	if err := sendFrame(s.conn, FrameConnected, connectedPayload{UserID: userID}); err != nil {
		return
	}
	s.transition(StateActive)
	s.logger.Info("session active", zap.String("conn_id", s.conn.ID()))

	s.readLoop(ctx)
}

// Drain stops reading new frames. A frame already read is still dispatched, and Run
// then closes the socket with going-away once queued frames are flushed.
func (s *Session) Drain() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draining {
		return
	}
	s.draining = true
	_ = s.ws.SetReadDeadline(time.Now())
}

func (s *Session) isDraining() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draining
}

// extendDeadline pushes the read deadline out unless the session is draining.
func (s *Session) extendDeadline() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draining {
		return errDraining
	}
	return s.ws.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
}

func (s *Session) readLoop(ctx context.Context) {
	s.ws.SetReadLimit(s.cfg.ReadLimit)
	if err := s.extendDeadline(); err != nil {
		return
	}
	s.ws.SetPongHandler(func(string) error {
		return s.extendDeadline()
	})

	for {
		_, data, err := s.ws.ReadMessage()
		if err != nil {
			switch {
			case s.isDraining():
				s.logger.Info("session drained")
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
				errors.Is(err, websocket.ErrCloseSent):
				s.logger.Info("session closed by peer")
			default:
				s.logger.Info("session read ended", zap.Error(err))
			}
			return
		}
		s.dispatcher.Dispatch(ctx, s.userID, s.conn, data)
		if err := s.extendDeadline(); err != nil {
			return
		}
	}
}
