package controller

import (
	"context"
	"net/http"
	"sync"

	"cht-gateway/internal/infrastructure/realtime"
	"cht-gateway/internal/infrastructure/security"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ChatSocketController handles the websocket endpoint for realtime chat traffic.
type ChatSocketController struct {
	verifier   security.Verifier
	registry   *realtime.Registry
	dispatcher *Dispatcher
	cfg        SessionConfig
	logger     *zap.Logger

	sessions sync.WaitGroup

	mu       sync.Mutex
	live     map[*Session]struct{}
	draining bool
}

func NewChatSocketController(verifier security.Verifier, registry *realtime.Registry, dispatcher *Dispatcher, cfg SessionConfig, logger *zap.Logger) *ChatSocketController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatSocketController{
		verifier:   verifier,
		registry:   registry,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger.Named("gateway"),
		live:       make(map[*Session]struct{}),
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browser clients are served from another origin; the bearer token is the gate.
		return true
	},
}

// Handle upgrades the request and runs a Session until the client disconnects.
// Credentials are checked after the upgrade so rejections carry a close code.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := security.BearerToken(c.Request)

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response
			ctl.logger.Debug("upgrade failed", zap.Error(err))
			return
		}

		ctl.sessions.Add(1)
		defer ctl.sessions.Done()

		sess := NewSession(ws, ctl.verifier, ctl.registry, ctl.dispatcher, ctl.cfg, ctl.logger)
		ctl.track(sess)
		defer ctl.untrack(sess)
		sess.Run(c.Request.Context(), token)
	}
}

func (ctl *ChatSocketController) track(sess *Session) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	ctl.live[sess] = struct{}{}
	if ctl.draining {
		sess.Drain()
	}
}

func (ctl *ChatSocketController) untrack(sess *Session) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	delete(ctl.live, sess)
}

// Drain stops every running session from reading further frames, and drains sessions
// that start afterwards as soon as they do. Each session finishes the frame in hand,
// flushes its outbound queue and closes with going-away. Pair with Wait.
func (ctl *ChatSocketController) Drain() {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	ctl.draining = true
	for sess := range ctl.live {
		sess.Drain()
	}
	ctl.logger.Info("draining sessions", zap.Int("sessions", len(ctl.live)))
}

// Wait blocks until every running session has returned or ctx is done.
func (ctl *ChatSocketController) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		ctl.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
