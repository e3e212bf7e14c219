package v1

import (
	"context"
	"net/http"
	"time"

	"cht-gateway/internal/infrastructure/realtime"
	"cht-gateway/internal/infrastructure/security"
	chatport "cht-gateway/internal/pkg/chat/persistence/repository/port"
	chatController "cht-gateway/internal/pkg/chat/presentation/controller"
	chatHttp "cht-gateway/internal/pkg/chat/presentation/http"
	userport "cht-gateway/internal/pkg/user/persistence/repository/port"
	userHttp "cht-gateway/internal/pkg/user/presentation/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies are the process-wide components the routes are built from.
type Dependencies struct {
	ChatRepo chatport.ChatRepository
	UserRepo userport.UserRepository
	Registry *realtime.Registry
	Tokens   *security.TokenService
	Session  chatController.SessionConfig
	History  chatController.HistoryLimits
	Logger   *zap.Logger
}

// RegisterRoutes mounts all version 1 API routes under /api/v1 plus /health at the root.
// It returns the socket controller so the caller can drain sessions on shutdown.
func RegisterRoutes(r *gin.Engine, d Dependencies) *chatController.ChatSocketController {
	r.GET("/health", health(d))

	v1 := r.Group("/api/v1")
	authed := v1.Group("", security.RequireAuth(d.Tokens))

	userHttp.RegisterRoutes(v1, authed, d.UserRepo, d.Tokens, d.Registry)
	return chatHttp.RegisterRoutes(v1, authed, chatHttp.Deps{
		Repo:      d.ChatRepo,
		Directory: d.UserRepo,
		Registry:  d.Registry,
		Verifier:  d.Tokens,
		Session:   d.Session,
		History:   d.History,
		Logger:    d.Logger,
	})
}

// NewEngine builds a gin engine with recovery, zap access logging and CORS.
// CORS sits on the engine so preflights reach it before route matching.
func NewEngine(logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), accessLog(logger.Named("http")), withCORS(corsOptions))
	return r
}

func health(d Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := d.ChatRepo.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
			return
		}
		if err := d.UserRepo.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
