package http

import (
	"cht-gateway/internal/infrastructure/realtime"
	"cht-gateway/internal/infrastructure/security"
	"cht-gateway/internal/pkg/chat/application/usecase"
	repository "cht-gateway/internal/pkg/chat/persistence/repository/port"
	"cht-gateway/internal/pkg/chat/presentation/controller"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps are the collaborators shared by the chat endpoints.
type Deps struct {
	Repo      repository.ChatRepository
	Directory repository.UserDirectory
	Registry  *realtime.Registry
	Verifier  security.Verifier
	Session   controller.SessionConfig
	History   controller.HistoryLimits
	Logger    *zap.Logger
}

// RegisterRoutes registers chat endpoints. public carries the websocket endpoint, which
// authenticates inside the session; authed must already enforce bearer auth.
// The socket controller is returned so the caller can drain sessions on shutdown.
func RegisterRoutes(public, authed *gin.RouterGroup, d Deps) *controller.ChatSocketController {
	sendMessageUC := usecase.NewSendMessageUseCase(d.Repo, d.Directory)
	dispatcher := controller.NewDispatcher(sendMessageUC, d.Registry, d.Logger)

	socketCtl := controller.NewChatSocketController(d.Verifier, d.Registry, dispatcher, d.Session, d.Logger)
	getMsgCtl := controller.NewGetMessageController(usecase.NewGetMessageUseCase(d.Repo, d.Directory), d.History)
	sendMsgCtl := controller.NewSendMessageController(dispatcher)

	// GET /ws -> realtime gateway
	public.GET("/ws", socketCtl.Handle())

	// GET /conversations/with/:userId/messages -> history with one peer
	authed.GET("/conversations/with/:userId/messages", getMsgCtl.Handle())

	// POST /conversations/with/:userId/messages -> send without a socket
	authed.POST("/conversations/with/:userId/messages", sendMsgCtl.Handle())

	return socketCtl
}
