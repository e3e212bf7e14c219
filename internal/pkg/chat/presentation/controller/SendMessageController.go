package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cht-gateway/internal/infrastructure/security"
	chat "cht-gateway/internal/pkg/chat/application/domain"
	"cht-gateway/internal/pkg/chat/application/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SendMessageController is the HTTP counterpart of the socket's message:send frame,
// for clients that cannot keep a websocket open. Delivery to the recipient is identical.
type SendMessageController struct {
	dispatcher *Dispatcher
}

func NewSendMessageController(dispatcher *Dispatcher) *SendMessageController {
	return &SendMessageController{dispatcher: dispatcher}
}

// sendMessageRequest is the DTO for the HTTP request body
type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": msgBadFormat})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		dto, err := h.dispatcher.Send(ctx, security.UserID(c), c.Param("userId"), req.Content)
		switch {
		case err == nil:
			c.JSON(http.StatusCreated, gin.H{"message": dto})
		case errors.Is(err, chat.ErrEmptyContent):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Message is empty"})
		case errors.Is(err, usecase.ErrInvalidRecipient):
			c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidRecipient})
		case errors.Is(err, usecase.ErrRecipientNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": msgRecipientNotFound})
		default:
			h.dispatcher.logger.Error("failed to save message", zap.String("user_id", security.UserID(c)), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": msgSaveFailed})
		}
	}
}
