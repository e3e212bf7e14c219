package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"cht-gateway/internal/infrastructure/security"
	chat "cht-gateway/internal/pkg/chat/application/domain"
	"cht-gateway/internal/pkg/chat/application/usecase"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// HistoryLimits bounds the page size accepted by the history endpoint.
type HistoryLimits struct {
	Default int
	Max     int
}

// GetMessageController serves the message history with one peer (one controller per endpoint)
type GetMessageController struct {
	UC     *usecase.GetMessageUseCase
	limits HistoryLimits
}

func NewGetMessageController(uc *usecase.GetMessageUseCase, limits HistoryLimits) *GetMessageController {
	if limits.Max <= 0 {
		limits.Max = 50
	}
	if limits.Default <= 0 || limits.Default > limits.Max {
		limits.Default = min(30, limits.Max)
	}
	return &GetMessageController{UC: uc, limits: limits}
}

func (h *GetMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := h.limits.Default
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > h.limits.Max {
				c.JSON(http.StatusBadRequest, gin.H{"message": "limit must be between 1 and " + strconv.Itoa(h.limits.Max)})
				return
			}
			limit = n
		}

		// An unparseable cursor is ignored rather than rejected
		var before *time.Time
		if v := c.Query("before"); v != "" {
			if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
				before = &t
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		out, err := h.UC.Execute(ctx, usecase.GetMessageInput{
			UserID: security.UserID(c),
			PeerID: c.Param("userId"),
			Before: before,
			Limit:  limit,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load messages"})
			return
		}

		var conversationID *string
		if out.ConversationID != "" {
			conversationID = &out.ConversationID
		}
		c.JSON(http.StatusOK, gin.H{
			"conversationId": conversationID,
			"messages":       lo.Map(out.Messages, func(m chat.Message, _ int) MessageDTO { return toDTO(m) }),
		})
	}
}
