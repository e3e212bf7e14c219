package controller

import (
	"context"
	"errors"

	"cht-gateway/internal/infrastructure/realtime"
	chat "cht-gateway/internal/pkg/chat/application/domain"
	"cht-gateway/internal/pkg/chat/application/usecase"

	"go.uber.org/zap"
)

// Fanout delivers a frame to every live connection of a user.
type Fanout interface {
	SendToUser(userID string, payload []byte) int
}

// Dispatcher runs one inbound send request end to end:
// decode, validate, resolve, persist, fan out to the recipient, acknowledge the sender.
type Dispatcher struct {
	sendMessageUC *usecase.SendMessageUseCase
	fanout        Fanout
	decoder       *frameDecoder
	logger        *zap.Logger
}

func NewDispatcher(sendMessageUC *usecase.SendMessageUseCase, fanout Fanout, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		sendMessageUC: sendMessageUC,
		fanout:        fanout,
		decoder:       newFrameDecoder(),
		logger:        logger.Named("dispatch"),
	}
}

// Dispatch handles one raw frame from senderID read off reply. Every failure is
// reported to reply as an error frame; nothing here ends the session.
func (d *Dispatcher) Dispatch(ctx context.Context, senderID string, reply realtime.Conn, data []byte) {
	in, err := d.decoder.decode(data)
	if err != nil {
		d.logger.Warn("frame rejected", zap.String("user_id", senderID), zap.Error(err))
		d.replyError(reply, err.Error())
		return
	}

	dto, err := d.Send(ctx, senderID, in.To, in.Content)
	if err != nil {
		d.handleUseCaseError(reply, senderID, err)
		return
	}

	if err := sendFrame(reply, FrameMessageSent, dto); err != nil {
		d.logger.Debug("ack not delivered", zap.String("user_id", senderID), zap.Error(err))
	}
}

// Send persists one message and pushes message:new to the recipient's live
// connections, keyed by the canonical recipient id the use case settled on. Delivery is best-effort; the message is stored either way.
func (d *Dispatcher) Send(ctx context.Context, senderID, recipientID, content string) (MessageDTO, error) {
	msg, err := d.sendMessageUC.Execute(ctx, usecase.SendMessageInput{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
	})
	if err != nil {
		return MessageDTO{}, err
	}

	dto := toDTO(*msg)
	payload, err := encodeFrame(FrameMessageNew, dto)
	if err != nil {
		return dto, nil
	}
	delivered := d.fanout.SendToUser(msg.RecipientID, payload)
	d.logger.Debug("message dispatched",
		zap.String("message_id", dto.ID),
		zap.String("conversation_id", dto.ConversationID),
		zap.String("from", senderID),
		zap.String("to", msg.RecipientID),
		zap.Int("delivered", delivered))
	return dto, nil
}

func (d *Dispatcher) handleUseCaseError(reply realtime.Conn, senderID string, err error) {
	switch {
	case errors.Is(err, chat.ErrEmptyContent):
		// empty after trimming: dropped without a reply
	case errors.Is(err, usecase.ErrInvalidRecipient):
		d.replyError(reply, msgInvalidRecipient)
	case errors.Is(err, usecase.ErrRecipientNotFound):
		d.replyError(reply, msgRecipientNotFound)
	default:
		d.logger.Error("failed to save message", zap.String("user_id", senderID), zap.Error(err))
		d.replyError(reply, msgSaveFailed)
	}
}

func (d *Dispatcher) replyError(reply realtime.Conn, message string) {
	_ = sendFrame(reply, FrameError, errorPayload{Message: message})
}
