package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"cht-gateway/internal/infrastructure/realtime"
	chat "cht-gateway/internal/pkg/chat/application/domain"

	"github.com/go-playground/validator/v10"
)

// Frame types exchanged on the gateway socket.
const (
	FrameMessageSend = "message:send"
	FrameConnected   = "connected"
	FrameMessageSent = "message:sent"
	FrameMessageNew  = "message:new"
	FrameError       = "error"
)

// Client-visible error texts.
const (
	msgInvalidJSON       = "Invalid JSON"
	msgBadFormat         = "Bad message format"
	msgInvalidRecipient  = "Invalid recipient id"
	msgRecipientNotFound = "Recipient not found"
	msgSaveFailed        = "Failed to save message"
)

var (
	errInvalidJSON = errors.New(msgInvalidJSON)
	errBadFormat   = errors.New(msgBadFormat)
)

type inboundFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type sendMessagePayload struct {
	To      string `json:"to" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type outboundFrame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type connectedPayload struct {
	UserID string `json:"userId"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// MessageDTO is the wire shape of a stored message.
type MessageDTO struct {
	ID             string    `json:"_id"`
	ConversationID string    `json:"conversationId"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toDTO(m chat.Message) MessageDTO {
	return MessageDTO{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		From:           m.SenderID,
		To:             m.RecipientID,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt.UTC(),
	}
}

// frameDecoder turns raw socket data into the single recognized inbound variant.
type frameDecoder struct {
	validate *validator.Validate
}

func newFrameDecoder() *frameDecoder {
	return &frameDecoder{validate: validator.New()}
}

// decode returns errInvalidJSON for undecodable input and errBadFormat for any
// shape other than a well-formed message:send.
func (d *frameDecoder) decode(data []byte) (sendMessagePayload, error) {
	if !json.Valid(data) {
		return sendMessagePayload{}, errInvalidJSON
	}
	var frame inboundFrame
	if err := strictUnmarshal(data, &frame); err != nil {
		return sendMessagePayload{}, errBadFormat
	}
	switch frame.Type {
	case FrameMessageSend:
		var p sendMessagePayload
		if len(frame.Payload) == 0 || strictUnmarshal(frame.Payload, &p) != nil {
			return sendMessagePayload{}, errBadFormat
		}
		if err := d.validate.Struct(p); err != nil {
			return sendMessagePayload{}, errBadFormat
		}
		return p, nil
	default:
		return sendMessagePayload{}, errBadFormat
	}
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func encodeFrame(frameType string, payload any) ([]byte, error) {
	return json.Marshal(outboundFrame{Type: frameType, Payload: payload})
}

// sendFrame enqueues one frame on conn.
func sendFrame(conn realtime.Conn, frameType string, payload any) error {
	b, err := encodeFrame(frameType, payload)
	if err != nil {
		return err
	}
	return conn.Send(b)
}
