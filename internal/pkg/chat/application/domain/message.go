package chat

import (
	"strings"
	"time"
)

// Message is an immutable entry in a conversation. CreatedAt is assigned by the
// store and never decreases within one conversation.
type Message struct {
	ID             string    `db:"id"`
	ConversationID string    `db:"conversation_id"`
	SenderID       string    `db:"sender_id"`
	RecipientID    string    `db:"recipient_id"`
	Content        string    `db:"content"`
	CreatedAt      time.Time `db:"created_at"`
}

// NormalizeContent trims surrounding whitespace.
func NormalizeContent(content string) string {
	return strings.TrimSpace(content)
}

// NewMessage builds an unsaved message; ID and CreatedAt are filled on append.
func NewMessage(conversationID, senderID, recipientID, content string) (*Message, error) {
	if conversationID == "" || senderID == "" || recipientID == "" {
		return nil, ErrMissingParticipant
	}
	content = NormalizeContent(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	return &Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		RecipientID:    recipientID,
		Content:        content,
	}, nil
}
