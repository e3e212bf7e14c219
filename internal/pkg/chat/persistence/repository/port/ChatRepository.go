//go:generate go run go.uber.org/mock/mockgen -source=ChatRepository.go -destination=../../../../../mocks/mock_chat_repository.go -package=mocks
package repository

import (
	"context"
	"errors"
	"time"

	chat "cht-gateway/internal/pkg/chat/application/domain"
)

// ErrConversationNotFound is returned by lookups that never create.
var ErrConversationNotFound = errors.New("chat repository: conversation not found")

// HistoryQuery selects a page of messages strictly older than Before (when set).
type HistoryQuery struct {
	Before *time.Time
	Limit  int
}

// ChatRepository defines persistence operations for direct conversations and their messages.
type ChatRepository interface {
	// ResolveConversation atomically finds or creates the conversation for pair and returns its id.
	ResolveConversation(ctx context.Context, pair chat.Pair) (string, error)

	// FindConversation returns ErrConversationNotFound when the pair never talked.
	FindConversation(ctx context.Context, pair chat.Pair) (string, error)

	// AppendMessage stores m, assigning ID and a CreatedAt that never decreases within the conversation.
	AppendMessage(ctx context.Context, m chat.Message) (chat.Message, error)

	// ListMessages returns up to q.Limit messages, newest first.
	ListMessages(ctx context.Context, conversationID string, q HistoryQuery) ([]chat.Message, error)

	Ping(ctx context.Context) error
}

// UserDirectory is the chat context's view of the user store.
type UserDirectory interface {
	// Canonical returns the store's normal form of an identity reference, or false
	// when id is malformed. Equal identities always have equal canonical forms.
	Canonical(id string) (string, bool)
	Exists(ctx context.Context, id string) (bool, error)
}
