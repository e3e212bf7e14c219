package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	chat "cht-gateway/internal/pkg/chat/application/domain"
	repository "cht-gateway/internal/pkg/chat/persistence/repository/port"

	"github.com/samber/lo"
)

// GetMessageInput selects a history page of the conversation between UserID and PeerID.
type GetMessageInput struct {
	UserID string
	PeerID string
	Before *time.Time
	Limit  int
}

// GetMessageOutput has an empty ConversationID when the pair never exchanged messages.
type GetMessageOutput struct {
	ConversationID string
	Messages       []chat.Message
}

// GetMessageUseCase reads history without ever creating a conversation.
type GetMessageUseCase struct {
	Repo      repository.ChatRepository
	Directory repository.UserDirectory
}

func NewGetMessageUseCase(repo repository.ChatRepository, directory repository.UserDirectory) *GetMessageUseCase {
	return &GetMessageUseCase{Repo: repo, Directory: directory}
}

// Execute returns the newest Limit messages older than Before, oldest first.
func (uc *GetMessageUseCase) Execute(ctx context.Context, in GetMessageInput) (GetMessageOutput, error) {
	empty := GetMessageOutput{Messages: []chat.Message{}}
	peerID, ok := uc.Directory.Canonical(in.PeerID)
	if !ok {
		return empty, nil
	}
	pair, err := chat.CanonicalPair(in.UserID, peerID)
	if err != nil {
		return empty, nil
	}

	conversationID, err := uc.Repo.FindConversation(ctx, pair)
	if errors.Is(err, repository.ErrConversationNotFound) {
		return empty, nil
	}
	if err != nil {
		return GetMessageOutput{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	msgs, err := uc.Repo.ListMessages(ctx, conversationID, repository.HistoryQuery{Before: in.Before, Limit: in.Limit})
	if err != nil {
		return GetMessageOutput{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return GetMessageOutput{
		ConversationID: conversationID,
		Messages:       lo.Reverse(msgs),
	}, nil
}
