package usecase

import (
	"context"
	"fmt"

	chat "cht-gateway/internal/pkg/chat/application/domain"
	repository "cht-gateway/internal/pkg/chat/persistence/repository/port"
)

// SendMessageInput carries one direct message request from an authenticated sender.
type SendMessageInput struct {
	SenderID    string
	RecipientID string
	Content     string
}

// SendMessageUseCase validates, resolves and persists one direct message.
// Steps run in a fixed order: content, recipient, conversation, append.
type SendMessageUseCase struct {
	Repo      repository.ChatRepository
	Directory repository.UserDirectory
	Resolver  *ResolveConversationUseCase
}

func NewSendMessageUseCase(repo repository.ChatRepository, directory repository.UserDirectory) *SendMessageUseCase {
	return &SendMessageUseCase{
		Repo:      repo,
		Directory: directory,
		Resolver:  NewResolveConversationUseCase(repo),
	}
}

// Execute returns chat.ErrEmptyContent for whitespace-only content, which callers treat as a no-op.
func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*chat.Message, error) {
	content := chat.NormalizeContent(in.Content)
	if content == "" {
		return nil, chat.ErrEmptyContent
	}

	// Everything past this point uses the canonical id: registry key, pair and stored message.
	recipientID, ok := uc.Directory.Canonical(in.RecipientID)
	if !ok || recipientID == in.SenderID {
		return nil, ErrInvalidRecipient
	}
	exists, err := uc.Directory.Exists(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !exists {
		return nil, ErrRecipientNotFound
	}

	conversationID, err := uc.Resolver.Execute(ctx, in.SenderID, recipientID)
	if err != nil {
		return nil, err
	}

	msg, err := chat.NewMessage(conversationID, in.SenderID, recipientID, content)
	if err != nil {
		return nil, err
	}

	// Persist letting the store assign id and timestamp
	saved, err := uc.Repo.AppendMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &saved, nil
}
