package usecase

import (
	"context"
	"fmt"

	chat "cht-gateway/internal/pkg/chat/application/domain"
	repository "cht-gateway/internal/pkg/chat/persistence/repository/port"
)

// ResolveConversationUseCase finds or creates the single conversation of two users.
// Uniqueness under concurrent first contact is delegated to the store's atomic upsert.
type ResolveConversationUseCase struct {
	Repo repository.ChatRepository
}

func NewResolveConversationUseCase(repo repository.ChatRepository) *ResolveConversationUseCase {
	return &ResolveConversationUseCase{Repo: repo}
}

// Execute returns the conversation id for {userA, userB} regardless of argument order.
func (uc *ResolveConversationUseCase) Execute(ctx context.Context, userA, userB string) (string, error) {
	pair, err := chat.CanonicalPair(userA, userB)
	if err != nil {
		return "", err
	}
	id, err := uc.Repo.ResolveConversation(ctx, pair)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return id, nil
}
