package usecase

import (
	"context"
	"fmt"

	user "cht-gateway/internal/pkg/user/application/domain"
	repository "cht-gateway/internal/pkg/user/persistence/repository/port"

	"github.com/samber/lo"
)

// Presence answers whether a user currently holds a live connection.
type Presence interface {
	IsOnline(userID string) bool
}

// UserWithStatus is a directory entry annotated with live presence.
type UserWithStatus struct {
	user.User
	Status user.Status
}

type ListUsersUseCase struct {
	Repo     repository.UserRepository
	Presence Presence
}

func NewListUsersUseCase(repo repository.UserRepository, presence Presence) *ListUsersUseCase {
	return &ListUsersUseCase{Repo: repo, Presence: presence}
}

func (uc *ListUsersUseCase) Execute(ctx context.Context) ([]UserWithStatus, error) {
	users, err := uc.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return lo.Map(users, func(u user.User, _ int) UserWithStatus {
		return UserWithStatus{User: u, Status: user.StatusOf(uc.Presence.IsOnline(u.ID))}
	}), nil
}
