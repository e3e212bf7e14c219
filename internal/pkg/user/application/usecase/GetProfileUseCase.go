package usecase

import (
	"context"
	"errors"
	"fmt"

	user "cht-gateway/internal/pkg/user/application/domain"
	repository "cht-gateway/internal/pkg/user/persistence/repository/port"
)

type GetProfileUseCase struct {
	Repo repository.UserRepository
}

func NewGetProfileUseCase(repo repository.UserRepository) *GetProfileUseCase {
	return &GetProfileUseCase{Repo: repo}
}

func (uc *GetProfileUseCase) Execute(ctx context.Context, userID string) (user.User, error) {
	u, err := uc.Repo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return user.User{}, ErrUserNotFound
	}
	if err != nil {
		return user.User{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return u, nil
}
