package usecase

import (
	"context"
	"errors"
	"fmt"

	user "cht-gateway/internal/pkg/user/application/domain"
	repository "cht-gateway/internal/pkg/user/persistence/repository/port"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is validated before anything is hashed or stored.
type RegisterInput struct {
	Name     string `validate:"required,min=1"`
	Username string `validate:"required,min=3"`
	Password string `validate:"required,min=6,max=72"`
}

// RegisterUseCase creates an account with a bcrypt password hash.
type RegisterUseCase struct {
	Repo     repository.UserRepository
	validate *validator.Validate
	cost     int
}

func NewRegisterUseCase(repo repository.UserRepository) *RegisterUseCase {
	return &RegisterUseCase{Repo: repo, validate: validator.New(), cost: bcrypt.DefaultCost}
}

// Execute returns the new user id.
func (uc *RegisterUseCase) Execute(ctx context.Context, in RegisterInput) (string, error) {
	if err := uc.validate.Struct(in); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cost)
	if err != nil {
		return "", fmt.Errorf("user: hash password: %w", err)
	}
	id, err := uc.Repo.Create(ctx, user.User{
		Name:         in.Name,
		Username:     in.Username,
		PasswordHash: string(hash),
	})
	if errors.Is(err, repository.ErrDuplicateUsername) {
		return "", ErrUsernameTaken
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return id, nil
}
