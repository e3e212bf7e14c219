package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	repository "cht-gateway/internal/pkg/user/persistence/repository/port"

	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs access tokens for a user id.
type TokenIssuer interface {
	Generate(userID string) (string, time.Time, error)
}

type LoginInput struct {
	Username string
	Password string
}

type LoginOutput struct {
	Token     string
	ExpiresAt time.Time
}

// LoginUseCase exchanges username/password for a bearer token.
type LoginUseCase struct {
	Repo   repository.UserRepository
	Tokens TokenIssuer
}

func NewLoginUseCase(repo repository.UserRepository, tokens TokenIssuer) *LoginUseCase {
	return &LoginUseCase{Repo: repo, Tokens: tokens}
}

// Execute reports ErrInvalidCredentials for both unknown users and wrong passwords.
func (uc *LoginUseCase) Execute(ctx context.Context, in LoginInput) (LoginOutput, error) {
	if in.Username == "" || in.Password == "" {
		return LoginOutput{}, ErrInvalidInput
	}
	u, err := uc.Repo.FindByUsername(ctx, in.Username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return LoginOutput{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginOutput{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return LoginOutput{}, ErrInvalidCredentials
	}
	token, exp, err := uc.Tokens.Generate(u.ID)
	if err != nil {
		return LoginOutput{}, fmt.Errorf("user: sign token: %w", err)
	}
	return LoginOutput{Token: token, ExpiresAt: exp}, nil
}
