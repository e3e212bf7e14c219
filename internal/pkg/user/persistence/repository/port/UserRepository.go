//go:generate go run go.uber.org/mock/mockgen -source=UserRepository.go -destination=../../../../../mocks/mock_user_repository.go -package=mocks
package repository

import (
	"context"
	"errors"

	user "cht-gateway/internal/pkg/user/application/domain"
)

var (
	ErrUserNotFound      = errors.New("user repository: user not found")
	ErrDuplicateUsername = errors.New("user repository: username already exists")
)

// UserRepository is the user directory. It also satisfies the chat context's
// UserDirectory, so identity syntax is defined by the backing store.
type UserRepository interface {
	// Create stores u and returns the assigned id.
	Create(ctx context.Context, u user.User) (string, error)
	FindByID(ctx context.Context, id string) (user.User, error)
	FindByUsername(ctx context.Context, username string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)

	Exists(ctx context.Context, id string) (bool, error)
	Canonical(id string) (string, bool)

	Ping(ctx context.Context) error
}
