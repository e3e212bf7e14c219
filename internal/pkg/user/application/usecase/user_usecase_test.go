package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"cht-gateway/internal/mocks"
	user "cht-gateway/internal/pkg/user/application/domain"
	repository "cht-gateway/internal/pkg/user/persistence/repository/port"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

type stubIssuer struct{}

func (stubIssuer) Generate(userID string) (string, time.Time, error) {
	return "token-for-" + userID, time.Unix(0, 0), nil
}

type stubPresence map[string]bool

func (p stubPresence) IsOnline(userID string) bool { return p[userID] }

func TestRegisterUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("should store a bcrypt hash, never the password", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockUserRepository(ctrl)
		uc := NewRegisterUseCase(repo)
		uc.cost = bcrypt.MinCost

		repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u user.User) (string, error) {
			req.Equal("alice", u.Username)
			req.NotEqual("secret1", u.PasswordHash)
			req.NoError(bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))
			return "id-1", nil
		})

		id, err := uc.Execute(ctx, RegisterInput{Name: "Alice", Username: "alice", Password: "secret1"})
		req.NoError(err)
		req.Equal("id-1", id)
	})

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"missing name", RegisterInput{Username: "alice", Password: "secret1"}},
		{"short username", RegisterInput{Name: "A", Username: "al", Password: "secret1"}},
		{"short password", RegisterInput{Name: "A", Username: "alice", Password: "12345"}},
	}
	for _, tt := range tests {
		t.Run("should reject "+tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockUserRepository(ctrl)
			repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

			_, err := NewRegisterUseCase(repo).Execute(ctx, tt.in)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	t.Run("should report a taken username", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockUserRepository(ctrl)
		uc := NewRegisterUseCase(repo)
		uc.cost = bcrypt.MinCost
		repo.EXPECT().Create(ctx, gomock.Any()).Return("", repository.ErrDuplicateUsername)

		_, err := uc.Execute(ctx, RegisterInput{Name: "Alice", Username: "alice", Password: "secret1"})
		require.ErrorIs(t, err, ErrUsernameTaken)
	})
}

func TestLoginUseCase(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	alice := user.User{ID: "id-1", Username: "alice", PasswordHash: string(hash)}

	t.Run("should issue a token for valid credentials", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockUserRepository(ctrl)
		repo.EXPECT().FindByUsername(ctx, "alice").Return(alice, nil)

		out, err := NewLoginUseCase(repo, stubIssuer{}).Execute(ctx, LoginInput{Username: "alice", Password: "secret1"})

		req.NoError(err)
		req.Equal("token-for-id-1", out.Token)
	})

	t.Run("should not distinguish wrong password from unknown user", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockUserRepository(ctrl)
		repo.EXPECT().FindByUsername(ctx, "alice").Return(alice, nil)
		repo.EXPECT().FindByUsername(ctx, "ghost").Return(user.User{}, repository.ErrUserNotFound)
		uc := NewLoginUseCase(repo, stubIssuer{})

		_, err := uc.Execute(ctx, LoginInput{Username: "alice", Password: "wrong!"})
		req.ErrorIs(err, ErrInvalidCredentials)
		_, err = uc.Execute(ctx, LoginInput{Username: "ghost", Password: "secret1"})
		req.ErrorIs(err, ErrInvalidCredentials)
	})

	t.Run("should wrap store failures", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockUserRepository(ctrl)
		repo.EXPECT().FindByUsername(ctx, "alice").Return(user.User{}, errors.New("down"))

		_, err := NewLoginUseCase(repo, stubIssuer{}).Execute(ctx, LoginInput{Username: "alice", Password: "secret1"})
		require.ErrorIs(t, err, ErrPersistence)
	})
}

func TestGetProfileUseCase(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	repo.EXPECT().FindByID(ctx, "gone").Return(user.User{}, repository.ErrUserNotFound)

	_, err := NewGetProfileUseCase(repo).Execute(ctx, "gone")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestListUsersUseCase(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	repo.EXPECT().List(ctx).Return([]user.User{{ID: "a", Username: "alice"}, {ID: "b", Username: "bob"}}, nil)

	out, err := NewListUsersUseCase(repo, stubPresence{"a": true}).Execute(ctx)

	req.NoError(err)
	req.Len(out, 2)
	req.Equal(user.StatusOnline, out[0].Status)
	req.Equal(user.StatusOffline, out[1].Status)
}
