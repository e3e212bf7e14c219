package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"cht-gateway/internal/mocks"
	chat "cht-gateway/internal/pkg/chat/application/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSendMessageUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	pair := chat.Pair{A: "alice", B: "bob"}

	t.Run("should persist trimmed content in the resolved conversation", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockChatRepository(ctrl)
		dir := mocks.NewMockUserDirectory(ctrl)
		uc := NewSendMessageUseCase(repo, dir)
		now := time.Now()

		// Given a known recipient
		gomock.InOrder(
			dir.EXPECT().Canonical("alice").Return("alice", true),
			dir.EXPECT().Exists(ctx, "alice").Return(true, nil),
			repo.EXPECT().ResolveConversation(ctx, pair).Return("conv-1", nil),
			repo.EXPECT().AppendMessage(ctx, chat.Message{
				ConversationID: "conv-1", SenderID: "bob", RecipientID: "alice", Content: "hi",
			}).DoAndReturn(func(_ context.Context, m chat.Message) (chat.Message, error) {
				m.ID, m.CreatedAt = "msg-1", now
				return m, nil
			}),
		)

		// When
		msg, err := uc.Execute(ctx, SendMessageInput{SenderID: "bob", RecipientID: "alice", Content: "  hi \n"})

		// Then
		req.NoError(err)
		req.Equal("msg-1", msg.ID)
		req.Equal("conv-1", msg.ConversationID)
		req.Equal("hi", msg.Content)
		req.Equal(now, msg.CreatedAt)
	})

	t.Run("should be a no-op for whitespace content", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		// no calls expected on either collaborator
		uc := NewSendMessageUseCase(mocks.NewMockChatRepository(ctrl), mocks.NewMockUserDirectory(ctrl))

		_, err := uc.Execute(ctx, SendMessageInput{SenderID: "bob", RecipientID: "whatever", Content: " \t "})

		req.ErrorIs(err, chat.ErrEmptyContent)
	})

	t.Run("should reject a malformed recipient before touching the store", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		dir := mocks.NewMockUserDirectory(ctrl)
		uc := NewSendMessageUseCase(mocks.NewMockChatRepository(ctrl), dir)
		dir.EXPECT().Canonical("???").Return("", false)

		_, err := uc.Execute(ctx, SendMessageInput{SenderID: "bob", RecipientID: "???", Content: "hi"})

		req.ErrorIs(err, ErrInvalidRecipient)
	})

	t.Run("should reject sending to oneself", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		dir := mocks.NewMockUserDirectory(ctrl)
		uc := NewSendMessageUseCase(mocks.NewMockChatRepository(ctrl), dir)
		dir.EXPECT().Canonical("bob").Return("bob", true)

		_, err := uc.Execute(ctx, SendMessageInput{SenderID: "bob", RecipientID: "bob", Content: "hi"})

		req.ErrorIs(err, ErrInvalidRecipient)
	})

	t.Run("should reject an unknown recipient", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		dir := mocks.NewMockUserDirectory(ctrl)
		uc := NewSendMessageUseCase(mocks.NewMockChatRepository(ctrl), dir)
		dir.EXPECT().Canonical("ghost").Return("ghost", true)
		dir.EXPECT().Exists(ctx, "ghost").Return(false, nil)

		_, err := uc.Execute(ctx, SendMessageInput{SenderID: "bob", RecipientID: "ghost", Content: "hi"})

		req.ErrorIs(err, ErrRecipientNotFound)
	})

	t.Run("should surface store failures as persistence errors", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockChatRepository(ctrl)
		dir := mocks.NewMockUserDirectory(ctrl)
		uc := NewSendMessageUseCase(repo, dir)
		dir.EXPECT().Canonical("alice").Return("alice", true)
		dir.EXPECT().Exists(ctx, "alice").Return(true, nil)
		repo.EXPECT().ResolveConversation(ctx, pair).Return("conv-1", nil)
		repo.EXPECT().AppendMessage(ctx, gomock.Any()).Return(chat.Message{}, errors.New("connection refused"))

		_, err := uc.Execute(ctx, SendMessageInput{SenderID: "bob", RecipientID: "alice", Content: "hi"})

		req.ErrorIs(err, ErrPersistence)
	})

	t.Run("should surface directory failures as persistence errors", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		dir := mocks.NewMockUserDirectory(ctrl)
		uc := NewSendMessageUseCase(mocks.NewMockChatRepository(ctrl), dir)
		dir.EXPECT().Canonical("alice").Return("alice", true)
		dir.EXPECT().Exists(ctx, "alice").Return(false, errors.New("timeout"))

		_, err := uc.Execute(ctx, SendMessageInput{SenderID: "bob", RecipientID: "alice", Content: "hi"})

		req.ErrorIs(err, ErrPersistence)
	})

	t.Run("should address the canonical recipient when given an alias", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockChatRepository(ctrl)
		dir := mocks.NewMockUserDirectory(ctrl)
		uc := NewSendMessageUseCase(repo, dir)

		// Given an upper-case spelling of alice's id
		dir.EXPECT().Canonical("ALICE").Return("alice", true)
		dir.EXPECT().Exists(ctx, "alice").Return(true, nil)
		repo.EXPECT().ResolveConversation(ctx, pair).Return("conv-1", nil)
		repo.EXPECT().AppendMessage(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, m chat.Message) (chat.Message, error) {
				m.ID = "msg-1"
				return m, nil
			})

		// When
		msg, err := uc.Execute(ctx, SendMessageInput{SenderID: "bob", RecipientID: "ALICE", Content: "hi"})

		// Then the stored message names the canonical id
		req.NoError(err)
		req.Equal("alice", msg.RecipientID)
	})

	t.Run("should reject an alias of the sender", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		dir := mocks.NewMockUserDirectory(ctrl)
		uc := NewSendMessageUseCase(mocks.NewMockChatRepository(ctrl), dir)
		dir.EXPECT().Canonical("BOB").Return("bob", true)

		_, err := uc.Execute(ctx, SendMessageInput{SenderID: "bob", RecipientID: "BOB", Content: "hi"})

		req.ErrorIs(err, ErrInvalidRecipient)
	})
}
