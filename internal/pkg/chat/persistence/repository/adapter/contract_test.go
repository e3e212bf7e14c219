package adapter

import (
	"context"
	"fmt"
	"sync"
	"testing"

	chat "cht-gateway/internal/pkg/chat/application/domain"
	repository "cht-gateway/internal/pkg/chat/persistence/repository/port"

	"github.com/stretchr/testify/require"
)

// runChatRepositoryContract exercises behavior every ChatRepository driver must share.
// newUserID must return a fresh identity valid for the driver.
func runChatRepositoryContract(t *testing.T, repo repository.ChatRepository, newUserID func() string) {
	ctx := context.Background()

	t.Run("first contact race yields one conversation", func(t *testing.T) {
		req := require.New(t)
		u, v := newUserID(), newUserID()
		pair := mustPair(t, u, v)

		const n = 16
		ids := make([]string, n)
		errs := make([]error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				ids[i], errs[i] = repo.ResolveConversation(ctx, pair)
			}(i)
		}
		wg.Wait()

		for i := range ids {
			req.NoError(errs[i])
			req.Equal(ids[0], ids[i])
		}
		found, err := repo.FindConversation(ctx, mustPair(t, v, u))
		req.NoError(err)
		req.Equal(ids[0], found)
	})

	t.Run("conversations sharing a participant stay distinct", func(t *testing.T) {
		req := require.New(t)
		a, b, c := newUserID(), newUserID(), newUserID()

		// Given a already talks to b
		ab, err := repo.ResolveConversation(ctx, mustPair(t, a, b))
		req.NoError(err)

		// When a opens conversations with c, and c with b
		ac, err := repo.ResolveConversation(ctx, mustPair(t, a, c))
		req.NoError(err)
		cb, err := repo.ResolveConversation(ctx, mustPair(t, c, b))
		req.NoError(err)

		// Then each pair has its own conversation and resolves back to it
		req.NotEqual(ab, ac)
		req.NotEqual(ab, cb)
		req.NotEqual(ac, cb)

		again, err := repo.ResolveConversation(ctx, mustPair(t, c, a))
		req.NoError(err)
		req.Equal(ac, again)
		found, err := repo.FindConversation(ctx, mustPair(t, b, a))
		req.NoError(err)
		req.Equal(ab, found)

		_, err = repo.AppendMessage(ctx, chat.Message{ConversationID: ac, SenderID: a, RecipientID: c, Content: "hi c"})
		req.NoError(err)
		page, err := repo.ListMessages(ctx, ab, repository.HistoryQuery{Limit: 10})
		req.NoError(err)
		req.Empty(page)
	})

	t.Run("messages keep send order", func(t *testing.T) {
		req := require.New(t)
		u, v := newUserID(), newUserID()
		convID, err := repo.ResolveConversation(ctx, mustPair(t, u, v))
		req.NoError(err)

		var sent []chat.Message
		for i := 0; i < 3; i++ {
			m, err := repo.AppendMessage(ctx, chat.Message{ConversationID: convID, SenderID: u, RecipientID: v, Content: fmt.Sprintf("m%d", i)})
			req.NoError(err)
			req.NotEmpty(m.ID)
			req.Equal(convID, m.ConversationID)
			if len(sent) > 0 {
				req.False(m.CreatedAt.Before(sent[len(sent)-1].CreatedAt))
			}
			sent = append(sent, m)
		}

		page, err := repo.ListMessages(ctx, convID, repository.HistoryQuery{Limit: 10})
		req.NoError(err)
		req.Equal([]string{"m2", "m1", "m0"}, contents(page))
		req.Equal(u, page[0].SenderID)
		req.Equal(v, page[0].RecipientID)
	})

	t.Run("unknown pair is not created by lookups", func(t *testing.T) {
		_, err := repo.FindConversation(ctx, mustPair(t, newUserID(), newUserID()))
		require.ErrorIs(t, err, repository.ErrConversationNotFound)
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, repo.Ping(ctx))
	})
}
