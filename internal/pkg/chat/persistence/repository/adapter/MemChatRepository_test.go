package adapter

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	chat "cht-gateway/internal/pkg/chat/application/domain"
	repository "cht-gateway/internal/pkg/chat/persistence/repository/port"

	"github.com/stretchr/testify/require"
)

func mustPair(t *testing.T, x, y string) chat.Pair {
	t.Helper()
	p, err := chat.CanonicalPair(x, y)
	require.NoError(t, err)
	return p
}

func TestMemChatRepository_ResolveIsIdempotentUnderRace(t *testing.T) {
	req := require.New(t)
	repo := NewMemChatRepository()
	ctx := context.Background()

	// Given both users resolving their first conversation concurrently from both directions
	const n = 50
	ids := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			x, y := "alice", "bob"
			if i%2 == 1 {
				x, y = y, x
			}
			ids[i], errs[i] = repo.ResolveConversation(ctx, chat.Pair{A: min(x, y), B: max(x, y)})
		}(i)
	}
	wg.Wait()

	// Then exactly one conversation exists and everyone saw its id
	req.Equal(1, repo.ConversationCount())
	for i, id := range ids {
		req.NoError(errs[i])
		req.Equal(ids[0], id)
	}
	found, err := repo.FindConversation(ctx, mustPair(t, "bob", "alice"))
	req.NoError(err)
	req.Equal(ids[0], found)
}

func TestMemChatRepository_Contract(t *testing.T) {
	n := 0
	runChatRepositoryContract(t, NewMemChatRepository(), func() string {
		n++
		return fmt.Sprintf("user-%03d", n)
	})
}

func TestMemChatRepository_FindUnknown(t *testing.T) {
	_, err := NewMemChatRepository().FindConversation(context.Background(), mustPair(t, "a", "b"))
	require.ErrorIs(t, err, repository.ErrConversationNotFound)
}

func TestMemChatRepository_AppendIsMonotonic(t *testing.T) {
	req := require.New(t)
	repo := NewMemChatRepository()
	ctx := context.Background()

	// Given a frozen clock
	frozen := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	repo.now = func() time.Time { return frozen }
	convID, err := repo.ResolveConversation(ctx, mustPair(t, "alice", "bob"))
	req.NoError(err)

	// When several messages are appended
	var prev time.Time
	for i := 0; i < 5; i++ {
		m, err := repo.AppendMessage(ctx, chat.Message{ConversationID: convID, SenderID: "alice", RecipientID: "bob", Content: fmt.Sprint(i)})
		req.NoError(err)
		req.NotEmpty(m.ID)
		// Then timestamps strictly increase even though the clock does not move
		req.True(m.CreatedAt.After(prev))
		prev = m.CreatedAt
	}

	_, err = repo.AppendMessage(ctx, chat.Message{ConversationID: "missing"})
	req.ErrorIs(err, repository.ErrConversationNotFound)
}

func TestMemChatRepository_ListMessagesPages(t *testing.T) {
	req := require.New(t)
	repo := NewMemChatRepository()
	ctx := context.Background()
	convID, err := repo.ResolveConversation(ctx, mustPair(t, "alice", "bob"))
	req.NoError(err)

	var all []chat.Message
	for i := 0; i < 5; i++ {
		m, err := repo.AppendMessage(ctx, chat.Message{ConversationID: convID, SenderID: "alice", RecipientID: "bob", Content: fmt.Sprint(i)})
		req.NoError(err)
		all = append(all, m)
	}

	page, err := repo.ListMessages(ctx, convID, repository.HistoryQuery{Limit: 2})
	req.NoError(err)
	req.Equal([]string{"4", "3"}, contents(page))

	before := all[3].CreatedAt
	page, err = repo.ListMessages(ctx, convID, repository.HistoryQuery{Limit: 10, Before: &before})
	req.NoError(err)
	req.Equal([]string{"2", "1", "0"}, contents(page))

	page, err = repo.ListMessages(ctx, "unknown", repository.HistoryQuery{Limit: 10})
	req.NoError(err)
	req.Empty(page)
}

func contents(msgs []chat.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Content
	}
	return out
}
