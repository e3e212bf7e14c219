package adapter

import (
	"context"
	"sort"
	"sync"
	"time"

	chat "cht-gateway/internal/pkg/chat/application/domain"
	repository "cht-gateway/internal/pkg/chat/persistence/repository/port"

	"github.com/google/uuid"
)

type memConversation struct {
	chat.Conversation
	messages []chat.Message // append order == CreatedAt order
}

// MemChatRepository is the in-process store used by STORE_DRIVER=memory and tests.
type MemChatRepository struct {
	mu     sync.Mutex
	byPair map[chat.Pair]*memConversation
	byID   map[string]*memConversation
	now    func() time.Time
}

var _ repository.ChatRepository = (*MemChatRepository)(nil)

func NewMemChatRepository() *MemChatRepository {
	return &MemChatRepository{
		byPair: make(map[chat.Pair]*memConversation),
		byID:   make(map[string]*memConversation),
		now:    time.Now,
	}
}

func (r *MemChatRepository) ResolveConversation(_ context.Context, pair chat.Pair) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byPair[pair]; ok {
		return c.ID, nil
	}
	now := r.now()
	c := &memConversation{Conversation: chat.Conversation{
		ID:           uuid.NewString(),
		Participants: pair,
		CreatedAt:    now,
		UpdatedAt:    now,
	}}
	r.byPair[pair] = c
	r.byID[c.ID] = c
	return c.ID, nil
}

func (r *MemChatRepository) FindConversation(_ context.Context, pair chat.Pair) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byPair[pair]; ok {
		return c.ID, nil
	}
	return "", repository.ErrConversationNotFound
}

func (r *MemChatRepository) AppendMessage(_ context.Context, m chat.Message) (chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[m.ConversationID]
	if !ok {
		return chat.Message{}, repository.ErrConversationNotFound
	}
	ts := r.now()
	if floor := c.UpdatedAt.Add(time.Microsecond); ts.Before(floor) {
		ts = floor
	}
	c.UpdatedAt = ts
	m.ID = uuid.NewString()
	m.CreatedAt = ts
	c.messages = append(c.messages, m)
	return m, nil
}

func (r *MemChatRepository) ListMessages(_ context.Context, conversationID string, q repository.HistoryQuery) ([]chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[conversationID]
	if !ok {
		return []chat.Message{}, nil
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}
	end := len(c.messages)
	if q.Before != nil {
		end = sort.Search(len(c.messages), func(i int) bool {
			return !c.messages[i].CreatedAt.Before(*q.Before)
		})
	}
	out := make([]chat.Message, 0, q.Limit)
	for i := end - 1; i >= 0 && len(out) < q.Limit; i-- {
		out = append(out, c.messages[i])
	}
	return out, nil
}

// ConversationCount reports how many conversations exist.
func (r *MemChatRepository) ConversationCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byPair)
}

func (r *MemChatRepository) Ping(context.Context) error { return nil }
