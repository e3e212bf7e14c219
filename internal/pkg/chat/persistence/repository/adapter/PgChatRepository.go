package adapter

import (
	"context"
	"errors"

	chat "cht-gateway/internal/pkg/chat/application/domain"
	repository "cht-gateway/internal/pkg/chat/persistence/repository/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var errNilPool = errors.New("PgChatRepository: nil pool")

type PgChatRepository struct {
	pool *pgxpool.Pool
}

var _ repository.ChatRepository = (*PgChatRepository)(nil)

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

// pgPair re-canonicalizes on the parsed uuids so the order matches the column CHECK.
func pgPair(pair chat.Pair) (chat.Pair, error) {
	a, err := uuid.Parse(pair.A)
	if err != nil {
		return chat.Pair{}, err
	}
	b, err := uuid.Parse(pair.B)
	if err != nil {
		return chat.Pair{}, err
	}
	return chat.CanonicalPair(a.String(), b.String())
}

func (r *PgChatRepository) ResolveConversation(ctx context.Context, pair chat.Pair) (string, error) {
	if r == nil || r.pool == nil {
		return "", errNilPool
	}
	pair, err := pgPair(pair)
	if err != nil {
		return "", err
	}
	// The no-op DO UPDATE makes RETURNING yield the existing row on conflict.
	var id string
	err = r.pool.QueryRow(ctx, `
		INSERT INTO chat.conversation (participant_a, participant_b)
		VALUES ($1::uuid, $2::uuid)
		ON CONFLICT (participant_a, participant_b)
		DO UPDATE SET participant_a = EXCLUDED.participant_a
		RETURNING id::text
	`, pair.A, pair.B).Scan(&id)
	return id, err
}

func (r *PgChatRepository) FindConversation(ctx context.Context, pair chat.Pair) (string, error) {
	if r == nil || r.pool == nil {
		return "", errNilPool
	}
	pair, err := pgPair(pair)
	if err != nil {
		return "", repository.ErrConversationNotFound
	}
	var id string
	err = r.pool.QueryRow(ctx, `
		SELECT id::text FROM chat.conversation
		WHERE participant_a = $1::uuid AND participant_b = $2::uuid
	`, pair.A, pair.B).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", repository.ErrConversationNotFound
	}
	return id, err
}

func (r *PgChatRepository) AppendMessage(ctx context.Context, m chat.Message) (chat.Message, error) {
	if r == nil || r.pool == nil {
		return chat.Message{}, errNilPool
	}
	// Bumping updated_at takes the conversation row lock, so concurrent appends to one
	// conversation are serialized and each gets a strictly later timestamp.
	err := r.pool.QueryRow(ctx, `
		WITH conv AS (
			UPDATE chat.conversation
			SET updated_at = GREATEST(clock_timestamp(), updated_at + interval '1 microsecond')
			WHERE id = $1::uuid
			RETURNING id, updated_at
		)
		INSERT INTO chat.message (conversation_id, sender_id, recipient_id, content, created_at)
		SELECT conv.id, $2::uuid, $3::uuid, $4, conv.updated_at FROM conv
		RETURNING id::text, created_at
	`, m.ConversationID, m.SenderID, m.RecipientID, m.Content).Scan(&m.ID, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.Message{}, repository.ErrConversationNotFound
	}
	if err != nil {
		return chat.Message{}, err
	}
	return m, nil
}

func (r *PgChatRepository) ListMessages(ctx context.Context, conversationID string, q repository.HistoryQuery) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, conversation_id::text, sender_id::text, recipient_id::text, content, created_at
		FROM chat.message
		WHERE conversation_id = $1::uuid
		  AND ($2::timestamptz IS NULL OR created_at < $2::timestamptz)
		ORDER BY created_at DESC
		LIMIT $3
	`, conversationID, q.Before, q.Limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[chat.Message])
}

func (r *PgChatRepository) Ping(ctx context.Context) error {
	if r == nil || r.pool == nil {
		return errNilPool
	}
	return r.pool.Ping(ctx)
}
