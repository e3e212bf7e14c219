package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is idempotent; Migrate runs it on every start. gen_random_uuid needs PostgreSQL 13+.
//
// conversation holds the canonical (sorted) participant pair. The unique constraint
// is what makes the conversation upsert race-free.
const schema = `
CREATE SCHEMA IF NOT EXISTS chat;

CREATE TABLE IF NOT EXISTS chat.app_user (
	id            uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	name          text        NOT NULL,
	username      text        NOT NULL,
	password_hash text        NOT NULL,
	created_at    timestamptz NOT NULL DEFAULT now(),
	CONSTRAINT app_user_username_key UNIQUE (username)
);

CREATE TABLE IF NOT EXISTS chat.conversation (
	id            uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	participant_a uuid        NOT NULL,
	participant_b uuid        NOT NULL,
	created_at    timestamptz NOT NULL DEFAULT now(),
	updated_at    timestamptz NOT NULL DEFAULT now(),
	CONSTRAINT conversation_pair_ordered CHECK (participant_a < participant_b),
	CONSTRAINT conversation_pair_key UNIQUE (participant_a, participant_b)
);

CREATE TABLE IF NOT EXISTS chat.message (
	id              uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	conversation_id uuid        NOT NULL REFERENCES chat.conversation (id),
	sender_id       uuid        NOT NULL,
	recipient_id    uuid        NOT NULL,
	content         text        NOT NULL,
	created_at      timestamptz NOT NULL
);

CREATE INDEX IF NOT EXISTS message_conversation_created_idx
	ON chat.message (conversation_id, created_at DESC);
`

// Migrate applies the chat schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}
