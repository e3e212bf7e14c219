package adapter

import (
	"context"
	"errors"

	user "cht-gateway/internal/pkg/user/application/domain"
	repository "cht-gateway/internal/pkg/user/persistence/repository/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

var errNilPool = errors.New("PgUserRepository: nil pool")

type PgUserRepository struct {
	pool *pgxpool.Pool
}

var _ repository.UserRepository = (*PgUserRepository)(nil)

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

// Canonical maps every textual uuid form (upper case, urn, braces) to the lower-case hyphenated one.
func (r *PgUserRepository) Canonical(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

func (r *PgUserRepository) Create(ctx context.Context, u user.User) (string, error) {
	if r == nil || r.pool == nil {
		return "", errNilPool
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat.app_user (name, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id::text
	`, u.Name, u.Username, u.PasswordHash).Scan(&id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return "", repository.ErrDuplicateUsername
	}
	return id, err
}

func (r *PgUserRepository) FindByID(ctx context.Context, id string) (user.User, error) {
	id, ok := r.Canonical(id)
	if !ok {
		return user.User{}, repository.ErrUserNotFound
	}
	return r.findOne(ctx, "WHERE id = $1::uuid", id)
}

func (r *PgUserRepository) FindByUsername(ctx context.Context, username string) (user.User, error) {
	return r.findOne(ctx, "WHERE username = $1", username)
}

func (r *PgUserRepository) findOne(ctx context.Context, where string, arg any) (user.User, error) {
	if r == nil || r.pool == nil {
		return user.User{}, errNilPool
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, username, password_hash, created_at
		FROM chat.app_user `+where, arg)
	if err != nil {
		return user.User{}, err
	}
	u, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[user.User])
	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, repository.ErrUserNotFound
	}
	return u, err
}

func (r *PgUserRepository) List(ctx context.Context) ([]user.User, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, username, password_hash, created_at
		FROM chat.app_user
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[user.User])
}

func (r *PgUserRepository) Exists(ctx context.Context, id string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errNilPool
	}
	id, ok := r.Canonical(id)
	if !ok {
		return false, nil
	}
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM chat.app_user WHERE id = $1::uuid)`, id).Scan(&exists)
	return exists, err
}

func (r *PgUserRepository) Ping(ctx context.Context) error {
	if r == nil || r.pool == nil {
		return errNilPool
	}
	return r.pool.Ping(ctx)
}
