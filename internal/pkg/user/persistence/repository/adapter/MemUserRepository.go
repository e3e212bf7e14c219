package adapter

import (
	"context"
	"sort"
	"sync"
	"time"

	user "cht-gateway/internal/pkg/user/application/domain"
	repository "cht-gateway/internal/pkg/user/persistence/repository/port"

	"github.com/google/uuid"
)

// MemUserRepository is the in-process directory used by STORE_DRIVER=memory and tests.
type MemUserRepository struct {
	mu         sync.RWMutex
	byID       map[string]user.User
	byUsername map[string]string
}

var _ repository.UserRepository = (*MemUserRepository)(nil)

func NewMemUserRepository() *MemUserRepository {
	return &MemUserRepository{
		byID:       make(map[string]user.User),
		byUsername: make(map[string]string),
	}
}

func (r *MemUserRepository) Canonical(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

func (r *MemUserRepository) Create(_ context.Context, u user.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byUsername[u.Username]; taken {
		return "", repository.ErrDuplicateUsername
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	r.byID[u.ID] = u
	r.byUsername[u.Username] = u.ID
	return u.ID, nil
}

func (r *MemUserRepository) FindByID(_ context.Context, id string) (user.User, error) {
	id, ok := r.Canonical(id)
	if !ok {
		return user.User{}, repository.ErrUserNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return user.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (r *MemUserRepository) FindByUsername(ctx context.Context, username string) (user.User, error) {
	r.mu.RLock()
	id, ok := r.byUsername[username]
	r.mu.RUnlock()
	if !ok {
		return user.User{}, repository.ErrUserNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *MemUserRepository) List(context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]user.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *MemUserRepository) Exists(_ context.Context, id string) (bool, error) {
	id, ok := r.Canonical(id)
	if !ok {
		return false, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok = r.byID[id]
	return ok, nil
}

func (r *MemUserRepository) Ping(context.Context) error { return nil }
