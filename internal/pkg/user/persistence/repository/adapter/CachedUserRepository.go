package adapter

import (
	"context"
	"errors"
	"time"

	cacheport "cht-gateway/internal/infrastructure/cache/port"
	repository "cht-gateway/internal/pkg/user/persistence/repository/port"

	"go.uber.org/zap"
)

const existsKeyPrefix = "user:exists:"

// CachedUserRepository memoizes positive Exists answers in the cache. Users are never
// deleted, so a cached hit cannot go stale; misses are not cached so a freshly
// registered user is visible immediately. Cache failures fall through to the store.
type CachedUserRepository struct {
	repository.UserRepository
	cache  cacheport.Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedUserRepository(inner repository.UserRepository, cache cacheport.Cache, ttl time.Duration, logger *zap.Logger) *CachedUserRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedUserRepository{
		UserRepository: inner,
		cache:          cache,
		ttl:            ttl,
		logger:         logger.Named("user-cache"),
	}
}

func (r *CachedUserRepository) Exists(ctx context.Context, id string) (bool, error) {
	id, ok := r.Canonical(id)
	if !ok {
		return false, nil
	}
	key := existsKeyPrefix + id
	_, err := r.cache.Get(ctx, key)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, cacheport.ErrMiss) {
		r.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	exists, err := r.UserRepository.Exists(ctx, id)
	if err != nil || !exists {
		return exists, err
	}
	if err := r.cache.Set(ctx, key, "1", r.ttl); err != nil {
		r.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return true, nil
}
