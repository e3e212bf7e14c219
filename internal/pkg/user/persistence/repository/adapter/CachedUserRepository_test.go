package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	cacheport "cht-gateway/internal/infrastructure/cache/port"
	"cht-gateway/internal/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const someID = "6f1c2a6e-6f62-4b53-9d3c-6c1f0f0e2a11"

func TestCachedUserRepository_Exists(t *testing.T) {
	ctx := context.Background()

	t.Run("should answer from cache without hitting the store", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockUserRepository(ctrl)
		cache := mocks.NewMockCache(ctrl)
		repo := NewCachedUserRepository(inner, cache, time.Minute, nil)

		inner.EXPECT().Canonical(someID).Return(someID, true)
		cache.EXPECT().Get(ctx, "user:exists:"+someID).Return("1", nil)
		inner.EXPECT().Exists(gomock.Any(), gomock.Any()).Times(0)

		ok, err := repo.Exists(ctx, someID)
		req.NoError(err)
		req.True(ok)
	})

	t.Run("should fill the cache on a positive miss", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockUserRepository(ctrl)
		cache := mocks.NewMockCache(ctrl)
		repo := NewCachedUserRepository(inner, cache, time.Minute, nil)

		inner.EXPECT().Canonical(someID).Return(someID, true)
		cache.EXPECT().Get(ctx, "user:exists:"+someID).Return("", cacheport.ErrMiss)
		inner.EXPECT().Exists(ctx, someID).Return(true, nil)
		cache.EXPECT().Set(ctx, "user:exists:"+someID, "1", time.Minute).Return(nil)

		ok, err := repo.Exists(ctx, someID)
		req.NoError(err)
		req.True(ok)
	})

	t.Run("should not cache unknown users", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockUserRepository(ctrl)
		cache := mocks.NewMockCache(ctrl)
		repo := NewCachedUserRepository(inner, cache, time.Minute, nil)

		inner.EXPECT().Canonical(someID).Return(someID, true)
		cache.EXPECT().Get(ctx, gomock.Any()).Return("", cacheport.ErrMiss)
		inner.EXPECT().Exists(ctx, someID).Return(false, nil)
		cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		ok, err := repo.Exists(ctx, someID)
		req.NoError(err)
		req.False(ok)
	})

	t.Run("should fall through when the cache is down", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockUserRepository(ctrl)
		cache := mocks.NewMockCache(ctrl)
		repo := NewCachedUserRepository(inner, cache, time.Minute, nil)

		inner.EXPECT().Canonical(someID).Return(someID, true)
		cache.EXPECT().Get(ctx, gomock.Any()).Return("", errors.New("dial tcp: refused"))
		inner.EXPECT().Exists(ctx, someID).Return(true, nil)
		cache.EXPECT().Set(ctx, gomock.Any(), "1", time.Minute).Return(errors.New("dial tcp: refused"))

		ok, err := repo.Exists(ctx, someID)
		req.NoError(err)
		req.True(ok)
	})

	t.Run("should skip the cache for malformed ids", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockUserRepository(ctrl)
		repo := NewCachedUserRepository(inner, mocks.NewMockCache(ctrl), time.Minute, nil)

		inner.EXPECT().Canonical("bogus").Return("", false)

		ok, err := repo.Exists(ctx, "bogus")
		req.NoError(err)
		req.False(ok)
	})
}
