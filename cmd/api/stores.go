package main

import (
	"context"
	"fmt"

	cacheAdapter "cht-gateway/internal/infrastructure/cache/adapter"
	"cht-gateway/internal/infrastructure/config"
	"cht-gateway/internal/infrastructure/database"
	chatAdapter "cht-gateway/internal/pkg/chat/persistence/repository/adapter"
	chatport "cht-gateway/internal/pkg/chat/persistence/repository/port"
	userAdapter "cht-gateway/internal/pkg/user/persistence/repository/adapter"
	userport "cht-gateway/internal/pkg/user/persistence/repository/port"

	"go.uber.org/zap"
)

// stores bundles the repositories of the selected driver with their teardown.
type stores struct {
	chat    chatport.ChatRepository
	users   userport.UserRepository
	closers []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStores connects the configured driver. The user directory shares the message
// store's backend, and is fronted by Redis when REDIS_URL is set.
func openStores(ctx context.Context, cfg config.Config, log *zap.Logger) (*stores, error) {
	st := &stores{}

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := database.Connect(ctx, cfg.DBURL, database.WithPool(database.PoolSettings{
			MaxConns:        cfg.DBMaxConns,
			MaxConnIdleTime: cfg.DBConnIdle,
			MaxConnLifetime: cfg.DBConnLife,
		}))
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, pool.Close)
		if err := database.Migrate(ctx, pool); err != nil {
			st.Close()
			return nil, err
		}
		st.chat = chatAdapter.NewPgChatRepository(pool)
		st.users = userAdapter.NewPgUserRepository(pool)

	case config.DriverMongo:
		client, db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, func() { _ = client.Disconnect(context.Background()) })
		if err := database.EnsureMongoIndexes(ctx, db); err != nil {
			st.Close()
			return nil, err
		}
		st.chat = chatAdapter.NewMongoChatRepository(db)
		st.users = userAdapter.NewMongoUserRepository(db)

	case config.DriverMemory:
		log.Warn("using in-memory store; data is lost on restart")
		st.chat = chatAdapter.NewMemChatRepository()
		st.users = userAdapter.NewMemUserRepository()

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if cfg.RedisURL != "" {
		cache, err := cacheAdapter.NewRedisAdapter(ctx, cfg.RedisURL, "cht:")
		if err != nil {
			st.Close()
			return nil, err
		}
		st.closers = append(st.closers, func() { _ = cache.Close() })
		st.users = userAdapter.NewCachedUserRepository(st.users, cache, cfg.DirectoryCacheTTL, log)
	}

	return st, nil
}
