package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolOption adjusts the pool config after defaults are applied.
type PoolOption func(*pgxpool.Config)

// PoolSettings is the tunable part of a pool; zero fields keep the default.
type PoolSettings struct {
	MaxConns        int
	MaxConnIdleTime time.Duration
	MaxConnLifetime time.Duration
}

var defaultPool = PoolSettings{
	MaxConns:        4,
	MaxConnIdleTime: 5 * time.Minute,
	MaxConnLifetime: time.Hour,
}

// WithPool applies the non-zero fields of s.
func WithPool(s PoolSettings) PoolOption {
	return func(cfg *pgxpool.Config) {
		if s.MaxConns > 0 {
			cfg.MaxConns = int32(s.MaxConns)
		}
		if s.MaxConnIdleTime > 0 {
			cfg.MaxConnIdleTime = s.MaxConnIdleTime
		}
		if s.MaxConnLifetime > 0 {
			cfg.MaxConnLifetime = s.MaxConnLifetime
		}
	}
}

// PoolConfig parses dsn, applies the defaults and then opts in order.
// Pool sizing embedded in the DSN (pool_max_conns and friends) loses to both.
func PoolConfig(dsn string, opts ...PoolOption) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(normalizeDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	cfg.HealthCheckPeriod = time.Minute
	WithPool(defaultPool)(cfg)
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg, nil
}

// Connect opens a pool for dsn and pings it before returning.
func Connect(ctx context.Context, dsn string, opts ...PoolOption) (*pgxpool.Pool, error) {
	cfg, err := PoolConfig(dsn, opts...)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: new pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return pool, nil
}

// driverSchemes maps SQLAlchemy-style driver suffixes found in shared .env files to
// the plain schemes pgx understands.
var driverSchemes = []struct{ from, to string }{
	{"postgresql+asyncpg://", "postgresql://"},
	{"postgres+asyncpg://", "postgres://"},
	{"postgresql+pgx://", "postgresql://"},
	{"postgres+pgx://", "postgres://"},
}

func normalizeDSN(dsn string) string {
	s := strings.TrimSpace(dsn)
	for _, scheme := range driverSchemes {
		if rest, ok := strings.CutPrefix(s, scheme.from); ok {
			return scheme.to + rest
		}
	}
	return s
}
