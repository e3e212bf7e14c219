package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Config is the process configuration, read from the environment (and an optional .env file).
type Config struct {
	AppEnv   string `env:"APP_ENV,default=production" validate:"oneof=development production test"`
	Host     string `env:"HOST,default=0.0.0.0" validate:"required"`
	Port     int    `env:"PORT,default=3333" validate:"min=1,max=65535"`
	LogLevel string `env:"LOG_LEVEL,default=info" validate:"oneof=debug info warn error"`

	StoreDriver string        `env:"STORE_DRIVER,default=postgres" validate:"oneof=postgres mongo memory"`
	DBURL       string        `env:"DB_URL" validate:"required_if=StoreDriver postgres"`
	DBMaxConns  int           `env:"DB_MAX_CONNS,default=4" validate:"min=1"`
	DBConnIdle  time.Duration `env:"DB_MAX_CONN_IDLE,default=5m" validate:"gt=0"`
	DBConnLife  time.Duration `env:"DB_MAX_CONN_LIFETIME,default=1h" validate:"gt=0"`
	MongoURI    string        `env:"MONGO_URI" validate:"required_if=StoreDriver mongo"`
	MongoDBName string        `env:"MONGO_DB_NAME,default=chatrepodb" validate:"required"`

	RedisURL          string        `env:"REDIS_URL"`
	DirectoryCacheTTL time.Duration `env:"DIRECTORY_CACHE_TTL,default=5m"`

	JWTSecret string        `env:"JWT_SECRET,required=true" validate:"min=8"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,default=168h" validate:"gt=0"`

	WSSendBuffer  int           `env:"WS_SEND_BUFFER,default=128" validate:"min=1"`
	WSReadLimit   int           `env:"WS_READ_LIMIT,default=65536" validate:"min=512"`
	WSReadTimeout time.Duration `env:"WS_READ_TIMEOUT,default=60s" validate:"gt=0"`

	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s" validate:"gt=0"`
	HistoryDefaultLimit int           `env:"HISTORY_DEFAULT_LIMIT,default=30" validate:"min=1,ltefield=HistoryMaxLimit"`
	HistoryMaxLimit     int           `env:"HISTORY_MAX_LIMIT,default=50" validate:"min=1"`
}

// Load reads .env (when present) and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnviron(env.EnvSet(nil))
}

// FromEnviron builds a Config from an explicit environment set, nil meaning the process environment.
func FromEnviron(es env.EnvSet) (Config, error) {
	var cfg Config
	var err error
	if es == nil {
		_, err = env.UnmarshalFromEnviron(&cfg)
	} else {
		err = env.Unmarshal(es, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) Development() bool {
	return c.AppEnv == "development"
}
