package docstore

import (
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/supabase-community/supabase-go"

	"geminios/internal/config"
)

// StoreType selects the document store driver.
type StoreType string

const (
	TypeMemory   StoreType = "memory"
	TypeSQLite   StoreType = "sqlite"
	TypeRedis    StoreType = "redis"
	TypeSupabase StoreType = "supabase"
)

// StoreOption is a functional option for configuring a store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	sqlitePath     string
	redisClient    *redis.Client
	supabaseClient *supabase.Client
	supabaseTable  string
	pollInterval   time.Duration
}

// WithSQLitePath sets the database path for the sqlite driver.
func WithSQLitePath(path string) StoreOption {
	return func(c *storeConfig) { c.sqlitePath = path }
}

// WithRedisClient sets the Redis client for the redis driver.
func WithRedisClient(client *redis.Client) StoreOption {
	return func(c *storeConfig) { c.redisClient = client }
}

// WithSupabaseClient sets the Supabase client for the supabase driver.
func WithSupabaseClient(client *supabase.Client) StoreOption {
	return func(c *storeConfig) { c.supabaseClient = client }
}

// WithSupabaseTable sets the table holding documents (default "documents").
func WithSupabaseTable(table string) StoreOption {
	return func(c *storeConfig) { c.supabaseTable = table }
}

// WithPollInterval sets the supabase change-detection poll interval.
func WithPollInterval(d time.Duration) StoreOption {
	return func(c *storeConfig) { c.pollInterval = d }
}

// New creates a Store for the given driver type.
func New(storeType StoreType, opts ...StoreOption) (Store, error) {
	cfg := &storeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch storeType {
	case TypeMemory:
		return newMemoryStore(), nil
	case TypeSQLite:
		return newSQLiteStore(cfg.sqlitePath)
	case TypeRedis:
		return newRedisStore(cfg.redisClient)
	case TypeSupabase:
		return newSupabaseStore(cfg.supabaseClient, cfg.supabaseTable, cfg.pollInterval)
	default:
		return nil, ErrInvalidStoreType
	}
}

// FromConfig builds a Store from the loaded configuration, constructing the
// driver clients as needed.
func FromConfig(cfg config.StoreConfig) (Store, error) {
	switch StoreType(cfg.Driver) {
	case TypeMemory:
		return New(TypeMemory)

	case TypeSQLite, "":
		return New(TypeSQLite, WithSQLitePath(cfg.ResolvedDatabasePath()))

	case TypeRedis:
		if cfg.RedisAddr == "" {
			return nil, ErrInvalidConfig
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return New(TypeRedis, WithRedisClient(client))

	case TypeSupabase:
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			return nil, ErrInvalidConfig
		}
		client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, nil)
		if err != nil {
			return nil, err
		}
		return New(TypeSupabase,
			WithSupabaseClient(client),
			WithSupabaseTable(cfg.SupabaseTable),
			WithPollInterval(cfg.ResolvedPollInterval()))

	default:
		return nil, ErrInvalidStoreType
	}
}
