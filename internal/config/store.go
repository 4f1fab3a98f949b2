package config

import (
	"path/filepath"
	"time"
)

// StoreConfig configures the remote document store driver.
type StoreConfig struct {
	// Driver: memory, sqlite, redis or supabase.
	Driver string `yaml:"driver"`

	// sqlite
	DatabasePath string `yaml:"database_path"`

	// redis
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// supabase
	SupabaseURL   string `yaml:"supabase_url"`
	SupabaseKey   string `yaml:"supabase_key"`
	SupabaseTable string `yaml:"supabase_table"`
	PollInterval  string `yaml:"poll_interval"`
}

func defaultStore() StoreConfig {
	return StoreConfig{
		Driver:        "sqlite",
		SupabaseTable: "documents",
		PollInterval:  "3s",
	}
}

// ResolvedDatabasePath returns the sqlite path, defaulting under BaseDir.
func (c StoreConfig) ResolvedDatabasePath() string {
	if c.DatabasePath != "" {
		return c.DatabasePath
	}
	return filepath.Join(BaseDir(), "documents.db")
}

// ResolvedPollInterval parses the supabase poll interval (default 3s).
func (c StoreConfig) ResolvedPollInterval() time.Duration {
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil || d <= 0 {
		return 3 * time.Second
	}
	return d
}
