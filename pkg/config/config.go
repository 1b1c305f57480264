// Package config loads the TOML configuration shared by the CLI and API.
package config

import (
	"context"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/motifhq/motif/pkg/cache"
	"github.com/motifhq/motif/pkg/errors"
)

// Config is the full configuration tree.
type Config struct {
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Render RenderConfig `toml:"render"`
}

// StoreConfig locates the template catalog and document store.
type StoreConfig struct {
	// BaseURL serves raw template and texture documents.
	BaseURL string `toml:"base_url"`
	// TexturePath overrides the texture path template ({id} placeholder).
	TexturePath string `toml:"texture_path"`

	// MongoURI enables the MongoDB catalog; empty runs without a catalog
	// store (render command with explicit documents only).
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`

	// TemplatesFile is a JSON template index for Mongo-less local runs.
	TemplatesFile string `toml:"templates_file"`
	// DocumentsDir serves documents from a local directory when BaseURL
	// is empty.
	DocumentsDir string `toml:"documents_dir"`
}

// CacheConfig selects the document cache backend.
type CacheConfig struct {
	// Backend is one of memory, file, redis, none.
	Backend string `toml:"backend"`
	// Dir is the file backend's directory.
	Dir string `toml:"dir"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr       string   `toml:"addr"`
	SessionTTL duration `toml:"session_ttl"`
}

// RenderConfig tunes generation.
type RenderConfig struct {
	PageSize       int      `toml:"page_size"`
	Seed           uint64   `toml:"seed"`
	MeasureTimeout duration `toml:"measure_timeout"`
}

// duration wraps time.Duration for TOML string values like "3s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Store: StoreConfig{
			MongoDatabase:   "motif",
			MongoCollection: "templates",
		},
		Cache: CacheConfig{
			Backend: "memory",
		},
		Server: ServerConfig{
			Addr:       ":8080",
			SessionTTL: duration{24 * time.Hour},
		},
		Render: RenderConfig{
			PageSize:       12,
			MeasureTimeout: duration{3 * time.Second},
		},
	}
}

// Load reads a TOML file over the defaults. A missing path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	return cfg, nil
}

// TTL returns the configured session duration.
func (c ServerConfig) TTL() time.Duration {
	if c.SessionTTL.Duration <= 0 {
		return 24 * time.Hour
	}
	return c.SessionTTL.Duration
}

// Timeout returns the configured measurement timeout.
func (c RenderConfig) Timeout() time.Duration {
	if c.MeasureTimeout.Duration <= 0 {
		return 3 * time.Second
	}
	return c.MeasureTimeout.Duration
}

// BuildCache constructs the configured cache backend.
func (c CacheConfig) BuildCache(ctx context.Context) (cache.Cache, error) {
	switch c.Backend {
	case "", "memory":
		return cache.NewMemoryCache(), nil
	case "file":
		return cache.NewFileCache(c.Dir)
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
	case "none":
		return cache.NewNullCache(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"unknown cache backend %q (memory, file, redis, none)", c.Backend)
	}
}
