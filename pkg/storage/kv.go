package storage

import (
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"

	"github.com/uhyunpark/spark/params"
)

// DefaultKey is the single slot the application snapshot is stored under.
const DefaultKey = "spark-store"

// KV is the storage capability the state codec needs: read and overwrite a
// value under a string key. Get reports ok=false for an absent key; that is
// not an error.
type KV interface {
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
}

// Store is a KV that owns external resources.
type Store interface {
	KV
	io.Closer
}

// Open returns the backend selected by cfg.Backend.
func Open(cfg params.Store) (Store, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryKV(), nil
	case "pebble":
		return NewPebbleKV(cfg.Path)
	case "sqlite":
		return NewSQLiteKV(cfg.Path)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		return NewRedisKV(client), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
