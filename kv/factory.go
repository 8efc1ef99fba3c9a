package kv

import (
	"fmt"
	"path/filepath"
)

// Options carries backend-specific settings for New. Only the fields
// for the selected backend are read.
type Options struct {
	DataDir       string // sqlite: directory holding the database file
	RedisAddr     string // redis: host:port
	RedisPassword string // redis: optional AUTH password
	RedisDB       int    // redis: logical database number
}

// New creates a Store based on the backend name.
//
// Supported backends:
//
//	"memory" - in-memory (ephemeral, default)
//	"redis"  - any Redis-compatible server at RedisAddr
//	"sqlite" - SQLite database at DataDir/shop.db
func New(backend string, opts Options) (Store, error) {
	switch backend {
	case "memory", "":
		return NewMemory(), nil
	case "redis":
		return NewRedis(opts.RedisAddr, opts.RedisPassword, opts.RedisDB), nil
	case "sqlite":
		return NewSqlite(filepath.Join(opts.DataDir, "shop.db"))
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: memory, redis, sqlite)", backend)
	}
}
