// Package session keeps wizard state between requests. A session is an
// opaque blob under a random id that expires after a fixed time.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Load when the session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Store is a session backend.
type Store interface {
	Load(ctx context.Context, id string) ([]byte, error)
	Save(ctx context.Context, id string, data []byte) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// DefaultTTL is used when no TTL is configured.
const DefaultTTL = 2 * time.Hour

// Options selects and configures a store.
type Options struct {
	Kind          string // memory, sqlite or redis
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// Open creates the store selected by opts.Kind.
func Open(ctx context.Context, opts Options) (Store, error) {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	switch opts.Kind {
	case "", "memory":
		return NewMemory(ttl), nil
	case "sqlite":
		return OpenSQLite(opts.SQLitePath, ttl)
	case "redis":
		return NewRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB, ttl)
	default:
		return nil, fmt.Errorf("unknown session store %q", opts.Kind)
	}
}
