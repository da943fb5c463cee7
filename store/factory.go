package store

import (
	"context"
	"fmt"
)

// Backend kinds accepted by NewBackend.
const (
	KindBolt   = "bolt"
	KindFile   = "file"
	KindMemory = "memory"
	KindRedis  = "redis"
)

// NewBackend creates a backend of the given kind.
//
// path is the database file for bolt and the folder for file. addr is the redis
// server address.
func NewBackend(ctx context.Context, kind, path, addr string) (Backend, error) {
	switch kind {
	case "", KindBolt:
		return OpenBolt(path)
	case KindFile:
		return NewFile(path), nil
	case KindMemory:
		return NewMemory(), nil
	case KindRedis:
		return NewRedis(ctx, addr, "", 0)
	}
	return nil, fmt.Errorf("unknown storage backend %q", kind)
}
