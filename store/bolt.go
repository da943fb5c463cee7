package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("reserve")

// BoltTimeout is how long a call waits for another process to release the
// database file.
const BoltTimeout = 2 * time.Second

// Bolt is a Backend on a local bbolt database file.
//
// The database is opened for each call and closed right after, so that several
// rsv processes can share the file: bbolt locks it for as long as it is open.
type Bolt struct {
	path string
	mu   sync.Mutex
}

// OpenBolt checks that the database file at path can be opened (creating it
// if needed) and returns a Backend on it.
func OpenBolt(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create folder for %q: %w", path, err)
	}
	b := &Bolt{path: path}
	if err := b.update(func(*bolt.Tx) error { return nil }); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bolt) open(readOnly bool) (*bolt.DB, error) {
	db, err := bolt.Open(b.path, 0o600, &bolt.Options{Timeout: BoltTimeout, ReadOnly: readOnly})
	if err != nil {
		return nil, fmt.Errorf("cannot open bolt database %q: %w", b.path, err)
	}
	return db, nil
}

// view runs fn in a read transaction, holding a shared lock on the file.
func (b *Bolt) view(fn func(*bolt.Tx) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	db, err := b.open(true)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.View(fn)
}

// update runs fn in a write transaction, holding an exclusive lock on the file.
func (b *Bolt) update(fn func(*bolt.Tx) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	db, err := b.open(false)
	if err != nil {
		return err
	}
	if err := db.Update(fn); err != nil {
		db.Close()
		return err
	}
	return db.Close()
}

func (b *Bolt) Get(_ context.Context, key string) ([]byte, error) {
	if _, err := os.Stat(b.path); errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	var value []byte
	err := b.view(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(boltBucket)
		if bucket == nil {
			return ErrNotFound
		}
		v := bucket.Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// v is only valid during the transaction.
		value = slices.Clone(v)
		return nil
	})
	return value, err
}

func (b *Bolt) Put(_ context.Context, key string, value []byte) error {
	return b.update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(boltBucket)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key), value)
	})
}

func (b *Bolt) Delete(_ context.Context, key string) error {
	return b.update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(boltBucket)
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(key))
	})
}

// Close is a no-op, the database is only open during a call.
func (b *Bolt) Close() error { return nil }
