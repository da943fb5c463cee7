package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/etnz/reserve"
	"github.com/rs/zerolog"
)

// DefaultKey is the key the transaction log is stored under.
const DefaultKey = "bitcoinTransactions"

// Status is the outcome of loading the log.
type Status int

const (
	// Empty means nothing was stored under the key.
	Empty Status = iota
	// Loaded means the stored log was decoded.
	Loaded
	// Corrupt means something was stored but could not be decoded.
	Corrupt
	// Unavailable means the backend failed to answer.
	Unavailable
)

func (s Status) String() string {
	switch s {
	case Empty:
		return "empty"
	case Loaded:
		return "loaded"
	case Corrupt:
		return "corrupt"
	case Unavailable:
		return "unavailable"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// LoadResult reports how the log was loaded.
type LoadResult struct {
	Status       Status
	Transactions []reserve.Transaction
	// Err is the reason of a Corrupt or Unavailable status.
	Err error
}

// Store keeps the transaction log in memory and persists it to a Backend.
//
// Store is safe for concurrent use.
type Store struct {
	backend  Backend
	key      string
	currency string
	logger   zerolog.Logger

	mu     sync.Mutex
	ledger *reserve.Ledger
	status Status
	// raw holds the undecodable content of a corrupt entry until it is backed up.
	raw []byte
}

// Option configures a Store.
type Option func(*Store)

// WithCurrency sets the currency of stored prices.
func WithCurrency(currency string) Option {
	return func(s *Store) { s.currency = currency }
}

// Open creates a Store on backend and loads the log stored under key.
//
// A corrupt or unavailable log is reported in the LoadResult and the store
// starts empty.
func Open(ctx context.Context, backend Backend, key string, logger zerolog.Logger, opts ...Option) (*Store, LoadResult) {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{
		backend: backend,
		key:     key,
		logger:  logger,
		ledger:  reserve.NewLedger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, s.Load(ctx)
}

// Key returns the key the log is stored under.
func (s *Store) Key() string { return s.key }

// Load reads the log from the backend, replacing the in-memory one.
func (s *Store) Load(ctx context.Context) LoadResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger = reserve.NewLedger()
	s.raw = nil

	data, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		s.status = Empty
		s.logger.Debug().Str("key", s.key).Msg("no transactions stored")
		return LoadResult{Status: Empty}
	}
	if err != nil {
		s.status = Unavailable
		s.logger.Warn().Err(err).Str("key", s.key).Msg("cannot read transactions")
		return LoadResult{Status: Unavailable, Err: err}
	}

	ledger, err := reserve.UnmarshalLedger(data, s.currency)
	if err != nil {
		s.status = Corrupt
		s.raw = data
		s.logger.Warn().Err(err).Str("key", s.key).Msg("stored transactions are corrupt, starting empty")
		return LoadResult{Status: Corrupt, Err: err}
	}

	s.ledger = ledger
	s.status = Loaded
	s.logger.Debug().Str("key", s.key).Int("count", ledger.Len()).Msg("transactions loaded")
	return LoadResult{Status: Loaded, Transactions: ledger.Transactions()}
}

// Status returns the status of the last Load.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Append adds tx to the log.
//
// The whole log is written first, the in-memory log only changes if the write
// succeeded.
func (s *Store) Append(ctx context.Context, tx reserve.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := reserve.NewLedger(s.ledger.Transactions()...)
	next.Append(tx)
	if err := s.write(ctx, next); err != nil {
		return err
	}
	s.ledger = next
	s.logger.Info().Str("type", string(tx.Kind)).Str("amount", tx.Amount.String()).Str("price", tx.Price.String()).Msg("transaction recorded")
	return nil
}

// Save writes the current log to the backend.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, s.ledger)
}

// Clear removes the stored log and empties the in-memory one.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.preserve(ctx); err != nil {
		return err
	}
	if err := s.backend.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("cannot delete %q: %w", s.key, err)
	}
	s.ledger.Clear()
	s.status = Empty
	s.logger.Info().Str("key", s.key).Msg("transactions cleared")
	return nil
}

// Transactions returns a copy of the log in insertion order.
func (s *Store) Transactions() []reserve.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Transactions()
}

// Snapshot aggregates the log at the given price.
func (s *Store) Snapshot(currentPrice reserve.Money) reserve.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Snapshot(currentPrice)
}

// write persists l under the key. Caller must hold s.mu.
func (s *Store) write(ctx context.Context, l *reserve.Ledger) error {
	if s.status == Unavailable {
		return fmt.Errorf("refusing to overwrite %q that could not be read: reload first", s.key)
	}
	data, err := reserve.MarshalLedger(l)
	if err != nil {
		return err
	}
	if err := s.preserve(ctx); err != nil {
		return err
	}
	if err := s.backend.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("cannot write %q: %w", s.key, err)
	}
	s.status = Loaded
	return nil
}

// preserve copies a corrupt entry under <key>.corrupt before it gets overwritten.
// Caller must hold s.mu.
func (s *Store) preserve(ctx context.Context) error {
	if s.raw == nil {
		return nil
	}
	backup := s.key + ".corrupt"
	if err := s.backend.Put(ctx, backup, s.raw); err != nil {
		return fmt.Errorf("cannot back up corrupt %q: %w", s.key, err)
	}
	s.logger.Warn().Str("key", s.key).Str("backup", backup).Msg("corrupt transactions backed up")
	s.raw = nil
	return nil
}
