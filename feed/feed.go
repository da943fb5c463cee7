// Package feed keeps the latest known price and the historical series of the
// tracked asset, refreshed from a Source.
package feed

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/etnz/reserve"
	"github.com/etnz/reserve/date"
	"github.com/rs/zerolog"
)

const (
	// DefaultInterval is the period between two price refreshes.
	DefaultInterval = time.Minute
	// DefaultBackoff is the wait before the first retry of a failed refresh.
	DefaultBackoff = time.Second
)

// Source fetches prices. It is implemented by *coingecko.Client.
type Source interface {
	CurrentPrice(ctx context.Context) (reserve.Money, error)
	HistoricalSeries(ctx context.Context, from, to time.Time) (reserve.Series, error)
}

// Feed holds the last known price and the historical series.
//
// A failed refresh keeps the previous values: stale but available. Feed is safe
// for concurrent use.
type Feed struct {
	source  Source
	logger  zerolog.Logger
	retries int
	backoff time.Duration

	mu      sync.RWMutex
	price   reserve.Money
	updated time.Time
	series  reserve.Series
	loading bool
}

// Option configures a Feed.
type Option func(*Feed)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Feed) { f.logger = logger }
}

// WithRetries retries a failed price refresh up to n times, waiting backoff,
// then twice as long, and so on between attempts.
func WithRetries(n int, backoff time.Duration) Option {
	return func(f *Feed) { f.retries, f.backoff = n, backoff }
}

// New creates a Feed on source. It has no price until the first refresh.
func New(source Source, opts ...Option) *Feed {
	f := &Feed{source: source, logger: zerolog.Nop(), backoff: DefaultBackoff}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RefreshPrice fetches the current price.
//
// On failure the previous price is kept and the error returned.
func (f *Feed) RefreshPrice(ctx context.Context) error {
	var (
		price reserve.Money
		err   error
	)
	wait := f.backoff
	for attempt := 0; ; attempt++ {
		price, err = f.source.CurrentPrice(ctx)
		if err == nil || attempt >= f.retries {
			break
		}
		f.logger.Debug().Err(err).Int("attempt", attempt+1).Dur("wait", wait).Msg("price refresh failed, retrying")
		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-time.After(wait):
			wait *= 2
			continue
		}
		break
	}
	if err != nil {
		f.logger.Warn().Err(err).Msg("cannot refresh price, keeping the last known one")
		return err
	}

	f.mu.Lock()
	f.price = price
	f.updated = time.Now()
	f.mu.Unlock()
	f.logger.Debug().Str("price", price.String()).Msg("price refreshed")
	return nil
}

// LoadHistory fetches the historical series over r.
//
// On failure the previous series is kept and the error returned.
func (f *Feed) LoadHistory(ctx context.Context, r date.Range) error {
	f.mu.Lock()
	f.loading = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.loading = false
		f.mu.Unlock()
	}()

	from, to := r.Times()
	series, err := f.source.HistoricalSeries(ctx, from, to)
	if err != nil {
		f.logger.Warn().Err(err).Stringer("range", r).Msg("cannot load price history")
		return err
	}

	f.mu.Lock()
	f.series = series
	f.mu.Unlock()
	f.logger.Debug().Int("samples", len(series)).Stringer("range", r).Msg("price history loaded")
	return nil
}

// Price returns the last known price, zero if none was ever fetched.
func (f *Feed) Price() reserve.Money {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.price
}

// Updated returns when the price was last refreshed, zero if never.
func (f *Feed) Updated() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.updated
}

// Series returns a copy of the historical series.
func (f *Feed) Series() reserve.Series {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.series)
}

// Loading reports whether the history is being fetched.
func (f *Feed) Loading() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loading
}
