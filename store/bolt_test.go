package store

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/reserve"
	"github.com/etnz/reserve/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constantSource always quotes the same price.
type constantSource struct{}

func (constantSource) CurrentPrice(context.Context) (reserve.Money, error) {
	return reserve.M(50000, "USD"), nil
}

func (constantSource) HistoricalSeries(context.Context, time.Time, time.Time) (reserve.Series, error) {
	return nil, nil
}

// A long running command (watch, serve) keeps its backend and reloads the log
// on every tick while other commands record transactions on the same file.
func TestBolt_SharedWhilePolling(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reserve.db")

	watching, err := NewBackend(ctx, KindBolt, path, "")
	require.NoError(t, err)
	defer watching.Close()
	live, res := open(t, watching)
	require.Equal(t, Empty, res.Status)

	var ticks atomic.Int32
	p := feed.Poll(ctx, feed.New(constantSource{}), 10*time.Millisecond, func(error) {
		live.Load(ctx)
		ticks.Add(1)
	})
	defer p.Stop()

	for i, amount := range []string{"0.5", "0.25"} {
		other, err := NewBackend(ctx, KindBolt, path, "")
		require.NoError(t, err, "second process opens the database")
		s, res := open(t, other)
		require.NotEqual(t, Unavailable, res.Status)
		require.NoError(t, s.Append(ctx, buy(i+1, amount, 60000)))
		require.NoError(t, other.Close())
	}

	assert.Eventually(t, func() bool { return len(live.Transactions()) == 2 }, 2*time.Second, 10*time.Millisecond,
		"the polling store sees the transactions recorded elsewhere")
	assert.Positive(t, ticks.Load())
	assert.Equal(t, Loaded, live.Status())
}

func TestBolt_GetWithoutFile(t *testing.T) {
	b := &Bolt{path: filepath.Join(t.TempDir(), "missing.db")}
	_, err := b.Get(context.Background(), DefaultKey)
	assert.ErrorIs(t, err, ErrNotFound)
}
