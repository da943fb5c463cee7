package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/reserve"
	"github.com/etnz/reserve/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("api down")

// fakeSource answers prices from a script; once exhausted it repeats the last entry.
type fakeSource struct {
	mu      sync.Mutex
	prices  []float64 // 0 is a failure
	calls   int32
	history reserve.Series
	histErr error
	from    time.Time
	to      time.Time
}

func (s *fakeSource) CurrentPrice(ctx context.Context) (reserve.Money, error) {
	n := int(atomic.AddInt32(&s.calls, 1)) - 1
	s.mu.Lock()
	defer s.mu.Unlock()
	if n >= len(s.prices) {
		n = len(s.prices) - 1
	}
	if s.prices[n] == 0 {
		return reserve.Money{}, errDown
	}
	return reserve.M(s.prices[n], "USD"), nil
}

func (s *fakeSource) HistoricalSeries(ctx context.Context, from, to time.Time) (reserve.Series, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.from, s.to = from, to
	return s.history, s.histErr
}

func TestRefreshPrice_KeepsStalePrice(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{prices: []float64{100, 0, 120}}
	f := New(src)

	assert.True(t, f.Price().IsZero(), "no price before the first refresh")
	assert.True(t, f.Updated().IsZero())

	require.NoError(t, f.RefreshPrice(ctx))
	assert.Equal(t, "$100.00", f.Price().String())
	updated := f.Updated()
	assert.False(t, updated.IsZero())

	assert.ErrorIs(t, f.RefreshPrice(ctx), errDown)
	assert.Equal(t, "$100.00", f.Price().String(), "failure keeps the last price")
	assert.Equal(t, updated, f.Updated())

	require.NoError(t, f.RefreshPrice(ctx))
	assert.Equal(t, "$120.00", f.Price().String())
}

func TestRefreshPrice_Retries(t *testing.T) {
	src := &fakeSource{prices: []float64{0, 0, 130}}
	f := New(src, WithRetries(2, time.Millisecond))

	require.NoError(t, f.RefreshPrice(context.Background()))
	assert.Equal(t, "$130.00", f.Price().String())
	assert.Equal(t, int32(3), atomic.LoadInt32(&src.calls))
}

func TestRefreshPrice_RetriesExhausted(t *testing.T) {
	src := &fakeSource{prices: []float64{0}}
	f := New(src, WithRetries(1, time.Millisecond))

	assert.ErrorIs(t, f.RefreshPrice(context.Background()), errDown)
	assert.Equal(t, int32(2), atomic.LoadInt32(&src.calls))
}

func TestRefreshPrice_RetryCancelled(t *testing.T) {
	src := &fakeSource{prices: []float64{0}}
	f := New(src, WithRetries(5, time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, f.RefreshPrice(ctx), context.DeadlineExceeded)
}

func TestLoadHistory(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{history: reserve.Series{{Time: t0, Price: reserve.M(42000, "USD")}}}
	f := New(src)

	r := date.NewRange(date.New(2024, 1, 1), date.New(2024, 1, 31))
	require.NoError(t, f.LoadHistory(context.Background(), r))
	assert.Len(t, f.Series(), 1)
	assert.False(t, f.Loading())
	assert.Equal(t, t0, src.from)
	assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC), src.to)

	src.histErr = errDown
	assert.Error(t, f.LoadHistory(context.Background(), r))
	assert.Len(t, f.Series(), 1, "failure keeps the previous series")
}

func TestSeriesIsACopy(t *testing.T) {
	src := &fakeSource{history: reserve.Series{{Price: reserve.M(1, "USD")}}}
	f := New(src)
	require.NoError(t, f.LoadHistory(context.Background(), date.Since(date.New(2024, 1, 1))))

	s := f.Series()
	s[0].Price = reserve.M(2, "USD")
	assert.Equal(t, "$1.00", f.Series()[0].Price.String())
}

func TestPoll(t *testing.T) {
	src := &fakeSource{prices: []float64{100, 0, 110}}
	f := New(src)

	var mu sync.Mutex
	var errs []error
	ticks := make(chan struct{}, 10)
	p := Poll(context.Background(), f, 5*time.Millisecond, func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
		ticks <- struct{}{}
	})

	for range 3 {
		select {
		case <-ticks:
		case <-time.After(time.Second):
			t.Fatal("poller did not tick")
		}
	}
	p.Stop()
	p.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(errs), 3)
	assert.NoError(t, errs[0], "first refresh happens immediately")
	assert.ErrorIs(t, errs[1], errDown)
	assert.NoError(t, errs[2])
	assert.Equal(t, "$110.00", f.Price().String())
}

func TestPoll_StopsWithContext(t *testing.T) {
	src := &fakeSource{prices: []float64{100}}
	f := New(src)

	ctx, cancel := context.WithCancel(context.Background())
	p := Poll(ctx, f, time.Hour, nil)
	cancel()

	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
	p.Stop()
}
