package feed

import (
	"context"
	"sync"
	"time"
)

// Poller refreshes a Feed periodically until stopped.
type Poller struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Poll refreshes f immediately, then every interval, calling onTick after each
// refresh with its error. A non positive interval means DefaultInterval.
//
// Polling stops when ctx is done or Stop is called.
func Poll(ctx context.Context, f *Feed, interval time.Duration, onTick func(error)) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	p := &Poller{cancel: cancel, done: make(chan struct{})}

	tick := func() {
		err := f.RefreshPrice(ctx)
		if ctx.Err() != nil {
			return
		}
		if onTick != nil {
			onTick(err)
		}
	}

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		tick()
		for {
			select {
			case <-ctx.Done():
				f.logger.Debug().Msg("price polling stopped")
				return
			case <-ticker.C:
				tick()
			}
		}
	}()
	return p
}

// Stop cancels the polling and waits for the running refresh to return. It is
// safe to call Stop more than once.
func (p *Poller) Stop() {
	p.once.Do(p.cancel)
	<-p.done
}

// Done is closed when the polling has stopped.
func (p *Poller) Done() <-chan struct{} { return p.done }
