package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/etnz/reserve/date"
	"github.com/etnz/reserve/feed"
	"github.com/etnz/reserve/renderer"
	"github.com/google/subcommands"
)

type watchCmd struct{}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "refresh the summary at every price update" }
func (*watchCmd) Usage() string {
	return `rsv watch

  Polls the current price (every feed.interval of the configuration, 60s by
  default) and prints the summary after each update until interrupted.
  When an update fails the last known price is kept. Transactions recorded
  meanwhile by other rsv commands show up at the next update.
`
}

func (*watchCmd) SetFlags(*flag.FlagSet) {}

func (*watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := feed.Poll(ctx, a.feed, a.cfg.GetInterval(), func(err error) {
		if err != nil {
			fmt.Fprintf(stderr, "Warning: price update failed, showing the last known price: %v\n", err)
		}
		// pick up transactions recorded by other rsv commands.
		a.store.Load(ctx)
		printMarkdown(renderer.Summary(a.Report(date.Daily)))
	})
	defer p.Stop()

	<-ctx.Done()
	return subcommands.ExitSuccess
}
