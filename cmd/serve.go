package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/etnz/reserve/date"
	"github.com/etnz/reserve/feed"
	"github.com/etnz/reserve/renderer"
	"github.com/etnz/reserve/server"
	"github.com/google/subcommands"
	"github.com/ternarybob/banner"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve a read-only view of the portfolio over HTTP" }
func (*serveCmd) Usage() string {
	return `rsv serve [-addr <host:port>]

  Serves the portfolio report, the price chart and a json API. The price is
  refreshed in the background. Transactions cannot be edited from the view.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address, defaults to server.addr of the configuration")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	addr := c.addr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go a.feed.LoadHistory(ctx, a.cfg.GetHistoryRange())
	p := feed.Poll(ctx, a.feed, a.cfg.GetInterval(), nil)
	defer p.Stop()

	app := server.New(liveView{a}, a.logger)
	go func() {
		<-ctx.Done()
		app.Shutdown()
	}()

	printBanner(addr, a.cfg.Storage.Backend+" "+a.cfg.GetStoragePath())
	if err := app.Listen(addr); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// liveView reloads the stored log before each report, so that transactions
// recorded by other rsv commands are served.
type liveView struct{ *app }

func (v liveView) Report(ctx context.Context, period date.Period) *renderer.Report {
	v.store.Load(ctx)
	return v.app.Report(period)
}

// printBanner displays the server startup banner to stderr.
func printBanner(addr, storage string) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 50) + banner.ColorReset

	fmt.Fprintf(stderr, "\n%s\n\n", hr)
	fmt.Fprintf(stderr, "%s  rsv - read-only portfolio view%s\n\n", textColor, banner.ColorReset)
	for _, kv := range [][2]string{
		{"Service URL", "http://" + addr},
		{"Storage", storage},
	} {
		fmt.Fprintf(stderr, "%s  %-12s %s%s\n", textColor, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(stderr, "\n%s\n\n", hr)
}
