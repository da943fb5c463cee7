// Package cmd implements the rsv command line application.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/reserve"
	"github.com/etnz/reserve/coingecko"
	"github.com/etnz/reserve/config"
	"github.com/etnz/reserve/date"
	"github.com/etnz/reserve/feed"
	"github.com/etnz/reserve/logging"
	"github.com/etnz/reserve/renderer"
	"github.com/etnz/reserve/store"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&buyCmd{}, "transactions")
	c.Register(&sellCmd{}, "transactions")
	c.Register(&clearCmd{}, "transactions")
	c.Register(&saveCmd{}, "transactions")
	c.Register(&txCmd{}, "transactions")

	c.Register(&summaryCmd{}, "reports")
	c.Register(&chartCmd{}, "reports")
	c.Register(&watchCmd{}, "reports")

	c.Register(&serveCmd{}, "server")
	c.Register(&assistCmd{}, "assist")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile = flag.String("config", config.DefaultPath(), "Path to the configuration file (TOML)")
	plain      = flag.Bool("plain", false, "Print raw markdown instead of rendering it for the terminal")

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// app holds the components shared by the commands.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	backend store.Backend
	store   *store.Store
	client  *coingecko.Client
	feed    *feed.Feed
}

// newApp loads the configuration and opens the transaction store.
//
// A corrupt or unreadable log is reported on stderr, the store then starts empty.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogLevel)

	backend, err := store.NewBackend(ctx, cfg.Storage.Backend, cfg.GetStoragePath(), cfg.Storage.RedisAddr)
	if err != nil {
		return nil, fmt.Errorf("cannot open storage: %w", err)
	}
	s, res := store.Open(ctx, backend, cfg.Storage.Key, logger, store.WithCurrency(cfg.CurrencyCode()))
	switch res.Status {
	case store.Corrupt:
		fmt.Fprintf(stderr, "Warning: stored transactions are corrupt and were ignored: %v\n", res.Err)
	case store.Unavailable:
		fmt.Fprintf(stderr, "Warning: cannot read stored transactions: %v\n", res.Err)
	}

	client := coingecko.NewClient(
		coingecko.WithBaseURL(cfg.Feed.BaseURL),
		coingecko.WithAsset(cfg.Asset, cfg.Currency),
		coingecko.WithTimeout(cfg.GetTimeout()),
		coingecko.WithRateLimit(cfg.Feed.RateLimit),
		coingecko.WithCache(cfg.GetCacheDir()),
		coingecko.WithLogger(logger),
	)

	return &app{
		cfg:     cfg,
		logger:  logger,
		backend: backend,
		store:   s,
		client:  client,
		feed:    feed.New(client, feed.WithLogger(logger), feed.WithRetries(cfg.Feed.Retries, feed.DefaultBackoff)),
	}, nil
}

func (a *app) Close() error { return a.backend.Close() }

// price returns the last known price, in the configured currency when unknown.
func (a *app) price() reserve.Money {
	p := a.feed.Price()
	if p.IsZero() {
		return reserve.M(0, a.cfg.CurrencyCode())
	}
	return p
}

// Report gathers everything displayed about the portfolio.
func (a *app) Report(period date.Period) *renderer.Report {
	txs := a.store.Transactions()
	return &renderer.Report{
		Symbol:       a.symbol(),
		Snapshot:     reserve.Aggregate(txs, a.price()),
		Transactions: txs,
		Points:       reserve.Chart(a.feed.Series(), txs, period),
		Period:       period,
		Updated:      a.feed.Updated(),
		Loading:      a.feed.Loading(),
	}
}

// symbol returns the ticker displayed for the asset.
func (a *app) symbol() string {
	if a.cfg.Asset == "bitcoin" {
		return "BTC"
	}
	return a.cfg.Asset
}

// printMarkdown renders md for the terminal, or prints it raw with -plain.
func printMarkdown(md string) {
	if *plain {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Fprint(stdout, out)
			return
		}
	}
	fmt.Fprint(stdout, md)
}
