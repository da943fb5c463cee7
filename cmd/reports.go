package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/reserve"
	"github.com/etnz/reserve/date"
	"github.com/etnz/reserve/renderer"
	"github.com/google/subcommands"
)

// --- Tx Command ---

type txCmd struct {
	json bool
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list all transactions" }
func (*txCmd) Usage() string {
	return `rsv tx [-json]

  Lists the transactions in the order they were recorded, followed by the
  average cost of all purchases. With -json, prints the stored log.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the transactions as stored (json)")
}

func (c *txCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if c.json {
		if err := reserve.EncodeLedger(stdout, reserve.NewLedger(a.store.Transactions()...)); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintln(stdout)
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.Transactions(a.Report(date.Daily)))
	return subcommands.ExitSuccess
}

// --- Summary Command ---

type summaryCmd struct {
	json bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display holdings, value and profit or loss" }
func (*summaryCmd) Usage() string {
	return `rsv summary [-json]

  Fetches the current price and displays the total holdings, current value,
  total invested, profit or loss and return. When the price cannot be
  fetched the summary is computed at a zero price and a warning is printed.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the summary as json")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := a.feed.RefreshPrice(ctx); err != nil {
		fmt.Fprintf(stderr, "Warning: cannot fetch the current price: %v\n", err)
	}
	r := a.Report(date.Daily)

	if c.json {
		data, err := r.Snapshot.MarshalJSON()
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintln(stdout, string(data))
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.Summary(r))
	return subcommands.ExitSuccess
}

// --- Chart Command ---

type chartCmd struct {
	period string
	output string
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "display the price history with buy markers" }
func (*chartCmd) Usage() string {
	return `rsv chart [-p daily|weekly] [-o <file.png>]

  Fetches the price history and displays one price per day (the last of the
  day) or per week (the last of the week, dated by its Sunday). Dates with a
  purchase are marked. With -o, writes a PNG chart instead.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "p", "daily", "Bucketing period: daily or weekly")
	f.StringVar(&c.output, "o", "", "Write a PNG chart to this file")
}

func (c *chartCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	period, err := date.ParsePeriod(c.period)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := a.feed.LoadHistory(ctx, a.cfg.GetHistoryRange()); err != nil {
		fmt.Fprintf(stderr, "Error fetching price history: %v\n", err)
		return subcommands.ExitFailure
	}
	r := a.Report(period)

	if c.output == "" {
		printMarkdown(renderer.ChartTable(r))
		return subcommands.ExitSuccess
	}

	out, err := os.Create(c.output)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer out.Close()
	if err := renderer.Chart(out, r.Points, r.Symbol+" "+period.String()); err != nil {
		fmt.Fprintf(stderr, "Error rendering chart: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Chart written to %s\n", c.output)
	return subcommands.ExitSuccess
}
