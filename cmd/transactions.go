package cmd

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/etnz/reserve"
	"github.com/google/subcommands"
)

// recordTransaction validates the user input and appends the transaction to the store.
func recordTransaction(ctx context.Context, in reserve.TransactionInput) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if in.Price == "" {
		if err := a.feed.RefreshPrice(ctx); err != nil {
			fmt.Fprintf(stderr, "Error: current price is unavailable (%v), set it with -p\n", err)
			return subcommands.ExitFailure
		}
	}

	tx, err := reserve.ParseTransaction(in, a.price(), time.Now())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	if err := a.store.Append(ctx, tx); err != nil {
		fmt.Fprintf(stderr, "Error saving transaction: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(stdout, "%s %s %s at %s (total %s)\n", tx.Kind.Title(), tx.Amount.StringFixed(), a.symbol(), tx.Price, tx.Total())
	return subcommands.ExitSuccess
}

// --- Buy Command ---

type buyCmd struct {
	amount string
	price  string
	date   string
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record a purchase" }
func (*buyCmd) Usage() string {
	return `rsv buy -a <amount> [-p <price>] [-d <date>]

  Records a purchase of the asset. The price defaults to the current market
  price, the date to now. Amounts have at most 8 decimals.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "a", "", "Amount bought, e.g. 0.0125")
	f.StringVar(&c.price, "p", "", "Unit price, defaults to the current price")
	f.StringVar(&c.date, "d", "", "Transaction date (YYYY-MM-DD or RFC 3339), defaults to now")
}

func (c *buyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.amount == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return recordTransaction(ctx, reserve.TransactionInput{Type: string(reserve.Buy), Amount: c.amount, Price: c.price, Date: c.date})
}

// --- Sell Command ---

type sellCmd struct {
	amount string
	price  string
	date   string
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record a sale" }
func (*sellCmd) Usage() string {
	return `rsv sell -a <amount> [-p <price>] [-d <date>]

  Records a sale of the asset. The price defaults to the current market
  price, the date to now. Selling more than held is allowed.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "a", "", "Amount sold, e.g. 0.0125")
	f.StringVar(&c.price, "p", "", "Unit price, defaults to the current price")
	f.StringVar(&c.date, "d", "", "Transaction date (YYYY-MM-DD or RFC 3339), defaults to now")
}

func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.amount == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return recordTransaction(ctx, reserve.TransactionInput{Type: string(reserve.Sell), Amount: c.amount, Price: c.price, Date: c.date})
}

// --- Clear Command ---

type clearCmd struct {
	force bool
}

func (*clearCmd) Name() string     { return "clear" }
func (*clearCmd) Synopsis() string { return "delete all transactions" }
func (*clearCmd) Usage() string {
	return `rsv clear -f

  Deletes all recorded transactions. This cannot be undone, -f is required.
`
}

func (c *clearCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "f", false, "Confirm the deletion")
}

func (c *clearCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.force {
		fmt.Fprintln(stderr, "Error: clear deletes all transactions, confirm with -f")
		return subcommands.ExitUsageError
	}
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := a.store.Clear(ctx); err != nil {
		fmt.Fprintf(stderr, "Error clearing transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintln(stdout, "All transactions deleted")
	return subcommands.ExitSuccess
}

// --- Save Command ---

type saveCmd struct{}

func (*saveCmd) Name() string     { return "save" }
func (*saveCmd) Synopsis() string { return "rewrite the stored transactions" }
func (*saveCmd) Usage() string {
	return `rsv save

  Writes the transactions back to the storage. A corrupt log is backed up
  under <key>.corrupt and replaced by an empty one.
`
}

func (*saveCmd) SetFlags(*flag.FlagSet) {}

func (*saveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := a.store.Save(ctx); err != nil {
		fmt.Fprintf(stderr, "Error saving transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "%d transactions saved under %q\n", len(a.store.Transactions()), a.store.Key())
	return subcommands.ExitSuccess
}
