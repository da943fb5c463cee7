package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/reserve/agent"
	"github.com/etnz/reserve/date"
	"github.com/etnz/reserve/renderer"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

type assistCmd struct{}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "ask the AI assistant about the portfolio" }
func (*assistCmd) Usage() string {
	return `rsv assist [question]

  Answers the question about the portfolio, then exits. Without a question,
  starts an interactive session, type 'bye' to exit.

  Requires a Gemini API key in GOOGLE_API_KEY or GEMINI_API_KEY.
`
}

func (*assistCmd) SetFlags(*flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := a.feed.RefreshPrice(ctx); err != nil {
		fmt.Fprintf(stderr, "Warning: cannot fetch the current price: %v\n", err)
	}
	go a.feed.LoadHistory(ctx, a.cfg.GetHistoryRange())

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	model := a.cfg.Assist.Model
	if model == "" {
		model = agent.DefaultModel
	}
	analyst := agent.NewAnalyst(model, portfolioView{a})
	analyst.Logger = a.logger

	var input io.Reader = os.Stdin
	var prompts []string
	if f.NArg() > 0 {
		// one-shot: answer the question, then the input is already at its end.
		prompts = []string{strings.Join(f.Args(), " ")}
		input = strings.NewReader("")
	} else {
		fmt.Fprintln(stdout, "Welcome to rsv assist. Type 'bye' to exit.")
	}
	assistant := agent.New(stdout, input, printMarkdown, model, analyst, agent.NewMarketWatcher(model))

	if err := assistant.Run(ctx, client, prompts...); err != nil {
		fmt.Fprintln(stderr, "Assistant failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// portfolioView exposes the reports of the app to the assistant.
type portfolioView struct{ a *app }

func (p portfolioView) Summary() string { return renderer.Summary(p.a.Report(date.Daily)) }
func (p portfolioView) Transactions() string {
	return renderer.Transactions(p.a.Report(date.Daily))
}
func (p portfolioView) Prices(period date.Period) string {
	return renderer.ChartTable(p.a.Report(period))
}
