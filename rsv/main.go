// Command rsv tracks a Bitcoin position: purchases, sales, average cost and
// profit or loss at the live market price.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/etnz/reserve/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	completion().Complete("rsv")

	commander := subcommands.NewCommander(flag.CommandLine, "rsv")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion describes the command line for shell completion.
func completion() *complete.Command {
	tx := map[string]complete.Predictor{
		"a": predict.Something,
		"p": predict.Something,
		"d": predict.Something,
	}
	json := map[string]complete.Predictor{"json": predict.Nothing}
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config": predict.Files("*.toml"),
			"plain":  predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"buy":     {Flags: tx},
			"sell":    {Flags: tx},
			"clear":   {Flags: map[string]complete.Predictor{"f": predict.Nothing}},
			"save":    {},
			"tx":      {Flags: json},
			"summary": {Flags: json},
			"chart": {Flags: map[string]complete.Predictor{
				"p": predict.Set{"daily", "weekly"},
				"o": predict.Files("*.png"),
			}},
			"watch":  {},
			"serve":  {Flags: map[string]complete.Predictor{"addr": predict.Something}},
			"assist": {},
			"help":   {},
		},
	}
}
