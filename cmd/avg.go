package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/dbeal/hlots"
	"github.com/dbeal/hlots/date"
	"github.com/dbeal/hlots/renderer"
)

// avgCmd holds the flags for the 'avg' subcommand.
type avgCmd struct {
	noDesc string
	check  bool
	until  string
}

func (*avgCmd) Name() string     { return "avg" }
func (*avgCmd) Synopsis() string { return "running average cost for one commodity" }
func (*avgCmd) Usage() string {
	return `hlots avg [-f <journal>] [-no-desc <regex>] [-check] [-until <date>] <commodity>

  Displays the running weighted-average cost series of the commodity, one
  row per transaction, and the reporting summary.
`
}

func (c *avgCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.noDesc, "no-desc", "", "Exclude transactions whose description matches this hledger query.")
	f.BoolVar(&c.check, "check", false, "Verify that each sell is priced at the running average cost.")
	f.StringVar(&c.until, "until", "", "Only consider transactions on or before this date (YYYY-MM-DD).")
}

func (c *avgCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expected exactly one commodity argument")
		return subcommands.ExitUsageError
	}
	commodity := f.Arg(0)

	var until date.Date
	if c.until != "" {
		var err error
		until, err = date.Parse(c.until)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing until date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	hl := newHledger()
	txns, err := hl.Transactions(commodity, c.noDesc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading journal: %v\n", err)
		return subcommands.ExitFailure
	}

	points, err := hlots.AverageCosts(txns, c.check, until)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing average cost: %v\n", err)
		return subcommands.ExitFailure
	}

	quote, err := hl.LastPrice(commodity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: no market price: %v\n", err)
	}
	summary, err := hlots.AverageSummary(commodity, txns, c.check, quote)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error summarizing %q: %v\n", commodity, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.AverageCostMarkdown(commodity, points))
	printMarkdown(renderer.SummaryMarkdown(summary))
	return subcommands.ExitSuccess
}
