package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/dbeal/hlots"
	"github.com/dbeal/hlots/renderer"
)

// fifoCmd holds the flags for the 'fifo' subcommand.
type fifoCmd struct {
	noDesc string
	check  bool
}

func (*fifoCmd) Name() string     { return "fifo" }
func (*fifoCmd) Synopsis() string { return "FIFO lots and cost basis for one commodity" }
func (*fifoCmd) Usage() string {
	return `hlots fifo [-f <journal>] [-no-desc <regex>] [-check] <commodity>

  Matches sells against buys using the FIFO method and displays the open
  lots and the reporting summary for the commodity.
`
}

func (c *fifoCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.noDesc, "no-desc", "", "Exclude transactions whose description matches this hledger query.")
	f.BoolVar(&c.check, "check", false, "Verify that each sell is priced at the cost of the oldest open lot.")
}

func (c *fifoCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expected exactly one commodity argument")
		return subcommands.ExitUsageError
	}
	commodity := f.Arg(0)

	hl := newHledger()
	txns, err := hl.Transactions(commodity, c.noDesc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading journal: %v\n", err)
		return subcommands.ExitFailure
	}

	lots, err := hlots.Lots(txns, c.check)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error matching lots: %v\n", err)
		return subcommands.ExitFailure
	}

	quote, err := hl.LastPrice(commodity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: no market price: %v\n", err)
	}
	summary, err := hlots.FIFOSummary(commodity, txns, c.check, quote)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error summarizing %q: %v\n", commodity, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.LotsMarkdown(commodity, lots))
	printMarkdown(renderer.SummaryMarkdown(summary))
	return subcommands.ExitSuccess
}
