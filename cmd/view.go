package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/dbeal/hlots"
	"github.com/dbeal/hlots/renderer"
)

// viewCmd holds the flags for the 'view' subcommand.
type viewCmd struct {
	method string
	noDesc string
	check  bool
	csv    bool
}

func (*viewCmd) Name() string     { return "view" }
func (*viewCmd) Synopsis() string { return "cost basis summary of every commodity" }
func (*viewCmd) Usage() string {
	return `hlots view [-f <journal>] [-method <method>] [-no-desc <regex>] [-check] [-csv]

  Summarizes the cost basis of every commodity in the journals, best
  annualized return first.
`
}

func (c *viewCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.method, "method", "fifo", "Cost basis method (fifo, average).")
	f.StringVar(&c.noDesc, "no-desc", "", "Exclude transactions whose description matches this hledger query.")
	f.BoolVar(&c.check, "check", false, "Verify that sells are priced consistently with the cost method.")
	f.BoolVar(&c.csv, "csv", false, "Write CSV to stdout instead of a table.")
}

func (c *viewCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	method, err := hlots.ParseCostBasisMethod(c.method)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	hl := newHledger()
	commodities, err := hl.Commodities()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing commodities: %v\n", err)
		return subcommands.ExitFailure
	}

	var summaries []hlots.Summary
	for _, commodity := range commodities {
		summary, err := c.summarize(hl, method, commodity)
		if err != nil {
			// A commodity that cannot be summarized (multiple currencies,
			// no priced postings) is skipped, not fatal for the report.
			continue
		}
		summaries = append(summaries, summary)
	}

	if c.csv {
		if err := renderer.SummariesCSV(os.Stdout, summaries); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing csv: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.SummariesMarkdown(summaries))
	return subcommands.ExitSuccess
}

func (c *viewCmd) summarize(hl hlots.Hledger, method hlots.CostBasisMethod, commodity string) (hlots.Summary, error) {
	txns, err := hl.Transactions(commodity, c.noDesc)
	if err != nil {
		return hlots.Summary{}, err
	}
	if len(txns) == 0 {
		return hlots.Summary{}, hlots.ErrNoTransactions
	}
	quote, err := hl.LastPrice(commodity)
	if err != nil {
		return hlots.Summary{}, err
	}
	switch method {
	case hlots.AverageCost:
		return hlots.AverageSummary(commodity, txns, c.check, quote)
	case hlots.FIFO:
		return hlots.FIFOSummary(commodity, txns, c.check, quote)
	default:
		return hlots.Summary{}, errors.New("unsupported cost basis method")
	}
}
