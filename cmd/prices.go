package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/dbeal/hlots"
)

// tickerPrefix marks commodities whose market price can be fetched from
// the quote provider, e.g. "y.AAPL".
const tickerPrefix = "y."

// pricesCmd holds the flags for the 'prices' subcommand.
type pricesCmd struct {
	tickers string
}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "fetch market prices as journal price directives" }
func (*pricesCmd) Usage() string {
	return `hlots prices [-f <journal>] [-t <ticker,...>]

  Fetches the latest market quote of each "y."-prefixed commodity in the
  journals (or of the given tickers) and writes journal price directives
  to stdout, ready to be appended to the journal.
`
}

func (c *pricesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.tickers, "t", "", "Comma-separated tickers to fetch instead of scanning the journals.")
}

func (c *pricesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	commodities, err := c.commodities()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing commodities: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(commodities) == 0 {
		fmt.Fprintf(os.Stderr, "No %q-prefixed commodities found.\n", tickerPrefix)
		return subcommands.ExitSuccess
	}

	status := subcommands.ExitSuccess
	for _, commodity := range commodities {
		ticker := strings.TrimPrefix(commodity, tickerPrefix)
		quote, err := hlots.FetchQuote(ticker)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching %q: %v\n", ticker, err)
			status = subcommands.ExitFailure
			continue
		}
		if err := hlots.EncodePriceDirective(os.Stdout, quote.Date, commodity, quote.Price); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing price for %q: %v\n", commodity, err)
			return subcommands.ExitFailure
		}
	}
	return status
}

// commodities returns the commodities to fetch, from the -t flag or from
// the journals.
func (c *pricesCmd) commodities() ([]string, error) {
	if c.tickers != "" {
		var commodities []string
		for _, t := range strings.Split(c.tickers, ",") {
			commodities = append(commodities, tickerPrefix+strings.TrimSpace(t))
		}
		return commodities, nil
	}

	all, err := newHledger().Commodities()
	if err != nil {
		return nil, err
	}
	var commodities []string
	for _, commodity := range all {
		if strings.HasPrefix(commodity, tickerPrefix) {
			commodities = append(commodities, commodity)
		}
	}
	return commodities, nil
}
