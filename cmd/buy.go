package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/dbeal/hlots"
	"github.com/dbeal/hlots/date"
)

// buyCmd holds the flags for the 'buy' subcommand. Missing values are
// prompted for interactively.
type buyCmd struct {
	date      string
	quantity  string
	price     string
	currency  string
	cash      string
	commodity string
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "generate a purchase transaction" }
func (*buyCmd) Usage() string {
	return `hlots buy [-q <quantity>] [-price <amount>] [-cur <currency>] [-cash <account>] [-commodity-account <account>] [-d <date>] <commodity>

  Writes a purchase transaction to stdout. Values not given as flags are
  prompted for on the terminal.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Date of the purchase (YYYY-MM-DD).")
	f.StringVar(&c.quantity, "q", "", "Quantity bought.")
	f.StringVar(&c.price, "price", "", "Per-unit price in the base currency.")
	f.StringVar(&c.currency, "cur", "", "Base currency of the price.")
	f.StringVar(&c.cash, "cash", "", "Account funding the purchase.")
	f.StringVar(&c.commodity, "commodity-account", "", "Account receiving the commodity.")
}

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expected exactly one commodity argument")
		return subcommands.ExitUsageError
	}
	commodity := f.Arg(0)

	if c.quantity == "" {
		c.quantity = prompt("Quantity", "")
	}
	if c.price == "" {
		c.price = prompt("Unit price", "")
	}
	if c.currency == "" {
		c.currency = prompt("Currency", "USD")
	}
	if c.commodity == "" {
		c.commodity = prompt("Account receiving "+commodity, "")
	}
	if c.cash == "" {
		c.cash = prompt("Account funding the purchase", "")
	}

	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	qty, err := decimal.NewFromString(c.quantity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing quantity %q: %v\n", c.quantity, err)
		return subcommands.ExitUsageError
	}
	price, err := decimal.NewFromString(c.price)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing price %q: %v\n", c.price, err)
		return subcommands.ExitUsageError
	}

	if err := hlots.EncodeBuy(os.Stdout, on, commodity, c.commodity, c.cash, hlots.Q(qty), hlots.M(price, c.currency)); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating purchase: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
