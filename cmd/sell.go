package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/dbeal/hlots"
	"github.com/dbeal/hlots/date"
)

// sellCmd holds the flags for the 'sell' subcommand.
type sellCmd struct {
	method    string
	noDesc    string
	check     bool
	date      string
	quantity  string
	value     string
	cash      string
	revenue   string
	commodity string // account holding the commodity, average method only
	noPrint   bool
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "generate a sale transaction with realized gain" }
func (*sellCmd) Usage() string {
	return `hlots sell [-f <journal>] [-method <method>] -q <quantity> -value <amount> -cash <account> -revenue <account> [-commodity-account <account>] [-d <date>] <commodity>

  Matches the sale against the held lots and writes a journal transaction
  to stdout: cash received, disposed lots at historical (or average) cost,
  and an explicit realized gain/loss posting, annotated with quantity,
  price, cost basis and annualized return.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.method, "method", "fifo", "Cost basis method (fifo, average).")
	f.StringVar(&c.noDesc, "no-desc", "", "Exclude transactions whose description matches this hledger query.")
	f.BoolVar(&c.check, "check", false, "Verify that sells are priced consistently with the cost method.")
	f.StringVar(&c.date, "d", date.Today().String(), "Date of the sale (YYYY-MM-DD).")
	f.StringVar(&c.quantity, "q", "", "Quantity to sell.")
	f.StringVar(&c.value, "value", "", "Total sale value received, in the base currency.")
	f.StringVar(&c.cash, "cash", "", "Account receiving the sale value.")
	f.StringVar(&c.revenue, "revenue", "", "Account booking the realized gain or loss.")
	f.StringVar(&c.commodity, "commodity-account", "", "Account holding the commodity (average method only).")
	f.BoolVar(&c.noPrint, "no-validate", false, "Do not pipe the generated transaction through hledger for validation.")
}

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expected exactly one commodity argument")
		return subcommands.ExitUsageError
	}
	commodity := f.Arg(0)

	method, err := hlots.ParseCostBasisMethod(c.method)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing sale date: %v\n", err)
		return subcommands.ExitUsageError
	}
	qty, err := decimal.NewFromString(c.quantity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing quantity %q: %v\n", c.quantity, err)
		return subcommands.ExitUsageError
	}
	if !qty.IsPositive() {
		fmt.Fprintf(os.Stderr, "Quantity to sell must be positive, got %q\n", c.quantity)
		return subcommands.ExitUsageError
	}
	value, err := decimal.NewFromString(c.value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing value %q: %v\n", c.value, err)
		return subcommands.ExitUsageError
	}
	if c.cash == "" || c.revenue == "" {
		fmt.Fprintln(os.Stderr, "-cash and -revenue accounts are required")
		return subcommands.ExitUsageError
	}

	hl := newHledger()
	txns, err := hl.Transactions(commodity, c.noDesc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading journal: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(txns) == 0 {
		fmt.Fprintf(os.Stderr, "No transactions found for %q\n", commodity)
		return subcommands.ExitFailure
	}

	sale := hlots.Sale{
		Date:           on,
		Commodity:      commodity,
		Quantity:       hlots.Q(qty),
		Value:          hlots.M(value, txns[0].Currency()),
		CashAccount:    c.cash,
		RevenueAccount: c.revenue,
	}

	var b strings.Builder
	switch method {
	case hlots.FIFO:
		lots, err := hlots.SellLots(txns, on, sale.Quantity, c.check)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error matching sale: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := hlots.EncodeFIFOSale(&b, sale, lots); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating sale: %v\n", err)
			return subcommands.ExitFailure
		}
	case hlots.AverageCost:
		account := c.commodity
		if account == "" {
			account = prompt("Account holding "+commodity, "")
		}
		if err := hlots.EncodeAverageSale(&b, sale, account, txns, c.check); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating sale: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	if c.noPrint {
		fmt.Print(b.String())
		return subcommands.ExitSuccess
	}
	// Let hledger validate the transaction and print its canonical form.
	canonical, err := hl.Print(b.String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generated transaction failed validation: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Print(canonical)
	return subcommands.ExitSuccess
}
