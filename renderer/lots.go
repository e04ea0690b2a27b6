// Package renderer turns lots, average-cost series and summaries into
// markdown and CSV for display.
package renderer

import (
	"fmt"
	"strings"

	"github.com/dbeal/hlots"
)

// LotsMarkdown renders the FIFO lots of a commodity to a markdown table.
// Depleted lots are filtered out: only open quantity is worth displaying.
func LotsMarkdown(commodity string, lots hlots.Transactions) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Lots for %s\n\n", commodity)
	fmt.Fprintln(&b, "| Buy Date | Quantity | Price | Amount | Account |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|:---|")

	var open hlots.Transactions
	for _, lot := range lots {
		if lot.Quantity.IsZero() {
			continue
		}
		open = append(open, lot)
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			lot.Date,
			lot.Quantity,
			lot.Price.Amount(),
			lot.Amount().StringFixed(2),
			lot.Account,
		)
	}
	// In the total row the price column carries the weighted-average cost
	// of the open lots, labelled as such.
	if len(open) > 0 {
		fmt.Fprintf(&b, "| **Total** | **%s** | **%s** | **%s** | avg cost |\n",
			open.Quantity(),
			open.AverageCost().StringFixed(4),
			open.Amount().StringFixed(2),
		)
	}

	return b.String()
}
