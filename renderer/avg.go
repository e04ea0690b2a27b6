package renderer

import (
	"fmt"
	"strings"

	"github.com/dbeal/hlots"
)

// AverageCostMarkdown renders the running average-cost series of a
// commodity to a markdown table, one row per transaction.
func AverageCostMarkdown(commodity string, points []hlots.AverageCostPoint) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Average cost for %s\n\n", commodity)
	fmt.Fprintln(&b, "| Date | Total Quantity | Total Amount | Average Cost |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|")

	for _, p := range points {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			p.Date,
			p.TotalQuantity,
			p.TotalAmount.StringFixed(2),
			p.AverageCost.StringFixed(4),
		)
	}

	return b.String()
}
