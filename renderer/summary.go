package renderer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dbeal/hlots"
)

// SummaryMarkdown renders the reporting metrics of one commodity. Market
// fields only appear when market data is available: absence is shown, not
// zeroed.
func SummaryMarkdown(s hlots.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", s.Commodity)
	fmt.Fprintf(&b, "- Currency: %s\n", s.Currency)
	fmt.Fprintf(&b, "- Quantity: %s\n", s.Quantity)
	fmt.Fprintf(&b, "- Amount: %s\n", s.Amount.StringFixed(2))
	fmt.Fprintf(&b, "- Average Cost: %s\n", s.AverageCost.StringFixed(4))

	if s.Market == nil {
		fmt.Fprintf(&b, "\nMarket data not available\n")
		return b.String()
	}
	fmt.Fprintf(&b, "- Market Price: %s\n", s.Market.Price.StringFixed(4))
	fmt.Fprintf(&b, "- Market Amount: %s\n", s.Market.Value.StringFixed(2))
	fmt.Fprintf(&b, "- Market Profit: %s\n", s.Market.Profit.StringFixed(2))
	fmt.Fprintf(&b, "- Market Date: %s\n", s.Market.Date)
	fmt.Fprintf(&b, "- XIRR: %.4f%% (APR 30/360US)\n", s.Market.Xirr*100)

	return b.String()
}

// SummariesMarkdown renders all commodities as one table, best performing
// first.
func SummariesMarkdown(summaries []hlots.Summary) string {
	sortSummaries(summaries)

	var b strings.Builder
	fmt.Fprint(&b, "# Commodities\n\n")
	fmt.Fprintln(&b, "| Commodity | Cur | Quantity | Amount | Avg Cost | Mkt Price | Mkt Amount | Mkt Profit | Mkt Date | XIRR |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|---:|---:|:---|---:|")

	for _, s := range summaries {
		row := summaryRow(s)
		fmt.Fprintf(&b, "| %s |\n", strings.Join(row, " | "))
	}

	return b.String()
}

// summaryRow flattens a summary into display cells, with empty market
// cells when no market data exists.
func summaryRow(s hlots.Summary) []string {
	row := []string{
		s.Commodity,
		s.Currency,
		s.Quantity.String(),
		s.Amount.StringFixed(2),
		s.AverageCost.StringFixed(4),
	}
	if s.Market == nil {
		return append(row, "", "", "", "", "")
	}
	return append(row,
		s.Market.Price.StringFixed(4),
		s.Market.Value.StringFixed(2),
		s.Market.Profit.StringFixed(2),
		s.Market.Date.String(),
		fmt.Sprintf("%.4f%%", s.Market.Xirr*100),
	)
}

// sortSummaries orders by annualized return, descending, commodities
// without market data last.
func sortSummaries(summaries []hlots.Summary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		mi, mj := summaries[i].Market, summaries[j].Market
		switch {
		case mi == nil:
			return false
		case mj == nil:
			return true
		default:
			return mi.Xirr > mj.Xirr
		}
	})
}
