package renderer

import (
	"encoding/csv"
	"io"

	"github.com/dbeal/hlots"
)

// SummariesCSV writes all commodity summaries as CSV, best performing
// first, with empty market columns when no market data exists.
func SummariesCSV(w io.Writer, summaries []hlots.Summary) error {
	sortSummaries(summaries)

	cw := csv.NewWriter(w)
	header := []string{"commodity", "cur", "quantity", "amount", "avg_cost",
		"mkt_price", "mkt_amount", "mkt_profit", "mkt_date", "xirr"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range summaries {
		if err := cw.Write(summaryRow(s)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
