package hlots

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/dbeal/hlots/date"
)

// Sale describes a disposal to be rendered as a journal transaction.
type Sale struct {
	Date           date.Date
	Commodity      string
	Quantity       Quantity // quantity sold, positive
	Value          Money    // total sale value received
	CashAccount    string
	RevenueAccount string
}

// Price returns the effective per-unit sale price.
func (s Sale) Price() Money { return s.Value.Div(s.Quantity) }

// EncodeFIFOSale renders a sale as a journal transaction funded by the
// given matched lots: one posting crediting the cash account, one posting
// per lot disposing of it at its historical price, and a final explicit
// posting booking the realized gain or loss so the transaction balances to
// zero. Metadata (quantity, price, average cost, annualized return) is
// embedded as machine-parseable comments.
func EncodeFIFOSale(w io.Writer, sale Sale, lots Transactions) error {
	if len(lots) == 0 {
		return fmt.Errorf("no lots matched for sale of %q on %s", sale.Commodity, sale.Date)
	}
	cur := lots[0].Currency()
	qtty := lots.Quantity()
	cost := lots.Amount()
	price := sale.Value.Div(qtty)

	xirr, _ := Xirr(price, sale.Date, lots)

	var b strings.Builder
	fmt.Fprintf(&b, "%s Sold %s  ; cost_method:fifo\n", sale.Date, sale.Commodity)
	fmt.Fprintf(&b, "    ; commodity:%s, qtty:%s, price:%s\n", sale.Commodity, qtty, price.StringFixed(2))
	fmt.Fprintf(&b, "    ; avg_cost:%s, xirr:%.2f%% annual percent rate 30/360US\n", lots.AverageCost().StringFixed(4), xirr*100)
	fmt.Fprintf(&b, "    %s  %s %s\n", sale.CashAccount, sale.Value.StringFixed(2), cur)
	for _, lot := range lots {
		fmt.Fprintf(&b, "    %s    %s %s @ %s %s  ; buy_date:%s, base_cur:%s\n",
			lot.Account, lot.Quantity.Neg(), quoteCommodity(sale.Commodity), lot.Price.Amount(), cur, lot.Date, cur)
	}
	// Explicit balancing posting: the realized gain is value - cost, booked
	// on the revenue side with the opposite sign.
	fmt.Fprintf(&b, "    %s   %s %s\n", sale.RevenueAccount, cost.Sub(sale.Value).StringFixed(2), cur)

	_, err := io.WriteString(w, b.String())
	return err
}

// EncodeAverageSale renders a sale as a journal transaction under the
// average-cost method: one posting crediting the cash account, one
// aggregate posting disposing of the quantity at the running average cost
// from the commodity account, and a final explicit posting booking the
// realized gain or loss. The sale is validated against current holdings,
// the base currency and the commodity account balance first.
func EncodeAverageSale(w io.Writer, sale Sale, commodityAccount string, txns Transactions, check bool) error {
	if !sale.Quantity.IsPositive() {
		return fmt.Errorf("sale quantity must be positive, got %s", sale.Quantity)
	}
	if err := CheckShortSellCurrent(txns, sale.Quantity); err != nil {
		return err
	}
	if err := CheckBaseCurrency(txns); err != nil {
		return err
	}
	if err := CheckAvailable(txns, commodityAccount, sale.Quantity); err != nil {
		return err
	}

	points, err := AverageCosts(txns, check, date.Date{})
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return fmt.Errorf("no transactions for sale of %q on %s", sale.Commodity, sale.Date)
	}
	avgCost := points[len(points)-1].AverageCost

	cur := txns[0].Currency()
	price := sale.Price()
	cost := avgCost.Mul(sale.Quantity)
	xirr, _ := Xirr(price, sale.Date, txns)

	var b strings.Builder
	fmt.Fprintf(&b, "%s Sold %s  ; cost_method:avg_cost\n", sale.Date, sale.Commodity)
	fmt.Fprintf(&b, "    ; commodity:%s, qtty:%s, price:%s\n", sale.Commodity, sale.Quantity, price.StringFixed(2))
	fmt.Fprintf(&b, "    ; xirr:%.2f%% annual percent rate 30/360US\n", xirr*100)
	fmt.Fprintf(&b, "    %s    %s %s\n", sale.CashAccount, sale.Value.StringFixed(2), cur)
	fmt.Fprintf(&b, "    %s    %s %s @ %s %s\n",
		commodityAccount, sale.Quantity.Neg(), quoteCommodity(sale.Commodity), avgCost.Amount(), cur)
	fmt.Fprintf(&b, "    %s   %s %s\n", sale.RevenueAccount, cost.Sub(sale.Value).StringFixed(2), cur)

	_, err = io.WriteString(w, b.String())
	return err
}

// EncodeBuy renders a purchase as a journal transaction: the commodity
// account receives the quantity at its unit price, the cash account funds
// it implicitly.
func EncodeBuy(w io.Writer, on date.Date, commodity, commodityAccount, cashAccount string, qty Quantity, price Money) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Bought %s\n", on, commodity)
	fmt.Fprintf(&b, "    %s    %s %s @ %s %s\n",
		commodityAccount, qty, quoteCommodity(commodity), price.Amount(), price.Currency())
	fmt.Fprintf(&b, "    %s\n", cashAccount)
	_, err := io.WriteString(w, b.String())
	return err
}

// EncodePriceDirective renders a market price directive for a commodity.
func EncodePriceDirective(w io.Writer, on date.Date, commodity string, price Money) error {
	_, err := fmt.Fprintf(w, "P %s %s %s %s\n", on, quoteCommodity(commodity), price.Amount(), price.Currency())
	return err
}

// quoteCommodity wraps a commodity name in double quotes when it contains
// characters the journal format cannot carry bare.
func quoteCommodity(commodity string) string {
	for _, r := range commodity {
		if !unicode.IsLetter(r) {
			return `"` + commodity + `"`
		}
	}
	return commodity
}
