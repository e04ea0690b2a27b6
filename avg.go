package hlots

import (
	"github.com/shopspring/decimal"

	"github.com/dbeal/hlots/date"
)

// AverageCostPoint is one step of the running weighted-average cost of a
// commodity: the net quantity, the net cost basis and their ratio after one
// more transaction has been applied. Points are append-only snapshots, the
// full series is the audit trail of the average-cost method.
type AverageCostPoint struct {
	Date          date.Date
	TotalQuantity Quantity
	TotalAmount   Money
	AverageCost   Money
}

// MarshalJSON implements the json.Marshaler interface.
func (p AverageCostPoint) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", p.Date)
	w.Append("totalQuantity", p.TotalQuantity)
	w.Append("totalAmount", p.TotalAmount.Amount())
	w.Append("averageCost", p.AverageCost.Amount())
	return w.MarshalJSON()
}

// AverageCosts folds the transactions into the running average-cost series,
// one point per transaction, in the order given (callers supply them in
// chronological order). A buy adds its quantity times its price to the cost
// basis; a sell is costed at the average cost standing immediately before
// it, not at its own stated price. The average is zero whenever the net
// quantity is zero.
//
// A non-zero until date truncates the input to transactions dated on or
// before it. When check is true, each sell's stated price must match the
// running average within the precision of the two values, otherwise a
// CostMethodError is returned.
func AverageCosts(txns Transactions, check bool, until date.Date) ([]AverageCostPoint, error) {
	if !until.IsZero() {
		txns = txns.until(until)
	}
	if err := CheckBaseCurrency(txns); err != nil {
		return nil, err
	}

	var (
		totalQty    Quantity
		totalAmount Money
		avgCost     Money
	)
	points := make([]AverageCostPoint, 0, len(txns))

	for _, txn := range txns {
		totalQty = totalQty.Add(txn.Quantity)

		if txn.IsBuy() {
			totalAmount = totalAmount.Add(txn.Amount())
		} else {
			if err := checkAverageSellPrice(txn, avgCost, check); err != nil {
				return nil, err
			}
			totalAmount = totalAmount.Add(avgCost.Mul(txn.Quantity))
		}

		if totalQty.IsZero() {
			avgCost = M(0, txn.Currency())
		} else {
			avgCost = totalAmount.Div(totalQty)
		}
		points = append(points, AverageCostPoint{
			Date:          txn.Date,
			TotalQuantity: totalQty,
			TotalAmount:   totalAmount,
			AverageCost:   avgCost,
		})
	}

	return points, nil
}

// checkAverageSellPrice verifies that a sell is priced at the running
// average cost, within a tolerance of one unit of the least precise of the
// two values. Disabled when check is false.
func checkAverageSellPrice(sell Transaction, avgCost Money, check bool) error {
	if !check {
		return nil
	}
	places := min(decimalPlaces(sell.Price.Amount()), decimalPlaces(avgCost.Amount()))
	tolerance := decimal.New(1, -int32(places))
	diff := sell.Price.Sub(avgCost).Amount().Abs()
	if diff.GreaterThan(tolerance) {
		return &CostMethodError{Date: sell.Date, Got: sell.Price, Want: avgCost}
	}
	return nil
}

// decimalPlaces returns the number of digits after the decimal point of d.
func decimalPlaces(d decimal.Decimal) int {
	if exp := d.Exponent(); exp < 0 {
		return int(-exp)
	}
	return 0
}
