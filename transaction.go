// Package hlots computes cost-basis lots for commodities recorded in an
// hledger journal, using either FIFO or average-cost accounting, and emits
// journal-compatible sale transactions annotated with realized gain and
// annualized return.
package hlots

import (
	"github.com/dbeal/hlots/date"
)

// Transaction is a single normalized posting for one commodity: the date it
// was booked, the per-unit price in the base currency, the signed quantity
// (positive for a buy, negative for a sell) and the account holding it.
//
// Transactions are read-only inputs; lot matching works on value copies.
type Transaction struct {
	Date     date.Date
	Price    Money // per-unit cost in the base currency
	Quantity Quantity
	Account  string
}

// Currency returns the base currency the transaction price is expressed in.
func (t Transaction) Currency() string { return t.Price.Currency() }

// Amount returns the transaction value: quantity times unit price.
func (t Transaction) Amount() Money { return t.Price.Mul(t.Quantity) }

// IsBuy reports whether the transaction is an acquisition. A zero quantity
// counts as a buy, matching the buy/sell partition used by lot matching.
func (t Transaction) IsBuy() bool { return !t.Quantity.IsNegative() }

// MarshalJSON implements the json.Marshaler interface.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", t.Date)
	w.Append("price", t.Price.Amount())
	w.Append("currency", t.Currency())
	w.Append("quantity", t.Quantity)
	w.Append("account", t.Account)
	return w.MarshalJSON()
}

// Transactions is a chronologically ordered list of postings for one commodity.
type Transactions []Transaction

// Quantity returns the net quantity over all transactions.
func (txns Transactions) Quantity() Quantity {
	var sum Quantity
	for _, txn := range txns {
		sum = sum.Add(txn.Quantity)
	}
	return sum
}

// Amount returns the net value (quantity times unit price) over all transactions.
func (txns Transactions) Amount() Money {
	var sum Money
	for _, txn := range txns {
		sum = sum.Add(txn.Amount())
	}
	return sum
}

// AverageCost returns the weighted-average unit cost of the transactions,
// or zero money when the net quantity is zero.
func (txns Transactions) AverageCost() Money {
	qtty := txns.Quantity()
	if qtty.IsZero() {
		var cur string
		if len(txns) > 0 {
			cur = txns[0].Currency()
		}
		return M(0, cur)
	}
	return txns.Amount().Div(qtty)
}

// partition splits transactions into buys and sells, preserving the
// original relative order of each group.
func (txns Transactions) partition() (buys, sells Transactions) {
	for _, txn := range txns {
		if txn.IsBuy() {
			buys = append(buys, txn)
		} else {
			sells = append(sells, txn)
		}
	}
	return buys, sells
}

// until returns the transactions dated on or before the given date.
func (txns Transactions) until(day date.Date) Transactions {
	var kept Transactions
	for _, txn := range txns {
		if !txn.Date.After(day) {
			kept = append(kept, txn)
		}
	}
	return kept
}
