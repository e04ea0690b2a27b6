package hlots

import (
	"github.com/dbeal/hlots/date"
)

// Lots matches sells against buys using the FIFO method and returns the
// resulting lots: one per buy, carrying its remaining open quantity.
// Depleted lots are kept with a zero quantity, not removed.
//
// Sells must be supplied in chronological order. Each sell only ever
// matches buys dated on or before it: a sale can fail the short-sale check
// against point-in-time inventory even when later buys would cover it.
//
// When check is true, each sell's stated price must match the price of
// every lot it depletes, otherwise a CostMethodError is returned.
func Lots(txns Transactions, check bool) (Transactions, error) {
	if err := CheckBaseCurrency(txns); err != nil {
		return nil, err
	}

	buys, sells := txns.partition()
	if len(sells) == 0 {
		// Nothing to match: the lots are the buys, unmodified.
		return buys, nil
	}

	// buys was built by partition and is already a fresh copy: it can be
	// depleted in place without aliasing the caller's transactions.
	for _, sell := range sells {
		var previousBuys, laterBuys Transactions
		for _, buy := range buys {
			if buy.Date.After(sell.Date) {
				laterBuys = append(laterBuys, buy)
			} else {
				previousBuys = append(previousBuys, buy)
			}
		}
		if err := CheckShortSellPast(previousBuys, sell); err != nil {
			return nil, err
		}

		sellQty := sell.Quantity.Abs()
		for i := range previousBuys {
			if sellQty.IsZero() {
				break
			}
			if previousBuys[i].Quantity.IsZero() {
				continue
			}
			// Every lot the sell consumes must be priced at the sell's
			// stated price for the journal to be FIFO-consistent.
			if check && !sell.Price.Equal(previousBuys[i].Price) {
				return nil, &CostMethodError{Date: sell.Date, Got: sell.Price, Want: previousBuys[i].Price}
			}
			if sellQty.GreaterThanOrEqual(previousBuys[i].Quantity) {
				sellQty = sellQty.Sub(previousBuys[i].Quantity)
				previousBuys[i].Quantity = Q(0)
			} else {
				previousBuys[i].Quantity = previousBuys[i].Quantity.Sub(sellQty)
				sellQty = Q(0)
			}
		}

		buys = append(previousBuys, laterBuys...)
	}

	return buys, nil
}

// SellLots returns the lot slices a pending sale would consume: the oldest
// open lots as of sellDate, whole or partial, each carrying its original
// buy date, unit price and account. The sale is first validated against
// total current holdings.
func SellLots(txns Transactions, sellDate date.Date, sellQty Quantity, check bool) (Transactions, error) {
	if err := CheckShortSellCurrent(txns, sellQty); err != nil {
		return nil, err
	}
	lots, err := Lots(txns, check)
	if err != nil {
		return nil, err
	}

	var matched Transactions
	remaining := sellQty
	for _, lot := range lots.until(sellDate) {
		if remaining.IsZero() {
			break
		}
		if lot.Quantity.IsZero() {
			continue
		}
		if remaining.GreaterThan(lot.Quantity) {
			matched = append(matched, lot)
			remaining = remaining.Sub(lot.Quantity)
		} else {
			lot.Quantity = remaining
			matched = append(matched, lot)
			remaining = Q(0)
		}
	}
	return matched, nil
}
