package hlots

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dbeal/hlots/date"
)

// MultipleBaseCurrenciesError reports that a transaction list spans more
// than one base currency. Lot matching requires a single one.
type MultipleBaseCurrenciesError struct {
	Currencies []string
}

func (e *MultipleBaseCurrenciesError) Error() string {
	return fmt.Sprintf("more than one base currency: %s", strings.Join(e.Currencies, ", "))
}

// ShortSaleError reports a sale exceeding the quantity available to match it.
type ShortSaleError struct {
	Date      date.Date
	Available Quantity
	Requested Quantity
}

func (e *ShortSaleError) Error() string {
	return fmt.Sprintf("short sale on %s: requested %s but only %s available", e.Date, e.Requested, e.Available)
}

// InsufficientHoldingsError reports a sale exceeding the quantity held in a
// specific account.
type InsufficientHoldingsError struct {
	Account   string
	Available Quantity
	Requested Quantity
}

func (e *InsufficientHoldingsError) Error() string {
	return fmt.Sprintf("cannot sell %s in %s: only %s available", e.Requested, e.Account, e.Available)
}

// CostMethodError reports a sell whose stated price is inconsistent with
// the cost basis computed by the selected method. It usually means the
// journal mixes cost methods.
type CostMethodError struct {
	Date date.Date
	Got  Money
	Want Money
}

func (e *CostMethodError) Error() string {
	return fmt.Sprintf("sell on %s priced at %s %s, expected cost %s %s",
		e.Date, e.Got.Amount(), e.Got.Currency(), e.Want.Amount(), e.Want.Currency())
}

// CheckBaseCurrency fails when the transactions span more than one base
// currency.
func CheckBaseCurrency(txns Transactions) error {
	seen := make(map[string]bool)
	for _, txn := range txns {
		seen[txn.Currency()] = true
	}
	if len(seen) <= 1 {
		return nil
	}
	currencies := make([]string, 0, len(seen))
	for c := range seen {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)
	return &MultipleBaseCurrenciesError{Currencies: currencies}
}

// CheckShortSellPast fails when a sale exceeds the cumulative quantity
// bought on or before its own date. This is the point-in-time check used
// during FIFO matching: buys dated after the sale never count, even when
// aggregate holdings would cover it.
func CheckShortSellPast(previousBuys Transactions, sell Transaction) error {
	available := previousBuys.Quantity()
	if sell.Quantity.Abs().GreaterThan(available.Abs()) {
		return &ShortSaleError{Date: sell.Date, Available: available, Requested: sell.Quantity.Abs()}
	}
	return nil
}

// CheckShortSellCurrent fails when the requested sell quantity exceeds the
// total current holdings over all transactions, regardless of dates. Used
// by commands that validate a pending sale before generating it.
func CheckShortSellCurrent(txns Transactions, sellQty Quantity) error {
	available := txns.Quantity()
	if sellQty.GreaterThan(available) {
		return &ShortSaleError{Available: available, Requested: sellQty}
	}
	return nil
}

// CheckAvailable fails when the requested sell quantity exceeds the net
// quantity held in the given account.
func CheckAvailable(txns Transactions, account string, sellQty Quantity) error {
	var available Quantity
	for _, txn := range txns {
		if txn.Account == account {
			available = available.Add(txn.Quantity)
		}
	}
	if sellQty.GreaterThan(available) {
		return &InsufficientHoldingsError{Account: account, Available: available, Requested: sellQty}
	}
	return nil
}
