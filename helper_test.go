package hlots

import "github.com/dbeal/hlots/date"

// tx is a helper for tests to build a transaction in USD on one account.
func tx(day string, price, qtty float64) Transaction {
	return txAt(day, price, qtty, "assets:broker")
}

// txAt is like tx with an explicit account.
func txAt(day string, price, qtty float64, account string) Transaction {
	return Transaction{
		Date:     date.MustParse(day),
		Price:    M(price, "USD"),
		Quantity: Q(qtty),
		Account:  account,
	}
}

// eur is a helper for tests to build a transaction in EUR.
func eur(day string, price, qtty float64) Transaction {
	t := tx(day, price, qtty)
	t.Price = M(price, "EUR")
	return t
}

// quantities flattens lots to their quantities for compact comparisons.
func quantities(lots Transactions) []string {
	qs := make([]string, 0, len(lots))
	for _, lot := range lots {
		qs = append(qs, lot.Quantity.String())
	}
	return qs
}
