package hlots

import (
	"errors"

	"github.com/dbeal/hlots/date"
)

// ErrNoTransactions is returned when a summary is requested for a commodity
// without any transaction.
var ErrNoTransactions = errors.New("no transactions")

// Quote is the latest known market price of a commodity.
type Quote struct {
	Date  date.Date
	Price Money
}

// MarketInfo carries the market-derived fields of a summary. It is only
// present when a market price dated on or after the last purchase exists:
// absence of market data is distinguishable from zero values.
type MarketInfo struct {
	Price  Money
	Value  Money
	Profit Money
	Date   date.Date
	Xirr   float64 // annualized, 30/360 US
}

// Summary aggregates the lots of one commodity into reporting metrics.
type Summary struct {
	Commodity   string
	Currency    string
	Quantity    Quantity
	Amount      Money
	AverageCost Money
	LastBuyDate date.Date
	Market      *MarketInfo
}

// FIFOSummary reports on a commodity using FIFO lots: the open quantity,
// its cost basis, the weighted-average cost of what remains, and, when a
// usable market quote is given, market value, unrealized profit and the
// annualized return using the quote as terminal cash flow.
func FIFOSummary(commodity string, txns Transactions, check bool, quote *Quote) (Summary, error) {
	if len(txns) == 0 {
		return Summary{}, ErrNoTransactions
	}
	lots, err := Lots(txns, check)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Commodity:   commodity,
		Currency:    txns[0].Currency(),
		Quantity:    lots.Quantity(),
		Amount:      lots.Amount(),
		AverageCost: lots.AverageCost(),
	}
	if len(lots) > 0 {
		s.LastBuyDate = lots[len(lots)-1].Date
	}
	s.Market = marketInfo(txns, s, quote)
	return s, nil
}

// AverageSummary reports on a commodity using the average-cost method: the
// final point of the running series provides quantity, cost basis and
// average cost.
func AverageSummary(commodity string, txns Transactions, check bool, quote *Quote) (Summary, error) {
	if len(txns) == 0 {
		return Summary{}, ErrNoTransactions
	}
	points, err := AverageCosts(txns, check, date.Date{})
	if err != nil {
		return Summary{}, err
	}
	last := points[len(points)-1]

	s := Summary{
		Commodity:   commodity,
		Currency:    txns[0].Currency(),
		Quantity:    last.TotalQuantity,
		Amount:      last.TotalAmount,
		AverageCost: last.AverageCost,
		LastBuyDate: last.Date,
	}
	s.Market = marketInfo(txns, s, quote)
	return s, nil
}

// marketInfo derives the market fields from a quote, or nil when the quote
// is missing, predates the last purchase, or yields no determinate return.
func marketInfo(txns Transactions, s Summary, quote *Quote) *MarketInfo {
	if quote == nil || quote.Date.Before(s.LastBuyDate) {
		return nil
	}
	xirr, ok := Xirr(quote.Price, quote.Date, txns)
	if !ok {
		return nil
	}
	value := quote.Price.Mul(s.Quantity)
	return &MarketInfo{
		Price:  quote.Price,
		Value:  value,
		Profit: value.Sub(s.Amount),
		Date:   quote.Date,
		Xirr:   xirr,
	}
}
