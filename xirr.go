package hlots

import (
	"math"
	"time"

	"github.com/dbeal/hlots/date"
)

// cashflow is a dated amount in the base currency.
type cashflow struct {
	on     date.Date
	amount float64
}

// Xirr computes the annualized internal rate of return of holding the
// commodity, assuming it is entirely sold at sellPrice on sellDate. Each
// transaction contributes its value (price times signed quantity) on its
// own date, and the final flow is the sale of the whole net quantity.
//
// Year fractions use the 30/360 US day-count convention.
//
// The second return value is false when the rate is indeterminate: an empty
// series, or one where all flows have the same sign, has no solution. That
// is an absence of data, not an error.
func Xirr(sellPrice Money, sellDate date.Date, txns Transactions) (float64, bool) {
	if len(txns) == 0 {
		return 0, false
	}

	flows := make([]cashflow, 0, len(txns)+1)
	for _, txn := range txns {
		flows = append(flows, cashflow{on: txn.Date, amount: txn.Amount().AsFloat()})
	}
	final := sellPrice.Mul(txns.Quantity().Neg())
	flows = append(flows, cashflow{on: sellDate, amount: final.AsFloat()})

	return xirr(flows)
}

// xirr solves npv(rate)=0 by Newton iteration, falling back to bisection
// over a scanned bracket when Newton diverges.
func xirr(flows []cashflow) (float64, bool) {
	var hasPositive, hasNegative bool
	for _, f := range flows {
		if f.amount > 0 {
			hasPositive = true
		}
		if f.amount < 0 {
			hasNegative = true
		}
	}
	if !hasPositive || !hasNegative {
		return 0, false
	}

	years := make([]float64, len(flows))
	for i, f := range flows {
		years[i] = yearFrac360US(flows[0].on, f.on)
	}

	npv := func(rate float64) float64 {
		var sum float64
		for i, f := range flows {
			sum += f.amount * math.Pow(1+rate, -years[i])
		}
		return sum
	}
	derivative := func(rate float64) float64 {
		var sum float64
		for i, f := range flows {
			sum += -years[i] * f.amount * math.Pow(1+rate, -years[i]-1)
		}
		return sum
	}

	const (
		tolerance  = 1e-10
		iterations = 100
	)

	// Newton from a conventional starting guess.
	rate := 0.1
	for i := 0; i < iterations; i++ {
		value := npv(rate)
		if math.Abs(value) < tolerance {
			return rate, true
		}
		slope := derivative(rate)
		if slope == 0 || math.IsNaN(slope) {
			break
		}
		next := rate - value/slope
		if next <= -1 || math.IsNaN(next) || math.IsInf(next, 0) {
			break
		}
		if math.Abs(next-rate) < tolerance {
			return next, true
		}
		rate = next
	}

	// Scan for a sign change and bisect.
	lo, hi, ok := bracket(npv)
	if !ok {
		return 0, false
	}
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		if npv(lo)*npv(mid) <= 0 {
			hi = mid
		} else {
			lo = mid
		}
		if hi-lo < tolerance {
			break
		}
	}
	return (lo + hi) / 2, true
}

// bracket scans rates in (-1, 10] for an interval where npv changes sign.
func bracket(npv func(float64) float64) (lo, hi float64, ok bool) {
	const step = 0.01
	prev := -0.999999
	prevValue := npv(prev)
	for r := prev + step; r <= 10; r += step {
		value := npv(r)
		if prevValue*value <= 0 {
			return prev, r, true
		}
		prev, prevValue = r, value
	}
	return 0, 0, false
}

// yearFrac360US returns the year fraction between two dates under the
// 30/360 US (NASD) convention.
func yearFrac360US(from, to date.Date) float64 {
	return float64(days360US(from, to)) / 360
}

// days360US counts days between two dates under the 30/360 US convention:
// months count 30 days, with the NASD end-of-month adjustments.
func days360US(from, to date.Date) int {
	d1, d2 := from.Day(), to.Day()

	if isLastOfFebruary(from) {
		if isLastOfFebruary(to) {
			d2 = 30
		}
		d1 = 30
	}
	if d2 == 31 && d1 >= 30 {
		d2 = 30
	}
	if d1 == 31 {
		d1 = 30
	}

	return 360*(to.Year()-from.Year()) + 30*(int(to.Month())-int(from.Month())) + (d2 - d1)
}

func isLastOfFebruary(d date.Date) bool {
	return d.Month() == time.February && d.Add(1).Month() == time.March
}
