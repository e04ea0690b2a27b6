package hlots

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dbeal/hlots/date"
)

func TestAverageCosts_Buys(t *testing.T) {
	txns := Transactions{
		tx("2022-01-01", 10, 10),
		tx("2022-01-02", 20, 2),
	}

	points, err := AverageCosts(txns, false, date.Date{})
	if err != nil {
		t.Fatalf("AverageCosts() returned unexpected error: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want one per transaction", len(points))
	}

	last := points[1]
	if !last.TotalQuantity.Equal(Q(12)) {
		t.Errorf("total quantity = %v, want 12", last.TotalQuantity)
	}
	if !last.TotalAmount.Equal(M(140, "USD")) {
		t.Errorf("total amount = %v, want 140 USD", last.TotalAmount.Amount())
	}
	if got := last.AverageCost.Amount().Round(3); !got.Equal(decimal.RequireFromString("11.667")) {
		t.Errorf("average cost = %v, want 11.667", got)
	}
}

// A sell is costed at the average standing before it, not at its own price.
func TestAverageCosts_SellAtRunningAverage(t *testing.T) {
	txns := Transactions{
		tx("2022-01-01", 10, 10),
		tx("2022-01-02", 30, -5), // sold well above cost
	}

	points, err := AverageCosts(txns, false, date.Date{})
	if err != nil {
		t.Fatalf("AverageCosts() returned unexpected error: %v", err)
	}

	last := points[1]
	if !last.TotalQuantity.Equal(Q(5)) {
		t.Errorf("total quantity = %v, want 5", last.TotalQuantity)
	}
	if !last.TotalAmount.Equal(M(50, "USD")) {
		t.Errorf("total amount = %v, want 50 USD: the sale must be costed at 10", last.TotalAmount.Amount())
	}
	if !last.AverageCost.Equal(M(10, "USD")) {
		t.Errorf("average cost = %v, want 10 USD", last.AverageCost.Amount())
	}
}

func TestAverageCosts_ZeroQuantityResetsAverage(t *testing.T) {
	txns := Transactions{
		tx("2022-01-01", 10, 10),
		tx("2022-01-02", 10, -10),
	}

	points, err := AverageCosts(txns, false, date.Date{})
	if err != nil {
		t.Fatalf("AverageCosts() returned unexpected error: %v", err)
	}

	last := points[1]
	if !last.TotalQuantity.IsZero() {
		t.Errorf("total quantity = %v, want 0", last.TotalQuantity)
	}
	if !last.AverageCost.IsZero() {
		t.Errorf("average cost = %v, want 0 when nothing is held", last.AverageCost.Amount())
	}
}

// Invariant: every point satisfies avg == amount/qtty, or avg == 0 at zero
// quantity.
func TestAverageCosts_Invariant(t *testing.T) {
	txns := Transactions{
		tx("2022-01-01", 10, 5),
		tx("2022-01-02", 20, 2),
		tx("2022-01-03", 15, -7),
		tx("2022-01-04", 30, 4),
		tx("2022-01-05", 25, -1),
	}

	points, err := AverageCosts(txns, false, date.Date{})
	if err != nil {
		t.Fatalf("AverageCosts() returned unexpected error: %v", err)
	}
	for i, p := range points {
		if p.TotalQuantity.IsZero() {
			if !p.AverageCost.IsZero() {
				t.Errorf("point %d: average cost = %v, want 0", i, p.AverageCost.Amount())
			}
			continue
		}
		if want := p.TotalAmount.Div(p.TotalQuantity); !p.AverageCost.Equal(want) {
			t.Errorf("point %d: average cost = %v, want %v", i, p.AverageCost.Amount(), want.Amount())
		}
	}
}

func TestAverageCosts_Empty(t *testing.T) {
	points, err := AverageCosts(nil, false, date.Date{})
	if err != nil {
		t.Fatalf("AverageCosts() returned unexpected error: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("got %d points, want an empty series", len(points))
	}
}

func TestAverageCosts_Until(t *testing.T) {
	txns := Transactions{
		tx("2022-01-01", 10, 10),
		tx("2022-01-02", 20, 2),
		tx("2022-01-05", 30, 1),
	}

	points, err := AverageCosts(txns, false, date.MustParse("2022-01-02"))
	if err != nil {
		t.Fatalf("AverageCosts() returned unexpected error: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2: until is inclusive", len(points))
	}
	if got := points[len(points)-1].Date; got != date.MustParse("2022-01-02") {
		t.Errorf("last point date = %v, want 2022-01-02", got)
	}
}

func TestAverageCosts_Check(t *testing.T) {
	txns := Transactions{
		tx("2022-01-01", 10, 10),
		tx("2022-01-02", 12, -5), // average is 10, priced at 12
	}

	if _, err := AverageCosts(txns, false, date.Date{}); err != nil {
		t.Fatalf("unchecked series failed: %v", err)
	}

	_, err := AverageCosts(txns, true, date.Date{})
	var mismatch *CostMethodError
	if !errors.As(err, &mismatch) {
		t.Fatalf("got %v, want a CostMethodError", err)
	}
	if !mismatch.Want.Equal(M(10, "USD")) {
		t.Errorf("expected cost = %v, want 10 USD", mismatch.Want.Amount())
	}
}

// A sell priced within the least precise of the two values passes the check.
func TestAverageCosts_CheckTolerance(t *testing.T) {
	txns := Transactions{
		tx("2022-01-01", 10.05, 10),
		tx("2022-01-02", 10.1, -5), // |10.1 - 10.05| <= 0.1
	}

	if _, err := AverageCosts(txns, true, date.Date{}); err != nil {
		t.Errorf("checked series failed within tolerance: %v", err)
	}
}

func TestAverageCosts_MultipleCurrencies(t *testing.T) {
	txns := Transactions{
		tx("2022-01-01", 10, 5),
		eur("2022-01-02", 20, 2),
	}

	_, err := AverageCosts(txns, false, date.Date{})
	var multi *MultipleBaseCurrenciesError
	if !errors.As(err, &multi) {
		t.Fatalf("got %v, want a MultipleBaseCurrenciesError", err)
	}
}
