package hlots

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dbeal/hlots/date"
)

func TestLots_NoSells(t *testing.T) {
	txns := Transactions{
		tx("2022-01-01", 10, 10),
		tx("2022-01-02", 20, 2),
		tx("2022-01-03", 30, 5),
	}

	lots, err := Lots(txns, false)
	if err != nil {
		t.Fatalf("Lots() returned unexpected error: %v", err)
	}
	if !reflect.DeepEqual(lots, txns) {
		t.Errorf("Lots() = %v, want the buys unchanged %v", lots, txns)
	}
}

func TestLots_SingleSell(t *testing.T) {
	txns := Transactions{
		tx("2022-01-01", 10, 5),
		tx("2022-01-02", 20, 2),
		tx("2022-01-03", 30, 7),
		tx("2022-01-04", 15, -3),
	}

	lots, err := Lots(txns, false)
	if err != nil {
		t.Fatalf("Lots() returned unexpected error: %v", err)
	}
	if got, want := quantities(lots), []string{"2", "2", "7"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Lots() quantities = %v, want %v", got, want)
	}
	// the oldest lot was partially depleted, the others untouched
	if !lots[0].Price.Equal(M(10, "USD")) {
		t.Errorf("lot 0 price = %v, want 10 USD", lots[0].Price)
	}
}

// interleaved buys and sells, quantity never reaching zero.
func TestLots_Interleaved(t *testing.T) {
	txns := Transactions{
		tx("2022-01-01", 10, 5),
		tx("2022-01-02", 20, 2),
		tx("2022-01-03", 30, 7),
		tx("2022-01-04", 15, -3),
		tx("2022-01-05", 25, 2),
		tx("2022-01-06", 35, 5),
		tx("2022-01-07", 10, -5),
		tx("2022-01-08", 20, 2),
		tx("2022-01-09", 30, 4),
		tx("2022-01-10", 15, -4),
		tx("2022-01-11", 25, 3),
		tx("2022-01-12", 35, 4),
		tx("2022-01-13", 10, -5),
		tx("2022-01-14", 20, 3),
		tx("2022-01-15", 30, 2),
	}

	lots, err := Lots(txns, false)
	if err != nil {
		t.Fatalf("Lots() returned unexpected error: %v", err)
	}
	want := []string{"0", "0", "0", "0", "4", "2", "4", "3", "4", "3", "2"}
	if got := quantities(lots); !reflect.DeepEqual(got, want) {
		t.Errorf("Lots() quantities = %v, want %v", got, want)
	}
}

func TestLots_DepletionInvariant(t *testing.T) {
	txns := Transactions{
		tx("2022-01-01", 10, 5),
		tx("2022-01-02", 20, 2),
		tx("2022-01-03", 30, 7),
		tx("2022-01-04", 15, -3),
		tx("2022-01-06", 35, -4),
	}

	lots, err := Lots(txns, false)
	if err != nil {
		t.Fatalf("Lots() returned unexpected error: %v", err)
	}

	buys, sells := txns.partition()
	removed := buys.Quantity().Sub(lots.Quantity())
	if sold := sells.Quantity().Abs(); !removed.Equal(sold) {
		t.Errorf("depleted quantity = %v, want the total sold %v", removed, sold)
	}
	for i, lot := range lots {
		if lot.Quantity.IsNegative() {
			t.Errorf("lot %d has negative quantity %v", i, lot.Quantity)
		}
	}
}

func TestLots_Idempotent(t *testing.T) {
	txns := Transactions{
		tx("2022-01-01", 10, 5),
		tx("2022-01-02", 20, 2),
		tx("2022-01-04", 15, -3),
	}

	once, err := Lots(txns, false)
	if err != nil {
		t.Fatalf("Lots() returned unexpected error: %v", err)
	}
	twice, err := Lots(once, false)
	if err != nil {
		t.Fatalf("Lots(Lots()) returned unexpected error: %v", err)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Lots() is not stable: %v then %v", once, twice)
	}
}

func TestLots_SellAllBoundary(t *testing.T) {
	txns := Transactions{
		tx("2022-01-01", 10, 5),
		tx("2022-01-02", 20, 2),
	}

	all := append(Transactions{}, txns...)
	all = append(all, tx("2022-01-03", 15, -7))
	lots, err := Lots(all, false)
	if err != nil {
		t.Fatalf("selling exactly all held quantity failed: %v", err)
	}
	if !lots.Quantity().IsZero() {
		t.Errorf("remaining quantity = %v, want 0", lots.Quantity())
	}

	over := append(Transactions{}, txns...)
	over = append(over, tx("2022-01-03", 15, -8))
	_, err = Lots(over, false)
	var shortSale *ShortSaleError
	if !errors.As(err, &shortSale) {
		t.Fatalf("selling one more than held: got %v, want a ShortSaleError", err)
	}
	if !shortSale.Available.Equal(Q(7)) || !shortSale.Requested.Equal(Q(8)) {
		t.Errorf("ShortSaleError = %v, want available 7, requested 8", shortSale)
	}
}

// A sell never matches buys dated after it, even when aggregate holdings
// would cover it.
func TestLots_PointInTimeShortSale(t *testing.T) {
	txns := Transactions{
		tx("2022-01-01", 10, 1),
		tx("2022-01-02", 15, -2),
		tx("2022-01-03", 12, 5),
	}

	_, err := Lots(txns, false)
	var shortSale *ShortSaleError
	if !errors.As(err, &shortSale) {
		t.Fatalf("got %v, want a ShortSaleError against point-in-time inventory", err)
	}
}

func TestLots_MultipleCurrencies(t *testing.T) {
	txns := Transactions{
		tx("2022-01-01", 10, 5),
		eur("2022-01-02", 20, 2),
	}

	_, err := Lots(txns, false)
	var multi *MultipleBaseCurrenciesError
	if !errors.As(err, &multi) {
		t.Fatalf("got %v, want a MultipleBaseCurrenciesError", err)
	}
	if got, want := multi.Currencies, []string{"EUR", "USD"}; !reflect.DeepEqual(got, want) {
		t.Errorf("currencies = %v, want %v", got, want)
	}
}

func TestLots_CheckSellPrice(t *testing.T) {
	txns := Transactions{
		tx("2022-01-01", 10, 5),
		tx("2022-01-02", 15, -3), // FIFO would dispose of the lot bought at 10
	}

	if _, err := Lots(txns, false); err != nil {
		t.Fatalf("unchecked matching failed: %v", err)
	}

	_, err := Lots(txns, true)
	var mismatch *CostMethodError
	if !errors.As(err, &mismatch) {
		t.Fatalf("got %v, want a CostMethodError", err)
	}
	if !mismatch.Want.Equal(M(10, "USD")) {
		t.Errorf("expected cost = %v, want 10 USD", mismatch.Want)
	}
}

// A checked sell spanning lots at different prices fails on the lot whose
// price it does not match, even when it matches the oldest one.
func TestLots_CheckSellPriceAcrossLots(t *testing.T) {
	txns := Transactions{
		tx("2022-01-01", 10, 5),
		tx("2022-01-02", 20, 2),
		tx("2022-01-03", 10, -7), // priced at the first lot, but also consumes the 20-priced one
	}

	if _, err := Lots(txns, false); err != nil {
		t.Fatalf("unchecked matching failed: %v", err)
	}

	_, err := Lots(txns, true)
	var mismatch *CostMethodError
	if !errors.As(err, &mismatch) {
		t.Fatalf("got %v, want a CostMethodError", err)
	}
	if !mismatch.Want.Equal(M(20, "USD")) {
		t.Errorf("expected cost = %v, want 20 USD for the second lot", mismatch.Want)
	}
}

func TestLots_DoesNotAliasInput(t *testing.T) {
	txns := Transactions{
		tx("2022-01-01", 10, 5),
		tx("2022-01-02", 15, -3),
	}

	if _, err := Lots(txns, false); err != nil {
		t.Fatalf("Lots() returned unexpected error: %v", err)
	}
	if !txns[0].Quantity.Equal(Q(5)) {
		t.Errorf("input transaction was mutated: quantity = %v, want 5", txns[0].Quantity)
	}
}

func TestSellLots(t *testing.T) {
	txns := Transactions{
		tx("2022-01-01", 10, 5),
		tx("2022-01-02", 20, 2),
		tx("2022-01-03", 30, 7),
	}

	lots, err := SellLots(txns, date.MustParse("2022-01-04"), Q(3), false)
	if err != nil {
		t.Fatalf("SellLots() returned unexpected error: %v", err)
	}
	if len(lots) != 1 {
		t.Fatalf("SellLots() matched %d lots, want 1", len(lots))
	}
	if !lots[0].Quantity.Equal(Q(3)) || !lots[0].Price.Equal(M(10, "USD")) {
		t.Errorf("matched lot = %v, want a 3-unit slice of the 10 USD lot", lots[0])
	}
}

func TestSellLots_SkipsDepletedAndSplitsPartial(t *testing.T) {
	txns := Transactions{
		tx("2022-01-01", 10, 5),
		tx("2022-01-02", 20, 2),
		tx("2022-01-03", 30, 7),
		tx("2022-01-04", 15, -3),
		tx("2022-01-05", 25, 2),
		tx("2022-01-06", 35, 5),
		tx("2022-01-07", 10, -5),
		tx("2022-01-08", 20, 2),
		tx("2022-01-09", 30, 4),
		tx("2022-01-10", 15, -4),
		tx("2022-01-11", 25, 3),
		tx("2022-01-12", 35, 4),
		tx("2022-01-13", 10, -5),
		tx("2022-01-14", 20, 3),
		tx("2022-01-15", 30, 2),
	}

	lots, err := SellLots(txns, date.MustParse("2022-01-16"), Q(11), false)
	if err != nil {
		t.Fatalf("SellLots() returned unexpected error: %v", err)
	}
	want := Transactions{
		tx("2022-01-06", 35, 4),
		tx("2022-01-08", 20, 2),
		tx("2022-01-09", 30, 4),
		tx("2022-01-11", 25, 1),
	}
	if !reflect.DeepEqual(lots, want) {
		t.Errorf("SellLots() = %v, want %v", lots, want)
	}
}

func TestSellLots_ExceedsHoldings(t *testing.T) {
	txns := Transactions{
		tx("2022-01-01", 10, 5),
	}

	_, err := SellLots(txns, date.MustParse("2022-01-02"), Q(6), false)
	var shortSale *ShortSaleError
	if !errors.As(err, &shortSale) {
		t.Fatalf("got %v, want a ShortSaleError", err)
	}
}
