package reserve

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func USD(v float64) Money { return M(v, "USD") }

var t0 = time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)

func TestAggregate_TwoBuys(t *testing.T) {
	txs := []Transaction{
		NewBuy(t0, Q(0.5), USD(40000)),
		NewBuy(t0.Add(time.Hour), Q(0.5), USD(60000)),
	}
	s := Aggregate(txs, USD(70000))

	checks := []struct {
		name      string
		got, want Money
	}{
		{"AverageCost", s.AverageCost, USD(50000)},
		{"TotalInvested", s.TotalInvested, USD(50000)},
		{"CurrentValue", s.CurrentValue, USD(70000)},
		{"ProfitLoss", s.ProfitLoss, USD(20000)},
	}
	for _, c := range checks {
		if !c.got.Equal(c.want) {
			t.Errorf("%s = %v; want %v", c.name, c.got, c.want)
		}
	}
	if !s.TotalHoldings.Equal(Q(1.0)) {
		t.Errorf("TotalHoldings = %v; want 1", s.TotalHoldings)
	}
	if got, want := s.Return(), Percent(40); !got.Equal(want) {
		t.Errorf("Return() = %v; want %v", got, want)
	}
}

func TestAggregate_BuyThenSell(t *testing.T) {
	txs := []Transaction{
		NewBuy(t0, Q(1.0), USD(50000)),
		NewSell(t0.Add(time.Hour), Q(0.4), USD(55000)),
	}
	s := Aggregate(txs, USD(55000))

	if !s.TotalHoldings.Equal(Q(0.6)) {
		t.Errorf("TotalHoldings = %v; want 0.6", s.TotalHoldings)
	}
	if !s.TotalInvested.Equal(USD(28000)) {
		t.Errorf("TotalInvested = %v; want %v", s.TotalInvested, USD(28000))
	}
	// sells do not move the cost basis.
	if !s.AverageCost.Equal(USD(50000)) {
		t.Errorf("AverageCost = %v; want %v", s.AverageCost, USD(50000))
	}
	if s.Buys != 1 || s.Sells != 1 {
		t.Errorf("Buys, Sells = %d, %d; want 1, 1", s.Buys, s.Sells)
	}
}

func TestAggregate_AverageCostWithoutBuys(t *testing.T) {
	for name, txs := range map[string][]Transaction{
		"empty":     nil,
		"sell only": {NewSell(t0, Q(0.1), USD(30000))},
	} {
		s := Aggregate(txs, USD(60000))
		if !s.AverageCost.IsZero() {
			t.Errorf("%s: AverageCost = %v; want 0", name, s.AverageCost)
		}
	}
}

func TestAggregate_ZeroAndNegativeAmounts(t *testing.T) {
	// Amounts are not validated by the aggregator.
	txs := []Transaction{
		NewBuy(t0, Q(0), USD(40000)),
		NewBuy(t0, Q(-1), USD(40000)),
	}
	s := Aggregate(txs, USD(50000))
	if !s.TotalHoldings.Equal(Q(-1)) {
		t.Errorf("TotalHoldings = %v; want -1", s.TotalHoldings)
	}
	if !s.TotalInvested.Equal(USD(-40000)) {
		t.Errorf("TotalInvested = %v; want %v", s.TotalInvested, USD(-40000))
	}
}

// TestAggregate_Properties checks the invariants on random logs.
func TestAggregate_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		n := r.Intn(20)
		txs := make([]Transaction, n)
		holdings := Q(0)
		boughtQty, boughtCost := Q(0), USD(0)
		for j := range txs {
			amount := Q(decimal.New(int64(r.Intn(100000)+1), -5))
			price := USD(float64(r.Intn(100000) + 1))
			if r.Intn(3) == 0 {
				txs[j] = NewSell(t0, amount, price)
				holdings = holdings.Sub(amount)
			} else {
				txs[j] = NewBuy(t0, amount, price)
				holdings = holdings.Add(amount)
				boughtQty = boughtQty.Add(amount)
				boughtCost = boughtCost.Add(price.Mul(amount))
			}
		}
		current := USD(float64(r.Intn(100000)))
		s := Aggregate(txs, current)

		if !s.TotalHoldings.Equal(holdings) {
			t.Fatalf("run %d: TotalHoldings = %v; want %v", i, s.TotalHoldings, holdings)
		}
		if want := current.Mul(s.TotalHoldings).Sub(s.TotalInvested); !s.ProfitLoss.Equal(want) {
			t.Fatalf("run %d: ProfitLoss = %v; want %v", i, s.ProfitLoss, want)
		}
		wantAvg := USD(0)
		if !boughtQty.IsZero() {
			wantAvg = boughtCost.Div(boughtQty)
		}
		if !s.AverageCost.Equal(wantAvg) {
			t.Fatalf("run %d: AverageCost = %v; want %v", i, s.AverageCost, wantAvg)
		}

		// aggregation is order independent.
		shuffled := NewLedger(txs...).Transactions()
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		s2 := Aggregate(shuffled, current)
		if !s2.TotalHoldings.Equal(s.TotalHoldings) || !s2.TotalInvested.Equal(s.TotalInvested) || !s2.AverageCost.Equal(s.AverageCost) {
			t.Fatalf("run %d: Aggregate depends on order: %+v != %+v", i, s2, s)
		}
	}
}
