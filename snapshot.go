package reserve

// Snapshot is the set of aggregate figures derived from the transaction log
// and the current price. It is never persisted.
type Snapshot struct {
	TotalHoldings Quantity // buys minus sells.
	TotalInvested Money    // cost of buys minus proceeds of sells.
	CurrentValue  Money    // TotalHoldings at the current price.
	ProfitLoss    Money    // CurrentValue minus TotalInvested.
	AverageCost   Money    // quantity weighted mean price over buys, 0 without buys.
	CurrentPrice  Money
	Buys, Sells   int
}

// Aggregate computes the Snapshot of 'txs' at 'currentPrice'.
//
// It is a pure function of its inputs. Amounts are not validated: a zero
// amount contributes nothing and a negative one inverts its contribution.
func Aggregate(txs []Transaction, currentPrice Money) Snapshot {
	cur := currentPrice.Currency()
	s := Snapshot{
		TotalInvested: M(0, cur),
		CurrentPrice:  currentPrice,
	}
	var bought Quantity
	boughtCost := M(0, cur)

	for _, tx := range txs {
		amount, value := tx.signed()
		s.TotalHoldings = s.TotalHoldings.Add(amount)
		s.TotalInvested = s.TotalInvested.Add(value)
		switch tx.Kind {
		case Buy:
			s.Buys++
			bought = bought.Add(tx.Amount)
			boughtCost = boughtCost.Add(tx.Total())
		case Sell:
			s.Sells++
		}
	}

	s.CurrentValue = currentPrice.Mul(s.TotalHoldings)
	s.ProfitLoss = s.CurrentValue.Sub(s.TotalInvested)
	s.AverageCost = M(0, cur)
	if !bought.IsZero() {
		s.AverageCost = boughtCost.Div(bought)
	}
	return s
}

// Return is the profit or loss relative to the invested capital, 0 when
// nothing is invested.
func (s Snapshot) Return() Percent {
	if s.TotalInvested.IsZero() {
		return 0
	}
	r := s.ProfitLoss.value.DivRound(s.TotalInvested.value, 8).Shift(2)
	return Percent(r.InexactFloat64())
}

// MarshalJSON implements the json.Marshaler interface for Snapshot.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("totalHoldings", s.TotalHoldings)
	w.Append("totalInvested", s.TotalInvested)
	w.Append("currentValue", s.CurrentValue)
	w.Append("profitLoss", s.ProfitLoss)
	w.Append("averageCost", s.AverageCost)
	w.Append("currentPrice", s.CurrentPrice)
	w.Optional("currency", s.CurrentPrice.Currency())
	w.Append("return", float64(s.Return()))
	w.Append("buys", s.Buys)
	w.Append("sells", s.Sells)
	return w.MarshalJSON()
}
