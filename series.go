package reserve

import (
	"sort"
	"time"

	"github.com/etnz/reserve/date"
)

// PricePoint is one sample of the historical price series.
type PricePoint struct {
	Time  time.Time
	Price Money
}

// Series is a chronologically ordered list of price samples.
type Series []PricePoint

// Sort orders the series chronologically, keeping the original order of equal instants.
func (s Series) Sort() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Time.Before(s[j].Time) })
}

// ChartPoint is one point of the bucketed series with the number of buy
// transactions recorded on that day.
type ChartPoint struct {
	Date  date.Date
	Price Money
	Buys  int
}

// Bucket reduces the series to one point per period: the last sample of each
// UTC day for date.Daily, the last sample of each week, keyed by the week's
// Sunday, for date.Weekly.
func Bucket(s Series, period date.Period) []ChartPoint {
	ordered := make(Series, len(s))
	copy(ordered, s)
	ordered.Sort()

	h := new(date.History[Money])
	for _, p := range ordered {
		h.Append(date.Of(p.Time).StartOf(period), p.Price)
	}

	points := make([]ChartPoint, 0, h.Len())
	for on, price := range h.Values() {
		points = append(points, ChartPoint{Date: on, Price: price})
	}
	return points
}

// Mark sets on each point the number of buy transactions whose UTC calendar
// day equals the point's date.
func Mark(points []ChartPoint, txs []Transaction) []ChartPoint {
	buys := make(map[date.Date]int)
	for tx := range NewLedger(txs...).Buys() {
		buys[date.Of(tx.Date)]++
	}
	for i := range points {
		points[i].Buys = buys[points[i].Date]
	}
	return points
}

// Chart buckets the series and marks buy transactions.
func Chart(s Series, txs []Transaction, period date.Period) []ChartPoint {
	return Mark(Bucket(s, period), txs)
}
