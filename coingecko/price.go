package coingecko

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/reserve"
	"github.com/shopspring/decimal"
)

// PriceDigits is the number of decimals kept in historical prices.
const PriceDigits = 2

func currencyCode(vs string) string { return strings.ToUpper(vs) }

// CurrentPrice returns the latest price of the asset.
func (c *Client) CurrentPrice(ctx context.Context) (reserve.Money, error) {
	q := url.Values{}
	q.Set("ids", c.asset)
	q.Set("vs_currencies", c.vs)
	addr := fmt.Sprintf("%s/simple/price?%s", c.baseURL, q.Encode())

	var jobj any
	if err := c.get(ctx, c.httpClient, addr, &jobj); err != nil {
		return reserve.Money{}, fmt.Errorf("cannot fetch %s price: %w", c.asset, err)
	}

	path := fmt.Sprintf("$[%q][%q]", c.asset, c.vs)
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return reserve.Money{}, fmt.Errorf("cannot find %s price at %s: %w", c.asset, path, err)
	}
	// jsonpath may answer a list of one value.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok || val <= 0 {
		return reserve.Money{}, fmt.Errorf("invalid %s price %v", c.asset, jval)
	}
	return reserve.M(val, c.Currency()), nil
}

type marketChart struct {
	Prices [][]any `json:"prices"`
}

// HistoricalSeries returns the price samples between from and to in a single
// request. Samples with a missing or non-numeric price are dropped and prices
// are rounded to PriceDigits decimals.
func (c *Client) HistoricalSeries(ctx context.Context, from, to time.Time) (reserve.Series, error) {
	q := url.Values{}
	q.Set("vs_currency", c.vs)
	q.Set("from", fmt.Sprint(from.Unix()))
	q.Set("to", fmt.Sprint(to.Unix()))
	addr := fmt.Sprintf("%s/coins/%s/market_chart/range?%s", c.baseURL, url.PathEscape(c.asset), q.Encode())

	var chart marketChart
	if err := c.get(ctx, c.history, addr, &chart); err != nil {
		return nil, fmt.Errorf("cannot fetch %s history: %w", c.asset, err)
	}

	cur := c.Currency()
	series := make(reserve.Series, 0, len(chart.Prices))
	dropped := 0
	for _, sample := range chart.Prices {
		point, ok := parseSample(sample, cur)
		if !ok {
			dropped++
			continue
		}
		series = append(series, point)
	}
	if dropped > 0 {
		c.logger.Debug().Int("dropped", dropped).Msg("non-numeric price samples dropped")
	}
	series.Sort()
	return series, nil
}

// parseSample parses a [timestamp ms, price] pair.
func parseSample(sample []any, cur string) (reserve.PricePoint, bool) {
	if len(sample) < 2 {
		return reserve.PricePoint{}, false
	}
	ms, ok := sample[0].(float64)
	if !ok {
		return reserve.PricePoint{}, false
	}
	price, ok := sample[1].(float64)
	if !ok {
		return reserve.PricePoint{}, false
	}
	value := decimal.NewFromFloat(price).Round(PriceDigits)
	return reserve.PricePoint{
		Time:  time.UnixMilli(int64(ms)).UTC(),
		Price: reserve.M(value, cur),
	}, true
}
