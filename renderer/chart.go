package renderer

import (
	"fmt"
	"io"
	"time"

	"github.com/etnz/reserve"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Chart renders the price line of points as a PNG, with a marker on each point
// carrying at least one buy.
func Chart(w io.Writer, points []reserve.ChartPoint, title string) error {
	if len(points) < 2 {
		return fmt.Errorf("need at least 2 data points, got %d", len(points))
	}

	xValues := make([]time.Time, len(points))
	yValues := make([]float64, len(points))
	var buyX []time.Time
	var buyY []float64
	for i, p := range points {
		xValues[i] = p.Date.Time()
		yValues[i] = p.Price.InexactFloat64()
		if p.Buys > 0 {
			buyX = append(buyX, xValues[i])
			buyY = append(buyY, yValues[i])
		}
	}

	series := []chart.Series{
		chart.TimeSeries{
			Name: "Price",
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex("f7931a"),
				StrokeWidth: 2,
			},
			XValues: xValues,
			YValues: yValues,
		},
	}
	if len(buyX) > 0 {
		series = append(series, chart.TimeSeries{
			Name: "Buy",
			Style: chart.Style{
				StrokeColor: drawing.ColorTransparent,
				DotColor:    drawing.ColorFromHex("16a34a"),
				DotWidth:    5,
			},
			XValues: buyX,
			YValues: buyY,
		})
	}

	cur := points[0].Price.Currency()
	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 02")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0fk %s", f/1000, cur)
				}
				return ""
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("chart render failed: %w", err)
	}
	return nil
}
