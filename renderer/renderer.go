// Package renderer presents the portfolio: markdown reports, a PNG price chart
// and an HTML page.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
	"time"

	"github.com/etnz/reserve"
	"github.com/etnz/reserve/date"
)

//go:embed templates/*.md
var templates embed.FS

// Report is everything displayed about the portfolio.
type Report struct {
	Symbol       string // asset ticker, e.g. BTC
	Snapshot     reserve.Snapshot
	Transactions []reserve.Transaction
	Points       []reserve.ChartPoint
	Period       date.Period
	Updated      time.Time // when the current price was fetched, zero if never
	ChartURL     string    // optional image link displayed above the chart table
	Loading      bool      // the price history is still being fetched
}

func (r *Report) symbol() string {
	if r.Symbol == "" {
		return "BTC"
	}
	return r.Symbol
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string { return t.UTC().Format("2006-01-02") },
	"clock": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.Local().Format("15:04:05")
	},
	"marker": func(n int) string { return strings.Repeat("▲", n) },
	"period": func(p date.Period) string {
		if p == date.Weekly {
			return "Weekly"
		}
		return "Daily"
	},
}

// Summary renders the summary statistics.
func Summary(r *Report) string {
	return renderTemplate("summary", "summary.md", nil, r.view())
}

// Transactions renders the transaction table followed by the average cost.
func Transactions(r *Report) string {
	return renderTemplate("transactions", "transactions.md", nil, r.view())
}

// ChartTable renders the bucketed price series with buy markers.
func ChartTable(r *Report) string {
	return renderTemplate("chart", "chart_table.md", nil, r.view())
}

// RenderReport renders the full report: summary, chart table and transactions.
func RenderReport(r *Report) string {
	partials := map[string]string{
		"summary":      "summary.md",
		"chart":        "chart_table.md",
		"transactions": "transactions.md",
	}
	return renderTemplate("report", "report.md", partials, r.view())
}

// view is the template data, a Report with its defaults resolved.
type view struct {
	*Report
	Asset string
}

func (r *Report) view() view { return view{Report: r, Asset: r.symbol()} }

// renderTemplate renders a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, "templates/"+file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
