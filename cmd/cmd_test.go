package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/reserve/date"
	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setup points the commands to a temporary storage and a fake CoinGecko API.
// It returns the storage folder.
func setup(t *testing.T, priceUp bool) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/simple/price":
			if !priceUp {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			fmt.Fprint(w, `{"bitcoin":{"usd":50000}}`)
		case "/coins/bitcoin/market_chart/range":
			fmt.Fprint(w, `{"prices":[
				[1704700800000, 40000.001],
				[1704787200000, 41000],
				[1704873600000, 44000]
			]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	cfg := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf(`log_level = "disabled"

[storage]
backend = "file"
path = %q

[feed]
base_url = %q
rate_limit = 0
cache_dir = "-"
`, data, srv.URL)
	require.NoError(t, os.WriteFile(cfg, []byte(content), 0o644))

	oldConfig, oldPlain := *configFile, *plain
	*configFile, *plain = cfg, true
	t.Cleanup(func() { *configFile, *plain = oldConfig, oldPlain })
	return data
}

// run executes the command with args and returns its status, stdout and stderr.
func run(t *testing.T, c subcommands.Command, args ...string) (subcommands.ExitStatus, string, string) {
	t.Helper()
	var out, errs bytes.Buffer
	oldOut, oldErr := stdout, stderr
	stdout, stderr = &out, &errs
	defer func() { stdout, stderr = oldOut, oldErr }()

	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	f.SetOutput(&errs)
	c.SetFlags(f)
	require.NoError(t, f.Parse(args))
	status := c.Execute(context.Background(), f)
	return status, out.String(), errs.String()
}

func TestBuyAndSell(t *testing.T) {
	setup(t, true)

	status, out, errs := run(t, &buyCmd{}, "-a", "0.5", "-p", "40000", "-d", "2024-01-08")
	require.Equal(t, subcommands.ExitSuccess, status, errs)
	assert.Equal(t, "Buy 0.50000000 BTC at $40,000.00 (total $20,000.00)\n", out)

	status, out, errs = run(t, &buyCmd{}, "-a", "0.25")
	require.Equal(t, subcommands.ExitSuccess, status, errs)
	assert.Equal(t, "Buy 0.25000000 BTC at $50,000.00 (total $12,500.00)\n", out, "defaults to the current price")

	status, _, errs = run(t, &sellCmd{}, "-a", "0.25", "-p", "48000", "-d", "2024-01-12T10:00:00Z")
	require.Equal(t, subcommands.ExitSuccess, status, errs)

	status, out, _ = run(t, &txCmd{}, "-json")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, `{"type":"buy","amount":0.5,"price":40000,"date":"2024-01-08T00:00:00.000Z"}`)
	assert.Contains(t, out, `{"type":"sell","amount":0.25,"price":48000,"date":"2024-01-12T10:00:00.000Z"}`)

	status, out, _ = run(t, &txCmd{})
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "| Sell | 0.25000000 | $48,000.00 | $12,000.00 | 2024-01-12 |")
	assert.Contains(t, out, "Average Cost: $43,333.33")
}

func TestBuy_InvalidInput(t *testing.T) {
	setup(t, true)
	for _, args := range [][]string{
		{"-a", "abc"},
		{"-a", "-1"},
		{"-a", "0"},
		{"-a", "0.000000001"},
		{"-a", "1", "-p", "0"},
		{"-a", "1", "-p", "cheap"},
		{"-a", "1", "-d", "yesterday"},
	} {
		status, _, errs := run(t, &buyCmd{}, args...)
		assert.Equal(t, subcommands.ExitUsageError, status, "buy %v", args)
		assert.True(t, strings.HasPrefix(errs, "Error"), "buy %v: %q", args, errs)
	}

	status, out, _ := run(t, &txCmd{}, "-json")
	assert.Equal(t, subcommands.ExitSuccess, status)
	assert.Equal(t, "[]\n", out, "nothing recorded")
}

func TestBuy_PriceUnavailable(t *testing.T) {
	setup(t, false)

	status, _, errs := run(t, &buyCmd{}, "-a", "1")
	assert.Equal(t, subcommands.ExitFailure, status)
	assert.Contains(t, errs, "set it with -p")

	status, _, errs = run(t, &buyCmd{}, "-a", "1", "-p", "30000")
	assert.Equal(t, subcommands.ExitSuccess, status, errs)
}

func TestSummary(t *testing.T) {
	setup(t, true)
	run(t, &buyCmd{}, "-a", "0.5", "-p", "40000")

	status, out, _ := run(t, &summaryCmd{})
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "| Total BTC | 0.50000000 |")
	assert.Contains(t, out, "| Current Value | $25,000.00 |")
	assert.Contains(t, out, "| Profit/Loss | +$5,000.00 |")
	assert.Contains(t, out, "| Return | 25.00% |")

	status, out, _ = run(t, &summaryCmd{}, "-json")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, `"profitLoss":5000`)
}

func TestSummary_PriceUnavailable(t *testing.T) {
	setup(t, false)

	status, out, errs := run(t, &summaryCmd{})
	assert.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, errs, "Warning")
	assert.Contains(t, out, "| Total BTC | 0.00000000 |")
}

func TestClear(t *testing.T) {
	setup(t, true)
	run(t, &buyCmd{}, "-a", "1", "-p", "1")

	status, _, _ := run(t, &clearCmd{})
	assert.Equal(t, subcommands.ExitUsageError, status, "requires -f")

	status, _, _ = run(t, &clearCmd{}, "-f")
	require.Equal(t, subcommands.ExitSuccess, status)

	_, out, _ := run(t, &txCmd{}, "-json")
	assert.Equal(t, "[]\n", out)
}

func TestCorruptStorage(t *testing.T) {
	data := setup(t, true)
	require.NoError(t, os.MkdirAll(data, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(data, "bitcoinTransactions.json"), []byte("garbage"), 0o644))

	status, out, errs := run(t, &txCmd{}, "-json")
	assert.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, errs, "corrupt")
	assert.Equal(t, "[]\n", out)

	status, out, _ = run(t, &saveCmd{})
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "0 transactions saved")

	backup, err := os.ReadFile(filepath.Join(data, "bitcoinTransactions.corrupt.json"))
	require.NoError(t, err)
	assert.Equal(t, "garbage", string(backup))

	_, _, errs = run(t, &txCmd{})
	assert.Empty(t, errs)
}

func TestChart(t *testing.T) {
	setup(t, true)
	run(t, &buyCmd{}, "-a", "0.1", "-p", "41000", "-d", "2024-01-09")

	status, out, errs := run(t, &chartCmd{})
	require.Equal(t, subcommands.ExitSuccess, status, errs)
	assert.Contains(t, out, "| 2024-01-08 | $40,000.00 |  |")
	assert.Contains(t, out, "| 2024-01-09 | $41,000.00 | ▲ |")

	status, out, _ = run(t, &chartCmd{}, "-p", "weekly")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "## Weekly Price")
	assert.Contains(t, out, "| 2024-01-07 | $44,000.00 |  |")

	png := filepath.Join(t.TempDir(), "chart.png")
	status, _, errs = run(t, &chartCmd{}, "-o", png)
	require.Equal(t, subcommands.ExitSuccess, status, errs)
	content, err := os.ReadFile(png)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("\x89PNG")))

	status, _, _ = run(t, &chartCmd{}, "-p", "monthly")
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestLiveView_SeesOtherCommands(t *testing.T) {
	for _, backend := range []string{"bolt", "file"} {
		t.Run(backend, func(t *testing.T) {
			data := setup(t, true)
			t.Setenv("RSV_STORAGE_BACKEND", backend)
			if backend == "bolt" {
				t.Setenv("RSV_STORAGE_PATH", filepath.Join(data, "reserve.db"))
			}
			ctx := context.Background()

			served, err := newApp(ctx)
			require.NoError(t, err)
			defer served.Close()
			view := liveView{served}
			assert.Empty(t, view.Report(ctx, date.Daily).Transactions)

			status, _, errs := run(t, &buyCmd{}, "-a", "0.5", "-p", "40000")
			require.Equal(t, subcommands.ExitSuccess, status, "buy while the view is open: %s", errs)

			r := view.Report(ctx, date.Daily)
			require.Len(t, r.Transactions, 1)
			assert.Equal(t, "0.50000000", r.Snapshot.TotalHoldings.StringFixed())
		})
	}
}
