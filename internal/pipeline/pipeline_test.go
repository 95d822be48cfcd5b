package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banketl/banketl/internal/banks"
	"github.com/banketl/banketl/internal/config"
	"github.com/banketl/banketl/internal/extract"
	"github.com/banketl/banketl/internal/progress"
	"github.com/banketl/banketl/internal/store"
	"github.com/banketl/banketl/internal/transform"
)

var testTime = time.Date(2023, 9, 8, 9, 16, 35, 0, time.Local)

func fixedClock() time.Time { return testTime }

const alphaBetaPage = `<html><body><table><tbody>
<tr><th>Rank</th><th>Bank name</th><th>Market cap (US$ billion)</th></tr>
<tr><td>1</td><td><a href="/wiki/Flag"><img/></a> <a href="/wiki/Alpha">Alpha</a></td><td>500
</td></tr>
<tr><td>2</td><td><a href="/wiki/Flag"><img/></a> <a href="/wiki/Beta">Beta</a></td><td>300
</td></tr>
</tbody></table></body></html>`

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// testConfig points every path of a default config into dir.
func testConfig(t *testing.T, dir, url string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Source.URL = url
	cfg.Paths.ExchangeRates = filepath.Join(dir, "exchange_rate.csv")
	cfg.Paths.OutputCSV = filepath.Join(dir, "Largest_banks_data.csv")
	cfg.Paths.LogFile = filepath.Join(dir, "code_log.txt")
	cfg.Database.DSN = filepath.Join(dir, "Banks.db")
	return cfg
}

func writeRates(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("Currency,Rate\n"+body), 0o644))
}

func messages(t *testing.T, path string) []string {
	t.Helper()
	entries, err := progress.Read(path)
	require.NoError(t, err)
	msgs := make([]string, len(entries))
	for i, e := range entries {
		msgs[i] = e.Message
	}
	return msgs
}

var allMessages = []string{
	MsgStart, MsgExtracted, MsgTransformed, MsgSavedCSV, MsgConnected, MsgLoaded, MsgComplete,
}

func TestRun_AlphaBeta(t *testing.T) {
	dir := t.TempDir()
	srv := serve(t, http.StatusOK, alphaBetaPage)
	cfg := testConfig(t, dir, srv.URL)
	writeRates(t, cfg.Paths.ExchangeRates, "GBP,0.79\nINR,83\nEUR,0.91\n")

	var out bytes.Buffer
	p, err := New(cfg, WithOutput(&out), WithClock(fixedClock))
	require.NoError(t, err)

	table, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, []string{"Alpha", "Beta"}, table.Names())
	assert.True(t, decimal.NewFromInt(395).Equal(table[0].MarketCapGBP))
	assert.True(t, decimal.NewFromInt(41500).Equal(table[0].MarketCapINR))
	assert.True(t, decimal.NewFromInt(455).Equal(table[0].MarketCapEUR))
	assert.True(t, decimal.NewFromInt(237).Equal(table[1].MarketCapGBP))

	csv, err := os.ReadFile(cfg.Paths.OutputCSV)
	require.NoError(t, err)
	assert.Equal(t, banks.Header+"\n"+
		"Alpha,500,395.00,41500.00,455.00\n"+
		"Beta,300,237.00,24900.00,273.00\n", string(csv))

	assert.Equal(t, allMessages, messages(t, cfg.Paths.LogFile))
	logData, err := os.ReadFile(cfg.Paths.LogFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(logData), "2023-Sep-08-09:16:35 : "+MsgStart+"\n"))

	printed := out.String()
	for _, q := range cfg.Queries {
		assert.Contains(t, printed, q)
	}
	assert.Contains(t, printed, "316")

	db, err := store.Open(context.Background(), cfg.Database.Driver, cfg.Database.DSN, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()
	res, err := db.Query(context.Background(), "SELECT Name from Largest_banks LIMIT 5")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Alpha"}, {"Beta"}}, res.Rows)
}

func TestRun_Fixture(t *testing.T) {
	page, err := os.ReadFile("../../testdata/largest_banks.html")
	require.NoError(t, err)
	rates, err := os.ReadFile("../../testdata/exchange_rate.csv")
	require.NoError(t, err)

	dir := t.TempDir()
	srv := serve(t, http.StatusOK, string(page))
	cfg := testConfig(t, dir, srv.URL)
	require.NoError(t, os.WriteFile(cfg.Paths.ExchangeRates, rates, 0o644))

	p, err := New(cfg, WithOutput(&bytes.Buffer{}), WithClock(fixedClock))
	require.NoError(t, err)

	table, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, table, 10)
	assert.Equal(t, "JPMorgan Chase", table[0].Name)

	saved, err := banks.Load(cfg.Paths.OutputCSV)
	require.NoError(t, err)
	assert.Equal(t, table.Names(), saved.Names())
}

func TestRun_RerunReplacesTable(t *testing.T) {
	dir := t.TempDir()
	srv := serve(t, http.StatusOK, alphaBetaPage)
	cfg := testConfig(t, dir, srv.URL)
	writeRates(t, cfg.Paths.ExchangeRates, "GBP,0.79\nINR,83\nEUR,0.91\n")

	for i := 0; i < 2; i++ {
		p, err := New(cfg, WithOutput(&bytes.Buffer{}), WithClock(fixedClock))
		require.NoError(t, err)
		_, err = p.Run(context.Background())
		require.NoError(t, err)
	}

	assert.Len(t, messages(t, cfg.Paths.LogFile), 2*len(allMessages))

	db, err := store.Open(context.Background(), cfg.Database.Driver, cfg.Database.DSN, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()
	n, err := db.Count(context.Background(), cfg.Database.Table)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRun_MissingRate(t *testing.T) {
	dir := t.TempDir()
	srv := serve(t, http.StatusOK, alphaBetaPage)
	cfg := testConfig(t, dir, srv.URL)
	writeRates(t, cfg.Paths.ExchangeRates, "GBP,0.79\nEUR,0.91\n")

	p, err := New(cfg, WithOutput(&bytes.Buffer{}), WithClock(fixedClock))
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, transform.ErrMissingRate)
	assert.Contains(t, err.Error(), "INR")

	_, statErr := os.Stat(cfg.Paths.OutputCSV)
	assert.ErrorIs(t, statErr, os.ErrNotExist, "no CSV is written when transform fails")
	assert.Equal(t, []string{MsgStart, MsgExtracted}, messages(t, cfg.Paths.LogFile))
}

func TestRun_FetchFailure(t *testing.T) {
	dir := t.TempDir()
	srv := serve(t, http.StatusServiceUnavailable, "down")
	cfg := testConfig(t, dir, srv.URL)
	writeRates(t, cfg.Paths.ExchangeRates, "GBP,0.79\nINR,83\nEUR,0.91\n")

	p, err := New(cfg, WithOutput(&bytes.Buffer{}), WithClock(fixedClock))
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, extract.ErrFetch)
	assert.Equal(t, []string{MsgStart}, messages(t, cfg.Paths.LogFile))
}

func TestRun_QueryFailure(t *testing.T) {
	dir := t.TempDir()
	srv := serve(t, http.StatusOK, alphaBetaPage)
	cfg := testConfig(t, dir, srv.URL)
	cfg.Queries = []string{"SELECT Name FROM Largest_banks", "SELECT Missing FROM Largest_banks"}
	writeRates(t, cfg.Paths.ExchangeRates, "GBP,0.79\nINR,83\nEUR,0.91\n")

	var out bytes.Buffer
	p, err := New(cfg, WithOutput(&out), WithClock(fixedClock))
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrQuery)
	assert.Contains(t, out.String(), "SELECT Name FROM Largest_banks")

	msgs := messages(t, cfg.Paths.LogFile)
	assert.Equal(t, MsgLoaded, msgs[len(msgs)-1])
}

func TestRun_Canceled(t *testing.T) {
	dir := t.TempDir()
	srv := serve(t, http.StatusOK, alphaBetaPage)
	cfg := testConfig(t, dir, srv.URL)

	p, err := New(cfg, WithOutput(&bytes.Buffer{}), WithClock(fixedClock))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_Errors(t *testing.T) {
	cfg := config.Default()
	cfg.Source.Locator = config.LocatorConfig{Name: "xpath"}
	_, err := New(cfg)
	assert.ErrorContains(t, err, "table locator")

	cfg = config.Default()
	cfg.Database.Table = ""
	_, err = New(cfg)
	assert.ErrorContains(t, err, "database.table is required")
}
