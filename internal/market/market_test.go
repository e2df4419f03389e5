package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"borsa/internal/source"
	"borsa/internal/watchlist"
)

var frozen = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

// fakeSource serves canned raw records keyed by symbol.
type fakeSource struct {
	quotes    map[string]source.Raw
	errs      map[string]error
	all       []source.Raw
	allErr    error
	chart     *source.Chart
	chartErr  error
	chartOpts source.ChartOptions
	summary   map[string]source.Raw
	sumErr    error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchQuote(_ context.Context, sym string) (source.Raw, error) {
	if err, ok := f.errs[sym]; ok {
		return nil, err
	}
	raw, ok := f.quotes[sym]
	if !ok {
		return nil, source.ErrNotFound
	}
	return raw, nil
}

func (f *fakeSource) FetchChart(_ context.Context, _ string, opts source.ChartOptions) (*source.Chart, error) {
	f.chartOpts = opts
	if f.chartErr != nil {
		return nil, f.chartErr
	}
	return f.chart, nil
}

func (f *fakeSource) FetchSummary(_ context.Context, _ string) (map[string]source.Raw, error) {
	if f.sumErr != nil {
		return nil, f.sumErr
	}
	return f.summary, nil
}

func (f *fakeSource) FetchAll(_ context.Context) ([]source.Raw, error) {
	if f.allErr != nil {
		return nil, f.allErr
	}
	return f.all, nil
}

func newTestService(src source.Source, mode Mode) *Service {
	s := New(src, mode, nil, zerolog.Nop())
	s.now = func() time.Time { return frozen }
	return s
}

func rawQuote(sym string, price, pct, vol float64) source.Raw {
	return source.Raw{"code": sym, "name": sym, "price": price, "rate": pct, "volume": vol}
}

func TestGetStock_NotFoundPassesThrough(t *testing.T) {
	svc := newTestService(&fakeSource{}, ModeLive)
	_, err := svc.GetStock(context.Background(), "yoktr")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err.Error() != "YOKTR hissesi bulunamadı" {
		t.Fatalf("message: %q", err.Error())
	}
}

func TestGetStock_OtherErrorsWrapped(t *testing.T) {
	boom := errors.New("connection reset")
	svc := newTestService(&fakeSource{errs: map[string]error{"THYAO": boom}}, ModeLive)
	_, err := svc.GetStock(context.Background(), "THYAO")
	if errors.Is(err, ErrNotFound) {
		t.Fatal("transport error must not look like a miss")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("want wrapped cause, got %v", err)
	}
}

func TestGetIndex_DefaultsToXU100(t *testing.T) {
	src := &fakeSource{quotes: map[string]source.Raw{
		"XU100": {"code": "XU100", "price": 9234.56, "rate": 0.8},
	}}
	svc := newTestService(src, ModeLive)
	idx, err := svc.GetIndex(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Symbol != "XU100" || idx.Value != 9234.56 {
		t.Fatalf("got %+v", idx)
	}
}

func TestGetIndex_NotFoundMessage(t *testing.T) {
	svc := newTestService(&fakeSource{}, ModeLive)
	_, err := svc.GetIndex(context.Background(), "XFAKE")
	if !errors.Is(err, ErrNotFound) || err.Error() != "XFAKE endeksi bulunamadı" {
		t.Fatalf("got %v", err)
	}
}

func TestFanOut_DropsFailuresKeepsOrder(t *testing.T) {
	src := &fakeSource{
		quotes: map[string]source.Raw{
			"AAA": rawQuote("AAA", 1, 0, 0),
			"CCC": rawQuote("CCC", 3, 0, 0),
		},
		errs: map[string]error{"BBB": errors.New("timeout")},
	}
	svc := newTestService(src, ModeLive)
	got := svc.fanOutStocks(context.Background(), []string{"AAA", "BBB", "CCC"})
	if len(got) != 2 || got[0].Symbol != "AAA" || got[1].Symbol != "CCC" {
		t.Fatalf("got %+v", got)
	}
}

func TestGetAllIndexes_PartialSuccess(t *testing.T) {
	src := &fakeSource{quotes: map[string]source.Raw{
		"XU100": {"code": "XU100", "price": 9000.0},
		"XBANK": {"code": "XBANK", "price": 7000.0},
	}}
	svc := newTestService(src, ModeLive)
	got, err := svc.GetAllIndexes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Symbol != "XU100" || got[1].Symbol != "XBANK" {
		t.Fatalf("got %+v", got)
	}
}

func TestGetPopularStocks_FeedModeScansAndFiltersIndexes(t *testing.T) {
	src := &fakeSource{all: []source.Raw{
		rawQuote("THYAO.E", 234.5, 1.4, 900),
		rawQuote("GARAN.E", 89.7, -0.5, 500),
		{"code": "XU100", "price": 9234.56, "type": "index", "volume": 1e12},
		{"code": "XBANK", "price": 7890.12, "volume": 1e12},
	}}
	svc := newTestService(src, ModeFeed)
	got, err := svc.GetPopularStocks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Symbol != "THYAO.E" || got[1].Symbol != "GARAN.E" {
		t.Fatalf("got %+v", got)
	}
}

func TestSearchStock_FeedModeMatchesDiacriticInsensitive(t *testing.T) {
	src := &fakeSource{all: []source.Raw{
		{"code": "SISE.E", "text": "ŞİŞE CAM", "price": 45.0},
		{"code": "THYAO.E", "text": "TÜRK HAVA YOLLARI", "price": 234.5},
	}}
	svc := newTestService(src, ModeFeed)
	got, err := svc.SearchStock(context.Background(), "sise")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Symbol != "SISE.E" {
		t.Fatalf("got %+v", got)
	}
}

func TestSearchStock_LiveModeFiltersPopularSet(t *testing.T) {
	quotes := make(map[string]source.Raw, len(PopularSymbols))
	for _, s := range PopularSymbols {
		quotes[s] = rawQuote(s, 10, 0, 0)
	}
	svc := newTestService(&fakeSource{quotes: quotes}, ModeLive)
	got, err := svc.SearchStock(context.Background(), "thyao")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Symbol != "THYAO" {
		t.Fatalf("got %+v", got)
	}
}

func TestCompareStocks(t *testing.T) {
	src := &fakeSource{quotes: map[string]source.Raw{
		"THYAO": {"code": "THYAO", "price": 234.5, "rate": 1.4, "volume": 900.0},
		"GARAN": {"code": "GARAN", "price": 89.5, "rate": -0.4, "volume": 400.0},
	}}
	svc := newTestService(src, ModeLive)
	cmp, err := svc.CompareStocks(context.Background(), "thyao", "garan")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmp.Result.PriceDiff != 145.0 || cmp.Result.VolumeDiff != 500.0 {
		t.Fatalf("diffs: %+v", cmp.Result)
	}
	if cmp.Result.ChangeDiff != 1.4-(-0.4) {
		t.Fatalf("change diff: %v", cmp.Result.ChangeDiff)
	}
}

func TestCompareStocks_NoPartialResult(t *testing.T) {
	src := &fakeSource{quotes: map[string]source.Raw{
		"THYAO": rawQuote("THYAO", 234.5, 1.4, 900),
	}}
	svc := newTestService(src, ModeLive)
	_, err := svc.CompareStocks(context.Background(), "THYAO", "YOKTR")
	if err == nil || !errors.Is(err, ErrNotFound) {
		t.Fatalf("want wrapped miss, got %v", err)
	}
}

func TestGetTopGainers_RanksPopularSet(t *testing.T) {
	quotes := make(map[string]source.Raw, len(PopularSymbols))
	for i, s := range PopularSymbols {
		quotes[s] = rawQuote(s, 10, float64(i-5), 0)
	}
	svc := newTestService(&fakeSource{quotes: quotes}, ModeLive)
	got, err := svc.GetTopGainers(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 || got[0].ChangePercent < got[1].ChangePercent {
		t.Fatalf("got %+v", got)
	}
	for _, q := range got {
		if q.ChangePercent <= 0 {
			t.Fatalf("non-gainer in result: %+v", q)
		}
	}
}

func TestGetHistoricalData_DerivesStartFromPeriodToken(t *testing.T) {
	src := &fakeSource{chart: &source.Chart{Meta: source.Raw{}}}
	svc := newTestService(src, ModeLive)
	_, err := svc.GetHistoricalData(context.Background(), "THYAO", HistoricalOptions{Period: "5d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if !src.chartOpts.Period1.Equal(want) {
		t.Fatalf("Period1 = %v, want %v", src.chartOpts.Period1, want)
	}
	if !src.chartOpts.Period2.IsZero() {
		t.Fatalf("Period2 should stay open, got %v", src.chartOpts.Period2)
	}
	if src.chartOpts.Interval != "1d" {
		t.Fatalf("interval default: %q", src.chartOpts.Interval)
	}
}

func TestGetHistoricalData_ExplicitRangeWins(t *testing.T) {
	src := &fakeSource{chart: &source.Chart{Meta: source.Raw{}}}
	svc := newTestService(src, ModeLive)
	p1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p2 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.GetHistoricalData(context.Background(), "THYAO", HistoricalOptions{
		Period: "5y", Period1: p1, Period2: p2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !src.chartOpts.Period1.Equal(p1) || !src.chartOpts.Period2.Equal(p2) {
		t.Fatalf("range not honored: %+v", src.chartOpts)
	}
}

func TestGetHistoricalData_MapsBarsAndMeta(t *testing.T) {
	ts := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC).Unix()
	src := &fakeSource{chart: &source.Chart{
		Meta: source.Raw{
			"currency":           "TRY",
			"exchangeName":       "IST",
			"regularMarketPrice": 234.5,
			"validRanges":        []any{"1d", "5d", "1mo"},
		},
		Bars: []source.Bar{{Timestamp: ts, Open: 230, High: 236, Low: 229, Close: 234.5, AdjClose: 234.5, Volume: 1e6}},
	}}
	svc := newTestService(src, ModeLive)
	got, err := svc.GetHistoricalData(context.Background(), "thyao", HistoricalOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Meta.Currency != "TRY" || got.Meta.Symbol != "THYAO" || len(got.Meta.ValidRanges) != 3 {
		t.Fatalf("meta: %+v", got.Meta)
	}
	if len(got.Quotes) != 1 {
		t.Fatalf("quotes: %+v", got.Quotes)
	}
	q := got.Quotes[0]
	if !q.Date.Equal(time.Unix(ts, 0).UTC()) || q.Close != 234.5 || q.Volume != 1e6 {
		t.Fatalf("bar: %+v", q)
	}
}

func TestGetHistoricalData_ErrorWrapped(t *testing.T) {
	src := &fakeSource{chartErr: source.ErrUnsupported}
	svc := newTestService(src, ModeFeed)
	_, err := svc.GetHistoricalData(context.Background(), "THYAO", HistoricalOptions{})
	if !errors.Is(err, source.ErrUnsupported) {
		t.Fatalf("want ErrUnsupported in chain, got %v", err)
	}
}

func TestGetStockDetails_MergesSummaryOverQuote(t *testing.T) {
	mc := 1.2e11
	src := &fakeSource{
		quotes: map[string]source.Raw{"THYAO": rawQuote("THYAO", 234.5, 1.4, 900)},
		summary: map[string]source.Raw{
			"price":         {"marketCap": map[string]any{"raw": mc}},
			"summaryDetail": {"trailingPE": 4.2, "fiftyTwoWeekHigh": 250.0},
			"assetProfile":  {"sector": "Industrials", "industry": "Airlines"},
		},
	}
	svc := newTestService(src, ModeLive)
	got, err := svc.GetStockDetails(context.Background(), "thyao")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Symbol != "THYAO" || got.Price != 234.5 {
		t.Fatalf("base quote: %+v", got.Quote)
	}
	if got.MarketCap == nil || *got.MarketCap != mc {
		t.Fatalf("marketCap: %v", got.MarketCap)
	}
	if got.PERatio == nil || *got.PERatio != 4.2 {
		t.Fatalf("peRatio: %v", got.PERatio)
	}
	if got.Sector != "Industrials" || got.Industry != "Airlines" {
		t.Fatalf("profile: %+v", got)
	}
	// modules the upstream omitted stay nil, not zero
	if got.EPS != nil || got.Beta != nil {
		t.Fatalf("omitted fields must stay nil: eps=%v beta=%v", got.EPS, got.Beta)
	}
}

func TestGetStockDetails_SummaryFailureFailsCall(t *testing.T) {
	src := &fakeSource{
		quotes: map[string]source.Raw{"THYAO": rawQuote("THYAO", 234.5, 1.4, 900)},
		sumErr: errors.New("upstream 500"),
	}
	svc := newTestService(src, ModeLive)
	if _, err := svc.GetStockDetails(context.Background(), "THYAO"); err == nil {
		t.Fatal("want error")
	}
}

func TestGetWatchlistData(t *testing.T) {
	src := &fakeSource{quotes: map[string]source.Raw{
		"THYAO": rawQuote("THYAO", 234.5, 1.4, 900),
		"GARAN": rawQuote("GARAN", 89.5, -0.4, 400),
	}}
	wl := watchlist.New(zerolog.Nop(), watchlist.WithDir(t.TempDir()))
	wl.Add("THYAO", "THY")
	wl.Add("GARAN", "Garanti")
	wl.Add("YOKTR", "gone")

	svc := New(src, ModeLive, wl, zerolog.Nop())
	svc.now = func() time.Time { return frozen }
	got, err := svc.GetWatchlistData(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Symbol != "THYAO" || got[1].Symbol != "GARAN" {
		t.Fatalf("got %+v", got)
	}
}

func TestGetWatchlistData_EmptyStates(t *testing.T) {
	svc := newTestService(&fakeSource{}, ModeLive)
	got, err := svc.GetWatchlistData(context.Background())
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("nil store: got=%v err=%v", got, err)
	}

	wl := watchlist.New(zerolog.Nop(), watchlist.WithDir(t.TempDir()))
	svc = New(&fakeSource{}, ModeLive, wl, zerolog.Nop())
	got, err = svc.GetWatchlistData(context.Background())
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("empty store: got=%v err=%v", got, err)
	}
}
