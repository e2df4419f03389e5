// Package mock is the synthetic source: a fixed BIST dataset with
// randomized intraday movement, usable offline and in tests.
package mock

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"borsa/internal/source"
	"borsa/internal/symbol"
)

type instrument struct {
	code  string
	name  string
	base  float64
	index bool
}

// dataset is the full synthetic market: ten liquid stocks and seven indexes.
var dataset = []instrument{
	{code: "THYAO", name: "TURK HAVA YOLLARI", base: 234.50},
	{code: "GARAN", name: "GARANTI BANKASI", base: 89.75},
	{code: "EREGL", name: "EREGLI DEMIR CELIK", base: 45.20},
	{code: "AKBNK", name: "AKBANK", base: 56.80},
	{code: "TUPRS", name: "TUPRAS", base: 178.90},
	{code: "SAHOL", name: "SABANCI HOLDING", base: 67.30},
	{code: "ISCTR", name: "IS BANKASI", base: 12.45},
	{code: "KCHOL", name: "KOC HOLDING", base: 145.60},
	{code: "ASELS", name: "ASELSAN", base: 89.40},
	{code: "BIMAS", name: "BIM", base: 456.70},
	{code: "XU100", name: "BIST 100", base: 9234.56, index: true},
	{code: "XU030", name: "BIST 30", base: 10456.78, index: true},
	{code: "XBANK", name: "BIST BANKA", base: 7890.12, index: true},
	{code: "XUSIN", name: "BIST SINAI", base: 5678.90, index: true},
	{code: "XGIDA", name: "BIST GIDA", base: 3456.78, index: true},
	{code: "XHOLD", name: "BIST HOLDING", base: 8901.23, index: true},
	{code: "XUTEK", name: "BIST TEKNOLOJI", base: 4567.89, index: true},
}

// Source generates synthetic records in the Turkish field convention.
type Source struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

func New() *Source {
	return &Source{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
}

// NewSeeded pins the random source and clock, for reproducible output.
func NewSeeded(seed int64, now func() time.Time) *Source {
	return &Source{rnd: rand.New(rand.NewSource(seed)), now: now}
}

func (s *Source) Name() string { return "mock" }

func (s *Source) generate(inst instrument) source.Raw {
	s.mu.Lock()
	delta := (s.rnd.Float64() - 0.5) * 10
	volume := float64(s.rnd.Intn(10_000_000) + 1_000_000)
	s.mu.Unlock()

	value := inst.base + delta
	kind := "stock"
	if inst.index {
		kind = "index"
	}
	return source.Raw{
		"kod":      inst.code,
		"ad":       inst.name,
		"fiyat":    value,
		"degisim":  delta,
		"yuzdelik": delta / inst.base * 100,
		"yuksek":   value + math.Abs(delta)*0.5,
		"dusuk":    value - math.Abs(delta)*0.5,
		"acilis":   inst.base,
		"kapanis":  inst.base,
		"hacim":    volume,
		"tur":      kind,
		"zaman":    s.now().UTC().Format(time.RFC3339),
	}
}

// FetchAll generates the whole dataset, stocks first then indexes.
func (s *Source) FetchAll(_ context.Context) ([]source.Raw, error) {
	out := make([]source.Raw, 0, len(dataset))
	for _, inst := range dataset {
		out = append(out, s.generate(inst))
	}
	return out, nil
}

func (s *Source) lookup(sym string) (instrument, bool) {
	want := symbol.Canonical(sym)
	bare := strings.TrimSuffix(want, symbol.EquitySuffix)
	for _, inst := range dataset {
		if inst.code == want || inst.code == bare {
			return inst, true
		}
	}
	return instrument{}, false
}

func (s *Source) FetchQuote(_ context.Context, sym string) (source.Raw, error) {
	inst, ok := s.lookup(sym)
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol.Canonical(sym), source.ErrNotFound)
	}
	return s.generate(inst), nil
}

// FetchChart synthesizes a daily random walk around the instrument's base
// price across the requested window, skipping weekends.
func (s *Source) FetchChart(_ context.Context, sym string, opts source.ChartOptions) (*source.Chart, error) {
	inst, ok := s.lookup(sym)
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol.Canonical(sym), source.ErrNotFound)
	}

	end := opts.Period2
	if end.IsZero() {
		end = s.now()
	}
	start := opts.Period1
	if start.IsZero() {
		start = end.AddDate(0, 0, -30)
	}

	interval := opts.Interval
	if interval == "" {
		interval = "1d"
	}

	chart := &source.Chart{
		Meta: source.Raw{
			"currency":             "TRY",
			"symbol":               inst.code + symbol.YahooSuffix,
			"exchangeName":         "IST",
			"fullExchangeName":     "Istanbul",
			"instrumentType":       "EQUITY",
			"firstTradeDate":       time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC).Unix(),
			"regularMarketTime":    end.Unix(),
			"regularMarketPrice":   inst.base,
			"fiftyTwoWeekHigh":     inst.base * 1.25,
			"fiftyTwoWeekLow":      inst.base * 0.75,
			"regularMarketDayHigh": inst.base * 1.02,
			"regularMarketDayLow":  inst.base * 0.98,
			"regularMarketVolume":  5_000_000,
			"longName":             inst.name,
			"shortName":            inst.name,
			"chartPreviousClose":   inst.base,
			"timezone":             "TRT",
			"exchangeTimezoneName": "Europe/Istanbul",
			"dataGranularity":      interval,
			"validRanges":          []any{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"},
		},
	}

	price := inst.base
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		s.mu.Lock()
		step := (s.rnd.Float64() - 0.5) * inst.base * 0.02
		volume := float64(s.rnd.Intn(10_000_000) + 1_000_000)
		s.mu.Unlock()

		open := price
		price += step
		high := math.Max(open, price) + math.Abs(step)*0.5
		low := math.Min(open, price) - math.Abs(step)*0.5
		chart.Bars = append(chart.Bars, source.Bar{
			Timestamp: time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC).Unix(),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     price,
			AdjClose:  price,
			Volume:    volume,
		})
	}
	return chart, nil
}

// FetchSummary shapes its modules like the live provider's payload,
// raw-wrapped numbers included, so the same merge path serves both.
func (s *Source) FetchSummary(_ context.Context, sym string) (map[string]source.Raw, error) {
	inst, ok := s.lookup(sym)
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol.Canonical(sym), source.ErrNotFound)
	}
	wrap := func(v float64) map[string]any { return map[string]any{"raw": v} }
	return map[string]source.Raw{
		"price": {
			"marketCap": wrap(inst.base * 1e9),
		},
		"summaryDetail": {
			"trailingPE":       wrap(8.5),
			"dividendYield":    wrap(0.021),
			"fiftyTwoWeekHigh": wrap(inst.base * 1.25),
			"fiftyTwoWeekLow":  wrap(inst.base * 0.75),
			"averageVolume":    wrap(4_500_000),
			"beta":             wrap(1.12),
		},
		"defaultKeyStatistics": {
			"trailingEps": wrap(inst.base / 8.5),
		},
		"assetProfile": {
			"sector":              "Industrials",
			"industry":            "Conglomerates",
			"longBusinessSummary": fmt.Sprintf("%s, Borsa İstanbul'da işlem gören bir şirkettir.", inst.name),
		},
	}, nil
}
