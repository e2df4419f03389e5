package market

import (
	"context"
	"fmt"
	"time"

	"borsa/internal/model"
	"borsa/internal/normalize"
	"borsa/internal/period"
	"borsa/internal/source"
	"borsa/internal/symbol"
)

// HistoricalOptions selects the window of a historical query. When both
// Period1 and Period2 are set they win; Period1 alone anchors a half-open
// range up to now; otherwise the start is derived from the Period token.
type HistoricalOptions struct {
	Period   string // range token: 1d 5d 1mo 3mo 6mo 1y 2y 5y 10y ytd max
	Interval string // bar granularity, default 1d
	Period1  time.Time
	Period2  time.Time
}

// GetHistoricalData fetches and maps the OHLCV series for a symbol.
func (s *Service) GetHistoricalData(ctx context.Context, sym string, opts HistoricalOptions) (model.HistoricalSeries, error) {
	sym = symbol.Canonical(sym)

	interval := opts.Interval
	if interval == "" {
		interval = "1d"
	}
	tok := opts.Period
	if tok == "" {
		tok = "1mo"
	}

	chartOpts := source.ChartOptions{Interval: interval}
	switch {
	case !opts.Period1.IsZero() && !opts.Period2.IsZero():
		chartOpts.Period1 = opts.Period1
		chartOpts.Period2 = opts.Period2
	case !opts.Period1.IsZero():
		chartOpts.Period1 = opts.Period1
	default:
		chartOpts.Period1 = period.Start(tok, s.now())
	}

	chart, err := s.src.FetchChart(ctx, sym, chartOpts)
	if err != nil {
		return model.HistoricalSeries{}, fmt.Errorf("historik veri alınamadı: %w", err)
	}

	series := model.HistoricalSeries{
		Meta:   mapChartMeta(chart.Meta, sym),
		Quotes: make([]model.HistoricalQuote, 0, len(chart.Bars)),
	}
	for _, b := range chart.Bars {
		series.Quotes = append(series.Quotes, model.HistoricalQuote{
			Date:     time.Unix(b.Timestamp, 0).UTC(),
			Open:     b.Open,
			High:     b.High,
			Low:      b.Low,
			Close:    b.Close,
			AdjClose: b.AdjClose,
			Volume:   b.Volume,
		})
	}
	return series, nil
}

func mapChartMeta(meta source.Raw, sym string) model.HistoricalMeta {
	m := model.HistoricalMeta{
		Currency:             normalize.Str(meta, "currency"),
		Symbol:               sym,
		ExchangeName:         normalize.Str(meta, "exchangeName"),
		FullExchangeName:     normalize.Str(meta, "fullExchangeName"),
		InstrumentType:       normalize.Str(meta, "instrumentType"),
		RegularMarketPrice:   normalize.Num(meta, "regularMarketPrice"),
		FiftyTwoWeekHigh:     normalize.Num(meta, "fiftyTwoWeekHigh"),
		FiftyTwoWeekLow:      normalize.Num(meta, "fiftyTwoWeekLow"),
		RegularMarketDayHigh: normalize.Num(meta, "regularMarketDayHigh"),
		RegularMarketDayLow:  normalize.Num(meta, "regularMarketDayLow"),
		RegularMarketVolume:  normalize.Num(meta, "regularMarketVolume"),
		LongName:             normalize.Str(meta, "longName"),
		ShortName:            normalize.Str(meta, "shortName"),
		ChartPreviousClose:   normalize.Num(meta, "chartPreviousClose"),
		Timezone:             normalize.Str(meta, "timezone"),
		ExchangeTimezoneName: normalize.Str(meta, "exchangeTimezoneName"),
		DataGranularity:      normalize.Str(meta, "dataGranularity"),
	}
	if ts := normalize.Num(meta, "firstTradeDate"); ts != 0 {
		m.FirstTradeDate = time.Unix(int64(ts), 0).UTC()
	}
	if ts := normalize.Num(meta, "regularMarketTime"); ts != 0 {
		m.RegularMarketTime = time.Unix(int64(ts), 0).UTC()
	}
	if ranges, ok := meta["validRanges"].([]any); ok {
		m.ValidRanges = make([]string, 0, len(ranges))
		for _, r := range ranges {
			if s, ok := r.(string); ok {
				m.ValidRanges = append(m.ValidRanges, s)
			}
		}
	}
	return m
}
