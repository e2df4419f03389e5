// Package market is the quote resolution facade: one method per use case,
// orchestrating symbol resolution, the configured upstream source, field
// normalization and analytics.
package market

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"borsa/internal/analytics"
	"borsa/internal/model"
	"borsa/internal/normalize"
	"borsa/internal/source"
	"borsa/internal/symbol"
	"borsa/internal/watchlist"
)

// ErrNotFound marks a symbol the active source does not know. It passes
// through the facade unwrapped; every other failure is wrapped with a
// use-case prefix. Callers distinguish the two with errors.Is.
var ErrNotFound = source.ErrNotFound

// DefaultIndex is the benchmark used when no index symbol is given.
const DefaultIndex = "XU100"

// PopularSymbols is the fixed fan-out set for market-wide operations.
var PopularSymbols = []string{
	"THYAO", "GARAN", "EREGL", "AKBNK", "TUPRS",
	"SAHOL", "ISCTR", "KCHOL", "ASELS", "BIMAS",
}

// IndexSymbols is the fixed set of tracked BIST indexes.
var IndexSymbols = []string{"XU100", "XU030", "XBANK", "XUSIN", "XGIDA", "XHOLD", "XUTEK"}

// Mode names the active source kind. It is decided once at construction
// and never re-evaluated per call.
type Mode int

const (
	ModeLive Mode = iota
	ModeMock
	ModeFeed
)

func (m Mode) String() string {
	switch m {
	case ModeMock:
		return "mock"
	case ModeFeed:
		return "feed"
	default:
		return "live"
	}
}

// Service resolves quotes through a single upstream source.
type Service struct {
	src  source.Source
	mode Mode
	wl   *watchlist.Store
	log  zerolog.Logger
	now  func() time.Time
}

// New builds a facade over src. wl may be nil when the caller never uses
// the watchlist-data path.
func New(src source.Source, mode Mode, wl *watchlist.Store, log zerolog.Logger) *Service {
	return &Service{src: src, mode: mode, wl: wl, log: log, now: time.Now}
}

// Mode reports which source kind this facade was built with.
func (s *Service) Mode() Mode { return s.mode }

// GetIndex fetches one BIST index, XU100 by default.
func (s *Service) GetIndex(ctx context.Context, sym string) (model.Index, error) {
	if sym == "" {
		sym = DefaultIndex
	}
	sym = symbol.Canonical(sym)
	raw, err := s.src.FetchQuote(ctx, sym)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			return model.Index{}, fmt.Errorf("%s endeksi %w", sym, source.ErrNotFound)
		}
		return model.Index{}, fmt.Errorf("endeks verisi alınamadı: %w", err)
	}
	return normalize.Index(raw, sym, s.now()), nil
}

// GetStock fetches one stock quote.
func (s *Service) GetStock(ctx context.Context, sym string) (model.Quote, error) {
	sym = symbol.Canonical(sym)
	raw, err := s.src.FetchQuote(ctx, sym)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			return model.Quote{}, fmt.Errorf("%s hissesi %w", sym, source.ErrNotFound)
		}
		return model.Quote{}, fmt.Errorf("hisse verisi alınamadı: %w", err)
	}
	return normalize.Quote(raw, sym, s.now()), nil
}

// GetAllIndexes fans out over the fixed index set. Per-symbol failures are
// dropped; the result preserves IndexSymbols order, not arrival order.
func (s *Service) GetAllIndexes(ctx context.Context) ([]model.Index, error) {
	results := make([]*model.Index, len(IndexSymbols))
	var wg sync.WaitGroup
	for i, sym := range IndexSymbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			idx, err := s.GetIndex(ctx, sym)
			if err != nil {
				s.log.Debug().Err(err).Str("symbol", sym).Msg("index fetch dropped")
				return
			}
			results[i] = &idx
		}(i, sym)
	}
	wg.Wait()

	out := make([]model.Index, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// GetPopularStocks returns the liquid-stock set. In live and mock modes it
// covers the fixed popular list; in feed mode it scans the full payload and
// takes the twenty highest-volume stocks.
func (s *Service) GetPopularStocks(ctx context.Context) ([]model.Quote, error) {
	switch s.mode {
	case ModeFeed:
		lister, ok := s.src.(source.Lister)
		if !ok {
			return nil, fmt.Errorf("popüler hisseler alınamadı: %w", source.ErrUnsupported)
		}
		records, err := lister.FetchAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("popüler hisseler alınamadı: %w", err)
		}
		stocks := make([]model.Quote, 0, len(records))
		for _, r := range records {
			kind := normalize.Str(r, "type", "tur")
			code := normalize.Str(r, "code", "symbol", "kod")
			if kind == "index" || len(code) > 0 && code[0] == 'X' {
				continue
			}
			stocks = append(stocks, normalize.Quote(r, code, s.now()))
		}
		return analytics.TopVolume(stocks, 20), nil
	default:
		return s.fanOutStocks(ctx, PopularSymbols), nil
	}
}

// fanOutStocks issues independent fetches and joins them, mapping failures
// to gaps and preserving input order. A partial result is a success.
func (s *Service) fanOutStocks(ctx context.Context, symbols []string) []model.Quote {
	results := make([]*model.Quote, len(symbols))
	var wg sync.WaitGroup
	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			q, err := s.GetStock(ctx, sym)
			if err != nil {
				s.log.Debug().Err(err).Str("symbol", sym).Msg("stock fetch dropped")
				return
			}
			results[i] = &q
		}(i, sym)
	}
	wg.Wait()

	out := make([]model.Quote, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// SearchStock matches query against symbol and name, case- and
// diacritic-insensitively. The candidate set depends on the mode: the full
// synthetic dataset, the popular set, or the whole scraped feed.
func (s *Service) SearchStock(ctx context.Context, query string) ([]model.Quote, error) {
	if s.mode == ModeLive {
		stocks, err := s.GetPopularStocks(ctx)
		if err != nil {
			return nil, fmt.Errorf("arama yapılamadı: %w", err)
		}
		out := make([]model.Quote, 0, len(stocks))
		for _, q := range stocks {
			if analytics.Matches(query, q.Symbol, q.Name) {
				out = append(out, q)
			}
		}
		return out, nil
	}

	lister, ok := s.src.(source.Lister)
	if !ok {
		return nil, fmt.Errorf("arama yapılamadı: %w", source.ErrUnsupported)
	}
	records, err := lister.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("arama yapılamadı: %w", err)
	}
	out := make([]model.Quote, 0, len(records))
	for _, r := range records {
		code := normalize.Str(r, "code", "symbol", "kod")
		name := normalize.Str(r, "name", "text", "ad")
		if analytics.Matches(query, code, name) {
			out = append(out, normalize.Quote(r, code, s.now()))
		}
	}
	return out, nil
}

// CompareStocks fetches both symbols concurrently and diffs them. Unlike
// the batch paths there is no partial result: either fetch failing fails
// the comparison.
func (s *Service) CompareStocks(ctx context.Context, sym1, sym2 string) (model.Comparison, error) {
	var q1, q2 model.Quote
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		q1, err = s.GetStock(gctx, sym1)
		return err
	})
	g.Go(func() error {
		var err error
		q2, err = s.GetStock(gctx, sym2)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Comparison{}, fmt.Errorf("karşılaştırma yapılamadı: %w", err)
	}
	return model.Comparison{
		Stock1: q1,
		Stock2: q2,
		Result: model.ComparisonResult{
			PriceDiff:  q1.Price - q2.Price,
			ChangeDiff: q1.ChangePercent - q2.ChangePercent,
			VolumeDiff: q1.Volume - q2.Volume,
		},
	}, nil
}

// GetTopGainers ranks the popular set by percent change, rising only.
func (s *Service) GetTopGainers(ctx context.Context, limit int) ([]model.Quote, error) {
	stocks, err := s.GetPopularStocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("en çok yükselenler alınamadı: %w", err)
	}
	return analytics.TopGainers(stocks, limit), nil
}

// GetTopLosers ranks the popular set by percent change, falling only.
func (s *Service) GetTopLosers(ctx context.Context, limit int) ([]model.Quote, error) {
	stocks, err := s.GetPopularStocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("en çok düşenler alınamadı: %w", err)
	}
	return analytics.TopLosers(stocks, limit), nil
}

// GetTopVolume ranks the popular set by traded volume.
func (s *Service) GetTopVolume(ctx context.Context, limit int) ([]model.Quote, error) {
	stocks, err := s.GetPopularStocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("en yüksek hacimli hisseler alınamadı: %w", err)
	}
	return analytics.TopVolume(stocks, limit), nil
}

// GetWatchlistData resolves a live quote for every watchlist entry, same
// swallow-and-filter policy as the popular fan-out.
func (s *Service) GetWatchlistData(ctx context.Context) ([]model.Quote, error) {
	if s.wl == nil {
		return []model.Quote{}, nil
	}
	entries := s.wl.List()
	if len(entries) == 0 {
		return []model.Quote{}, nil
	}
	symbols := make([]string, len(entries))
	for i, e := range entries {
		symbols[i] = e.Symbol
	}
	return s.fanOutStocks(ctx, symbols), nil
}
