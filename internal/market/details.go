package market

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"borsa/internal/model"
	"borsa/internal/normalize"
	"borsa/internal/source"
	"borsa/internal/symbol"
)

// GetStockDetails merges the extended summary over the base quote. A module
// or field the upstream omits stays nil on the result; extended fields are
// never zero-filled, so "unknown" stays distinguishable from zero.
func (s *Service) GetStockDetails(ctx context.Context, sym string) (model.StockDetails, error) {
	sym = symbol.Canonical(sym)

	var base model.Quote
	var summary map[string]source.Raw
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		base, err = s.GetStock(gctx, sym)
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = s.src.FetchSummary(gctx, sym)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.StockDetails{}, fmt.Errorf("detaylı hisse bilgisi alınamadı: %w", err)
	}

	details := model.StockDetails{Quote: base}
	if price, ok := summary["price"]; ok {
		details.MarketCap = normalize.NumPtr(price, "marketCap")
	}
	if sd, ok := summary["summaryDetail"]; ok {
		if details.MarketCap == nil {
			details.MarketCap = normalize.NumPtr(sd, "marketCap")
		}
		details.PERatio = normalize.NumPtr(sd, "trailingPE")
		details.DividendYield = normalize.NumPtr(sd, "dividendYield")
		details.FiftyTwoWeekHigh = normalize.NumPtr(sd, "fiftyTwoWeekHigh")
		details.FiftyTwoWeekLow = normalize.NumPtr(sd, "fiftyTwoWeekLow")
		details.AverageVolume = normalize.NumPtr(sd, "averageVolume")
		details.Beta = normalize.NumPtr(sd, "beta")
	}
	if ks, ok := summary["defaultKeyStatistics"]; ok {
		details.EPS = normalize.NumPtr(ks, "trailingEps")
	}
	if ap, ok := summary["assetProfile"]; ok {
		details.Sector = normalize.Str(ap, "sector")
		details.Industry = normalize.Str(ap, "industry")
		details.Description = normalize.Str(ap, "longBusinessSummary")
	}
	return details, nil
}
