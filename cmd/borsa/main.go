package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"borsa/internal/config"
	"borsa/internal/httpx"
	"borsa/internal/market"
	"borsa/internal/source"
	"borsa/internal/source/feed"
	"borsa/internal/source/mock"
	"borsa/internal/source/yahoo"
	"borsa/internal/watchlist"
)

func main() {
	var (
		cmd      string
		sym      string
		sym2     string
		query    string
		name     string
		periodTk string
		interval string
		limit    int
		useMock  bool
		cfgPath  string
		verbose  bool
	)
	flag.StringVar(&cmd, "cmd", "stock", "one of: stock index indexes popular search compare history details gainers losers volume watch unwatch watchlist watchlist-data clear-watchlist")
	flag.StringVar(&sym, "symbol", "", "ticker, e.g. THYAO (or index code for -cmd index)")
	flag.StringVar(&sym2, "symbol2", "", "second ticker for -cmd compare")
	flag.StringVar(&query, "q", "", "search query for -cmd search")
	flag.StringVar(&name, "name", "", "display name for -cmd watch")
	flag.StringVar(&periodTk, "period", "1mo", "history range: 1d 5d 1mo 3mo 6mo 1y 2y 5y 10y ytd max")
	flag.StringVar(&interval, "interval", "1d", "history bar granularity")
	flag.IntVar(&limit, "limit", 10, "result limit for gainers/losers/volume")
	flag.BoolVar(&useMock, "mock", false, "use the synthetic data source")
	flag.StringVar(&cfgPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.Parse()

	_ = godotenv.Load()

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if useMock {
		cfg.Source.UseMock = true
	}

	src, mode := buildSource(cfg)
	wl := buildWatchlist(cfg, log)
	svc := market.New(src, mode, wl, log)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.RequestTimeoutSec)*time.Second)
	defer cancel()

	out, err := run(ctx, svc, wl, cmd, runArgs{
		symbol: sym, symbol2: sym2, query: query, name: name,
		period: periodTk, interval: interval, limit: limit,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal().Err(err).Msg("encode output")
	}
}

type runArgs struct {
	symbol, symbol2, query, name string
	period, interval             string
	limit                        int
}

func run(ctx context.Context, svc *market.Service, wl *watchlist.Store, cmd string, a runArgs) (any, error) {
	switch cmd {
	case "stock":
		return svc.GetStock(ctx, a.symbol)
	case "index":
		return svc.GetIndex(ctx, a.symbol)
	case "indexes":
		return svc.GetAllIndexes(ctx)
	case "popular":
		return svc.GetPopularStocks(ctx)
	case "search":
		return svc.SearchStock(ctx, a.query)
	case "compare":
		return svc.CompareStocks(ctx, a.symbol, a.symbol2)
	case "history":
		return svc.GetHistoricalData(ctx, a.symbol, market.HistoricalOptions{Period: a.period, Interval: a.interval})
	case "details":
		return svc.GetStockDetails(ctx, a.symbol)
	case "gainers":
		return svc.GetTopGainers(ctx, a.limit)
	case "losers":
		return svc.GetTopLosers(ctx, a.limit)
	case "volume":
		return svc.GetTopVolume(ctx, a.limit)
	case "watch":
		return wl.Add(a.symbol, a.name), nil
	case "unwatch":
		return wl.Remove(a.symbol), nil
	case "watchlist":
		return wl.List(), nil
	case "watchlist-data":
		return svc.GetWatchlistData(ctx)
	case "clear-watchlist":
		return wl.Clear(), nil
	default:
		return nil, fmt.Errorf("unknown command %q", cmd)
	}
}

// buildSource picks the upstream origin: mock > live > scraped feed.
func buildSource(cfg config.Config) (source.Source, market.Mode) {
	switch {
	case cfg.Source.UseMock:
		return mock.New(), market.ModeMock
	case cfg.Source.UseLive:
		hc := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)
		opts := []yahoo.Option{yahoo.WithHTTPClient(hc.HTTP)}
		if cfg.Source.YahooBase != "" {
			opts = append(opts, yahoo.WithBaseURL(cfg.Source.YahooBase))
		}
		return yahoo.New(opts...), market.ModeLive
	default:
		hc := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)
		hc.UserAgent = "Mozilla/5.0"
		return feed.New(feed.Config{BaseURL: cfg.Source.FeedBaseURL}, hc), market.ModeFeed
	}
}

func buildWatchlist(cfg config.Config, log zerolog.Logger) *watchlist.Store {
	opts := []watchlist.Option{}
	if cfg.Watchlist.Dir != "" {
		opts = append(opts, watchlist.WithDir(cfg.Watchlist.Dir))
	}
	if cfg.Watchlist.Disabled {
		opts = append(opts, watchlist.Disabled())
	}
	return watchlist.New(log, opts...)
}
