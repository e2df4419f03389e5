package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"borsa/internal/config"
	"borsa/internal/httpx"
	"borsa/internal/market"
	"borsa/internal/model"
	"borsa/internal/source"
	"borsa/internal/source/feed"
	"borsa/internal/source/mock"
	"borsa/internal/source/yahoo"
	"borsa/internal/watchlist"
)

func main() {
	_ = godotenv.Load()
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	src, mode := buildSource(cfg)
	wl := buildWatchlist(cfg, log)
	svc := market.New(src, mode, wl, log)
	log.Info().Stringer("mode", mode).Str("source", src.Name()).Msg("source selected")

	a := &api{svc: svc, wl: wl, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/stock", a.stock)
	mux.HandleFunc("/api/index", a.index)
	mux.HandleFunc("/api/indexes", a.indexes)
	mux.HandleFunc("/api/popular", a.popular)
	mux.HandleFunc("/api/search", a.search)
	mux.HandleFunc("/api/compare", a.compare)
	mux.HandleFunc("/api/history", a.history)
	mux.HandleFunc("/api/details", a.details)
	mux.HandleFunc("/api/gainers", a.ranked(svc.GetTopGainers))
	mux.HandleFunc("/api/losers", a.ranked(svc.GetTopLosers))
	mux.HandleFunc("/api/volume", a.ranked(svc.GetTopVolume))
	mux.HandleFunc("/api/watchlist", a.watchlist)
	mux.HandleFunc("/api/watchlist/data", a.watchlistData)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           withJSONHeaders(withGzip(recoverPanic(limitBody(mux)))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
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

type api struct {
	svc *market.Service
	wl  *watchlist.Store
	log zerolog.Logger
}

func (a *api) stock(w http.ResponseWriter, r *http.Request) {
	sym := r.URL.Query().Get("symbol")
	if sym == "" {
		http.Error(w, "missing symbol query param", http.StatusBadRequest)
		return
	}
	q, err := a.svc.GetStock(r.Context(), sym)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, q)
}

func (a *api) index(w http.ResponseWriter, r *http.Request) {
	idx, err := a.svc.GetIndex(r.Context(), r.URL.Query().Get("symbol"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, idx)
}

func (a *api) indexes(w http.ResponseWriter, r *http.Request) {
	out, err := a.svc.GetAllIndexes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, out)
}

func (a *api) popular(w http.ResponseWriter, r *http.Request) {
	out, err := a.svc.GetPopularStocks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, out)
}

func (a *api) search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		http.Error(w, "missing q query param", http.StatusBadRequest)
		return
	}
	out, err := a.svc.SearchStock(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, out)
}

func (a *api) compare(w http.ResponseWriter, r *http.Request) {
	s1, s2 := r.URL.Query().Get("a"), r.URL.Query().Get("b")
	if s1 == "" || s2 == "" {
		http.Error(w, "missing a or b query param", http.StatusBadRequest)
		return
	}
	out, err := a.svc.CompareStocks(r.Context(), s1, s2)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, out)
}

func (a *api) history(w http.ResponseWriter, r *http.Request) {
	sym := r.URL.Query().Get("symbol")
	if sym == "" {
		http.Error(w, "missing symbol query param", http.StatusBadRequest)
		return
	}
	out, err := a.svc.GetHistoricalData(r.Context(), sym, market.HistoricalOptions{
		Period:   r.URL.Query().Get("period"),
		Interval: r.URL.Query().Get("interval"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, out)
}

func (a *api) details(w http.ResponseWriter, r *http.Request) {
	sym := r.URL.Query().Get("symbol")
	if sym == "" {
		http.Error(w, "missing symbol query param", http.StatusBadRequest)
		return
	}
	out, err := a.svc.GetStockDetails(r.Context(), sym)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, out)
}

func (a *api) ranked(fn func(context.Context, int) ([]model.Quote, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 10
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		out, err := fn(r.Context(), limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, out)
	}
}

func (a *api) watchlist(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, a.wl.List())
	case http.MethodPost:
		var body struct {
			Symbol string `json:"symbol"`
			Name   string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Symbol == "" {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		writeJSON(w, a.wl.Add(body.Symbol, body.Name))
	case http.MethodDelete:
		// no symbol clears the whole list
		if sym := r.URL.Query().Get("symbol"); sym != "" {
			writeJSON(w, a.wl.Remove(sym))
			return
		}
		writeJSON(w, a.wl.Clear())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a *api) watchlistData(w http.ResponseWriter, r *http.Request) {
	out, err := a.svc.GetWatchlistData(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// writeError maps the error taxonomy to status codes: a lookup miss is 404,
// anything else is an upstream failure. Error text is user-displayable by
// contract.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, market.ErrNotFound) {
		status = http.StatusNotFound
	}
	http.Error(w, err.Error(), status)
}

func withJSONHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		// Basic CORS for browser usage; adjust as needed.
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withGzip compresses the response when the client supports gzip.
func withGzip(next http.Handler) http.Handler {
	var gzPool = sync.Pool{New: func() any {
		// Prefer best speed to reduce CPU usage since payloads are JSON
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.BestSpeed)
		return w
	}}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}
		gz := gzPool.Get().(*gzip.Writer)
		gz.Reset(w)
		defer func() {
			_ = gz.Close()
			gz.Reset(io.Discard)
			gzPool.Put(gz)
		}()
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		gw := gzipResponseWriter{ResponseWriter: w, Writer: gz}
		next.ServeHTTP(gw, r)
	})
}

type gzipResponseWriter struct {
	http.ResponseWriter
	Writer io.Writer
}

func (g gzipResponseWriter) Write(b []byte) (int, error) {
	return g.Writer.Write(b)
}

// limitBody caps request body size to avoid memory abuse.
func limitBody(next http.Handler) http.Handler {
	const maxBody = 1 << 20 // 1MB
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		}
		next.ServeHTTP(w, r)
	})
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
