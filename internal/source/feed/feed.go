// Package feed is the scraped JSON fallback source. One endpoint publishes
// the whole market as a flat array; per-symbol lookups scan that payload.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/sync/singleflight"

	"borsa/internal/httpx"
	"borsa/internal/source"
	"borsa/internal/symbol"
)

const feedPath = "/embed/borsa.json"

// Config controls the feed source behavior.
type Config struct {
	Name    string
	BaseURL string
	Headers map[string]string
}

// Source fetches the aggregated market payload and filters by symbol.
type Source struct {
	cfg    Config
	client *httpx.Client

	// coalesce concurrent full-feed fetches; records themselves are never
	// cached across calls
	sf singleflight.Group
}

func New(cfg Config, hc *httpx.Client) *Source {
	if cfg.Name == "" {
		cfg.Name = "feed"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.genelpara.com"
	}
	return &Source{cfg: cfg, client: hc}
}

func (s *Source) Name() string { return s.cfg.Name }

// FetchAll downloads and decodes the full market payload. Concurrent
// callers share a single request.
func (s *Source) FetchAll(ctx context.Context) ([]source.Raw, error) {
	v, err, _ := s.sf.Do("all", func() (any, error) {
		return s.download(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]source.Raw), nil
}

func (s *Source) download(ctx context.Context) ([]source.Raw, error) {
	u := strings.TrimSuffix(s.cfg.BaseURL, "/") + feedPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, err
	}
	for k, v := range s.cfg.Headers {
		req.Header.Set(k, v)
	}
	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("feed fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<10))
		return nil, fmt.Errorf("GET %s -> %d: %s", u, resp.StatusCode, string(b))
	}
	var records []source.Raw
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("feed decode: %w", err)
	}
	return records, nil
}

// FetchQuote scans the payload for the bare code first, then the .E
// suffixed convention some records use.
func (s *Source) FetchQuote(ctx context.Context, sym string) (source.Raw, error) {
	records, err := s.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	want := symbol.Canonical(sym)
	alt := symbol.WithEquitySuffix(sym)
	for _, r := range records {
		code, _ := r["code"].(string)
		if code == want || code == alt {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", want, source.ErrNotFound)
}

// FetchChart is not available: the feed publishes snapshots only, and
// sources are never mixed within a call chain.
func (s *Source) FetchChart(ctx context.Context, sym string, opts source.ChartOptions) (*source.Chart, error) {
	return nil, fmt.Errorf("historik veri %w", source.ErrUnsupported)
}

// FetchSummary is not available for the same reason as FetchChart.
func (s *Source) FetchSummary(ctx context.Context, sym string) (map[string]source.Raw, error) {
	return nil, fmt.Errorf("detay verisi %w", source.ErrUnsupported)
}
