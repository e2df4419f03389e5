package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"borsa/internal/source"
	"borsa/internal/symbol"
)

// quoteModules is the module set for a plain price lookup; summaryModules is
// the extended set behind stock details.
const (
	quoteModules   = "price"
	summaryModules = "price,summaryDetail,defaultKeyStatistics,assetProfile"
)

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []map[string]source.Raw `json:"result"`
		Error  *apiError               `json:"error"`
	} `json:"quoteSummary"`
}

// FetchQuote returns the price module of quoteSummary as an undecoded bag.
// Yahoo delivers some numeric fields as {"raw": n, "fmt": ...} objects;
// unwrapping is the normalizer's job, not ours.
func (c *Client) FetchQuote(ctx context.Context, sym string) (source.Raw, error) {
	mods, err := c.quoteSummary(ctx, sym, quoteModules)
	if err != nil {
		return nil, err
	}
	price, ok := mods["price"]
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol.Canonical(sym), source.ErrNotFound)
	}
	// Yahoo reports the suffixed form (THYAO.IS); records leave this package
	// in the bare canonical convention.
	price["symbol"] = symbol.Canonical(sym)
	return price, nil
}

// FetchSummary returns all detail modules keyed by module name.
func (c *Client) FetchSummary(ctx context.Context, sym string) (map[string]source.Raw, error) {
	return c.quoteSummary(ctx, sym, summaryModules)
}

func (c *Client) quoteSummary(ctx context.Context, sym, modules string) (map[string]source.Raw, error) {
	ySym := symbol.ForYahoo(sym)
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.baseURL, url.PathEscape(ySym), url.QueryEscape(modules))

	body, err := c.get(ctx, u, ySym)
	if err != nil {
		return nil, err
	}

	var qs quoteSummaryResponse
	if err := json.Unmarshal(body, &qs); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if e := qs.QuoteSummary.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, fmt.Errorf("%s: %w", symbol.Canonical(sym), source.ErrNotFound)
		}
		return nil, fmt.Errorf("yahoo api error: %s", e.Description)
	}
	if len(qs.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol.Canonical(sym), source.ErrNotFound)
	}
	return qs.QuoteSummary.Result[0], nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta       source.Raw `json:"meta"`
			Timestamp  []int64    `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

// FetchChart returns the historical series for a symbol over the requested
// window. Null bars (holidays, suspensions) are dropped.
func (c *Client) FetchChart(ctx context.Context, sym string, opts source.ChartOptions) (*source.Chart, error) {
	ySym := symbol.ForYahoo(sym)

	q := url.Values{}
	interval := opts.Interval
	if interval == "" {
		interval = "1d"
	}
	q.Set("interval", interval)
	if !opts.Period1.IsZero() {
		q.Set("period1", strconv.FormatInt(opts.Period1.Unix(), 10))
	}
	p2 := opts.Period2
	if p2.IsZero() {
		q.Set("period2", "9999999999") // open-ended: let Yahoo clamp to now
	} else {
		q.Set("period2", strconv.FormatInt(p2.Unix(), 10))
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ySym), q.Encode())
	body, err := c.get(ctx, u, ySym)
	if err != nil {
		return nil, err
	}

	var cr chartResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if e := cr.Chart.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, fmt.Errorf("%s: %w", symbol.Canonical(sym), source.ErrNotFound)
		}
		return nil, fmt.Errorf("yahoo api error: %s", e.Description)
	}
	if len(cr.Chart.Result) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol.Canonical(sym), source.ErrNotFound)
	}

	res := cr.Chart.Result[0]
	chart := &source.Chart{Meta: res.Meta}
	if len(res.Indicators.Quote) == 0 {
		return chart, nil
	}
	quote := res.Indicators.Quote[0]
	var adj []*float64
	if len(res.Indicators.AdjClose) > 0 {
		adj = res.Indicators.AdjClose[0].AdjClose
	}

	chart.Bars = make([]source.Bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		bar := source.Bar{Timestamp: ts}
		bar.Open = deref(quote.Open, i)
		bar.High = deref(quote.High, i)
		bar.Low = deref(quote.Low, i)
		bar.Close = deref(quote.Close, i)
		bar.Volume = deref(quote.Volume, i)
		bar.AdjClose = deref(adj, i)
		if bar.AdjClose == 0 {
			bar.AdjClose = bar.Close
		}
		if bar.Open == 0 && bar.High == 0 && bar.Low == 0 && bar.Close == 0 {
			continue // null bar
		}
		chart.Bars = append(chart.Bars, bar)
	}
	return chart, nil
}

func (c *Client) get(ctx context.Context, u, ySym string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	switch {
	case res.StatusCode == http.StatusNotFound:
		// Yahoo 404s unknown tickers; report them as a plain miss. The
		// error body still carries a quoteSummary envelope we can ignore.
		return nil, fmt.Errorf("%s: %w", strings.TrimSuffix(ySym, symbol.YahooSuffix), source.ErrNotFound)
	case res.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("yahoo: rate limited")
	case res.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("yahoo: status %d: %s", res.StatusCode, truncate(body, 256))
	}
	return body, nil
}

func deref(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
