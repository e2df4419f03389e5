// Package source defines the capability contract every upstream data origin
// implements. Exactly one source is active per process; the facade never
// mixes sources within a call chain.
package source

import (
	"context"
	"errors"
	"time"
)

// Raw is a decoded upstream record. Field names differ per source; the
// normalize package resolves them through ordered alias rules.
type Raw = map[string]any

// ChartOptions selects the window and granularity of a historical fetch.
// A zero Period2 means "up to now".
type ChartOptions struct {
	Interval string
	Period1  time.Time
	Period2  time.Time
}

// Bar is one OHLCV session of a historical series.
type Bar struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	AdjClose  float64
	Volume    float64
}

// Chart is the raw historical payload: an exchange meta bag plus bars in
// chronological order.
type Chart struct {
	Meta Raw
	Bars []Bar
}

var (
	// ErrNotFound reports a lookup miss on the active source. The Turkish
	// marker is part of the contract: callers match it to decide between
	// "bulunamadı" and "alınamadı" phrasing.
	ErrNotFound = errors.New("bulunamadı")

	// ErrUnsupported reports a capability the active source does not have,
	// e.g. historical series on the snapshot-only scraped feed.
	ErrUnsupported = errors.New("bu veri kaynağında desteklenmiyor")
)

// Source is an upstream quote origin. Implementations own their symbol
// format: they receive bare tickers and apply any exchange suffix
// themselves.
type Source interface {
	Name() string
	FetchQuote(ctx context.Context, symbol string) (Raw, error)
	FetchChart(ctx context.Context, symbol string, opts ChartOptions) (*Chart, error)
	FetchSummary(ctx context.Context, symbol string) (map[string]Raw, error)
}

// Lister is implemented by sources that can enumerate every record they
// know about in one call (the scraped feed and the synthetic generator).
// Search and market-wide scans use it instead of per-symbol fan-out.
type Lister interface {
	FetchAll(ctx context.Context) ([]Raw, error)
}
