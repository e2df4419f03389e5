// Package normalize converts raw upstream records into the canonical Quote
// and Index shapes. Upstream sources use three incompatible field naming
// conventions; every canonical field resolves through an ordered alias list
// so the caller never branches on where the record came from.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"borsa/internal/model"
)

// Alias priority per canonical field. The scraped-feed names come first,
// then the live-provider names, then the Turkish-keyed synthetic names.
var (
	priceKeys   = []string{"price", "last", "value", "regularMarketPrice", "fiyat", "son"}
	changeKeys  = []string{"change", "diff", "regularMarketChange", "degisim"}
	percentKeys = []string{"rate", "changePercent", "regularMarketChangePercent", "yuzdelik"}
	highKeys    = []string{"high", "regularMarketDayHigh", "yuksek"}
	lowKeys     = []string{"low", "regularMarketDayLow", "dusuk"}
	openKeys    = []string{"open", "regularMarketOpen", "acilis"}
	closeKeys   = []string{"close", "regularMarketPreviousClose", "kapanis"}
	volumeKeys  = []string{"volume", "regularMarketVolume", "hacim"}
	symbolKeys  = []string{"code", "symbol", "kod"}
	nameKeys    = []string{"name", "text", "longName", "shortName", "ad"}
	timeKeys    = []string{"time", "timestamp", "zaman"}
)

// Quote normalizes a raw record into a Quote. fallbackSymbol fills the
// identity fields when the record carries none; now fills the timestamp.
// The upstream-reported percent change is taken as-is, never recomputed
// from price and change, so upstream rounding survives.
func Quote(raw map[string]any, fallbackSymbol string, now time.Time) model.Quote {
	sym := Str(raw, symbolKeys...)
	if sym == "" {
		sym = fallbackSymbol
	}
	name := Str(raw, nameKeys...)
	if name == "" {
		name = sym
	}
	ts := Str(raw, timeKeys...)
	if ts == "" {
		ts = now.UTC().Format(time.RFC3339)
	}
	return model.Quote{
		Symbol:        sym,
		Name:          name,
		Price:         Num(raw, priceKeys...),
		Change:        Num(raw, changeKeys...),
		ChangePercent: Num(raw, percentKeys...),
		High:          Num(raw, highKeys...),
		Low:           Num(raw, lowKeys...),
		Open:          Num(raw, openKeys...),
		Close:         Num(raw, closeKeys...),
		Volume:        Num(raw, volumeKeys...),
		Timestamp:     ts,
	}
}

// Index normalizes a raw record into an Index. The value resolves through
// the same alias list as a quote's price.
func Index(raw map[string]any, fallbackSymbol string, now time.Time) model.Index {
	q := Quote(raw, fallbackSymbol, now)
	return model.Index{
		Symbol:        q.Symbol,
		Name:          q.Name,
		Value:         q.Price,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		High:          q.High,
		Low:           q.Low,
		Volume:        q.Volume,
		Timestamp:     q.Timestamp,
	}
}

// Num resolves the first alias key present in raw to a number. Values
// wrapped as {"raw": n, "fmt": ...} objects are unwrapped first. Missing
// keys and non-numeric values yield 0, never NaN.
func Num(raw map[string]any, keys ...string) float64 {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if f, ok := ToNumber(v); ok {
			return f
		}
	}
	return 0
}

// NumPtr is Num for optional fields: nil when no alias resolves, so callers
// can tell "unknown" from a reported zero.
func NumPtr(raw map[string]any, keys ...string) *float64 {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if f, ok := ToNumber(v); ok {
			return &f
		}
	}
	return nil
}

// Str resolves the first alias key present in raw to a non-empty string.
func Str(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// ToNumber coerces a decoded JSON value to a float64. Objects carrying a
// numeric "raw" field are unwrapped (the live provider delivers some fields
// that way). NaN and infinities report failure so they cannot propagate.
func ToNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case map[string]any:
		inner, ok := n["raw"]
		if !ok {
			return 0, false
		}
		return ToNumber(inner)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
