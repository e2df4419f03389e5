// Package symbol maps bare BIST tickers to upstream-specific symbol formats.
package symbol

import "strings"

const (
	// YahooSuffix is the Borsa İstanbul exchange suffix Yahoo Finance expects.
	YahooSuffix = ".IS"
	// EquitySuffix is the secondary convention some scraped feed records carry.
	EquitySuffix = ".E"
)

// Canonical uppercases a raw ticker. Nothing else is stripped or validated;
// an unknown ticker surfaces later as a lookup miss, not here.
func Canonical(raw string) string {
	return strings.ToUpper(raw)
}

// ForYahoo returns the Yahoo Finance form of a ticker (THYAO -> THYAO.IS).
// Already-suffixed input passes through unchanged so the mapping is idempotent.
func ForYahoo(raw string) string {
	s := Canonical(raw)
	if strings.HasSuffix(s, YahooSuffix) {
		return s
	}
	return s + YahooSuffix
}

// WithEquitySuffix returns the .E fallback form used for secondary feed lookups.
func WithEquitySuffix(raw string) string {
	s := Canonical(raw)
	if strings.HasSuffix(s, EquitySuffix) {
		return s
	}
	return s + EquitySuffix
}
