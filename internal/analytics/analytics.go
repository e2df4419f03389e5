// Package analytics holds pure ranking and matching helpers over normalized
// quote collections. Nothing here touches the network.
package analytics

import (
	"sort"
	"strings"

	"borsa/internal/model"
)

// SortByChange returns a copy of stocks ordered by percent change.
func SortByChange(stocks []model.Quote, desc bool) []model.Quote {
	out := make([]model.Quote, len(stocks))
	copy(out, stocks)
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return out[i].ChangePercent > out[j].ChangePercent
		}
		return out[i].ChangePercent < out[j].ChangePercent
	})
	return out
}

// TopGainers returns up to limit stocks with a positive percent change,
// highest first. Flat and falling stocks never appear even when limit
// exceeds the match count.
func TopGainers(stocks []model.Quote, limit int) []model.Quote {
	out := make([]model.Quote, 0, limit)
	for _, s := range SortByChange(stocks, true) {
		if s.ChangePercent <= 0 {
			break
		}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}

// TopLosers returns up to limit stocks with a negative percent change,
// lowest first.
func TopLosers(stocks []model.Quote, limit int) []model.Quote {
	out := make([]model.Quote, 0, limit)
	for _, s := range SortByChange(stocks, false) {
		if s.ChangePercent >= 0 {
			break
		}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}

// TopVolume returns up to limit stocks ordered by volume descending.
func TopVolume(stocks []model.Quote, limit int) []model.Quote {
	out := make([]model.Quote, len(stocks))
	copy(out, stocks)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Volume > out[j].Volume })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// turkishFold strips the Turkish-specific letters both cased ways so that
// "ŞİŞE" and "sise" compare equal after lowering.
var turkishFold = strings.NewReplacer(
	"ğ", "g", "Ğ", "g",
	"ü", "u", "Ü", "u",
	"ş", "s", "Ş", "s",
	"ı", "i", "İ", "i",
	"ö", "o", "Ö", "o",
	"ç", "c", "Ç", "c",
)

// Fold lower-cases s and normalizes Turkish diacritics for matching.
func Fold(s string) string {
	return strings.ToLower(turkishFold.Replace(s))
}

// Matches reports whether the folded query is a substring of any folded
// candidate text. An empty query matches everything, so a blank search
// lists the whole candidate set.
func Matches(query string, candidates ...string) bool {
	q := Fold(query)
	if q == "" {
		return true
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if strings.Contains(Fold(c), q) {
			return true
		}
	}
	return false
}
