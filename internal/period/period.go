// Package period converts human range tokens into start dates for
// day-granularity historical queries.
package period

import "time"

// offsets maps range tokens to fixed day counts. "ytd" is computed from the
// calendar and handled separately; "max" approximates twenty years.
var offsets = map[string]int{
	"1d":  1,
	"5d":  5,
	"1mo": 30,
	"3mo": 90,
	"6mo": 180,
	"1y":  365,
	"2y":  730,
	"5y":  1825,
	"10y": 3650,
	"max": 7300,
}

const defaultDays = 30

// Start returns the start date for token relative to now, truncated to
// midnight. Unknown tokens fall back to the 30-day offset on purpose: a
// mistyped range yields a month of data instead of an error.
func Start(token string, now time.Time) time.Time {
	days, ok := offsets[token]
	if !ok {
		if token == "ytd" {
			yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
			days = int(now.Sub(yearStart).Hours() / 24)
		} else {
			days = defaultDays
		}
	}
	start := now.AddDate(0, 0, -days)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
}
