package model

import "time"

// Quote is the normalized point-in-time record for a single BIST instrument.
// All numeric fields default to 0 when the upstream omits them; Timestamp
// defaults to the capture time.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Open          float64 `json:"open"`
	Close         float64 `json:"close"`
	Volume        float64 `json:"volume"`
	Timestamp     string  `json:"timestamp"`
}

// Index is the same shape as Quote but keyed by Value; it represents a
// market benchmark (XU100 and friends) rather than a single security.
type Index struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Value         float64 `json:"value"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Volume        float64 `json:"volume"`
	Timestamp     string  `json:"timestamp"`
}

// StockDetails extends a Quote with optional fundamentals. Pointer fields
// distinguish "upstream did not report this" from a literal zero.
type StockDetails struct {
	Quote
	MarketCap        *float64 `json:"marketCap,omitempty"`
	PERatio          *float64 `json:"peRatio,omitempty"`
	EPS              *float64 `json:"eps,omitempty"`
	DividendYield    *float64 `json:"dividendYield,omitempty"`
	FiftyTwoWeekHigh *float64 `json:"fiftyTwoWeekHigh,omitempty"`
	FiftyTwoWeekLow  *float64 `json:"fiftyTwoWeekLow,omitempty"`
	AverageVolume    *float64 `json:"averageVolume,omitempty"`
	Beta             *float64 `json:"beta,omitempty"`
	Sector           string   `json:"sector,omitempty"`
	Industry         string   `json:"industry,omitempty"`
	Description      string   `json:"description,omitempty"`
}

// HistoricalMeta describes the exchange context of a historical series.
type HistoricalMeta struct {
	Currency             string    `json:"currency"`
	Symbol               string    `json:"symbol"`
	ExchangeName         string    `json:"exchangeName"`
	FullExchangeName     string    `json:"fullExchangeName"`
	InstrumentType       string    `json:"instrumentType"`
	FirstTradeDate       time.Time `json:"firstTradeDate"`
	RegularMarketTime    time.Time `json:"regularMarketTime"`
	RegularMarketPrice   float64   `json:"regularMarketPrice"`
	FiftyTwoWeekHigh     float64   `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow      float64   `json:"fiftyTwoWeekLow"`
	RegularMarketDayHigh float64   `json:"regularMarketDayHigh"`
	RegularMarketDayLow  float64   `json:"regularMarketDayLow"`
	RegularMarketVolume  float64   `json:"regularMarketVolume"`
	LongName             string    `json:"longName"`
	ShortName            string    `json:"shortName"`
	ChartPreviousClose   float64   `json:"chartPreviousClose"`
	Timezone             string    `json:"timezone"`
	ExchangeTimezoneName string    `json:"exchangeTimezoneName"`
	DataGranularity      string    `json:"dataGranularity"`
	ValidRanges          []string  `json:"validRanges"`
}

// HistoricalQuote is one trading session in a historical series.
type HistoricalQuote struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjClose"`
	Volume   float64   `json:"volume"`
}

// HistoricalSeries is a meta record plus sessions ordered chronologically
// ascending.
type HistoricalSeries struct {
	Meta   HistoricalMeta    `json:"meta"`
	Quotes []HistoricalQuote `json:"quotes"`
}

// Comparison is the result of a pairwise stock comparison.
type Comparison struct {
	Stock1 Quote            `json:"stock1"`
	Stock2 Quote            `json:"stock2"`
	Result ComparisonResult `json:"comparison"`
}

// ComparisonResult holds the simple per-field differences (stock1 - stock2).
type ComparisonResult struct {
	PriceDiff  float64 `json:"priceDiff"`
	ChangeDiff float64 `json:"changeDiff"`
	VolumeDiff float64 `json:"volumeDiff"`
}
