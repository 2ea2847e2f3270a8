package models

import "time"

// CandleWindow is the three most recent candles, Current still forming.
type CandleWindow struct {
	Left    Candle
	Middle  Candle
	Current Candle
}

// PatternSignal is a confirmed swing-high rejection on one symbol.
type PatternSignal struct {
	Symbol     string    `json:"symbol"`
	Confirmed  bool      `json:"confirmed"`
	Price      float64   `json:"price"`
	CapturedAt time.Time `json:"captured_at"`
	ChartURL   string    `json:"chart_url"`
}

// PatternResult is the per-symbol outcome of a pattern scan.
type PatternResult struct {
	Symbol string
	Rank   int
	Window CandleWindow
	Signal *PatternSignal
	Err    error
}

func (r PatternResult) Failed() bool { return r.Err != nil }
