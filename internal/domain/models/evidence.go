package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookLevel is a resting price level of the order book.
type BookLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// OrderBook is a depth-bounded snapshot, best levels first.
type OrderBook struct {
	Bids []BookLevel
	Asks []BookLevel
}

// AggTrade is an executed trade. BuyerIsMaker means the seller was the aggressor.
type AggTrade struct {
	Price        decimal.Decimal
	Quantity     decimal.Decimal
	BuyerIsMaker bool
}

// Candle represents an OHLCV record, newest last in any slice of candles.
type Candle struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// Bullish reports close > open.
func (c Candle) Bullish() bool { return c.Close > c.Open }

// Bearish reports close < open.
func (c Candle) Bearish() bool { return c.Close < c.Open }

// BodyTop is max(open, close).
func (c Candle) BodyTop() float64 {
	if c.Open > c.Close {
		return c.Open
	}
	return c.Close
}

// BodySize is |open - close|.
func (c Candle) BodySize() float64 {
	if c.Open > c.Close {
		return c.Open - c.Close
	}
	return c.Close - c.Open
}
