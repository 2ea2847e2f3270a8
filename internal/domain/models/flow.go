package models

import (
	"encoding/json"
	"math"
	"strconv"
)

// FlowMetrics holds passive (order book) and aggressive (taker) notional totals
// and their buy/sell ratios. Totals are never negative.
type FlowMetrics struct {
	LimitBuy    float64
	LimitSell   float64
	MarketBuy   float64
	MarketSell  float64
	LimitRatio  float64
	MarketRatio float64
}

// RoundedTotals are the notional totals rounded to whole quote units, for display only.
type RoundedTotals struct {
	LimitBuy   int64 `json:"limit_buy"`
	LimitSell  int64 `json:"limit_sell"`
	MarketBuy  int64 `json:"market_buy"`
	MarketSell int64 `json:"market_sell"`
}

func (m FlowMetrics) Rounded() RoundedTotals {
	return RoundedTotals{
		LimitBuy:   int64(math.Round(m.LimitBuy)),
		LimitSell:  int64(math.Round(m.LimitSell)),
		MarketBuy:  int64(math.Round(m.MarketBuy)),
		MarketSell: int64(math.Round(m.MarketSell)),
	}
}

func (m FlowMetrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		LimitBuy    float64 `json:"limit_buy"`
		LimitSell   float64 `json:"limit_sell"`
		MarketBuy   float64 `json:"market_buy"`
		MarketSell  float64 `json:"market_sell"`
		LimitRatio  Ratio   `json:"limit_ratio"`
		MarketRatio Ratio   `json:"market_ratio"`
	}{m.LimitBuy, m.LimitSell, m.MarketBuy, m.MarketSell, Ratio(m.LimitRatio), Ratio(m.MarketRatio)})
}

// CompositeRatios compare passive pressure against aggressive pressure.
type CompositeRatios struct {
	LimitOverMarket float64
	MarketOverLimit float64
}

func (c CompositeRatios) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		LimitOverMarket Ratio `json:"limit_over_market"`
		MarketOverLimit Ratio `json:"market_over_limit"`
	}{Ratio(c.LimitOverMarket), Ratio(c.MarketOverLimit)})
}

// Ratio is a float that survives JSON encoding when infinite.
type Ratio float64

func (r Ratio) MarshalJSON() ([]byte, error) {
	f := float64(r)
	switch {
	case math.IsInf(f, 1):
		return []byte(`"Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	}
	return strconv.AppendFloat(nil, f, 'f', -1, 64), nil
}

// Side classifies a symbol for the ranked tables.
type Side string

const (
	SideShort Side = "short"
	SideLong  Side = "long"
)

// FlowResult is the per-symbol outcome of a flow scan. Err marks a failed symbol;
// its metrics are zero and must not be ranked.
type FlowResult struct {
	Symbol    string          `json:"symbol"`
	Rank      int             `json:"rank"`
	Metrics   FlowMetrics     `json:"metrics"`
	Composite CompositeRatios `json:"composite"`
	Err       error           `json:"-"`
}

// Failed reports whether the symbol produced no usable evidence.
func (r FlowResult) Failed() bool { return r.Err != nil }

// RankedFlow is one row of a ranked short or long table.
type RankedFlow struct {
	Symbol      string `json:"symbol"`
	Rank        int    `json:"rank"`
	LimitRatio  Ratio  `json:"limit_ratio"`
	MarketRatio Ratio  `json:"market_ratio"`
	Score       Ratio  `json:"score"`
}
