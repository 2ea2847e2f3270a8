package features

import (
	"math"

	"FlowScan/internal/domain/models"

	"github.com/shopspring/decimal"
)

// Ratio returns n/d, or +Inf when d is not positive. 0/0 is +Inf as well.
func Ratio(n, d float64) float64 {
	if d > 0 {
		return n / d
	}
	return math.Inf(1)
}

// Notional sums price*quantity over the levels.
func Notional(levels []models.BookLevel) float64 {
	total := decimal.Zero
	for _, l := range levels {
		total = total.Add(l.Price.Mul(l.Quantity))
	}
	return total.InexactFloat64()
}

// TakerNotional splits trade notional by aggressor side.
func TakerNotional(trades []models.AggTrade) (buy, sell float64) {
	b, s := decimal.Zero, decimal.Zero
	for _, t := range trades {
		v := t.Price.Mul(t.Quantity)
		if t.BuyerIsMaker {
			// buyer rested on the book, the seller took liquidity
			s = s.Add(v)
		} else {
			b = b.Add(v)
		}
	}
	return b.InexactFloat64(), s.InexactFloat64()
}

// ComputeFlow derives passive and aggressive pressure for one symbol.
func ComputeFlow(book models.OrderBook, trades []models.AggTrade) models.FlowMetrics {
	m := models.FlowMetrics{
		LimitBuy:  Notional(book.Bids),
		LimitSell: Notional(book.Asks),
	}
	m.MarketBuy, m.MarketSell = TakerNotional(trades)
	return FlowFromTotals(m.LimitBuy, m.LimitSell, m.MarketBuy, m.MarketSell)
}

// FlowFromTotals fills the ratios for already aggregated totals.
func FlowFromTotals(limitBuy, limitSell, marketBuy, marketSell float64) models.FlowMetrics {
	return models.FlowMetrics{
		LimitBuy:    limitBuy,
		LimitSell:   limitSell,
		MarketBuy:   marketBuy,
		MarketSell:  marketSell,
		LimitRatio:  Ratio(limitBuy, limitSell),
		MarketRatio: Ratio(marketBuy, marketSell),
	}
}

// Composite compares the two ratios of m against each other.
func Composite(m models.FlowMetrics) models.CompositeRatios {
	return models.CompositeRatios{
		LimitOverMarket: Ratio(m.LimitRatio, m.MarketRatio),
		MarketOverLimit: Ratio(m.MarketRatio, m.LimitRatio),
	}
}

// Classify places m in the short or long table. Ratios of exactly 1 match neither.
func Classify(m models.FlowMetrics) (models.Side, bool) {
	switch {
	case m.LimitRatio > 1 && m.MarketRatio < 1:
		return models.SideShort, true
	case m.LimitRatio < 1 && m.MarketRatio > 1:
		return models.SideLong, true
	default:
		return "", false
	}
}
