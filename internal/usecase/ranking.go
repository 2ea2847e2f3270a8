package usecase

import (
	"sort"

	"FlowScan/internal/domain/models"
	"FlowScan/internal/services/features"
)

// RankFlow splits successful results into the short and long tables.
// Shorts are ordered by LimitOverMarket, longs by MarketOverLimit, both descending;
// ties keep universe order.
func RankFlow(results []models.FlowResult) (shorts, longs []models.RankedFlow) {
	shorts = []models.RankedFlow{}
	longs = []models.RankedFlow{}
	for _, r := range results {
		if r.Failed() {
			continue
		}
		side, ok := features.Classify(r.Metrics)
		if !ok {
			continue
		}
		row := models.RankedFlow{
			Symbol:      r.Symbol,
			Rank:        r.Rank,
			LimitRatio:  models.Ratio(r.Metrics.LimitRatio),
			MarketRatio: models.Ratio(r.Metrics.MarketRatio),
		}
		switch side {
		case models.SideShort:
			row.Score = models.Ratio(r.Composite.LimitOverMarket)
			shorts = append(shorts, row)
		case models.SideLong:
			row.Score = models.Ratio(r.Composite.MarketOverLimit)
			longs = append(longs, row)
		}
	}

	byScore := func(rows []models.RankedFlow) func(i, j int) bool {
		return func(i, j int) bool { return rows[i].Score > rows[j].Score }
	}
	sort.SliceStable(shorts, byScore(shorts))
	sort.SliceStable(longs, byScore(longs))
	return shorts, longs
}

// Summarize returns the display rows of successful results in universe order and
// the symbols that failed.
func Summarize(results []models.FlowResult) ([]models.FlowSummaryRow, []string) {
	rows := make([]models.FlowSummaryRow, 0, len(results))
	failed := []string{}
	for _, r := range results {
		if r.Failed() {
			failed = append(failed, r.Symbol)
			continue
		}
		rows = append(rows, models.FlowSummaryRow{
			Symbol:      r.Symbol,
			Rank:        r.Rank,
			Totals:      r.Metrics.Rounded(),
			LimitRatio:  models.Ratio(r.Metrics.LimitRatio),
			MarketRatio: models.Ratio(r.Metrics.MarketRatio),
		})
	}
	return rows, failed
}

// Signals collects confirmed signals of a pattern scan with the failed symbols.
// Signals are in universe order here; the live alert stream is in completion order.
func Signals(results []models.PatternResult) ([]models.PatternSignal, []string) {
	signals := []models.PatternSignal{}
	failed := []string{}
	for _, r := range results {
		if r.Failed() {
			failed = append(failed, r.Symbol)
			continue
		}
		if r.Signal != nil {
			signals = append(signals, *r.Signal)
		}
	}
	return signals, failed
}
