package repository

import (
	"time"

	"FlowScan/internal/domain/models"
)

// FlowRow is the per-symbol record the Kafka and ClickHouse sinks emit for a flow cycle.
type FlowRow struct {
	CycleID     string        `json:"cycle_id"`
	StartedAt   time.Time     `json:"started_at"`
	Symbol      string        `json:"symbol"`
	Rank        int           `json:"rank"`
	LimitBuy    int64         `json:"limit_buy"`
	LimitSell   int64         `json:"limit_sell"`
	MarketBuy   int64         `json:"market_buy"`
	MarketSell  int64         `json:"market_sell"`
	LimitRatio  models.Ratio  `json:"limit_ratio"`
	MarketRatio models.Ratio  `json:"market_ratio"`
	Side        string        `json:"side,omitempty"`
	Position    int           `json:"position,omitempty"`
	Score       *models.Ratio `json:"score,omitempty"`
}

// FlowRows flattens a report into one row per successful symbol, in rank order.
// Ranked symbols carry their side, table position and score.
func FlowRows(r *models.FlowReport) []FlowRow {
	type placement struct {
		side     models.Side
		position int
		score    models.Ratio
	}
	placed := make(map[string]placement, len(r.Shorts)+len(r.Longs))
	for i, row := range r.Shorts {
		placed[row.Symbol] = placement{models.SideShort, i + 1, row.Score}
	}
	for i, row := range r.Longs {
		placed[row.Symbol] = placement{models.SideLong, i + 1, row.Score}
	}

	rows := make([]FlowRow, 0, len(r.Summary))
	for _, s := range r.Summary {
		row := FlowRow{
			CycleID:     r.CycleID,
			StartedAt:   r.StartedAt,
			Symbol:      s.Symbol,
			Rank:        s.Rank,
			LimitBuy:    s.Totals.LimitBuy,
			LimitSell:   s.Totals.LimitSell,
			MarketBuy:   s.Totals.MarketBuy,
			MarketSell:  s.Totals.MarketSell,
			LimitRatio:  s.LimitRatio,
			MarketRatio: s.MarketRatio,
		}
		if p, ok := placed[s.Symbol]; ok {
			score := p.score
			row.Side = string(p.side)
			row.Position = p.position
			row.Score = &score
		}
		rows = append(rows, row)
	}
	return rows
}
