package models

import "time"

// FlowSummaryRow is one line of the unranked, rank-ordered summary.
type FlowSummaryRow struct {
	Symbol      string        `json:"symbol"`
	Rank        int           `json:"rank"`
	Totals      RoundedTotals `json:"totals"`
	LimitRatio  Ratio         `json:"limit_ratio"`
	MarketRatio Ratio         `json:"market_ratio"`
}

// FlowReport is the snapshot produced by one flow cycle.
type FlowReport struct {
	CycleID   string           `json:"cycle_id"`
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration_ns"`
	Universe  []string         `json:"universe"`
	Summary   []FlowSummaryRow `json:"summary"`
	Shorts    []RankedFlow     `json:"shorts"`
	Longs     []RankedFlow     `json:"longs"`
	Failed    []string         `json:"failed"`
}

// PatternReport is the snapshot produced by one pattern cycle.
type PatternReport struct {
	CycleID   string          `json:"cycle_id"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"duration_ns"`
	Scanned   int             `json:"scanned"`
	Failed    []string        `json:"failed"`
	Signals   []PatternSignal `json:"signals"`
}
