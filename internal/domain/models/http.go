package models

import "time"

// FlowLatestRequest filters the latest flow report.
type FlowLatestRequest struct {
	Side  string `query:"side" json:"side" default:"all" validate:"oneof=all short long"`
	Limit int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=400"`
}

// FlowLatestResponse is the latest flow report cut to the requested side and size.
type FlowLatestResponse struct {
	CycleID   string           `json:"cycle_id"`
	StartedAt time.Time        `json:"started_at"`
	Universe  int              `json:"universe"`
	Failed    []string         `json:"failed"`
	Shorts    []RankedFlow     `json:"shorts,omitempty"`
	Longs     []RankedFlow     `json:"longs,omitempty"`
	Summary   []FlowSummaryRow `json:"summary,omitempty"`
}
