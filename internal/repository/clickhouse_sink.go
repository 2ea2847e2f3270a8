package repository

import (
	"context"
	"fmt"

	"FlowScan/internal/domain/models"
	pkgch "FlowScan/pkg/clickhouse"
)

const insertChunk = 2000

// SchemaStatements creates the archive tables in database.
func SchemaStatements(database string) []string {
	return []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.flow_rows (
            cycle_id     String,
            started_at   DateTime64(3, 'UTC'),
            symbol       LowCardinality(String),
            rank         UInt16,
            limit_buy    Int64,
            limit_sell   Int64,
            market_buy   Int64,
            market_sell  Int64,
            limit_ratio  Float64,
            market_ratio Float64,
            side         LowCardinality(String),
            position     UInt16,
            score        Nullable(Float64)
        ) ENGINE = MergeTree
        ORDER BY (started_at, symbol)`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.pattern_signals (
            captured_at DateTime64(3, 'UTC'),
            symbol      LowCardinality(String),
            price       Float64,
            chart_url   String
        ) ENGINE = MergeTree
        ORDER BY (captured_at, symbol)`, database),
	}
}

var (
	flowColumns   = []string{"cycle_id", "started_at", "symbol", "rank", "limit_buy", "limit_sell", "market_buy", "market_sell", "limit_ratio", "market_ratio", "side", "position", "score"}
	signalColumns = []string{"captured_at", "symbol", "price", "chart_url"}
)

// ClickHouseSink archives flow rows and pattern signals. Nothing is read back.
type ClickHouseSink struct {
	ch       *pkgch.Client
	database string
}

func NewClickHouseSink(ch *pkgch.Client, database string) *ClickHouseSink {
	return &ClickHouseSink{ch: ch, database: database}
}

// Init creates the database and tables when missing.
func (s *ClickHouseSink) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, SchemaStatements(s.database))
}

func (s *ClickHouseSink) Name() string { return "clickhouse" }

func (s *ClickHouseSink) PublishFlowReport(ctx context.Context, r *models.FlowReport) error {
	return s.ch.InsertRows(ctx, s.database+".flow_rows", flowColumns, flowValues(FlowRows(r)), insertChunk)
}

func (s *ClickHouseSink) PublishPatternSignal(ctx context.Context, sig models.PatternSignal) error {
	return s.ch.InsertRows(ctx, s.database+".pattern_signals", signalColumns, [][]any{signalValues(sig)}, insertChunk)
}

// PublishPatternReport is a no-op: signals were archived as they streamed in.
func (s *ClickHouseSink) PublishPatternReport(context.Context, *models.PatternReport) error {
	return nil
}

func (s *ClickHouseSink) Close() error {
	return s.ch.Close()
}

func flowValues(rows []FlowRow) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		var score any
		if r.Score != nil {
			score = float64(*r.Score)
		}
		out[i] = []any{
			r.CycleID, r.StartedAt.UTC(), r.Symbol, uint16(r.Rank),
			r.LimitBuy, r.LimitSell, r.MarketBuy, r.MarketSell,
			float64(r.LimitRatio), float64(r.MarketRatio),
			r.Side, uint16(r.Position), score,
		}
	}
	return out
}

func signalValues(sig models.PatternSignal) []any {
	return []any{sig.CapturedAt.UTC(), sig.Symbol, sig.Price, sig.ChartURL}
}
