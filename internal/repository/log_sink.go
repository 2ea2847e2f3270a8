package repository

import (
	"context"

	"FlowScan/internal/domain/models"
	"FlowScan/pkg/logger"
)

// LogSink writes cycle output to the structured log. It is always enabled.
type LogSink struct {
	l *logger.Logger
}

func NewLogSink(l *logger.Logger) *LogSink {
	return &LogSink{l: l.Named("report")}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) PublishFlowReport(_ context.Context, r *models.FlowReport) error {
	for _, row := range r.Summary {
		s.l.Debug("flow summary",
			logger.String("symbol", row.Symbol),
			logger.Int("rank", row.Rank),
			logger.Int64("limit_buy", row.Totals.LimitBuy),
			logger.Int64("limit_sell", row.Totals.LimitSell),
			logger.Int64("market_buy", row.Totals.MarketBuy),
			logger.Int64("market_sell", row.Totals.MarketSell),
			logger.Float64("limit_ratio", float64(row.LimitRatio)),
			logger.Float64("market_ratio", float64(row.MarketRatio)),
		)
	}
	s.l.Info("flow report",
		logger.String("cycle_id", r.CycleID),
		logger.Int("universe", len(r.Universe)),
		logger.Int("shorts", len(r.Shorts)),
		logger.Int("longs", len(r.Longs)),
		logger.Strings("failed", r.Failed),
		logger.Duration("duration_ms", r.Duration),
	)
	return nil
}

// PublishPatternSignal is a no-op: the scanner already logs every alert as it happens.
func (s *LogSink) PublishPatternSignal(context.Context, models.PatternSignal) error {
	return nil
}

func (s *LogSink) PublishPatternReport(_ context.Context, r *models.PatternReport) error {
	s.l.Info("pattern report",
		logger.String("cycle_id", r.CycleID),
		logger.Int("scanned", r.Scanned),
		logger.Int("signals", len(r.Signals)),
		logger.Int("failed", len(r.Failed)),
		logger.Duration("duration_ms", r.Duration),
	)
	return nil
}

func (s *LogSink) Close() error { return nil }
