package repository

import (
	"context"

	"FlowScan/internal/domain/models"
)

// CandidateSource returns instruments ranked by market capitalisation, best first.
type CandidateSource interface {
	TopByMarketCap(ctx context.Context, limit int) ([]models.Candidate, error)
}

// InstrumentCatalog lists the contracts currently known to the venue.
type InstrumentCatalog interface {
	Instruments(ctx context.Context) ([]models.Instrument, error)
}

// MarketData serves per-symbol evidence. Every call is one outbound read.
type MarketData interface {
	OrderBook(ctx context.Context, symbol string, depth int) (models.OrderBook, error)
	AggTrades(ctx context.Context, symbol string, limit int) ([]models.AggTrade, error)
	Candles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error)
}

// ReportSink receives the output of a cycle. Sinks are write-only.
type ReportSink interface {
	Name() string
	PublishFlowReport(ctx context.Context, r *models.FlowReport) error
	PublishPatternSignal(ctx context.Context, s models.PatternSignal) error
	PublishPatternReport(ctx context.Context, r *models.PatternReport) error
	Close() error
}

type Metrics interface {
	RecordCycle(mode string, seconds float64, err error)
	RecordTask(mode string, ok bool)
	RecordProgress(mode string, done, total int)
	RecordSignals(mode, kind string, n int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
