package usecase

import (
	"context"
	"fmt"
	"time"

	"FlowScan/internal/domain"
	"FlowScan/internal/domain/models"
	drepo "FlowScan/internal/domain/repository"
	"FlowScan/internal/service/ratelimit"
)

// FetchOptions sizes the evidence requested per symbol.
type FetchOptions struct {
	Depth          int
	TradesLimit    int
	CandleInterval string
	CandleLimit    int
}

// Fetcher performs the reads of one symbol sequentially, pausing before the
// first read and between the depth and trades reads.
type Fetcher struct {
	md       drepo.MarketData
	task     *ratelimit.Throttle
	evidence *ratelimit.Throttle
	opts     FetchOptions
	metrics  drepo.Metrics
}

func NewFetcher(md drepo.MarketData, task, evidence *ratelimit.Throttle, opts FetchOptions, metrics drepo.Metrics) *Fetcher {
	return &Fetcher{md: md, task: task, evidence: evidence, opts: opts, metrics: metrics}
}

// FetchFlow reads the order book, then the recent trades of symbol.
func (f *Fetcher) FetchFlow(ctx context.Context, symbol string) (models.OrderBook, []models.AggTrade, error) {
	if err := f.task.Wait(ctx); err != nil {
		return models.OrderBook{}, nil, err
	}

	start := time.Now()
	book, err := f.md.OrderBook(ctx, symbol, f.opts.Depth)
	f.metrics.RecordLatency("fetch_depth", time.Since(start).Seconds())
	if err != nil {
		f.metrics.RecordError("fetch_depth")
		return models.OrderBook{}, nil, fmt.Errorf("%w: %w", domain.ErrEvidenceUnavailable, err)
	}

	if err := f.evidence.Wait(ctx); err != nil {
		return models.OrderBook{}, nil, err
	}

	start = time.Now()
	trades, err := f.md.AggTrades(ctx, symbol, f.opts.TradesLimit)
	f.metrics.RecordLatency("fetch_trades", time.Since(start).Seconds())
	if err != nil {
		f.metrics.RecordError("fetch_trades")
		return models.OrderBook{}, nil, fmt.Errorf("%w: %w", domain.ErrEvidenceUnavailable, err)
	}
	return book, trades, nil
}

// FetchCandles reads the recent candles of symbol in one call.
func (f *Fetcher) FetchCandles(ctx context.Context, symbol string) ([]models.Candle, error) {
	if err := f.task.Wait(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	candles, err := f.md.Candles(ctx, symbol, f.opts.CandleInterval, f.opts.CandleLimit)
	f.metrics.RecordLatency("fetch_candles", time.Since(start).Seconds())
	if err != nil {
		f.metrics.RecordError("fetch_candles")
		return nil, fmt.Errorf("%w: %w", domain.ErrEvidenceUnavailable, err)
	}
	return candles, nil
}
