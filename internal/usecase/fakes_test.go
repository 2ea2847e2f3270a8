package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"FlowScan/internal/domain/models"
	"FlowScan/pkg/logger"
)

type fakeSource struct {
	candidates []models.Candidate
	err        error
	gotLimit   int
}

func (f *fakeSource) TopByMarketCap(_ context.Context, limit int) ([]models.Candidate, error) {
	f.gotLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

type fakeCatalog struct {
	instruments []models.Instrument
	err         error
}

func (f *fakeCatalog) Instruments(context.Context) ([]models.Instrument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.instruments, nil
}

func perp(sym string) models.Instrument {
	return models.Instrument{
		Symbol:       sym,
		QuoteAsset:   "USDT",
		Status:       models.InstrumentTrading,
		ContractType: models.ContractPerpetual,
	}
}

// totals describes the evidence a symbol should produce.
type totals struct {
	limitBuy, limitSell, marketBuy, marketSell int64
}

type fakeMarket struct {
	mu      sync.Mutex
	flows   map[string]totals
	candles map[string][]models.Candle
	fail    map[string]bool
	panics  map[string]bool
	delay   map[string]time.Duration // depth latency per symbol
	calls   []string
}

func (f *fakeMarket) resetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *fakeMarket) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeMarket) OrderBook(_ context.Context, symbol string, _ int) (models.OrderBook, error) {
	f.record("depth:" + symbol)
	if d := f.delay[symbol]; d > 0 {
		time.Sleep(d)
	}
	if f.panics[symbol] {
		panic("boom")
	}
	if f.fail[symbol] {
		return models.OrderBook{}, errors.New("connection reset")
	}
	t := f.flows[symbol]
	return models.OrderBook{
		Bids: []models.BookLevel{{Price: decimal.NewFromInt(1), Quantity: decimal.NewFromInt(t.limitBuy)}},
		Asks: []models.BookLevel{{Price: decimal.NewFromInt(1), Quantity: decimal.NewFromInt(t.limitSell)}},
	}, nil
}

func (f *fakeMarket) AggTrades(_ context.Context, symbol string, _ int) ([]models.AggTrade, error) {
	f.record("trades:" + symbol)
	t := f.flows[symbol]
	return []models.AggTrade{
		{Price: decimal.NewFromInt(1), Quantity: decimal.NewFromInt(t.marketBuy), BuyerIsMaker: false},
		{Price: decimal.NewFromInt(1), Quantity: decimal.NewFromInt(t.marketSell), BuyerIsMaker: true},
	}, nil
}

func (f *fakeMarket) Candles(_ context.Context, symbol, _ string, _ int) ([]models.Candle, error) {
	f.record("klines:" + symbol)
	if f.panics[symbol] {
		panic("boom")
	}
	if f.fail[symbol] {
		return nil, errors.New("timeout")
	}
	return f.candles[symbol], nil
}

type nopMetrics struct{}

func (nopMetrics) RecordCycle(string, float64, error) {}
func (nopMetrics) RecordTask(string, bool)            {}
func (nopMetrics) RecordProgress(string, int, int)    {}
func (nopMetrics) RecordSignals(string, string, int)  {}
func (nopMetrics) RecordError(string)                 {}
func (nopMetrics) RecordLatency(string, float64)      {}

type fakeSink struct {
	mu             sync.Mutex
	flowReports    []*models.FlowReport
	signals        []models.PatternSignal
	patternReports []*models.PatternReport
	err            error
}

func (f *fakeSink) Name() string { return "fake" }

func (f *fakeSink) PublishFlowReport(_ context.Context, r *models.FlowReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flowReports = append(f.flowReports, r)
	return f.err
}

func (f *fakeSink) PublishPatternSignal(_ context.Context, s models.PatternSignal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signals = append(f.signals, s)
	return f.err
}

func (f *fakeSink) PublishPatternReport(_ context.Context, r *models.PatternReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patternReports = append(f.patternReports, r)
	return f.err
}

func (f *fakeSink) Close() error { return nil }

func newTestScanner(md *fakeMarket, workers int) *Scanner {
	f := NewFetcher(md, nil, nil, FetchOptions{Depth: 500, TradesLimit: 1000, CandleInterval: "2h", CandleLimit: 4}, nopMetrics{})
	return NewScanner(f, ScannerOptions{Workers: workers, ProgressEvery: 10, ChartURLBase: "https://binance.com/en/futures/"}, logger.Nop(), nopMetrics{})
}

func symbols(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("C%02dUSDT", i)
	}
	return out
}

type progressRecorder struct {
	nopMetrics
	tasks, failed int
	onProgress    func(done, total int)
}

func (p *progressRecorder) RecordTask(_ string, ok bool) {
	p.tasks++
	if !ok {
		p.failed++
	}
}

func (p *progressRecorder) RecordProgress(_ string, done, total int) {
	if p.onProgress != nil {
		p.onProgress(done, total)
	}
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.NewWithWriter(testWriter{t}, zerolog.DebugLevel)
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}
