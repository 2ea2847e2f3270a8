package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"FlowScan/internal/domain"
	"FlowScan/internal/domain/models"
	"FlowScan/pkg/config"
	"FlowScan/pkg/logger"
)

func newTestCycle(t *testing.T, mode, schedule string, md *fakeMarket, src *fakeSource, cat *fakeCatalog, sink *fakeSink) *CycleScheduler {
	t.Helper()
	source := config.SourceRanked
	if mode == config.ModePattern {
		source = config.SourceCatalog
	}
	resolver := NewUniverseResolver(src, cat, UniverseOptions{Source: source, Target: 10, Headroom: 200, Quote: "USDT"}, logger.Nop())
	s := NewCycleScheduler(resolver, newTestScanner(md, 2), sink, NewSnapshotStore(), nopMetrics{}, logger.Nop(), CycleOptions{
		Mode:     mode,
		Schedule: schedule,
		Interval: time.Minute,
	})
	n := 0
	s.newID = func() string {
		n++
		return "cycle-" + string(rune('0'+n))
	}
	return s
}

func flowFixture() (*fakeMarket, *fakeSource, *fakeCatalog) {
	md := &fakeMarket{
		flows: map[string]totals{
			"BTCUSDT": {1000, 500, 100, 300},
			"ETHUSDT": {50, 0, 0, 0},
			"SOLUSDT": {100, 400, 900, 300},
		},
		fail: map[string]bool{"XRPUSDT": true},
	}
	src := &fakeSource{candidates: []models.Candidate{
		{Symbol: "BTC", Rank: 1}, {Symbol: "USDT", Rank: 2}, {Symbol: "ETH", Rank: 3},
		{Symbol: "XRP", Rank: 4}, {Symbol: "SOL", Rank: 5},
	}}
	cat := &fakeCatalog{instruments: []models.Instrument{perp("SOLUSDT"), perp("XRPUSDT"), perp("ETHUSDT"), perp("BTCUSDT")}}
	return md, src, cat
}

func TestRunOnceFlowPublishesReport(t *testing.T) {
	md, src, cat := flowFixture()
	sink := &fakeSink{}
	s := newTestCycle(t, config.ModeFlow, config.ScheduleOnce, md, src, cat, sink)

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if len(sink.flowReports) != 1 {
		t.Fatalf("expected one report, got %d", len(sink.flowReports))
	}
	r := sink.flowReports[0]
	if !equal(r.Universe, []string{"BTCUSDT", "ETHUSDT", "XRPUSDT", "SOLUSDT"}) {
		t.Fatalf("universe %v", r.Universe)
	}
	if !equal(rowSymbols(r.Shorts), []string{"BTCUSDT"}) || !equal(rowSymbols(r.Longs), []string{"SOLUSDT"}) {
		t.Fatalf("shorts %v longs %v", r.Shorts, r.Longs)
	}
	if !equal(r.Failed, []string{"XRPUSDT"}) || len(r.Summary) != 3 {
		t.Fatalf("failed %v summary %d", r.Failed, len(r.Summary))
	}
	if got, ok := s.snapshot.Flow(); !ok || got.CycleID != r.CycleID {
		t.Fatalf("snapshot not updated")
	}
	if s.snapshot.Health().Status != "ok" {
		t.Fatalf("health %+v", s.snapshot.Health())
	}
}

func TestRunOnceSourceUnavailable(t *testing.T) {
	md, _, cat := flowFixture()
	sink := &fakeSink{}
	s := newTestCycle(t, config.ModeFlow, config.ScheduleOnce, md, &fakeSource{err: errors.New("401")}, cat, sink)

	err := s.RunOnce(context.Background())
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	if len(md.calls) != 0 || len(sink.flowReports) != 0 {
		t.Fatalf("no scan may run after a source failure")
	}
	if s.snapshot.Health().Status != "degraded" {
		t.Fatalf("health %+v", s.snapshot.Health())
	}
}

func TestRunOnceSinkErrorIsNotFatal(t *testing.T) {
	md, src, cat := flowFixture()
	s := newTestCycle(t, config.ModeFlow, config.ScheduleOnce, md, src, cat, &fakeSink{err: errors.New("broker down")})
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("sink failure must not fail the cycle: %v", err)
	}
}

func TestRunOncePatternStreamsSignals(t *testing.T) {
	md := &fakeMarket{candles: map[string][]models.Candle{
		"AUSDT": rejection(),
		"BUSDT": {candle(1, 1, 1, 1), candle(1, 1, 1, 1), candle(1, 1, 1, 1)},
		"CUSDT": rejection(),
	}}
	cat := &fakeCatalog{instruments: []models.Instrument{perp("AUSDT"), perp("BUSDT"), perp("CUSDT")}}
	sink := &fakeSink{}
	s := newTestCycle(t, config.ModePattern, config.ScheduleOnce, md, nil, cat, sink)

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if len(sink.signals) != 2 {
		t.Fatalf("expected 2 streamed signals, got %d", len(sink.signals))
	}
	if len(sink.patternReports) != 1 {
		t.Fatalf("expected pattern report")
	}
	r := sink.patternReports[0]
	if r.Scanned != 3 || len(r.Signals) != 2 || r.Signals[0].Symbol != "AUSDT" || r.Signals[1].Symbol != "CUSDT" {
		t.Fatalf("unexpected report %+v", r)
	}
}

func TestRunOnceModeReturnsAfterOneCycle(t *testing.T) {
	md, src, cat := flowFixture()
	sink := &fakeSink{}
	s := newTestCycle(t, config.ModeFlow, config.ScheduleOnce, md, src, cat, sink)
	s.wait = func(context.Context, time.Duration) error {
		t.Fatalf("once mode must not wait")
		return nil
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sink.flowReports) != 1 {
		t.Fatalf("expected one cycle, got %d", len(sink.flowReports))
	}

	s = newTestCycle(t, config.ModeFlow, config.ScheduleOnce, md, &fakeSource{}, cat, sink)
	if err := s.Run(context.Background()); !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("once mode must return the fatal error, got %v", err)
	}
}

func TestRunContinuousStopsOnCancelBetweenCycles(t *testing.T) {
	md, src, cat := flowFixture()
	sink := &fakeSink{}
	s := newTestCycle(t, config.ModeFlow, config.ScheduleContinuous, md, src, cat, sink)
	s.opts.SubtractElapsed = true

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(5 * time.Second)
		return clock
	}

	ctx, cancel := context.WithCancel(context.Background())
	var waits []time.Duration
	s.wait = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		if len(waits) == 3 {
			cancel()
		}
		return ctx.Err()
	}

	if err := s.Run(ctx); err != nil {
		t.Fatalf("cancelled run must end cleanly: %v", err)
	}
	if len(sink.flowReports) != 3 {
		t.Fatalf("expected 3 cycles, got %d", len(sink.flowReports))
	}
	for _, d := range waits {
		if d >= time.Minute || d < 0 {
			t.Fatalf("elapsed time not subtracted: %v", d)
		}
	}
	ids := map[string]bool{}
	for _, r := range sink.flowReports {
		ids[r.CycleID] = true
	}
	if len(ids) != 3 {
		t.Fatalf("cycle ids must be fresh: %v", ids)
	}
}

func TestRunContinuousRetriesAfterFatalCycle(t *testing.T) {
	md, _, cat := flowFixture()
	src := &fakeSource{err: errors.New("429")}
	sink := &fakeSink{}
	s := newTestCycle(t, config.ModeFlow, config.ScheduleContinuous, md, src, cat, sink)

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	s.wait = func(ctx context.Context, d time.Duration) error {
		attempts++
		if d != time.Minute {
			t.Fatalf("expected full interval, got %v", d)
		}
		if attempts == 1 {
			src.err = nil
			src.candidates = []models.Candidate{{Symbol: "BTC"}}
			return nil
		}
		cancel()
		return ctx.Err()
	}
	if err := s.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sink.flowReports) != 1 {
		t.Fatalf("expected recovery on second cycle, got %d reports", len(sink.flowReports))
	}
}

func TestSleepCtx(t *testing.T) {
	if err := sleepCtx(context.Background(), 0); err != nil {
		t.Fatalf("zero wait: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepCtx(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancel, got %v", err)
	}
}
