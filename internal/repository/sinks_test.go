package repository

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"FlowScan/internal/domain/models"
	pkgkafka "FlowScan/pkg/kafka"
	"FlowScan/pkg/logger"
)

func report() *models.FlowReport {
	return &models.FlowReport{
		CycleID:   "c1",
		StartedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Universe:  []string{"AUSDT", "BUSDT", "CUSDT", "DUSDT"},
		Summary: []models.FlowSummaryRow{
			{Symbol: "AUSDT", Rank: 1, Totals: models.RoundedTotals{LimitBuy: 1000, LimitSell: 500, MarketBuy: 100, MarketSell: 300}, LimitRatio: 2, MarketRatio: models.Ratio(1.0 / 3)},
			{Symbol: "BUSDT", Rank: 2, LimitRatio: 0.5, MarketRatio: 3},
			{Symbol: "CUSDT", Rank: 3, LimitRatio: models.Ratio(math.Inf(1)), MarketRatio: models.Ratio(math.Inf(1))},
		},
		Shorts: []models.RankedFlow{{Symbol: "AUSDT", Rank: 1, Score: 6}},
		Longs:  []models.RankedFlow{{Symbol: "BUSDT", Rank: 2, Score: 6}},
		Failed: []string{"DUSDT"},
	}
}

func TestFlowRows(t *testing.T) {
	rows := FlowRows(report())
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Side != "short" || rows[0].Position != 1 || rows[0].Score == nil || *rows[0].Score != 6 {
		t.Fatalf("unexpected short row %+v", rows[0])
	}
	if rows[1].Side != "long" {
		t.Fatalf("unexpected long row %+v", rows[1])
	}
	if rows[2].Side != "" || rows[2].Score != nil {
		t.Fatalf("unranked row must have no side: %+v", rows[2])
	}

	b, err := json.Marshal(rows[2])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"limit_ratio":"Inf"`) || strings.Contains(string(b), "score") {
		t.Fatalf("unexpected json %s", b)
	}
}

type published struct {
	topic string
	key   string
	value interface{}
}

type fakeProducer struct {
	msgs []published
	err  error
}

func (p *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	p.msgs = append(p.msgs, published{topic, string(key), value})
	return p.err
}

func (p *fakeProducer) PublishBatch(_ context.Context, topic string, messages []pkgkafka.Message) error {
	for _, m := range messages {
		p.msgs = append(p.msgs, published{topic, string(m.Key), m.Value})
	}
	return p.err
}

func (p *fakeProducer) Close() error { return nil }

func TestKafkaSinkRoutesTopics(t *testing.T) {
	p := &fakeProducer{}
	s := NewKafkaSink(p, KafkaTopics{Flow: "flow", Signals: "signals", Reports: "reports"})

	if err := s.PublishFlowReport(context.Background(), report()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(p.msgs) != 4 {
		t.Fatalf("expected 3 rows and 1 report, got %d", len(p.msgs))
	}
	if p.msgs[0].topic != "flow" || p.msgs[0].key != "AUSDT" || p.msgs[3].topic != "reports" || p.msgs[3].key != "c1" {
		t.Fatalf("unexpected routing %+v", p.msgs)
	}

	p.msgs = nil
	_ = s.PublishPatternSignal(context.Background(), models.PatternSignal{Symbol: "XUSDT"})
	_ = s.PublishPatternReport(context.Background(), &models.PatternReport{CycleID: "p1"})
	if p.msgs[0].topic != "signals" || p.msgs[0].key != "XUSDT" || p.msgs[1].topic != "reports" {
		t.Fatalf("unexpected routing %+v", p.msgs)
	}
}

func TestKafkaSinkStopsOnRowFailure(t *testing.T) {
	p := &fakeProducer{err: errors.New("leader not available")}
	s := NewKafkaSink(p, KafkaTopics{Flow: "flow", Reports: "reports"})
	if err := s.PublishFlowReport(context.Background(), report()); err == nil {
		t.Fatalf("expected error")
	}
	for _, m := range p.msgs {
		if m.topic == "reports" {
			t.Fatalf("report must not be sent after row failure")
		}
	}
}

type fakeRedis struct {
	published map[string]int
	keys      map[string]time.Duration
}

func (r *fakeRedis) Publish(_ context.Context, channel string, _ interface{}) (int64, error) {
	r.published[channel]++
	return 1, nil
}

func (r *fakeRedis) Set(_ context.Context, key string, _ interface{}, exp time.Duration) error {
	r.keys[key] = exp
	return nil
}

func (r *fakeRedis) Close() error { return nil }

func TestRedisSink(t *testing.T) {
	r := &fakeRedis{published: map[string]int{}, keys: map[string]time.Duration{}}
	s := NewRedisSink(r, "flowscan:signals", time.Hour)

	_ = s.PublishPatternSignal(context.Background(), models.PatternSignal{Symbol: "AUSDT"})
	_ = s.PublishFlowReport(context.Background(), report())
	_ = s.PublishPatternReport(context.Background(), &models.PatternReport{})

	if r.published["flowscan:signals"] != 1 {
		t.Fatalf("signal not published: %v", r.published)
	}
	if r.keys["flow:latest"] != time.Hour || r.keys["patterns:latest"] != time.Hour {
		t.Fatalf("snapshots not stored: %v", r.keys)
	}
}

func TestClickHouseValues(t *testing.T) {
	vals := flowValues(FlowRows(report()))
	if len(vals) != 3 || len(vals[0]) != len(flowColumns) {
		t.Fatalf("values do not match columns")
	}
	if vals[0][12] != 6.0 || vals[2][12] != nil {
		t.Fatalf("unexpected score column %v %v", vals[0][12], vals[2][12])
	}
	if !math.IsInf(vals[2][8].(float64), 1) {
		t.Fatalf("infinite ratio must be stored as +Inf")
	}

	sig := signalValues(models.PatternSignal{Symbol: "AUSDT", Price: 9, CapturedAt: time.Now()})
	if len(sig) != len(signalColumns) {
		t.Fatalf("signal values do not match columns")
	}

	stmts := SchemaStatements("flowscan")
	if len(stmts) != 3 || !strings.Contains(stmts[1], "flowscan.flow_rows") {
		t.Fatalf("unexpected schema %v", stmts)
	}
}

type stubSink struct {
	name   string
	err    error
	calls  int
	closed bool
}

func (s *stubSink) Name() string { return s.name }
func (s *stubSink) PublishFlowReport(context.Context, *models.FlowReport) error {
	s.calls++
	return s.err
}
func (s *stubSink) PublishPatternSignal(context.Context, models.PatternSignal) error {
	s.calls++
	return s.err
}
func (s *stubSink) PublishPatternReport(context.Context, *models.PatternReport) error {
	s.calls++
	return s.err
}
func (s *stubSink) Close() error {
	s.closed = true
	return s.err
}

type countingMetrics struct {
	errors map[string]int
}

func (countingMetrics) RecordCycle(string, float64, error) {}
func (countingMetrics) RecordTask(string, bool)            {}
func (countingMetrics) RecordProgress(string, int, int)    {}
func (countingMetrics) RecordSignals(string, string, int)  {}
func (m countingMetrics) RecordError(kind string)          { m.errors[kind]++ }
func (countingMetrics) RecordLatency(string, float64)      {}

func TestFanoutIsolatesFailingSink(t *testing.T) {
	bad := &stubSink{name: "bad", err: errors.New("down")}
	good := &stubSink{name: "good"}
	m := countingMetrics{errors: map[string]int{}}
	f := NewFanout(logger.Nop(), m, time.Second, bad, good)

	err := f.PublishFlowReport(context.Background(), report())
	if err == nil || !strings.Contains(err.Error(), "bad") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if good.calls != 1 {
		t.Fatalf("healthy sink must still receive the report")
	}
	if m.errors["sink_bad"] != 1 {
		t.Fatalf("sink error not counted: %v", m.errors)
	}

	_ = f.PublishPatternSignal(context.Background(), models.PatternSignal{})
	_ = f.PublishPatternReport(context.Background(), &models.PatternReport{})
	if good.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", good.calls)
	}

	if err := f.Close(); err == nil || !bad.closed || !good.closed {
		t.Fatalf("close must reach every sink")
	}
	if names := f.Sinks(); len(names) != 2 || names[0] != "bad" {
		t.Fatalf("unexpected sinks %v", names)
	}
}

func TestLogSink(t *testing.T) {
	s := NewLogSink(logger.Nop())
	if err := s.PublishFlowReport(context.Background(), report()); err != nil {
		t.Fatalf("log sink: %v", err)
	}
	if err := s.PublishPatternReport(context.Background(), &models.PatternReport{}); err != nil {
		t.Fatalf("log sink: %v", err)
	}
}
