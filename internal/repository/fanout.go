package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FlowScan/internal/domain/models"
	drepo "FlowScan/internal/domain/repository"
	"FlowScan/pkg/logger"
)

// Fanout hands every output to all sinks. A failing sink is logged and counted and
// never stops the others.
type Fanout struct {
	sinks   []drepo.ReportSink
	metrics drepo.Metrics
	l       *logger.Logger
	timeout time.Duration
}

func NewFanout(l *logger.Logger, metrics drepo.Metrics, timeout time.Duration, sinks ...drepo.ReportSink) *Fanout {
	return &Fanout{sinks: sinks, metrics: metrics, l: l, timeout: timeout}
}

func (f *Fanout) Name() string { return "fanout" }

// Sinks returns the names of the configured sinks.
func (f *Fanout) Sinks() []string {
	names := make([]string, len(f.sinks))
	for i, s := range f.sinks {
		names[i] = s.Name()
	}
	return names
}

func (f *Fanout) PublishFlowReport(ctx context.Context, r *models.FlowReport) error {
	return f.each(ctx, "flow_report", func(ctx context.Context, s drepo.ReportSink) error {
		return s.PublishFlowReport(ctx, r)
	})
}

func (f *Fanout) PublishPatternSignal(ctx context.Context, sig models.PatternSignal) error {
	return f.each(ctx, "pattern_signal", func(ctx context.Context, s drepo.ReportSink) error {
		return s.PublishPatternSignal(ctx, sig)
	})
}

func (f *Fanout) PublishPatternReport(ctx context.Context, r *models.PatternReport) error {
	return f.each(ctx, "pattern_report", func(ctx context.Context, s drepo.ReportSink) error {
		return s.PublishPatternReport(ctx, r)
	})
}

// Close closes every sink and joins their errors.
func (f *Fanout) Close() error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) each(ctx context.Context, op string, fn func(context.Context, drepo.ReportSink) error) error {
	var errs []error
	for _, s := range f.sinks {
		start := time.Now()
		sctx, cancel := f.withTimeout(ctx)
		err := fn(sctx, s)
		cancel()
		f.metrics.RecordLatency("sink_"+s.Name()+"_"+op, time.Since(start).Seconds())
		if err != nil {
			f.metrics.RecordError("sink_" + s.Name())
			f.l.Error("sink publish failed",
				logger.String("sink", s.Name()),
				logger.String("op", op),
				logger.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.timeout)
}
