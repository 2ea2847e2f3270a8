package usecase

import (
	"FlowScan/internal/domain/models"
	drepo "FlowScan/internal/domain/repository"
	"FlowScan/pkg/logger"
)

// progressEvent is sent by a worker once its task has finished.
type progressEvent struct {
	symbol string
	err    error
	signal *models.PatternSignal
}

// progressReporter is the only writer of the completion counter and the alert stream.
type progressReporter struct {
	mode     string
	total    int
	every    int
	done     int
	failed   int
	log      *logger.Logger
	metrics  drepo.Metrics
	onSignal func(models.PatternSignal)
}

func newProgressReporter(mode string, total, every int, log *logger.Logger, metrics drepo.Metrics, onSignal func(models.PatternSignal)) *progressReporter {
	if every < 1 {
		every = 1
	}
	return &progressReporter{mode: mode, total: total, every: every, log: log, metrics: metrics, onSignal: onSignal}
}

// consume drains events until the channel is closed.
func (p *progressReporter) consume(events <-chan progressEvent) {
	for ev := range events {
		p.handle(ev)
	}
}

func (p *progressReporter) handle(ev progressEvent) {
	p.done++
	p.metrics.RecordTask(p.mode, ev.err == nil)

	if ev.err != nil {
		p.failed++
		p.log.Warn("symbol skipped", logger.String("symbol", ev.symbol), logger.Error(ev.err))
	}
	if ev.signal != nil {
		p.log.Info("swing high rejection",
			logger.String("symbol", ev.signal.Symbol),
			logger.Float64("price", ev.signal.Price),
			logger.String("captured_at", ev.signal.CapturedAt.Format("2006-01-02 15:04:05 MST")),
			logger.String("chart", ev.signal.ChartURL))
		if p.onSignal != nil {
			p.onSignal(*ev.signal)
		}
	}

	if p.done%p.every == 0 || p.done == p.total {
		p.metrics.RecordProgress(p.mode, p.done, p.total)
		p.log.Info("scan progress",
			logger.Int("done", p.done),
			logger.Int("total", p.total),
			logger.Int("failed", p.failed))
	}
}
