package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"FlowScan/internal/domain/models"
	drepo "FlowScan/internal/domain/repository"
	"FlowScan/pkg/config"
	"FlowScan/pkg/logger"
)

// CycleOptions selects what a cycle scans and how cycles repeat.
type CycleOptions struct {
	Mode            string // config.ModeFlow or config.ModePattern
	Schedule        string // config.ScheduleOnce or config.ScheduleContinuous
	Interval        time.Duration
	SubtractElapsed bool
	TopN            int // rows of each ranked table written to the log
}

// CycleScheduler runs stateless scan cycles. Every cycle resolves a fresh universe
// and produces fresh results; nothing is carried over except the published snapshot.
type CycleScheduler struct {
	resolver *UniverseResolver
	scanner  *Scanner
	sink     drepo.ReportSink
	snapshot *SnapshotStore
	metrics  drepo.Metrics
	log      *logger.Logger
	opts     CycleOptions

	now   func() time.Time
	newID func() string
	wait  func(ctx context.Context, d time.Duration) error
}

func NewCycleScheduler(
	resolver *UniverseResolver,
	scanner *Scanner,
	sink drepo.ReportSink,
	snapshot *SnapshotStore,
	metrics drepo.Metrics,
	log *logger.Logger,
	opts CycleOptions,
) *CycleScheduler {
	if opts.TopN <= 0 {
		opts.TopN = 10
	}
	return &CycleScheduler{
		resolver: resolver,
		scanner:  scanner,
		sink:     sink,
		snapshot: snapshot,
		metrics:  metrics,
		log:      log,
		opts:     opts,
		now:      time.Now,
		newID:    uuid.NewString,
		wait:     sleepCtx,
	}
}

// Run executes cycles until ctx is cancelled, or exactly one cycle in once mode.
// A running cycle is never interrupted; ctx is only observed between cycles.
func (s *CycleScheduler) Run(ctx context.Context) error {
	for {
		started := s.now()
		err := s.RunOnce(context.WithoutCancel(ctx))
		if s.opts.Schedule != config.ScheduleContinuous {
			return err
		}
		if err != nil {
			s.log.Error("cycle failed, retrying next interval", logger.Error(err))
		}

		d := s.opts.Interval
		if s.opts.SubtractElapsed {
			d -= s.now().Sub(started)
			if d < 0 {
				d = 0
			}
		}
		s.log.Info("next cycle scheduled", logger.Duration("in_ms", d))
		if err := s.wait(ctx, d); err != nil {
			s.log.Info("scheduler stopped", logger.String("reason", err.Error()))
			return nil
		}
	}
}

// RunOnce performs one full cycle. Only an unavailable bulk source is returned as
// an error; per-symbol and sink failures are logged and counted.
func (s *CycleScheduler) RunOnce(ctx context.Context) error {
	id := s.newID()
	started := s.now()
	log := s.log.Named("cycle")
	log.Info("cycle started", logger.String("cycle_id", id), logger.String("mode", s.opts.Mode))

	universe, err := s.resolver.Resolve(ctx)
	if err != nil {
		s.finish(id, started, err)
		return err
	}

	switch s.opts.Mode {
	case config.ModePattern:
		s.patternCycle(ctx, id, started, universe)
	default:
		s.flowCycle(ctx, id, started, universe)
	}

	s.finish(id, started, nil)
	return nil
}

func (s *CycleScheduler) flowCycle(ctx context.Context, id string, started time.Time, universe []string) {
	results := s.scanner.ScanFlow(ctx, universe)
	shorts, longs := RankFlow(results)
	summary, failed := Summarize(results)

	report := &models.FlowReport{
		CycleID:   id,
		StartedAt: started,
		Duration:  s.now().Sub(started),
		Universe:  universe,
		Summary:   summary,
		Shorts:    shorts,
		Longs:     longs,
		Failed:    failed,
	}
	s.metrics.RecordSignals(config.ModeFlow, string(models.SideShort), len(shorts))
	s.metrics.RecordSignals(config.ModeFlow, string(models.SideLong), len(longs))

	s.logRanked(models.SideShort, shorts)
	s.logRanked(models.SideLong, longs)

	s.snapshot.SetFlow(report)
	if err := s.sink.PublishFlowReport(ctx, report); err != nil {
		s.log.Error("publish flow report", logger.String("cycle_id", id), logger.Error(err))
	}
}

func (s *CycleScheduler) patternCycle(ctx context.Context, id string, started time.Time, universe []string) {
	results := s.scanner.ScanPatterns(ctx, universe, func(sig models.PatternSignal) {
		if err := s.sink.PublishPatternSignal(ctx, sig); err != nil {
			s.log.Error("publish pattern signal", logger.String("symbol", sig.Symbol), logger.Error(err))
		}
	})
	signals, failed := Signals(results)

	report := &models.PatternReport{
		CycleID:   id,
		StartedAt: started,
		Duration:  s.now().Sub(started),
		Scanned:   len(universe),
		Failed:    failed,
		Signals:   signals,
	}
	s.metrics.RecordSignals(config.ModePattern, "swing_high_rejection", len(signals))
	if len(signals) == 0 {
		s.log.Info("no swing high rejection found", logger.Int("scanned", len(universe)))
	}

	s.snapshot.SetPattern(report)
	if err := s.sink.PublishPatternReport(ctx, report); err != nil {
		s.log.Error("publish pattern report", logger.String("cycle_id", id), logger.Error(err))
	}
}

func (s *CycleScheduler) logRanked(side models.Side, rows []models.RankedFlow) {
	if len(rows) == 0 {
		s.log.Info("no potential " + string(side) + " candidates")
		return
	}
	for i, r := range rows[:min(s.opts.TopN, len(rows))] {
		s.log.Info("potential "+string(side),
			logger.Int("position", i+1),
			logger.String("symbol", r.Symbol),
			logger.Int("rank", r.Rank),
			logger.Float64("limit_ratio", float64(r.LimitRatio)),
			logger.Float64("market_ratio", float64(r.MarketRatio)),
			logger.Float64("score", float64(r.Score)))
	}
}

func (s *CycleScheduler) finish(id string, started time.Time, err error) {
	elapsed := s.now().Sub(started)
	s.metrics.RecordCycle(s.opts.Mode, elapsed.Seconds(), err)
	s.snapshot.MarkCycle(s.now(), err)
	if err != nil {
		s.metrics.RecordError("cycle")
		s.log.Error("cycle aborted", logger.String("cycle_id", id), logger.Error(err))
		return
	}
	s.log.Info("cycle finished", logger.String("cycle_id", id), logger.Duration("elapsed_ms", elapsed))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
