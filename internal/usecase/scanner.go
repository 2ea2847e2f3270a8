package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"FlowScan/internal/domain/models"
	drepo "FlowScan/internal/domain/repository"
	"FlowScan/internal/services/features"
	"FlowScan/pkg/config"
	"FlowScan/pkg/logger"
)

var errTaskNotRun = errors.New("task did not run")

// ScannerOptions configures the worker pool and the alert decoration.
type ScannerOptions struct {
	Workers       int
	ProgressEvery int
	Location      *time.Location
	ChartURLBase  string
}

// Scanner runs one task per symbol over a bounded pool of workers.
type Scanner struct {
	fetcher *Fetcher
	opts    ScannerOptions
	log     *logger.Logger
	metrics drepo.Metrics
	now     func() time.Time
}

func NewScanner(fetcher *Fetcher, opts ScannerOptions, log *logger.Logger, metrics drepo.Metrics) *Scanner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Scanner{fetcher: fetcher, opts: opts, log: log, metrics: metrics, now: time.Now}
}

// ScanFlow computes flow metrics for every symbol. The result slice is in
// universe order; failed symbols carry Err and zero metrics.
func (s *Scanner) ScanFlow(ctx context.Context, universe []string) []models.FlowResult {
	results := make([]models.FlowResult, len(universe))
	for i, sym := range universe {
		results[i] = models.FlowResult{Symbol: sym, Rank: i + 1, Err: errTaskNotRun}
	}

	s.run(ctx, config.ModeFlow, universe, nil, func(ctx context.Context, i int, sym string) progressEvent {
		book, trades, err := s.fetcher.FetchFlow(ctx, sym)
		if err != nil {
			results[i].Err = err
			return progressEvent{symbol: sym, err: err}
		}
		m := features.ComputeFlow(book, trades)
		results[i] = models.FlowResult{
			Symbol:    sym,
			Rank:      i + 1,
			Metrics:   m,
			Composite: features.Composite(m),
		}
		return progressEvent{symbol: sym}
	}, func(i int, err error) { results[i].Err = err })
	return results
}

// ScanPatterns evaluates the swing-high rejection for every symbol. onSignal is
// called from a single goroutine, in completion order.
func (s *Scanner) ScanPatterns(ctx context.Context, universe []string, onSignal func(models.PatternSignal)) []models.PatternResult {
	results := make([]models.PatternResult, len(universe))
	for i, sym := range universe {
		results[i] = models.PatternResult{Symbol: sym, Rank: i + 1, Err: errTaskNotRun}
	}

	s.run(ctx, config.ModePattern, universe, onSignal, func(ctx context.Context, i int, sym string) progressEvent {
		candles, err := s.fetcher.FetchCandles(ctx, sym)
		if err != nil {
			results[i].Err = err
			return progressEvent{symbol: sym, err: err}
		}
		w, err := features.NewCandleWindow(candles)
		if err != nil {
			results[i].Err = err
			return progressEvent{symbol: sym, err: err}
		}

		res := models.PatternResult{Symbol: sym, Rank: i + 1, Window: w}
		if features.EvaluateSwingHighRejection(w).Confirmed() {
			res.Signal = &models.PatternSignal{
				Symbol:     sym,
				Confirmed:  true,
				Price:      w.Current.Close,
				CapturedAt: s.now().In(s.opts.Location),
				ChartURL:   s.opts.ChartURLBase + sym,
			}
		}
		results[i] = res
		return progressEvent{symbol: sym, signal: res.Signal}
	}, func(i int, err error) { results[i].Err = err })
	return results
}

type taskFunc func(ctx context.Context, index int, symbol string) progressEvent

// failFunc records a failure marker for a task that panicked.
type failFunc func(index int, err error)

// run fans universe out to the workers and blocks until every task has reported.
func (s *Scanner) run(ctx context.Context, mode string, universe []string, onSignal func(models.PatternSignal), task taskFunc, fail failFunc) {
	if len(universe) == 0 {
		return
	}
	workers := min(s.opts.Workers, len(universe))

	jobs := make(chan int)
	events := make(chan progressEvent, workers)
	reporter := newProgressReporter(mode, len(universe), s.opts.ProgressEvery, s.log, s.metrics, onSignal)

	reported := make(chan struct{})
	go func() {
		defer close(reported)
		reporter.consume(events)
	}()

	s.log.Info("scan started",
		logger.String("mode", mode),
		logger.Int("symbols", len(universe)),
		logger.Int("workers", workers))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				events <- s.runTask(ctx, i, universe[i], task, fail)
			}
		}()
	}

	for i := range universe {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	close(events)
	<-reported
}

func (s *Scanner) runTask(ctx context.Context, i int, sym string, task taskFunc, fail failFunc) (ev progressEvent) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("task panic: %v", r)
			fail(i, err)
			ev = progressEvent{symbol: sym, err: err}
			s.metrics.RecordError("task_panic")
		}
	}()
	return task(ctx, i, sym)
}
