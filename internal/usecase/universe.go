package usecase

import (
	"context"
	"fmt"
	"strings"

	"FlowScan/internal/domain"
	"FlowScan/internal/domain/models"
	drepo "FlowScan/internal/domain/repository"
	"FlowScan/pkg/config"
	"FlowScan/pkg/logger"
)

// UniverseOptions controls how the per-cycle symbol universe is built.
type UniverseOptions struct {
	Source           string // config.SourceRanked or config.SourceCatalog
	Target           int    // 0 means unbounded (catalog source only)
	Headroom         int    // extra candidates requested from the ranking
	Quote            string
	RequirePerpetual bool
}

// UniverseResolver intersects the market-cap ranking with the venue catalog.
type UniverseResolver struct {
	source  drepo.CandidateSource
	catalog drepo.InstrumentCatalog
	opts    UniverseOptions
	log     *logger.Logger
}

func NewUniverseResolver(source drepo.CandidateSource, catalog drepo.InstrumentCatalog, opts UniverseOptions, log *logger.Logger) *UniverseResolver {
	return &UniverseResolver{source: source, catalog: catalog, opts: opts, log: log}
}

// Resolve builds a fresh universe. Any unreadable or empty bulk source fails with
// domain.ErrSourceUnavailable; fewer matches than the target is not an error.
func (r *UniverseResolver) Resolve(ctx context.Context) ([]string, error) {
	instruments, err := r.catalog.Instruments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: instrument catalog: %w", domain.ErrSourceUnavailable, err)
	}
	ordered, tradable := TradableSymbols(instruments, r.opts.Quote, r.opts.RequirePerpetual)
	if len(ordered) == 0 {
		return nil, fmt.Errorf("%w: instrument catalog has no tradable %s contracts", domain.ErrSourceUnavailable, r.opts.Quote)
	}
	r.log.Info("instrument catalog loaded",
		logger.Int("instruments", len(instruments)),
		logger.Int("tradable", len(ordered)))

	if r.opts.Source == config.SourceCatalog {
		if r.opts.Target > 0 && len(ordered) > r.opts.Target {
			ordered = ordered[:r.opts.Target]
		}
		return ordered, nil
	}

	if r.source == nil {
		return nil, fmt.Errorf("%w: no candidate source configured", domain.ErrSourceUnavailable)
	}
	candidates, err := r.source.TopByMarketCap(ctx, r.opts.Target+r.opts.Headroom)
	if err != nil {
		return nil, fmt.Errorf("%w: market cap ranking: %w", domain.ErrSourceUnavailable, err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: market cap ranking is empty", domain.ErrSourceUnavailable)
	}

	universe := ResolveUniverse(candidates, tradable, r.opts.Quote, r.opts.Target)
	r.log.Info("universe resolved",
		logger.Int("candidates", len(candidates)),
		logger.Int("matched", len(universe)),
		logger.Int("target", r.opts.Target))
	return universe, nil
}

// TradableSymbols filters the catalog to trading contracts quoted in quote.
// The slice keeps catalog order, the set is for membership tests.
func TradableSymbols(instruments []models.Instrument, quote string, perpetualOnly bool) ([]string, map[string]struct{}) {
	ordered := make([]string, 0, len(instruments))
	set := make(map[string]struct{}, len(instruments))
	for _, in := range instruments {
		if in.QuoteAsset != quote || in.Status != models.InstrumentTrading {
			continue
		}
		if perpetualOnly && in.ContractType != models.ContractPerpetual {
			continue
		}
		if _, dup := set[in.Symbol]; dup {
			continue
		}
		set[in.Symbol] = struct{}{}
		ordered = append(ordered, in.Symbol)
	}
	return ordered, set
}

// ResolveUniverse walks candidates in rank order and keeps those whose venue symbol
// is tradable, stopping at target. Output order is a subsequence of the input order.
func ResolveUniverse(candidates []models.Candidate, tradable map[string]struct{}, quote string, target int) []string {
	if target <= 0 {
		return []string{}
	}
	out := make([]string, 0, min(target, len(candidates)))
	seen := make(map[string]struct{}, target)
	for _, c := range candidates {
		if len(out) == target {
			break
		}
		sym := VenueSymbol(c.Symbol, quote)
		if _, ok := tradable[sym]; !ok {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}

// VenueSymbol maps a ranking ticker to the venue pair, e.g. "btc" -> "BTCUSDT".
func VenueSymbol(ticker, quote string) string {
	return strings.ToUpper(strings.TrimSpace(ticker)) + quote
}
