package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"FlowScan/internal/domain"
	"FlowScan/internal/domain/models"
	"FlowScan/pkg/config"
	"FlowScan/pkg/logger"
)

func TestResolveUniverseKeepsRankOrder(t *testing.T) {
	candidates := []models.Candidate{
		{Symbol: "BTC", Rank: 1},
		{Symbol: "USDC", Rank: 2},
		{Symbol: "eth", Rank: 3},
		{Symbol: "SOL", Rank: 4},
	}
	tradable := map[string]struct{}{"BTCUSDT": {}, "ETHUSDT": {}, "SOLUSDT": {}}

	got := ResolveUniverse(candidates, tradable, "USDT", 2)
	want := []string{"BTCUSDT", "ETHUSDT"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestResolveUniverseFewerMatchesThanTarget(t *testing.T) {
	candidates := []models.Candidate{{Symbol: "BTC"}, {Symbol: "XYZ"}, {Symbol: "ETH"}}
	tradable := map[string]struct{}{"BTCUSDT": {}, "ETHUSDT": {}}

	got := ResolveUniverse(candidates, tradable, "USDT", 10)
	if len(got) != 2 || got[0] != "BTCUSDT" || got[1] != "ETHUSDT" {
		t.Fatalf("unexpected universe %v", got)
	}
}

func TestResolveUniverseDuplicateCandidates(t *testing.T) {
	candidates := []models.Candidate{{Symbol: "BTC"}, {Symbol: "btc"}, {Symbol: "ETH"}}
	tradable := map[string]struct{}{"BTCUSDT": {}, "ETHUSDT": {}}

	got := ResolveUniverse(candidates, tradable, "USDT", 3)
	if !reflect.DeepEqual(got, []string{"BTCUSDT", "ETHUSDT"}) {
		t.Fatalf("unexpected universe %v", got)
	}
}

func TestResolveUniverseSubsequenceProperty(t *testing.T) {
	var candidates []models.Candidate
	tradable := map[string]struct{}{}
	for i, s := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		candidates = append(candidates, models.Candidate{Symbol: s, Rank: i + 1})
		if i%3 != 1 {
			tradable[s+"USDT"] = struct{}{}
		}
	}
	for target := 0; target <= 10; target++ {
		got := ResolveUniverse(candidates, tradable, "USDT", target)
		if len(got) > target {
			t.Fatalf("target %d: len %d", target, len(got))
		}
		pos := -1
		for _, sym := range got {
			if _, ok := tradable[sym]; !ok {
				t.Fatalf("target %d: %s not tradable", target, sym)
			}
			idx := -1
			for i, c := range candidates {
				if c.Symbol+"USDT" == sym {
					idx = i
				}
			}
			if idx <= pos {
				t.Fatalf("target %d: order broken at %s", target, sym)
			}
			pos = idx
		}
	}
}

func TestTradableSymbolsFilters(t *testing.T) {
	instruments := []models.Instrument{
		perp("BTCUSDT"),
		{Symbol: "ETHBUSD", QuoteAsset: "BUSD", Status: models.InstrumentTrading, ContractType: models.ContractPerpetual},
		{Symbol: "LUNAUSDT", QuoteAsset: "USDT", Status: "SETTLING", ContractType: models.ContractPerpetual},
		{Symbol: "BTCUSDT_250926", QuoteAsset: "USDT", Status: models.InstrumentTrading, ContractType: "CURRENT_QUARTER"},
		perp("SOLUSDT"),
	}

	ordered, _ := TradableSymbols(instruments, "USDT", true)
	if !reflect.DeepEqual(ordered, []string{"BTCUSDT", "SOLUSDT"}) {
		t.Fatalf("perpetual only: %v", ordered)
	}
	ordered, set := TradableSymbols(instruments, "USDT", false)
	if len(ordered) != 3 {
		t.Fatalf("any contract: %v", ordered)
	}
	if _, ok := set["BTCUSDT_250926"]; !ok {
		t.Fatalf("expected quarterly contract in set")
	}
}

func TestResolverRequestsHeadroom(t *testing.T) {
	src := &fakeSource{candidates: []models.Candidate{{Symbol: "BTC"}, {Symbol: "ETH"}}}
	cat := &fakeCatalog{instruments: []models.Instrument{perp("BTCUSDT"), perp("ETHUSDT")}}
	r := NewUniverseResolver(src, cat, UniverseOptions{Source: config.SourceRanked, Target: 5, Headroom: 200, Quote: "USDT"}, logger.Nop())

	got, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if src.gotLimit != 205 {
		t.Fatalf("expected limit 205, got %d", src.gotLimit)
	}
	if !reflect.DeepEqual(got, []string{"BTCUSDT", "ETHUSDT"}) {
		t.Fatalf("unexpected universe %v", got)
	}
}

func TestResolverSourceFailures(t *testing.T) {
	good := &fakeCatalog{instruments: []models.Instrument{perp("BTCUSDT")}}
	opts := UniverseOptions{Source: config.SourceRanked, Target: 5, Quote: "USDT"}

	cases := map[string]*UniverseResolver{
		"ranking error": NewUniverseResolver(&fakeSource{err: errors.New("401")}, good, opts, logger.Nop()),
		"ranking empty": NewUniverseResolver(&fakeSource{}, good, opts, logger.Nop()),
		"catalog error": NewUniverseResolver(&fakeSource{candidates: []models.Candidate{{Symbol: "BTC"}}}, &fakeCatalog{err: errors.New("503")}, opts, logger.Nop()),
		"catalog empty": NewUniverseResolver(&fakeSource{candidates: []models.Candidate{{Symbol: "BTC"}}}, &fakeCatalog{}, opts, logger.Nop()),
	}
	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := r.Resolve(context.Background())
			if !errors.Is(err, domain.ErrSourceUnavailable) {
				t.Fatalf("expected ErrSourceUnavailable, got %v", err)
			}
		})
	}
}

func TestResolverCatalogSource(t *testing.T) {
	cat := &fakeCatalog{instruments: []models.Instrument{perp("BTCUSDT"), perp("ETHUSDT"), perp("SOLUSDT")}}
	r := NewUniverseResolver(nil, cat, UniverseOptions{Source: config.SourceCatalog, Target: 2, Quote: "USDT", RequirePerpetual: true}, logger.Nop())

	got, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"BTCUSDT", "ETHUSDT"}) {
		t.Fatalf("unexpected universe %v", got)
	}

	r.opts.Target = 0
	got, _ = r.Resolve(context.Background())
	if len(got) != 3 {
		t.Fatalf("unbounded catalog universe: %v", got)
	}
}
