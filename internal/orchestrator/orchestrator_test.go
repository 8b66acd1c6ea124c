package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-query-lab/internal/aggregator"
	"crypto-query-lab/internal/config"
	"crypto-query-lab/internal/domain"
	"crypto-query-lab/internal/observability"
	"crypto-query-lab/internal/provider"
	"crypto-query-lab/internal/provider/stub"
	"crypto-query-lab/internal/synthetic"
)

var now = time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)

type chainKey struct {
	category domain.Category
	platform domain.Platform
}

// fixedChains hands out preconfigured chains.
type fixedChains map[chainKey][]provider.Provider

func (f fixedChains) Chain(category domain.Category, platform domain.Platform) []provider.Provider {
	return f[chainKey{category, platform}]
}

// panickingAggregator panics for one category and delegates otherwise.
type panickingAggregator struct {
	Aggregator
	category domain.Category
}

func (p panickingAggregator) Aggregate(ctx context.Context, category domain.Category, c domain.Criteria, chain []provider.Provider) domain.AggregationResult {
	if category == p.category {
		panic("boom")
	}
	return p.Aggregator.Aggregate(ctx, category, c, chain)
}

func newAggregator(events observability.Sink) *aggregator.Aggregator {
	return aggregator.New(aggregator.Options{
		Generator: synthetic.New(synthetic.Options{Seed: 7, Now: func() time.Time { return now }}),
		Events:    events,
		Now:       func() time.Time { return now },
	})
}

func newOrchestrator(chains ChainBuilder, agg Aggregator, events observability.Sink) *Orchestrator {
	return New(Options{
		Chains:     chains,
		Aggregator: agg,
		Limits:     config.Default().Limits,
		Events:     events,
	})
}

func token(name string, mcap float64, platform domain.Platform) *domain.TokenRecord {
	return &domain.TokenRecord{Name: name, Symbol: name, MarketCapUSD: mcap, Platform: platform, CreatedAt: now.Add(-10 * time.Minute)}
}

func intentOf(p domain.IntentParams) domain.QueryIntent {
	return domain.NewQueryIntent(p)
}

func TestHandle_SingleCategory(t *testing.T) {
	chains := fixedChains{
		{domain.CategoryPrice, ""}: {stub.NewStubProvider("coingecko", []domain.Record{
			&domain.PriceRecord{Symbol: "SOL", Name: "Solana", PriceUSD: 150},
		})},
	}
	o := newOrchestrator(chains, newAggregator(nil), nil)

	out, err := o.Handle(context.Background(), intentOf(domain.IntentParams{
		Category: domain.CategoryPrice,
		Symbols:  []string{"SOL"},
	}))

	require.NoError(t, err)
	require.Len(t, out.Records, 1)
	assert.Equal(t, domain.KindPrice, out.Metadata.Kind)
	assert.Equal(t, []string{"coingecko"}, out.Metadata.Providers)
	assert.Equal(t, 1, out.Metadata.TotalCount)
	assert.GreaterOrEqual(t, out.Elapsed, time.Duration(0))
}

func TestHandle_CombinedRunsBothPlatformsConcurrently(t *testing.T) {
	const delay = 150 * time.Millisecond
	pump := stub.NewStubProvider("pumpfun", []domain.Record{
		token("AAA", 30_000, domain.PlatformPumpFun),
		token("BBB", 90_000, domain.PlatformPumpFun),
	}, stub.WithDelay(delay))
	bonk := stub.NewStubProvider("geckoterminal-letsbonk", []domain.Record{
		token("CCC", 60_000, domain.PlatformLetsBonk),
	}, stub.WithDelay(delay))
	chains := fixedChains{
		{domain.CategoryCombined, domain.PlatformPumpFun}:  {pump},
		{domain.CategoryCombined, domain.PlatformLetsBonk}: {bonk},
	}
	o := newOrchestrator(chains, newAggregator(nil), nil)

	out, err := o.Handle(context.Background(), intentOf(domain.IntentParams{Category: domain.CategoryCombined}))

	require.NoError(t, err)
	assert.Less(t, out.Elapsed, 2*delay, "branches must overlap")
	assert.GreaterOrEqual(t, out.Elapsed, delay)
	assert.Equal(t, 1, pump.Calls())
	assert.Equal(t, 1, bonk.Calls())

	require.Len(t, out.Records, 3)
	names := []string{out.Records[0].DisplayName(), out.Records[1].DisplayName(), out.Records[2].DisplayName()}
	assert.Equal(t, []string{"BBB", "CCC", "AAA"}, names, "merged by market cap descending")
	assert.Equal(t, []string{"pumpfun", "geckoterminal-letsbonk"}, out.Metadata.Providers)
	assert.Equal(t, domain.KindToken, out.Metadata.Kind)

	pumpCriteria, ok := pump.LastCriteria()
	require.True(t, ok)
	assert.Equal(t, domain.PlatformPumpFun, pumpCriteria.Platform)
	bonkCriteria, ok := bonk.LastCriteria()
	require.True(t, ok)
	assert.Equal(t, domain.PlatformLetsBonk, bonkCriteria.Platform)
}

func TestHandle_SupplementaryRecordsAppended(t *testing.T) {
	chains := fixedChains{
		{domain.CategoryPrice, ""}: {stub.NewStubProvider("coingecko", []domain.Record{
			&domain.PriceRecord{Symbol: "SOL", PriceUSD: 150},
		})},
		{domain.CategoryNews, ""}: {stub.NewStubProvider("rss", []domain.Record{
			&domain.NewsRecord{Title: "SOL ETF filed"},
			&domain.NewsRecord{Title: "Validators upgrade"},
		})},
		{domain.CategorySentiment, ""}: {stub.NewStubProvider("feargreed", []domain.Record{
			&domain.SentimentRecord{Name: "Crypto Fear & Greed Index", Score: 62, Classification: "Greed"},
		})},
	}
	o := newOrchestrator(chains, newAggregator(nil), nil)

	out, err := o.Handle(context.Background(), intentOf(domain.IntentParams{
		Category:         domain.CategoryPrice,
		Symbols:          []string{"SOL"},
		IncludeNews:      true,
		IncludeSentiment: true,
	}))

	require.NoError(t, err)
	require.Len(t, out.Records, 4)
	assert.Equal(t, domain.KindPrice, out.Records[0].Kind())
	assert.Equal(t, domain.KindNews, out.Records[1].Kind())
	assert.Equal(t, domain.KindNews, out.Records[2].Kind())
	assert.Equal(t, domain.KindSentiment, out.Records[3].Kind())
	assert.Equal(t, domain.KindPrice, out.Metadata.Kind)
	assert.Equal(t, []string{"coingecko", "rss", "feargreed"}, out.Metadata.Providers)
	assert.Equal(t, 4, out.Metadata.TotalCount)
}

func TestHandle_SupplementaryFailureIsNonFatal(t *testing.T) {
	chains := fixedChains{
		{domain.CategoryPrice, ""}: {stub.NewStubProvider("coingecko", []domain.Record{
			&domain.PriceRecord{Symbol: "SOL", PriceUSD: 150},
		})},
	}
	rec := &observability.Recorder{}
	agg := panickingAggregator{Aggregator: newAggregator(nil), category: domain.CategoryNews}
	o := newOrchestrator(chains, agg, rec)

	out, err := o.Handle(context.Background(), intentOf(domain.IntentParams{
		Category:    domain.CategoryPrice,
		Symbols:     []string{"SOL"},
		IncludeNews: true,
	}))

	require.NoError(t, err)
	require.Len(t, out.Records, 1)
	assert.Equal(t, []string{"coingecko"}, out.Metadata.Providers)

	failed := rec.Named(observability.EventSupplementaryFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "news", failed[0].Category)
	assert.Error(t, failed[0].Err)
}

func TestHandle_PrimaryPanicIsReturnedAsError(t *testing.T) {
	agg := panickingAggregator{Aggregator: newAggregator(nil), category: domain.CategoryDefiTVL}
	o := newOrchestrator(fixedChains{}, agg, nil)

	_, err := o.Handle(context.Background(), intentOf(domain.IntentParams{Category: domain.CategoryDefiTVL}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestHandle_SyntheticPriceForSingleSymbol(t *testing.T) {
	chains := fixedChains{
		{domain.CategoryPrice, ""}: {
			stub.NewFailingProvider("coingecko", provider.FailureNetwork),
			stub.NewFailingProvider("binance", provider.FailureMalformed),
			stub.NewStubProvider("coincap", nil),
		},
	}
	o := newOrchestrator(chains, newAggregator(nil), nil)

	out, err := o.Handle(context.Background(), intentOf(domain.IntentParams{
		Category: domain.CategoryPrice,
		Symbols:  []string{"SOL"},
	}))

	require.NoError(t, err)
	require.Len(t, out.Records, 1)
	sol, ok := out.Records[0].(*domain.PriceRecord)
	require.True(t, ok)
	assert.Equal(t, "SOL", sol.Symbol)
	assert.InDelta(t, 170, sol.PriceUSD, 50)
	assert.Equal(t, []string{domain.ProvenanceSynthetic}, out.Metadata.Providers)
}

func TestHandle_ValidationExhaustedPropagates(t *testing.T) {
	chains := fixedChains{
		{domain.CategoryDefiTVL, ""}: {stub.NewStubProvider("defillama", []domain.Record{
			&domain.ProtocolRecord{Name: "broken", TVLUSD: -5},
		})},
	}
	o := newOrchestrator(chains, newAggregator(nil), nil)

	out, err := o.Handle(context.Background(), intentOf(domain.IntentParams{Category: domain.CategoryDefiTVL}))

	require.NoError(t, err)
	assert.True(t, out.Metadata.ValidationExhausted)
	assert.Len(t, out.Records, config.Default().Limits.Protocols)
}

func TestCriteria(t *testing.T) {
	o := newOrchestrator(fixedChains{}, newAggregator(nil), nil)
	threshold := 19000.0

	tests := []struct {
		name     string
		intent   domain.QueryIntent
		category domain.Category
		platform domain.Platform
		want     domain.Criteria
	}{
		{
			name:     "token launch",
			intent:   intentOf(domain.IntentParams{Category: domain.CategoryTokenLaunch, Threshold: &threshold, WindowHours: 1}),
			category: domain.CategoryTokenLaunch,
			want:     domain.Criteria{Symbols: []string{}, WindowHours: 1, Threshold: &threshold, Platform: domain.PlatformPumpFun, Limit: 50},
		},
		{
			name:     "ecosystem defaults to letsbonk",
			intent:   intentOf(domain.IntentParams{Category: domain.CategoryEcosystemToken}),
			category: domain.CategoryEcosystemToken,
			want:     domain.Criteria{Symbols: []string{}, WindowHours: 24, Platform: domain.PlatformLetsBonk, Limit: 50},
		},
		{
			name:     "price limit follows symbols",
			intent:   intentOf(domain.IntentParams{Category: domain.CategoryPrice, Symbols: []string{"SOL", "BTC"}}),
			category: domain.CategoryPrice,
			want:     domain.Criteria{Symbols: []string{"SOL", "BTC"}, WindowHours: 24, Limit: 2},
		},
		{
			name:     "price without symbols",
			intent:   intentOf(domain.IntentParams{Category: domain.CategoryGeneralMarket}),
			category: domain.CategoryGeneralMarket,
			want:     domain.Criteria{Symbols: []string{}, WindowHours: 24, Limit: 10},
		},
		{
			name:     "market-wide sentiment",
			intent:   intentOf(domain.IntentParams{Category: domain.CategoryPrice}),
			category: domain.CategorySentiment,
			want:     domain.Criteria{Symbols: []string{}, WindowHours: 24, Limit: 1},
		},
		{
			name:     "yield keeps chain and minimum apy",
			intent:   intentOf(domain.IntentParams{Category: domain.CategoryDefiYield, Threshold: &threshold, Chain: "Solana"}),
			category: domain.CategoryDefiYield,
			want:     domain.Criteria{Symbols: []string{}, WindowHours: 24, Threshold: &threshold, Chain: "Solana", Limit: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, o.Criteria(tt.intent, tt.category, tt.platform))
		})
	}
}
