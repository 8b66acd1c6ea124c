package aggregator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-query-lab/internal/domain"
	"crypto-query-lab/internal/observability"
	"crypto-query-lab/internal/provider"
	"crypto-query-lab/internal/provider/stub"
	"crypto-query-lab/internal/synthetic"
)

var now = time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)

func newAggregator(events observability.Sink) *Aggregator {
	return New(Options{
		Generator: synthetic.New(synthetic.Options{Seed: 1, Now: func() time.Time { return now }}),
		Events:    events,
		Now:       func() time.Time { return now },
	})
}

func prices(symbols ...string) []domain.Record {
	out := make([]domain.Record, len(symbols))
	for i, s := range symbols {
		out[i] = &domain.PriceRecord{Symbol: s, PriceUSD: float64(i + 1)}
	}
	return out
}

func TestAggregate_ShortCircuitsOnFirstValidResult(t *testing.T) {
	a := stub.NewFailingProvider("A", provider.FailureNetwork)
	b := stub.NewStubProvider("B", prices("SOL", "BTC", "ETH"))
	c := stub.NewStubProvider("C", prices("DOGE"))

	res := newAggregator(nil).Aggregate(context.Background(), domain.CategoryPrice, domain.Criteria{Limit: 10}, []provider.Provider{a, b, c})

	assert.Equal(t, "B", res.Provenance)
	assert.Equal(t, 3, res.Count)
	assert.Len(t, res.Records, 3)
	assert.Equal(t, domain.KindPrice, res.Kind)
	assert.False(t, res.IsSynthetic())
	assert.Equal(t, 1, a.Calls())
	assert.Equal(t, 1, b.Calls())
	assert.Equal(t, 0, c.Calls(), "providers after a success are never called")
}

func TestAggregate_DegradesToSynthetic(t *testing.T) {
	chain := []provider.Provider{
		stub.NewStubProvider("empty", nil),
		stub.NewStubProvider("invalid", []domain.Record{
			&domain.TokenRecord{Name: "", MarketCapUSD: 100},
			&domain.TokenRecord{Name: "zero", MarketCapUSD: 0},
		}),
		stub.NewFailingProvider("malformed", provider.FailureMalformed),
	}

	res := newAggregator(nil).Aggregate(context.Background(), domain.CategoryTokenLaunch, domain.Criteria{Limit: 25}, chain)

	assert.Equal(t, domain.ProvenanceSynthetic, res.Provenance)
	assert.True(t, res.IsSynthetic())
	assert.Equal(t, 25, res.Count)
	require.Len(t, res.Records, 25)
	assert.True(t, res.ValidationExhausted)
	for _, r := range res.Records {
		assert.Equal(t, domain.KindToken, r.Kind())
	}
}

func TestAggregate_ValidationExhaustedOnlyWhenRecordsWereDropped(t *testing.T) {
	chain := []provider.Provider{
		stub.NewStubProvider("empty", nil),
		stub.NewFailingProvider("down", provider.FailureNetwork),
	}
	res := newAggregator(nil).Aggregate(context.Background(), domain.CategoryDefiTVL, domain.Criteria{Limit: 5}, chain)

	assert.True(t, res.IsSynthetic())
	assert.False(t, res.ValidationExhausted)
	assert.Equal(t, 5, res.Count)
}

func TestAggregate_LaterSuccessClearsExhaustion(t *testing.T) {
	chain := []provider.Provider{
		stub.NewStubProvider("bad", []domain.Record{&domain.PriceRecord{Symbol: "SOL", PriceUSD: 0}}),
		stub.NewStubProvider("good", prices("SOL")),
	}
	res := newAggregator(nil).Aggregate(context.Background(), domain.CategoryPrice, domain.Criteria{Limit: 1}, chain)

	assert.Equal(t, "good", res.Provenance)
	assert.False(t, res.ValidationExhausted)
}

func TestAggregate_RecoversProviderPanic(t *testing.T) {
	rec := &observability.Recorder{}
	chain := []provider.Provider{
		stub.NewPanickingProvider("boom"),
		stub.NewStubProvider("ok", prices("SOL")),
	}

	res := newAggregator(rec).Aggregate(context.Background(), domain.CategoryPrice, domain.Criteria{}, chain)
	assert.Equal(t, "ok", res.Provenance)

	fetches := rec.Named(observability.EventProviderFetch)
	require.Len(t, fetches, 2)
	assert.Equal(t, "boom", fetches[0].Provider)
	assert.Equal(t, string(provider.FailureNetwork), fetches[0].Outcome)
	assert.Error(t, fetches[0].Err)
	assert.Equal(t, OutcomeOK, fetches[1].Outcome)
}

func TestAggregate_FiltersTokensByThresholdAndWindow(t *testing.T) {
	threshold := 19000.0
	criteria := domain.Criteria{Threshold: &threshold, WindowHours: 1, Platform: domain.PlatformPumpFun, Limit: 50}

	first := stub.NewStubProvider("first", []domain.Record{
		&domain.TokenRecord{Name: "tiny", MarketCapUSD: 5000, CreatedAt: now.Add(-10 * time.Minute)},
		&domain.TokenRecord{Name: "old", MarketCapUSD: 90000, CreatedAt: now.Add(-3 * time.Hour)},
	})
	second := stub.NewStubProvider("second", []domain.Record{
		&domain.TokenRecord{Name: "hit", MarketCapUSD: 25000, CreatedAt: now.Add(-30 * time.Minute)},
		&domain.TokenRecord{Name: "exact", MarketCapUSD: 19000, CreatedAt: now.Add(-30 * time.Minute)},
		&domain.TokenRecord{Name: "undated", MarketCapUSD: 40000},
	})

	rec := &observability.Recorder{}
	res := newAggregator(rec).Aggregate(context.Background(), domain.CategoryTokenLaunch, criteria, []provider.Provider{first, second})

	assert.Equal(t, "second", res.Provenance)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "hit", res.Records[0].DisplayName())
	assert.Equal(t, "undated", res.Records[1].DisplayName())

	got, ok := first.LastCriteria()
	require.True(t, ok)
	assert.Equal(t, 1, got.WindowHours)

	fetches := rec.Named(observability.EventProviderFetch)
	require.Len(t, fetches, 2)
	assert.Equal(t, OutcomeFiltered, fetches[0].Outcome)
}

func TestAggregate_SyntheticHonoursCriteria(t *testing.T) {
	threshold := 19000.0
	criteria := domain.Criteria{Threshold: &threshold, WindowHours: 1, Limit: 50}

	res := newAggregator(nil).Aggregate(context.Background(), domain.CategoryTokenLaunch, criteria, nil)
	require.Len(t, res.Records, 50)
	for _, r := range res.Records {
		tok := r.(*domain.TokenRecord)
		assert.Greater(t, tok.MarketCapUSD, threshold)
		assert.LessOrEqual(t, now.Sub(tok.CreatedAt), time.Hour)
	}
}

func TestAggregate_TruncatesToLimit(t *testing.T) {
	p := stub.NewStubProvider("many", prices("A", "B", "C", "D", "E"))
	res := newAggregator(nil).Aggregate(context.Background(), domain.CategoryPrice, domain.Criteria{Limit: 2}, []provider.Provider{p})

	assert.Equal(t, 2, res.Count)
	assert.Equal(t, "A", res.Records[0].(*domain.PriceRecord).Symbol)
}

func TestAggregate_CancelledContextSkipsProviders(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := stub.NewStubProvider("never", prices("SOL"))

	res := newAggregator(nil).Aggregate(ctx, domain.CategoryPrice, domain.Criteria{Symbols: []string{"SOL"}, Limit: 1}, []provider.Provider{p})
	assert.True(t, res.IsSynthetic())
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, 0, p.Calls())
}

func TestAggregate_EmitsAggregationEvent(t *testing.T) {
	rec := &observability.Recorder{}
	newAggregator(rec).Aggregate(context.Background(), domain.CategoryNews, domain.Criteria{Limit: 3}, nil)

	events := rec.Named(observability.EventAggregation)
	require.Len(t, events, 1)
	assert.Equal(t, "news", events[0].Category)
	assert.Equal(t, domain.ProvenanceSynthetic, events[0].Provenance)
	assert.Equal(t, 3, events[0].Count)
}
