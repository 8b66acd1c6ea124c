package validation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-query-lab/internal/domain"
)

func TestClean_DropsInvalidRecords(t *testing.T) {
	input := []domain.Record{
		&domain.PriceRecord{Symbol: "SOL", PriceUSD: 0},
		&domain.ProtocolRecord{Name: "Jito", TVLUSD: -5},
		&domain.YieldPoolRecord{Project: "raydium", Symbol: "SOL-USDC", APY: 2_000_000, TVLUSD: 1000},
		&domain.TokenRecord{Name: "", MarketCapUSD: 50_000},
	}

	assert.Empty(t, Clean(input))
}

func TestClean_KeepsValidRecordsInOrder(t *testing.T) {
	a := &domain.PriceRecord{Symbol: "SOL", PriceUSD: 150}
	b := &domain.ProtocolRecord{Name: "Jito", TVLUSD: 2e9}
	c := &domain.YieldPoolRecord{Project: "kamino", Symbol: "USDC", APY: 8.5, TVLUSD: 1e6}
	d := &domain.TokenRecord{Name: "Fartcoin", MarketCapUSD: 25_000}

	input := []domain.Record{
		a,
		&domain.PriceRecord{Symbol: "ETH", PriceUSD: -1},
		b,
		c,
		&domain.TrendingRecord{Name: "   "},
		d,
	}

	got := Clean(input)
	require.Len(t, got, 4)
	assert.Same(t, a, got[0])
	assert.Same(t, b, got[1])
	assert.Same(t, c, got[2])
	assert.Same(t, d, got[3])
}

func TestClean_Idempotent(t *testing.T) {
	input := []domain.Record{
		&domain.TokenRecord{Name: "A", MarketCapUSD: 10},
		&domain.TokenRecord{Name: "B", MarketCapUSD: 0},
		&domain.NewsRecord{Title: "SOL ETF filed"},
		&domain.NewsRecord{Title: ""},
		&domain.SentimentRecord{Name: "Fear & Greed", Score: 55},
		&domain.SentimentRecord{Name: "Fear & Greed", Score: 120},
		&domain.YieldPoolRecord{Project: "orca", APY: -1, TVLUSD: 10},
		&domain.YieldPoolRecord{Project: "orca", APY: math.NaN(), TVLUSD: 10},
	}

	once := Clean(input)
	twice := Clean(once)
	assert.Equal(t, once, twice)
	assert.Len(t, once, 3)
}

func TestClean_DoesNotMutateInput(t *testing.T) {
	input := []domain.Record{
		&domain.TokenRecord{Name: "", MarketCapUSD: 10},
		&domain.TokenRecord{Name: "kept", MarketCapUSD: 10},
	}
	_ = Clean(input)
	assert.Equal(t, "", input[0].DisplayName())
	assert.Equal(t, "kept", input[1].DisplayName())
}

func TestValid(t *testing.T) {
	tests := []struct {
		name   string
		record domain.Record
		want   bool
	}{
		{"price zero", &domain.PriceRecord{Symbol: "SOL", PriceUSD: 0}, false},
		{"price positive", &domain.PriceRecord{Symbol: "SOL", PriceUSD: 0.0001}, true},
		{"price missing symbol", &domain.PriceRecord{PriceUSD: 10}, false},
		{"price blank name with symbol", &domain.PriceRecord{Symbol: "SOL", Name: "  ", PriceUSD: 10}, true},
		{"price negative market cap", &domain.PriceRecord{Symbol: "SOL", PriceUSD: 10, MarketCapUSD: -1}, false},
		{"protocol zero tvl", &domain.ProtocolRecord{Name: "x", TVLUSD: 0}, false},
		{"yield apy at bound", &domain.YieldPoolRecord{Project: "x", APY: MaxAPYPercent, TVLUSD: 1}, true},
		{"yield apy over bound", &domain.YieldPoolRecord{Project: "x", APY: MaxAPYPercent + 1, TVLUSD: 1}, false},
		{"yield zero apy", &domain.YieldPoolRecord{Project: "x", APY: 0, TVLUSD: 1}, true},
		{"token zero mcap", &domain.TokenRecord{Name: "x", MarketCapUSD: 0}, false},
		{"trending without name", &domain.TrendingRecord{Symbol: "WIF"}, false},
		{"trending with name", &domain.TrendingRecord{Name: "dogwifhat", Symbol: "WIF"}, true},
		{"sentiment in range", &domain.SentimentRecord{Name: "idx", Score: 0}, true},
		{"nil token", (*domain.TokenRecord)(nil), false},
		{"nil interface", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.record))
		})
	}
}
