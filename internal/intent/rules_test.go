package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-query-lab/internal/domain"
)

func TestClassify_TokenLaunchScenario(t *testing.T) {
	got := Classify("How many tokens reached over $19,000 mcap on pumpfun in the last hour?")

	assert.Equal(t, domain.CategoryTokenLaunch, got.Category)
	threshold, ok := got.ThresholdValue()
	require.True(t, ok)
	assert.Equal(t, 19000.0, threshold)
	assert.Equal(t, 1, got.WindowHours)
	assert.Equal(t, domain.MetricMarketCap, got.Metric)
	assert.Empty(t, got.Symbols())
}

func TestClassify_PriceScenario(t *testing.T) {
	got := Classify("What's the SOL price?")

	assert.Equal(t, domain.CategoryPrice, got.Category)
	assert.Equal(t, []string{"SOL"}, got.Symbols())
	assert.Equal(t, domain.DefaultWindowHours, got.WindowHours)
	_, ok := got.ThresholdValue()
	assert.False(t, ok)
}

func TestClassify_CategoryPrecedence(t *testing.T) {
	tests := []struct {
		query string
		want  domain.Category
	}{
		{"price of ETH", domain.CategoryPrice},
		{"what is bitcoin trading at", domain.CategoryPrice},
		{"price and yield for SOL", domain.CategoryPrice},
		{"best yield farms with high apy", domain.CategoryDefiYield},
		{"top defi protocols by tvl and yield", domain.CategoryDefiYield},
		{"top defi protocols by tvl", domain.CategoryDefiTVL},
		{"latest crypto news about tvl", domain.CategoryDefiTVL},
		{"latest crypto news", domain.CategoryNews},
		{"news on trending coins", domain.CategoryNews},
		{"what's trending right now", domain.CategoryTrending},
		{"hot coins and market sentiment", domain.CategoryTrending},
		{"is the market bullish or bearish", domain.CategorySentiment},
		{"new launches on letsbonk today", domain.CategoryEcosystemToken},
		{"bonk.fun tokens over 50k", domain.CategoryEcosystemToken},
		{"pumpfun vs bonk token counts", domain.CategoryCombined},
		{"compare pump.fun and letsbonk launches", domain.CategoryCombined},
		{"new tokens on pump.fun", domain.CategoryTokenLaunch},
		{"give me a market overview", domain.CategoryGeneralMarket},
		{"how's the market doing", domain.CategoryGeneralMarket},
		{"crypto market cap tokens launched today", domain.CategoryTokenLaunch},
		{"anything interesting?", domain.CategoryTokenLaunch},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.query).Category)
		})
	}
}

func TestClassify_Thresholds(t *testing.T) {
	tests := []struct {
		query string
		want  float64
		ok    bool
	}{
		{"tokens over $19,000 mcap", 19000, true},
		{"tokens over 19000 market cap", 19000, true},
		{"tokens above 19k", 19000, true},
		{"tokens above 19.5k mcap", 19500, true},
		{"tokens above $1,250,000", 1250000, true},
		{"pools with apy above 12.5%", 12.5, true},
		{"top 10 tokens over 50k in the last 6 hours", 50000, true},
		{"tokens launched in the last 6 hours", 0, false},
		{"24h volume leaders", 0, false},
		{"web3 tokens", 0, false},
		{"tokens on pumpfun", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, ok := Classify(tt.query).ThresholdValue()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_Windows(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"tokens launched in the last hour", 1},
		{"tokens launched in the past 6 hours", 6},
		{"tokens launched in the last 2 days", 48},
		{"tokens launched this week", 168},
		{"24h volume leaders", 24},
		{"tokens launched recently", 24},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.query).WindowHours)
		})
	}
}

func TestClassify_SymbolsAndChain(t *testing.T) {
	got := Classify("Compare $WIF, Solana and ethereum prices vs BTC")
	assert.Equal(t, domain.CategoryPrice, got.Category)
	assert.Equal(t, []string{"WIF", "SOL", "ETH", "BTC"}, got.Symbols())
	assert.True(t, got.Comparison)

	yields := Classify("best yields on solana")
	assert.Equal(t, domain.CategoryDefiYield, yields.Category)
	assert.Equal(t, "Solana", yields.Chain)
	assert.Empty(t, yields.Symbols(), "the chain name is not a ticker filter")

	link := Classify("link to the latest news")
	assert.Empty(t, link.Symbols())
	assert.Equal(t, []string{"LINK"}, Classify("LINK price").Symbols())
}

func TestClassify_SupplementaryFlags(t *testing.T) {
	got := Classify("SOL price and latest news, is sentiment bullish?")
	assert.Equal(t, domain.CategoryPrice, got.Category)
	assert.True(t, got.IncludeNews)
	assert.True(t, got.IncludeSentiment)

	news := Classify("latest news")
	assert.False(t, news.IncludeNews, "primary category is never supplementary")
}

func TestClassify_Deterministic(t *testing.T) {
	queries := []string{
		"How many tokens reached over $19,000 mcap on pumpfun in the last hour?",
		"pumpfun vs bonk",
		"What's the SOL price?",
	}
	for _, q := range queries {
		assert.True(t, Classify(q).Equal(Classify(q)), q)
	}
}
