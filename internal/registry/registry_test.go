package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"crypto-query-lab/internal/config"
	"crypto-query-lab/internal/domain"
)

func TestChain_DefaultOrder(t *testing.T) {
	r := New(config.Default().Providers)

	tests := []struct {
		category domain.Category
		platform domain.Platform
		want     []string
	}{
		{domain.CategoryTokenLaunch, domain.PlatformPumpFun, []string{"pumpfun", "geckoterminal-pumpfun", "dexscreener-pumpfun"}},
		{domain.CategoryTokenLaunch, "", []string{"pumpfun", "geckoterminal-pumpfun", "dexscreener-pumpfun"}},
		{domain.CategoryEcosystemToken, "", []string{"geckoterminal-letsbonk", "dexscreener-letsbonk"}},
		{domain.CategoryCombined, domain.PlatformLetsBonk, []string{"geckoterminal-letsbonk", "dexscreener-letsbonk"}},
		{domain.CategoryDefiTVL, "", []string{"defillama"}},
		{domain.CategoryDefiYield, "", []string{"defillama-yields"}},
		{domain.CategoryPrice, "", []string{"coingecko", "binance", "coincap"}},
		{domain.CategoryGeneralMarket, "", []string{"coingecko", "binance", "coincap"}},
		{domain.CategoryNews, "", []string{"rss"}},
		{domain.CategoryTrending, "", []string{"coingecko-trending", "dexscreener-boosts"}},
		{domain.CategorySentiment, "", []string{"feargreed", "coingecko-sentiment"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.category)+"/"+string(tt.platform), func(t *testing.T) {
			assert.Equal(t, tt.want, Names(r.Chain(tt.category, tt.platform)))
		})
	}
}

func TestChain_RespectsConfig(t *testing.T) {
	cfg := config.Default().Providers
	cfg.CoinGecko.Enabled = false
	cfg.CryptoPanic.APIKey = "key"
	r := New(cfg)

	assert.Equal(t, []string{"binance", "coincap"}, Names(r.Chain(domain.CategoryPrice, "")))
	assert.Equal(t, []string{"cryptopanic", "rss"}, Names(r.Chain(domain.CategoryNews, "")))
	assert.Equal(t, []string{"dexscreener-boosts"}, Names(r.Chain(domain.CategoryTrending, "")))
}

func TestChain_FreshInstancesPerCall(t *testing.T) {
	r := New(config.Default().Providers)
	a := r.Chain(domain.CategoryPrice, "")
	b := r.Chain(domain.CategoryPrice, "")
	assert.NotSame(t, a[0], b[0])
}
