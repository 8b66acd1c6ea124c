// Package registry builds the ordered provider chain for each category.
package registry

import (
	"net/http"

	"crypto-query-lab/internal/config"
	"crypto-query-lab/internal/domain"
	"crypto-query-lab/internal/provider"
)

// Registry constructs fresh provider instances on every call so concurrent
// queries never share provider state.
type Registry struct {
	cfg        config.ProvidersConfig
	httpClient *http.Client
}

// Option configures Registry.
type Option func(*Registry)

// WithHTTPClient routes every provider through client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Registry) { r.httpClient = client }
}

// New creates a Registry from provider configuration.
func New(cfg config.ProvidersConfig, opts ...Option) *Registry {
	r := &Registry{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) options(p config.ProviderConfig) provider.Options {
	return provider.Options{
		BaseURL:    p.BaseURL,
		APIKey:     p.APIKey,
		Timeout:    r.cfg.TimeoutFor(p),
		UserAgent:  r.cfg.UserAgent,
		HTTPClient: r.httpClient,
	}
}

// Chain returns the enabled providers for category in reliability order.
// platform selects the launch platform of token categories and is ignored
// otherwise; combined queries ask for each platform separately.
func (r *Registry) Chain(category domain.Category, platform domain.Platform) []provider.Provider {
	c := r.cfg
	var chain []provider.Provider
	add := func(enabled bool, build func() provider.Provider) {
		if enabled {
			chain = append(chain, build())
		}
	}

	switch category {
	case domain.CategoryTokenLaunch, domain.CategoryEcosystemToken, domain.CategoryCombined:
		if platform == "" {
			platform = domain.PlatformPumpFun
			if category == domain.CategoryEcosystemToken {
				platform = domain.PlatformLetsBonk
			}
		}
		if platform == domain.PlatformPumpFun {
			add(c.PumpFun.Enabled, func() provider.Provider { return provider.NewPumpFun(r.options(c.PumpFun)) })
		}
		add(c.GeckoTerminal.Enabled, func() provider.Provider {
			return provider.NewGeckoTerminalLaunches(r.options(c.GeckoTerminal), platform)
		})
		add(c.DexScreener.Enabled, func() provider.Provider {
			return provider.NewDexScreenerLaunches(r.options(c.DexScreener), platform)
		})

	case domain.CategoryDefiTVL:
		add(c.DefiLlama.Enabled, func() provider.Provider { return provider.NewDefiLlamaProtocols(r.options(c.DefiLlama)) })

	case domain.CategoryDefiYield:
		add(c.DefiLlamaYields.Enabled, func() provider.Provider { return provider.NewDefiLlamaYields(r.options(c.DefiLlamaYields)) })

	case domain.CategoryPrice, domain.CategoryGeneralMarket:
		add(c.CoinGecko.Enabled, func() provider.Provider { return provider.NewCoinGeckoPrice(r.options(c.CoinGecko)) })
		add(c.Binance.Enabled, func() provider.Provider { return provider.NewBinancePrice(r.options(c.Binance)) })
		add(c.CoinCap.Enabled, func() provider.Provider { return provider.NewCoinCapPrice(r.options(c.CoinCap)) })

	case domain.CategoryNews:
		add(c.CryptoPanic.Enabled && c.CryptoPanic.APIKey != "", func() provider.Provider {
			return provider.NewCryptoPanicNews(r.options(c.CryptoPanic))
		})
		add(c.RSS.Enabled && len(c.RSS.Feeds) > 0, func() provider.Provider {
			timeout := c.RSS.Timeout
			if timeout <= 0 {
				timeout = c.Timeout
			}
			return provider.NewRSSNews(provider.RSSOptions{
				Feeds:         c.RSS.Feeds,
				Timeout:       timeout,
				UserAgent:     c.UserAgent,
				HTTPClient:    r.httpClient,
				FetchFullText: c.RSS.FetchFullText,
			})
		})

	case domain.CategoryTrending:
		add(c.CoinGecko.Enabled, func() provider.Provider { return provider.NewCoinGeckoTrending(r.options(c.CoinGecko)) })
		add(c.DexScreener.Enabled, func() provider.Provider { return provider.NewDexScreenerBoosts(r.options(c.DexScreener)) })

	case domain.CategorySentiment:
		add(c.FearGreed.Enabled, func() provider.Provider { return provider.NewFearGreed(r.options(c.FearGreed)) })
		add(c.CoinGecko.Enabled, func() provider.Provider { return provider.NewCoinGeckoSentiment(r.options(c.CoinGecko)) })
	}
	return chain
}

// Names returns the provider names of chain, in order.
func Names(chain []provider.Provider) []string {
	names := make([]string, len(chain))
	for i, p := range chain {
		names[i] = p.Name()
	}
	return names
}
