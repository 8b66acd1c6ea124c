package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crypto-query-lab/internal/domain"
)

const dexScreenerBaseURL = "https://api.dexscreener.com"

// dexscreenerBatch is the address limit of the /tokens endpoint.
const dexscreenerBatch = 30

type dexPair struct {
	ChainID   string `json:"chainId"`
	DexID     string `json:"dexId"`
	URL       string `json:"url"`
	BaseToken struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	PriceUSD    number `json:"priceUsd"`
	MarketCap   number `json:"marketCap"`
	FDV         number `json:"fdv"`
	PriceChange struct {
		H24 number `json:"h24"`
	} `json:"priceChange"`
	Volume struct {
		H24 number `json:"h24"`
	} `json:"volume"`
	PairCreatedAt int64 `json:"pairCreatedAt"` // unix millis
}

type dexTokenRef struct {
	ChainID      string `json:"chainId"`
	TokenAddress string `json:"tokenAddress"`
}

// pairsByToken resolves token addresses on chain into their first listed pair.
func pairsByToken(ctx context.Context, c *HTTPClient, chain string, addresses []string) (map[string]dexPair, error) {
	out := make(map[string]dexPair, len(addresses))
	for start := 0; start < len(addresses); start += dexscreenerBatch {
		end := min(start+dexscreenerBatch, len(addresses))
		var pairs []dexPair
		path := fmt.Sprintf("/tokens/v1/%s/%s", chain, strings.Join(addresses[start:end], ","))
		if err := c.GetJSON(ctx, path, nil, &pairs); err != nil {
			return nil, err
		}
		for _, pair := range pairs {
			if _, seen := out[pair.BaseToken.Address]; !seen {
				out[pair.BaseToken.Address] = pair
			}
		}
	}
	return out, nil
}

// DexScreenerLaunches lists the latest Solana token profiles traded on a
// launch platform's dex.
type DexScreenerLaunches struct {
	http     *HTTPClient
	dexIDs   map[string]bool
	platform domain.Platform
}

// NewDexScreenerLaunches creates a launch provider for platform.
func NewDexScreenerLaunches(opts Options, platform domain.Platform) *DexScreenerLaunches {
	dexIDs := map[string]bool{"pumpfun": true, "pumpswap": true}
	if platform == domain.PlatformLetsBonk {
		dexIDs = map[string]bool{"launchlab": true}
	}
	return &DexScreenerLaunches{
		http:     opts.newClient("dexscreener-"+string(platform), dexScreenerBaseURL),
		dexIDs:   dexIDs,
		platform: platform,
	}
}

func (p *DexScreenerLaunches) Name() string { return "dexscreener-" + string(p.platform) }

// Fetch implements Provider.
func (p *DexScreenerLaunches) Fetch(ctx context.Context, criteria domain.Criteria) ([]domain.Record, error) {
	var profiles []dexTokenRef
	if err := p.http.GetJSON(ctx, "/token-profiles/latest/v1", nil, &profiles); err != nil {
		return nil, err
	}

	var addresses []string
	for _, prof := range profiles {
		if prof.ChainID == "solana" && prof.TokenAddress != "" {
			addresses = append(addresses, prof.TokenAddress)
		}
	}
	if len(addresses) == 0 {
		return nil, EmptyError(p.Name())
	}

	pairs, err := pairsByToken(ctx, p.http, "solana", addresses)
	if err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(addresses))
	for _, addr := range addresses {
		pair, ok := pairs[addr]
		if !ok || !p.dexIDs[pair.DexID] {
			continue
		}
		mcap := pair.MarketCap.Float()
		if mcap <= 0 {
			mcap = pair.FDV.Float()
		}
		rec := &domain.TokenRecord{
			Mint:         addr,
			Name:         strings.TrimSpace(pair.BaseToken.Name),
			Symbol:       strings.ToUpper(strings.TrimSpace(pair.BaseToken.Symbol)),
			Platform:     p.platform,
			MarketCapUSD: mcap,
			Volume24hUSD: pair.Volume.H24.Float(),
			URL:          pair.URL,
		}
		if pair.PairCreatedAt > 0 {
			rec.CreatedAt = time.UnixMilli(pair.PairCreatedAt).UTC()
		}
		records = append(records, rec)
	}
	return nonEmpty(p.Name(), records)
}

// DexScreenerBoosts ranks the tokens with the most active DexScreener boosts.
type DexScreenerBoosts struct {
	http *HTTPClient
}

// NewDexScreenerBoosts creates the boosted-token trending provider.
func NewDexScreenerBoosts(opts Options) *DexScreenerBoosts {
	return &DexScreenerBoosts{http: opts.newClient("dexscreener-boosts", dexScreenerBaseURL)}
}

func (p *DexScreenerBoosts) Name() string { return "dexscreener-boosts" }

// Fetch implements Provider.
func (p *DexScreenerBoosts) Fetch(ctx context.Context, criteria domain.Criteria) ([]domain.Record, error) {
	var boosts []dexTokenRef
	if err := p.http.GetJSON(ctx, "/token-boosts/top/v1", nil, &boosts); err != nil {
		return nil, err
	}

	chainFilter := strings.ToLower(criteria.Chain)
	var order []dexTokenRef
	byChain := make(map[string][]string)
	for _, b := range boosts {
		if b.TokenAddress == "" || (chainFilter != "" && b.ChainID != chainFilter) {
			continue
		}
		order = append(order, b)
		byChain[b.ChainID] = append(byChain[b.ChainID], b.TokenAddress)
	}
	if len(order) == 0 {
		return nil, EmptyError(p.Name())
	}

	resolved := make(map[string]map[string]dexPair, len(byChain))
	for chain, addrs := range byChain {
		pairs, err := pairsByToken(ctx, p.http, chain, addrs)
		if err != nil {
			return nil, err
		}
		resolved[chain] = pairs
	}

	records := make([]domain.Record, 0, len(order))
	for _, b := range order {
		pair, ok := resolved[b.ChainID][b.TokenAddress]
		if !ok {
			continue
		}
		records = append(records, &domain.TrendingRecord{
			Name:         strings.TrimSpace(pair.BaseToken.Name),
			Symbol:       strings.ToUpper(strings.TrimSpace(pair.BaseToken.Symbol)),
			Rank:         len(records) + 1,
			PriceUSD:     pair.PriceUSD.Float(),
			Change24hPct: pair.PriceChange.H24.Float(),
			Chain:        b.ChainID,
		})
	}
	return nonEmpty(p.Name(), records)
}
