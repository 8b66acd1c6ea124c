package provider

import (
	"context"
	"net/url"
	"strings"
	"time"

	"crypto-query-lab/internal/domain"
)

const geckoTerminalBaseURL = "https://api.geckoterminal.com/api/v2"

// GeckoTerminal dex identifiers of the launch platforms.
const (
	GeckoDexPumpFun  = "pump-fun"
	GeckoDexLetsBonk = "raydium-launchlab"
)

// GeckoTerminalLaunches lists new Solana pools created on one launch dex.
type GeckoTerminalLaunches struct {
	http     *HTTPClient
	dex      string
	platform domain.Platform
}

// NewGeckoTerminalLaunches creates a launch provider for platform.
func NewGeckoTerminalLaunches(opts Options, platform domain.Platform) *GeckoTerminalLaunches {
	dex := GeckoDexPumpFun
	if platform == domain.PlatformLetsBonk {
		dex = GeckoDexLetsBonk
	}
	return &GeckoTerminalLaunches{
		http:     opts.newClient("geckoterminal-"+string(platform), geckoTerminalBaseURL, WithHeader("Accept", "application/json;version=20230302")),
		dex:      dex,
		platform: platform,
	}
}

func (p *GeckoTerminalLaunches) Name() string { return "geckoterminal-" + string(p.platform) }

type geckoRef struct {
	Data struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	} `json:"data"`
}

type geckoPoolsResponse struct {
	Data []struct {
		ID         string `json:"id"`
		Attributes struct {
			Name          string `json:"name"`
			Address       string `json:"address"`
			FDVUSD        number `json:"fdv_usd"`
			MarketCapUSD  number `json:"market_cap_usd"`
			PoolCreatedAt string `json:"pool_created_at"`
			VolumeUSD     struct {
				H24 number `json:"h24"`
			} `json:"volume_usd"`
		} `json:"attributes"`
		Relationships struct {
			BaseToken geckoRef `json:"base_token"`
			Dex       geckoRef `json:"dex"`
		} `json:"relationships"`
	} `json:"data"`
	Included []struct {
		ID         string `json:"id"`
		Type       string `json:"type"`
		Attributes struct {
			Address string `json:"address"`
			Name    string `json:"name"`
			Symbol  string `json:"symbol"`
		} `json:"attributes"`
	} `json:"included"`
}

// Fetch implements Provider.
func (p *GeckoTerminalLaunches) Fetch(ctx context.Context, criteria domain.Criteria) ([]domain.Record, error) {
	q := url.Values{}
	q.Set("include", "base_token,dex")
	q.Set("page", "1")

	var resp geckoPoolsResponse
	if err := p.http.GetJSON(ctx, "/networks/solana/new_pools", q, &resp); err != nil {
		return nil, err
	}

	type token struct{ address, name, symbol string }
	tokens := make(map[string]token, len(resp.Included))
	for _, inc := range resp.Included {
		if inc.Type != "token" {
			continue
		}
		tokens[inc.ID] = token{inc.Attributes.Address, inc.Attributes.Name, inc.Attributes.Symbol}
	}

	records := make([]domain.Record, 0, len(resp.Data))
	for _, pool := range resp.Data {
		if pool.Relationships.Dex.Data.ID != p.dex {
			continue
		}
		attrs := pool.Attributes
		tok, ok := tokens[pool.Relationships.BaseToken.Data.ID]
		if !ok {
			// Pool names are "BASE / QUOTE".
			name, _, _ := strings.Cut(attrs.Name, " / ")
			tok = token{
				address: strings.TrimPrefix(pool.Relationships.BaseToken.Data.ID, "solana_"),
				name:    name,
				symbol:  name,
			}
		}

		mcap := attrs.MarketCapUSD.Float()
		if mcap <= 0 {
			mcap = attrs.FDVUSD.Float()
		}
		rec := &domain.TokenRecord{
			Mint:         tok.address,
			Name:         strings.TrimSpace(tok.name),
			Symbol:       strings.ToUpper(strings.TrimSpace(tok.symbol)),
			Platform:     p.platform,
			MarketCapUSD: mcap,
			Volume24hUSD: attrs.VolumeUSD.H24.Float(),
			URL:          "https://www.geckoterminal.com/solana/pools/" + attrs.Address,
		}
		if ts, err := time.Parse(time.RFC3339, attrs.PoolCreatedAt); err == nil {
			rec.CreatedAt = ts.UTC()
		}
		records = append(records, rec)
	}
	return nonEmpty(p.Name(), records)
}
