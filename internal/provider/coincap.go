package provider

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"crypto-query-lab/internal/domain"
)

const coinCapBaseURL = "https://api.coincap.io/v2"

// CoinCapPrice quotes spot prices from the CoinCap assets endpoint.
type CoinCapPrice struct {
	http *HTTPClient
}

// NewCoinCapPrice creates the CoinCap price provider.
func NewCoinCapPrice(opts Options) *CoinCapPrice {
	var extra []ClientOption
	if opts.APIKey != "" {
		extra = append(extra, WithHeader("Authorization", "Bearer "+opts.APIKey))
	}
	return &CoinCapPrice{http: opts.newClient("coincap", coinCapBaseURL, extra...)}
}

func (p *CoinCapPrice) Name() string { return "coincap" }

type coinCapAssetsResponse struct {
	Data []struct {
		ID                string `json:"id"`
		Symbol            string `json:"symbol"`
		Name              string `json:"name"`
		PriceUSD          number `json:"priceUsd"`
		ChangePercent24Hr number `json:"changePercent24Hr"`
		MarketCapUSD      number `json:"marketCapUsd"`
		VolumeUSD24Hr     number `json:"volumeUsd24Hr"`
	} `json:"data"`
}

// Fetch implements Provider.
func (p *CoinCapPrice) Fetch(ctx context.Context, criteria domain.Criteria) ([]domain.Record, error) {
	q := url.Values{}
	if len(criteria.Symbols) > 0 {
		ids := make([]string, 0, len(criteria.Symbols))
		for _, s := range criteria.Symbols {
			if a, ok := domain.LookupAsset(s); ok {
				ids = append(ids, a.CoinCapID)
			}
		}
		if len(ids) == len(criteria.Symbols) {
			q.Set("ids", strings.Join(ids, ","))
		} else {
			// Unknown tickers: scan the top assets for a symbol match.
			q.Set("limit", "500")
		}
	} else {
		limit := criteria.Limit
		if limit <= 0 {
			limit = 10
		}
		q.Set("limit", strconv.Itoa(limit))
	}

	var resp coinCapAssetsResponse
	if err := p.http.GetJSON(ctx, "/assets", q, &resp); err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(resp.Data))
	for _, a := range resp.Data {
		records = append(records, &domain.PriceRecord{
			Symbol:       strings.ToUpper(a.Symbol),
			Name:         a.Name,
			PriceUSD:     a.PriceUSD.Float(),
			Change24hPct: a.ChangePercent24Hr.Float(),
			MarketCapUSD: a.MarketCapUSD.Float(),
			Volume24hUSD: a.VolumeUSD24Hr.Float(),
		})
	}
	return nonEmpty(p.Name(), orderBySymbols(records, criteria.Symbols))
}
