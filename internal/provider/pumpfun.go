package provider

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mr-tron/base58"

	"crypto-query-lab/internal/domain"
)

const pumpFunBaseURL = "https://frontend-api-v3.pump.fun"

// PumpFun lists the most recent pump.fun launches from the frontend API.
type PumpFun struct {
	http *HTTPClient
}

// NewPumpFun creates the pump.fun launch provider.
func NewPumpFun(opts Options) *PumpFun {
	return &PumpFun{http: opts.newClient("pumpfun", pumpFunBaseURL)}
}

func (p *PumpFun) Name() string { return "pumpfun" }

type pumpFunCoin struct {
	Mint             string `json:"mint"`
	Name             string `json:"name"`
	Symbol           string `json:"symbol"`
	USDMarketCap     number `json:"usd_market_cap"`
	CreatedTimestamp int64  `json:"created_timestamp"` // unix millis
	Complete         bool   `json:"complete"`
}

// Fetch implements Provider.
func (p *PumpFun) Fetch(ctx context.Context, criteria domain.Criteria) ([]domain.Record, error) {
	limit := criteria.Limit
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	q := url.Values{}
	q.Set("offset", "0")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("sort", "created_timestamp")
	q.Set("order", "DESC")
	q.Set("includeNsfw", "false")

	var coins []pumpFunCoin
	if err := p.http.GetJSON(ctx, "/coins", q, &coins); err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(coins))
	for _, c := range coins {
		if !isSolanaAddress(c.Mint) {
			continue
		}
		rec := &domain.TokenRecord{
			Mint:         c.Mint,
			Name:         strings.TrimSpace(c.Name),
			Symbol:       strings.ToUpper(strings.TrimSpace(c.Symbol)),
			Platform:     domain.PlatformPumpFun,
			MarketCapUSD: c.USDMarketCap.Float(),
			URL:          "https://pump.fun/coin/" + c.Mint,
		}
		if c.CreatedTimestamp > 0 {
			rec.CreatedAt = time.UnixMilli(c.CreatedTimestamp).UTC()
		}
		records = append(records, rec)
	}
	return nonEmpty(p.Name(), records)
}

// isSolanaAddress reports whether s decodes to a 32-byte public key.
// pump.fun mints carry a "pump" vanity suffix but are still plain base58 keys.
func isSolanaAddress(s string) bool {
	if s == "" {
		return false
	}
	b, err := base58.Decode(s)
	return err == nil && len(b) == 32
}
