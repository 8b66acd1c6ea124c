package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"

	"crypto-query-lab/internal/domain"
)

const binanceBaseURL = "https://api.binance.com"

// binanceMajors are quoted when a price query names no symbols.
var binanceMajors = []string{"BTC", "ETH", "SOL", "BNB", "XRP", "DOGE", "ADA", "AVAX", "LINK", "DOT"}

// BinancePrice quotes 24h ticker statistics of USDT spot pairs.
type BinancePrice struct {
	client  *binance.Client
	timeout time.Duration
}

// NewBinancePrice creates the Binance price provider.
func NewBinancePrice(opts Options) *BinancePrice {
	client := binance.NewClient("", "")
	if opts.BaseURL != "" {
		client.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	} else {
		client.BaseURL = binanceBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if opts.Timeout > 0 {
		c := *httpClient
		c.Timeout = opts.Timeout
		httpClient = &c
	}
	client.HTTPClient = httpClient
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &BinancePrice{client: client, timeout: timeout}
}

func (p *BinancePrice) Name() string { return "binance" }

// Fetch implements Provider. Symbols Binance does not list are skipped;
// stablecoins are quoted at par. The per-symbol requests share one timeout.
func (p *BinancePrice) Fetch(ctx context.Context, criteria domain.Criteria) ([]domain.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	symbols := criteria.Symbols
	if len(symbols) == 0 {
		symbols = binanceMajors
		if criteria.Limit > 0 && criteria.Limit < len(symbols) {
			symbols = symbols[:criteria.Limit]
		}
	}

	records := make([]domain.Record, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(s)
		if s == "USDT" || s == "USDC" {
			records = append(records, &domain.PriceRecord{Symbol: s, Name: assetName(s), PriceUSD: 1})
			continue
		}

		stats, err := p.client.NewListPriceChangeStatsService().Symbols([]string{s + "USDT"}).Do(ctx)
		if err != nil {
			var apiErr *common.APIError
			if errors.As(err, &apiErr) {
				// Unknown pair for this symbol; the remaining symbols may still quote.
				continue
			}
			return nil, NetworkError(p.Name(), err)
		}
		for _, st := range stats {
			records = append(records, &domain.PriceRecord{
				Symbol:       s,
				Name:         assetName(s),
				PriceUSD:     parseFloat(st.LastPrice),
				Change24hPct: parseFloat(st.PriceChangePercent),
				Volume24hUSD: parseFloat(st.QuoteVolume),
			})
		}
	}
	return nonEmpty(p.Name(), records)
}

func assetName(symbol string) string {
	if a, ok := domain.LookupAsset(symbol); ok {
		return a.Name
	}
	return symbol
}
