package provider

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"crypto-query-lab/internal/domain"
)

const coinGeckoBaseURL = "https://api.coingecko.com/api/v3"

func coinGeckoClient(name string, opts Options) *HTTPClient {
	return opts.newClient(name, coinGeckoBaseURL, WithHeader("x-cg-demo-api-key", opts.APIKey))
}

// CoinGeckoPrice quotes spot prices from the coins/markets endpoint.
// Without symbols it returns the largest assets by market cap.
type CoinGeckoPrice struct {
	http *HTTPClient
}

// NewCoinGeckoPrice creates the CoinGecko price provider.
func NewCoinGeckoPrice(opts Options) *CoinGeckoPrice {
	return &CoinGeckoPrice{http: coinGeckoClient("coingecko", opts)}
}

func (p *CoinGeckoPrice) Name() string { return "coingecko" }

type geckoMarket struct {
	ID             string `json:"id"`
	Symbol         string `json:"symbol"`
	Name           string `json:"name"`
	CurrentPrice   number `json:"current_price"`
	MarketCap      number `json:"market_cap"`
	TotalVolume    number `json:"total_volume"`
	PriceChange24h number `json:"price_change_percentage_24h"`
}

// Fetch implements Provider.
func (p *CoinGeckoPrice) Fetch(ctx context.Context, criteria domain.Criteria) ([]domain.Record, error) {
	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("order", "market_cap_desc")
	q.Set("price_change_percentage", "24h")

	if len(criteria.Symbols) > 0 {
		if ids, ok := coinGeckoIDs(criteria.Symbols); ok {
			q.Set("ids", strings.Join(ids, ","))
		} else {
			q.Set("symbols", strings.ToLower(strings.Join(criteria.Symbols, ",")))
			q.Set("include_tokens", "top")
		}
	} else {
		perPage := criteria.Limit
		if perPage <= 0 {
			perPage = 10
		}
		q.Set("per_page", strconv.Itoa(perPage))
		q.Set("page", "1")
	}

	var markets []geckoMarket
	if err := p.http.GetJSON(ctx, "/coins/markets", q, &markets); err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(markets))
	for _, m := range markets {
		records = append(records, &domain.PriceRecord{
			Symbol:       strings.ToUpper(m.Symbol),
			Name:         m.Name,
			PriceUSD:     m.CurrentPrice.Float(),
			Change24hPct: m.PriceChange24h.Float(),
			MarketCapUSD: m.MarketCap.Float(),
			Volume24hUSD: m.TotalVolume.Float(),
		})
	}
	return nonEmpty(p.Name(), orderBySymbols(records, criteria.Symbols))
}

// coinGeckoIDs maps every symbol to a CoinGecko id; ok is false if any is unknown.
func coinGeckoIDs(symbols []string) ([]string, bool) {
	ids := make([]string, 0, len(symbols))
	for _, s := range symbols {
		a, found := domain.LookupAsset(s)
		if !found {
			return nil, false
		}
		ids = append(ids, a.CoinGeckoID)
	}
	return ids, true
}

// orderBySymbols keeps the first record per requested symbol in request
// order. With no symbols the input is returned unchanged.
func orderBySymbols(records []domain.Record, symbols []string) []domain.Record {
	if len(symbols) == 0 {
		return records
	}
	first := make(map[string]domain.Record, len(records))
	for _, r := range records {
		pr, ok := r.(*domain.PriceRecord)
		if !ok {
			continue
		}
		if _, seen := first[pr.Symbol]; !seen {
			first[pr.Symbol] = r
		}
	}
	out := make([]domain.Record, 0, len(symbols))
	for _, s := range symbols {
		if r, ok := first[strings.ToUpper(s)]; ok {
			out = append(out, r)
		}
	}
	return out
}

// CoinGeckoTrending lists the coins trending in CoinGecko search.
type CoinGeckoTrending struct {
	http *HTTPClient
}

// NewCoinGeckoTrending creates the CoinGecko trending provider.
func NewCoinGeckoTrending(opts Options) *CoinGeckoTrending {
	return &CoinGeckoTrending{http: coinGeckoClient("coingecko-trending", opts)}
}

func (p *CoinGeckoTrending) Name() string { return "coingecko-trending" }

type geckoTrendingResponse struct {
	Coins []struct {
		Item struct {
			ID            string `json:"id"`
			Name          string `json:"name"`
			Symbol        string `json:"symbol"`
			MarketCapRank int    `json:"market_cap_rank"`
			Score         int    `json:"score"`
			Data          struct {
				Price                    number            `json:"price"`
				PriceChangePercentage24h map[string]number `json:"price_change_percentage_24h"`
			} `json:"data"`
		} `json:"item"`
	} `json:"coins"`
}

// Fetch implements Provider.
func (p *CoinGeckoTrending) Fetch(ctx context.Context, criteria domain.Criteria) ([]domain.Record, error) {
	var resp geckoTrendingResponse
	if err := p.http.GetJSON(ctx, "/search/trending", nil, &resp); err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(resp.Coins))
	for i, c := range resp.Coins {
		item := c.Item
		records = append(records, &domain.TrendingRecord{
			Name:          strings.TrimSpace(item.Name),
			Symbol:        strings.ToUpper(item.Symbol),
			Rank:          i + 1,
			MarketCapRank: item.MarketCapRank,
			PriceUSD:      item.Data.Price.Float(),
			Change24hPct:  item.Data.PriceChangePercentage24h["usd"].Float(),
		})
	}
	return nonEmpty(p.Name(), records)
}

// CoinGeckoSentiment reports the community up-vote share of each asset as a
// 0-100 sentiment score. Without symbols Bitcoin stands in for the market.
type CoinGeckoSentiment struct {
	http *HTTPClient
}

// NewCoinGeckoSentiment creates the CoinGecko community sentiment provider.
func NewCoinGeckoSentiment(opts Options) *CoinGeckoSentiment {
	return &CoinGeckoSentiment{http: coinGeckoClient("coingecko-sentiment", opts)}
}

func (p *CoinGeckoSentiment) Name() string { return "coingecko-sentiment" }

type geckoCoin struct {
	Name                         string `json:"name"`
	Symbol                       string `json:"symbol"`
	SentimentVotesUpPercentage   number `json:"sentiment_votes_up_percentage"`
	SentimentVotesDownPercentage number `json:"sentiment_votes_down_percentage"`
}

// Fetch implements Provider. Unknown symbols are skipped.
func (p *CoinGeckoSentiment) Fetch(ctx context.Context, criteria domain.Criteria) ([]domain.Record, error) {
	symbols := criteria.Symbols
	if len(symbols) == 0 {
		symbols = []string{"BTC"}
	}

	q := url.Values{}
	for _, k := range []string{"localization", "tickers", "market_data", "community_data", "developer_data"} {
		q.Set(k, "false")
	}

	var records []domain.Record
	for _, s := range symbols {
		asset, ok := domain.LookupAsset(s)
		if !ok {
			continue
		}
		var coin geckoCoin
		if err := p.http.GetJSON(ctx, "/coins/"+asset.CoinGeckoID, q, &coin); err != nil {
			return nil, err
		}
		if coin.SentimentVotesUpPercentage == 0 && coin.SentimentVotesDownPercentage == 0 {
			continue
		}
		score := coin.SentimentVotesUpPercentage.Float()
		records = append(records, &domain.SentimentRecord{
			Name:           coin.Name + " community sentiment",
			Symbol:         asset.Symbol,
			Score:          score,
			Classification: domain.ClassifySentiment(score),
		})
	}
	return nonEmpty(p.Name(), records)
}
