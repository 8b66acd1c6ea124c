package domain

import "time"

// Kind is the explicit discriminant of a Record variant.
type Kind string

const (
	KindToken     Kind = "token"
	KindProtocol  Kind = "protocol"
	KindYieldPool Kind = "yield_pool"
	KindPrice     Kind = "price"
	KindNews      Kind = "news"
	KindTrending  Kind = "trending"
	KindSentiment Kind = "sentiment"
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	return string(k)
}

// Record is one data item returned by a provider.
// Consumers switch on Kind() or on the concrete type.
type Record interface {
	Kind() Kind
	// DisplayName is the human-facing name of the item.
	DisplayName() string
}

// TokenRecord is a newly launched token on a launch platform.
type TokenRecord struct {
	Mint         string    `json:"mint"`
	Name         string    `json:"name"`
	Symbol       string    `json:"symbol"`
	Platform     Platform  `json:"platform"`
	MarketCapUSD float64   `json:"market_cap_usd"`
	Volume24hUSD float64   `json:"volume_24h_usd,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitzero"` // zero when the provider does not report it
	URL          string    `json:"url,omitempty"`
}

func (r *TokenRecord) Kind() Kind          { return KindToken }
func (r *TokenRecord) DisplayName() string { return r.Name }

// ProtocolRecord is a DeFi protocol with its total value locked.
type ProtocolRecord struct {
	Name     string   `json:"name"`
	Slug     string   `json:"slug,omitempty"`
	Symbol   string   `json:"symbol,omitempty"`
	Category string   `json:"category,omitempty"`
	Chains   []string `json:"chains,omitempty"`
	TVLUSD   float64  `json:"tvl_usd"`
	Change1D float64  `json:"change_1d,omitempty"`
	URL      string   `json:"url,omitempty"`
}

func (r *ProtocolRecord) Kind() Kind          { return KindProtocol }
func (r *ProtocolRecord) DisplayName() string { return r.Name }

// YieldPoolRecord is a yield-bearing pool.
type YieldPoolRecord struct {
	PoolID  string  `json:"pool_id,omitempty"`
	Project string  `json:"project"`
	Symbol  string  `json:"symbol"`
	Chain   string  `json:"chain"`
	APY     float64 `json:"apy"` // percent
	TVLUSD  float64 `json:"tvl_usd"`
}

func (r *YieldPoolRecord) Kind() Kind          { return KindYieldPool }
func (r *YieldPoolRecord) DisplayName() string { return r.Project }

// PriceRecord is a spot price quote for one asset.
type PriceRecord struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	PriceUSD     float64 `json:"price_usd"`
	Change24hPct float64 `json:"change_24h_pct"`
	MarketCapUSD float64 `json:"market_cap_usd,omitempty"` // zero when unknown
	Volume24hUSD float64 `json:"volume_24h_usd,omitempty"`
}

func (r *PriceRecord) Kind() Kind { return KindPrice }

func (r *PriceRecord) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Symbol
}

// NewsRecord is one news headline.
type NewsRecord struct {
	Title       string    `json:"title"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	PublishedAt time.Time `json:"published_at,omitzero"`
	Symbols     []string  `json:"symbols,omitempty"`
}

func (r *NewsRecord) Kind() Kind          { return KindNews }
func (r *NewsRecord) DisplayName() string { return r.Title }

// TrendingRecord is an asset currently trending on a tracker.
type TrendingRecord struct {
	Name          string  `json:"name"`
	Symbol        string  `json:"symbol"`
	Rank          int     `json:"rank"`
	MarketCapRank int     `json:"market_cap_rank,omitempty"`
	PriceUSD      float64 `json:"price_usd,omitempty"`
	Change24hPct  float64 `json:"change_24h_pct,omitempty"`
	Chain         string  `json:"chain,omitempty"`
}

func (r *TrendingRecord) Kind() Kind          { return KindTrending }
func (r *TrendingRecord) DisplayName() string { return r.Name }

// SentimentRecord is a market or asset sentiment reading on a 0-100 scale.
type SentimentRecord struct {
	Name           string    `json:"name"`
	Symbol         string    `json:"symbol,omitempty"`
	Score          float64   `json:"score"`
	Classification string    `json:"classification"`
	Timestamp      time.Time `json:"timestamp,omitzero"`
}

func (r *SentimentRecord) Kind() Kind          { return KindSentiment }
func (r *SentimentRecord) DisplayName() string { return r.Name }
