// Package synthetic generates plausible placeholder records used when every
// real provider of a category failed.
package synthetic

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"crypto-query-lab/internal/domain"
	"crypto-query-lab/internal/validation"
)

// Market-cap buckets of synthetic launches.
const (
	smallCapShare  = 0.60 // under SmallCapCeiling
	midCapShare    = 0.25 // SmallCapCeiling to MidCapCeiling
	minLaunchCap   = 4_000.0
	maxLaunchCap   = 5_000_000.0
	defaultLimit   = 10
	syntheticLabel = "synthetic"
)

// Bucket ceilings in USD.
const (
	SmallCapCeiling = 50_000.0
	MidCapCeiling   = 500_000.0
)

// Options configures Generator.
type Options struct {
	// Seed makes output reproducible. Zero seeds each call from the clock.
	Seed uint64
	Now  func() time.Time
}

// Generator produces synthetic records. It never fails and is safe for
// concurrent use: each call draws from its own random source.
type Generator struct {
	seed    uint64
	now     func() time.Time
	counter atomic.Uint64
}

// New creates a Generator.
func New(opts Options) *Generator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Generator{seed: opts.Seed, now: now}
}

func (g *Generator) rng() *rand.Rand {
	seed := g.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano()) + g.counter.Add(1)*0x9e3779b97f4a7c15
	}
	return rand.New(rand.NewPCG(seed, seed^0xda3e39cb94b95bdb))
}

// Generate returns exactly the requested number of records of kind that
// satisfy criteria: the limit (default 10), the threshold, the window, the
// chain and the symbols.
func (g *Generator) Generate(kind domain.Kind, c domain.Criteria) []domain.Record {
	limit := c.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	r := g.rng()
	now := g.now().UTC()

	out := make([]domain.Record, 0, limit)
	switch kind {
	case domain.KindToken:
		for i := 0; i < limit; i++ {
			out = append(out, token(r, c, now))
		}
	case domain.KindProtocol:
		protocols := make([]*domain.ProtocolRecord, 0, limit)
		for i := 0; i < limit; i++ {
			protocols = append(protocols, protocol(r, c, i))
		}
		sort.SliceStable(protocols, func(i, j int) bool { return protocols[i].TVLUSD > protocols[j].TVLUSD })
		for _, p := range protocols {
			out = append(out, p)
		}
	case domain.KindYieldPool:
		pools := make([]*domain.YieldPoolRecord, 0, limit)
		for i := 0; i < limit; i++ {
			pools = append(pools, yieldPool(r, c, i))
		}
		sort.SliceStable(pools, func(i, j int) bool { return pools[i].TVLUSD > pools[j].TVLUSD })
		for _, p := range pools {
			out = append(out, p)
		}
	case domain.KindPrice:
		for _, sym := range pickSymbols(c.Symbols, limit) {
			out = append(out, price(r, sym))
		}
	case domain.KindNews:
		symbols := pickSymbols(c.Symbols, 1)
		for i := 0; i < limit; i++ {
			out = append(out, news(r, symbols[0], now, i))
		}
	case domain.KindTrending:
		for i, sym := range pickSymbols(nil, limit) {
			rec := trending(r, sym, i+1)
			rec.Chain = c.Chain
			out = append(out, rec)
		}
	case domain.KindSentiment:
		if len(c.Symbols) == 0 {
			for i := 0; i < limit; i++ {
				out = append(out, sentiment(r, "Market sentiment", "", now))
			}
			break
		}
		for _, sym := range pickSymbols(c.Symbols, limit) {
			out = append(out, sentiment(r, assetName(sym)+" sentiment", sym, now))
		}
	default:
		for i := 0; i < limit; i++ {
			out = append(out, token(r, c, now))
		}
	}
	return out
}

// launchCap samples the skewed launch market-cap distribution.
func launchCap(r *rand.Rand) float64 {
	u := r.Float64()
	switch {
	case u < smallCapShare:
		return uniform(r, minLaunchCap, SmallCapCeiling)
	case u < smallCapShare+midCapShare:
		return uniform(r, SmallCapCeiling, MidCapCeiling)
	default:
		return logUniform(r, MidCapCeiling, maxLaunchCap)
	}
}

func token(r *rand.Rand, c domain.Criteria, now time.Time) *domain.TokenRecord {
	mcap := launchCap(r)
	if t, ok := c.ThresholdValue(); ok && mcap <= t {
		mcap += t
	}
	window := c.WindowHours
	if window <= 0 {
		window = domain.DefaultWindowHours
	}
	// Stay strictly inside the window.
	age := time.Duration(r.Float64() * 0.95 * float64(time.Duration(window)*time.Hour))

	platform := c.Platform
	if platform == "" {
		platform = domain.PlatformPumpFun
	}
	name := memeName(r)
	mint := randomMint(r)
	return &domain.TokenRecord{
		Mint:         mint,
		Name:         name,
		Symbol:       tickerFor(name),
		Platform:     platform,
		MarketCapUSD: round(mcap, 2),
		Volume24hUSD: round(mcap*uniform(r, 0.1, 1.5), 2),
		CreatedAt:    now.Add(-age),
	}
}

var protocolNames = []string{
	"Jito", "Kamino", "Marinade", "Raydium", "Jupiter", "Orca", "Drift", "Meteora",
	"MarginFi", "Sanctum", "Aave", "Lido", "Uniswap", "EigenLayer", "Sky",
}

var protocolCategories = []string{"Liquid Staking", "Lending", "Dexes", "Derivatives", "Yield"}

var defaultChains = []string{"Solana", "Ethereum", "Arbitrum", "Base"}

func protocol(r *rand.Rand, c domain.Criteria, i int) *domain.ProtocolRecord {
	name := indexedName(protocolNames, i)
	chain := chainOr(c.Chain, defaultChains[r.IntN(len(defaultChains))])
	tvl := logUniform(r, 10_000_000, 5_000_000_000)
	if t, ok := c.ThresholdValue(); ok && tvl <= t {
		tvl = t * (1 + logUniform(r, 0.01, 5))
	}
	return &domain.ProtocolRecord{
		Name:     name,
		Slug:     strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		Category: protocolCategories[r.IntN(len(protocolCategories))],
		Chains:   []string{chain},
		TVLUSD:   math.Ceil(tvl),
		Change1D: round(uniform(r, -5, 5), 2),
	}
}

var poolPairs = []string{"SOL-USDC", "JITOSOL", "MSOL-SOL", "USDC", "USDT", "JUP-SOL", "BONK-SOL", "WETH-USDC"}

func yieldPool(r *rand.Rand, c domain.Criteria, i int) *domain.YieldPoolRecord {
	apy := uniform(r, 2, 40)
	if t, ok := c.ThresholdValue(); ok {
		apy = t + uniform(r, 0.5, 20)
	}
	// Pools above the plausibility bound would be dropped downstream.
	apy = math.Min(apy, validation.MaxAPYPercent)
	symbol := poolPairs[r.IntN(len(poolPairs))]
	if len(c.Symbols) > 0 {
		symbol = c.Symbols[i%len(c.Symbols)] + "-USDC"
	}
	project := indexedName(protocolNames, i)
	return &domain.YieldPoolRecord{
		PoolID:  fmt.Sprintf("%s-%d", syntheticLabel, i+1),
		Project: strings.ToLower(project),
		Symbol:  symbol,
		Chain:   chainOr(c.Chain, "Solana"),
		APY:     round(apy, 2),
		TVLUSD:  round(logUniform(r, 1_000_000, 500_000_000), 0),
	}
}

func price(r *rand.Rand, symbol string) *domain.PriceRecord {
	low, high := 0.01, 10.0
	name := symbol
	if a, ok := domain.LookupAsset(symbol); ok {
		low, high, name = a.RefLow, a.RefHigh, a.Name
	}
	p := uniform(r, low, high)
	return &domain.PriceRecord{
		Symbol:       symbol,
		Name:         name,
		PriceUSD:     roundPrice(p),
		Change24hPct: round(uniform(r, -8, 8), 2),
	}
}

var headlineTemplates = []string{
	"%s traders eye key levels as volatility returns",
	"Analysts split on %s outlook after weekly close",
	"%s on-chain activity climbs while funding rates cool",
	"Whales accumulate %s as exchange balances fall",
	"%s ecosystem sees fresh developer inflows",
}

func news(r *rand.Rand, symbol string, now time.Time, i int) *domain.NewsRecord {
	subject := assetName(symbol)
	return &domain.NewsRecord{
		Title:       fmt.Sprintf(headlineTemplates[(i+r.IntN(len(headlineTemplates)))%len(headlineTemplates)], subject),
		Source:      syntheticLabel,
		PublishedAt: now.Add(-time.Duration(i*45+r.IntN(30)) * time.Minute),
		Symbols:     []string{symbol},
	}
}

func trending(r *rand.Rand, symbol string, rank int) *domain.TrendingRecord {
	p := price(r, symbol)
	return &domain.TrendingRecord{
		Name:         p.Name,
		Symbol:       symbol,
		Rank:         rank,
		PriceUSD:     p.PriceUSD,
		Change24hPct: round(uniform(r, -15, 40), 2),
	}
}

func sentiment(r *rand.Rand, name, symbol string, now time.Time) *domain.SentimentRecord {
	score := math.Round(uniform(r, 20, 80))
	return &domain.SentimentRecord{
		Name:           name,
		Symbol:         symbol,
		Score:          score,
		Classification: domain.ClassifySentiment(score),
		Timestamp:      now,
	}
}

// pickSymbols returns n symbols: the requested ones first, then well-known
// assets not already present.
func pickSymbols(requested []string, n int) []string {
	out := make([]string, 0, n)
	seen := make(map[string]bool, n)
	for _, s := range requested {
		s = strings.ToUpper(s)
		if len(out) == n {
			return out
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for i := 0; len(out) < n; i++ {
		s := domain.KnownAssets[i%len(domain.KnownAssets)].Symbol
		if i >= len(domain.KnownAssets) {
			s = fmt.Sprintf("%s%d", s, i/len(domain.KnownAssets)+1)
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

var (
	namePrefixes = []string{"Moon", "Based", "Giga", "Turbo", "Doge", "Pepe", "Bonk", "Cat", "Frog", "Chad", "Degen", "Sol"}
	nameSuffixes = []string{"Inu", "Coin", "Cat", "AI", "Wif", "Mog", "Pump", "Bro", "Zilla", "Hat"}
)

func memeName(r *rand.Rand) string {
	return namePrefixes[r.IntN(len(namePrefixes))] + " " + nameSuffixes[r.IntN(len(nameSuffixes))]
}

func tickerFor(name string) string {
	t := strings.ToUpper(strings.ReplaceAll(name, " ", ""))
	if len(t) > 6 {
		t = t[:6]
	}
	return t
}

// randomMint returns the base58 ed25519 public key of a random seed, the
// same shape as a keypair-created mint on Solana.
func randomMint(r *rand.Rand) string {
	var seed [32]byte
	for i := 0; i < len(seed); i += 8 {
		v := r.Uint64()
		for j := 0; j < 8; j++ {
			seed[i+j] = byte(v >> (8 * j))
		}
	}
	s, err := edwards25519.NewScalar().SetBytesWithClamping(seed[:])
	if err != nil {
		return base58.Encode(seed[:])
	}
	return base58.Encode(new(edwards25519.Point).ScalarBaseMult(s).Bytes())
}

func assetName(symbol string) string {
	if a, ok := domain.LookupAsset(symbol); ok {
		return a.Name
	}
	return symbol
}

func indexedName(names []string, i int) string {
	if i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("%s %d", names[i%len(names)], i/len(names)+1)
}

func chainOr(chain, fallback string) string {
	if chain == "" {
		return fallback
	}
	if len(chain) > 1 {
		return strings.ToUpper(chain[:1]) + strings.ToLower(chain[1:])
	}
	return strings.ToUpper(chain)
}

func uniform(r *rand.Rand, low, high float64) float64 {
	return low + r.Float64()*(high-low)
}

func logUniform(r *rand.Rand, low, high float64) float64 {
	return math.Exp(uniform(r, math.Log(low), math.Log(high)))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// roundPrice keeps four significant digits for sub-dollar prices.
func roundPrice(v float64) float64 {
	if v >= 1 {
		return round(v, 2)
	}
	if v <= 0 {
		return v
	}
	places := 3 - int(math.Floor(math.Log10(v)))
	return round(v, places)
}
