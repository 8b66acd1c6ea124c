package domain

import "strings"

// Asset is a well-known tradable asset and its identifiers on upstream trackers.
type Asset struct {
	Symbol      string
	Name        string
	CoinGeckoID string
	CoinCapID   string
	// Aliases are lower-case words that refer to the asset in free text.
	Aliases []string
	// Reference bounds a plausible USD price, used for placeholder quotes.
	RefLow, RefHigh float64
}

// KnownAssets is ordered by rough market capitalization.
var KnownAssets = []Asset{
	{Symbol: "BTC", Name: "Bitcoin", CoinGeckoID: "bitcoin", CoinCapID: "bitcoin", Aliases: []string{"bitcoin", "btc"}, RefLow: 40_000, RefHigh: 110_000},
	{Symbol: "ETH", Name: "Ethereum", CoinGeckoID: "ethereum", CoinCapID: "ethereum", Aliases: []string{"ethereum", "ether", "eth"}, RefLow: 1_500, RefHigh: 4_500},
	{Symbol: "SOL", Name: "Solana", CoinGeckoID: "solana", CoinCapID: "solana", Aliases: []string{"solana", "sol"}, RefLow: 120, RefHigh: 220},
	{Symbol: "BNB", Name: "BNB", CoinGeckoID: "binancecoin", CoinCapID: "binance-coin", Aliases: []string{"bnb"}, RefLow: 300, RefHigh: 700},
	{Symbol: "XRP", Name: "XRP", CoinGeckoID: "ripple", CoinCapID: "xrp", Aliases: []string{"xrp", "ripple"}, RefLow: 0.4, RefHigh: 3},
	{Symbol: "ADA", Name: "Cardano", CoinGeckoID: "cardano", CoinCapID: "cardano", Aliases: []string{"cardano", "ada"}, RefLow: 0.25, RefHigh: 1.2},
	{Symbol: "DOGE", Name: "Dogecoin", CoinGeckoID: "dogecoin", CoinCapID: "dogecoin", Aliases: []string{"dogecoin", "doge"}, RefLow: 0.06, RefHigh: 0.4},
	{Symbol: "AVAX", Name: "Avalanche", CoinGeckoID: "avalanche-2", CoinCapID: "avalanche", Aliases: []string{"avax"}, RefLow: 15, RefHigh: 60},
	{Symbol: "DOT", Name: "Polkadot", CoinGeckoID: "polkadot", CoinCapID: "polkadot", Aliases: []string{"polkadot", "dot"}, RefLow: 3, RefHigh: 12},
	{Symbol: "LINK", Name: "Chainlink", CoinGeckoID: "chainlink", CoinCapID: "chainlink", Aliases: []string{"chainlink", "link"}, RefLow: 8, RefHigh: 30},
	{Symbol: "MATIC", Name: "Polygon", CoinGeckoID: "matic-network", CoinCapID: "polygon", Aliases: []string{"matic"}, RefLow: 0.2, RefHigh: 1.5},
	{Symbol: "BONK", Name: "Bonk", CoinGeckoID: "bonk", CoinCapID: "bonk", Aliases: []string{"bonk"}, RefLow: 0.000008, RefHigh: 0.00005},
	{Symbol: "WIF", Name: "dogwifhat", CoinGeckoID: "dogwifcoin", CoinCapID: "dogwifhat", Aliases: []string{"dogwifhat", "wif"}, RefLow: 0.5, RefHigh: 4},
	{Symbol: "JUP", Name: "Jupiter", CoinGeckoID: "jupiter-exchange-solana", CoinCapID: "jupiter", Aliases: []string{"jupiter", "jup"}, RefLow: 0.3, RefHigh: 2},
	{Symbol: "PEPE", Name: "Pepe", CoinGeckoID: "pepe", CoinCapID: "pepe", Aliases: []string{"pepe"}, RefLow: 0.000004, RefHigh: 0.00003},
	{Symbol: "USDC", Name: "USD Coin", CoinGeckoID: "usd-coin", CoinCapID: "usd-coin", Aliases: []string{"usdc"}, RefLow: 0.999, RefHigh: 1.001},
	{Symbol: "USDT", Name: "Tether", CoinGeckoID: "tether", CoinCapID: "tether", Aliases: []string{"tether", "usdt"}, RefLow: 0.999, RefHigh: 1.001},
}

// LookupAsset finds a known asset by ticker, case-insensitively.
func LookupAsset(symbol string) (Asset, bool) {
	symbol = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(symbol), "$"))
	for _, a := range KnownAssets {
		if a.Symbol == symbol {
			return a, true
		}
	}
	return Asset{}, false
}

// ClassifySentiment maps a 0-100 score to the Fear & Greed wording.
func ClassifySentiment(score float64) string {
	switch {
	case score < 25:
		return "Extreme Fear"
	case score < 45:
		return "Fear"
	case score <= 55:
		return "Neutral"
	case score <= 75:
		return "Greed"
	default:
		return "Extreme Greed"
	}
}
