package intent

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"crypto-query-lab/internal/domain"
)

// Category signals, matched against the lower-cased query.
var (
	rePrice     = regexp.MustCompile(`\bprices?\b|\bworth\b|trading at|\bcost\b|how much is|\bpriced\b|\bvalue of\b|\bquote\b`)
	reYield     = regexp.MustCompile(`\byields?\b|\bapy\b|\bapr\b|\bfarm(s|ing)?\b|staking rewards?|\binterest rates?\b`)
	reTVL       = regexp.MustCompile(`\btvl\b|total value locked|\bdefi\b|\bprotocols?\b`)
	reNews      = regexp.MustCompile(`\bnews\b|\bupdates?\b|\bheadlines?\b|\bannounce(d|ment|ments)?\b|\bhappening\b`)
	reTrending  = regexp.MustCompile(`\btrending\b|\bhot\b|\bpopular\b|\bgainers?\b|\bmovers?\b|\bbuzz(ing)?\b`)
	reSentiment = regexp.MustCompile(`\bsentiment\b|\bbullish\b|\bbearish\b|\bfear\b|\bgreed\b|\bmood\b`)
	rePumpFun   = regexp.MustCompile(`pump\.fun|\bpumpfun\b|\bpump fun\b`)
	reLetsBonk  = regexp.MustCompile(`letsbonk|lets bonk|bonk\.fun|\bbonk\b`)
	reBoth      = regexp.MustCompile(`\bboth\b|\bvs\.?\b|\bversus\b|\bcompar(e|ed|ing|ison)\b`)
	reCompare   = regexp.MustCompile(`\bvs\.?\b|\bversus\b|\bcompar(e|ed|ing|ison)\b`)
	reMarket    = regexp.MustCompile(`market overview|\bmarket (update|summary|conditions|today)\b|overall market|crypto market|how is the market|how's the market|state of the market`)
	reLaunch    = regexp.MustCompile(`\btokens?\b|\blaunch(es|ed|ing)?\b|\bnew coins?\b|\bmcap\b|\bmarket cap\b|\bminted\b|\bgraduat(e|ed|ion)\b|\bmemecoins?\b`)
	reMarketCap = regexp.MustCompile(`\bmcap\b|\bmarket ?cap\b`)
	reVolume    = regexp.MustCompile(`\bvolume\b`)
)

// Window and threshold patterns.
var (
	reHours     = regexp.MustCompile(`\b(\d+)\s*(?:-\s*)?(?:hours?|hrs?|h)\b`)
	reDays      = regexp.MustCompile(`\b(\d+)\s*(?:-\s*)?days?\b`)
	reWeeks     = regexp.MustCompile(`\b(\d+)\s*(?:-\s*)?weeks?\b`)
	reHourWord  = regexp.MustCompile(`\bhour\b`)
	reWeekWord  = regexp.MustCompile(`\bweek\b`)
	reNumber    = regexp.MustCompile(`(\$)?(\d{1,3}(?:,\d{3})+|\d+(?:\.\d+)?)\s*(k\b|thousand\b)?`)
	reTopN      = regexp.MustCompile(`\btop\s*$`)
	reUnitAfter = regexp.MustCompile(`^\s*(?:-\s*)?(?:hours?|hrs?|h|days?|weeks?|minutes?|mins?|m)\b`)
	reChainOn   = regexp.MustCompile(`\b(?:on|in|across)\s+(solana|ethereum|eth|arbitrum|base|bsc|bnb chain|polygon|avalanche|optimism)\b`)
	reChainBare = regexp.MustCompile(`\b(solana|ethereum|arbitrum|bsc|polygon|avalanche|optimism)\b`)
)

var chainNames = map[string]string{
	"solana":    "Solana",
	"ethereum":  "Ethereum",
	"eth":       "Ethereum",
	"arbitrum":  "Arbitrum",
	"base":      "Base",
	"bsc":       "BSC",
	"bnb chain": "BSC",
	"polygon":   "Polygon",
	"avalanche": "Avalanche",
	"optimism":  "Optimism",
}

// ambiguousAliases are ordinary English words that only count as tickers
// when written in upper case.
var ambiguousAliases = map[string]bool{"link": true, "dot": true}

// Classify derives an intent from query with keyword and regex rules.
// Category precedence is fixed: price, defi (yield before tvl), news,
// trending, sentiment, the token-launch family, general market, and
// token-launch as the default. It is deterministic.
func Classify(query string) domain.QueryIntent {
	lower := strings.ToLower(strings.Join(strings.Fields(query), " "))

	symbols := extractSymbols(query)
	chain, chainWord := extractChain(lower)
	threshold := extractThreshold(lower)

	price := rePrice.MatchString(lower)
	yield := reYield.MatchString(lower)
	tvl := reTVL.MatchString(lower)
	news := reNews.MatchString(lower)
	trending := reTrending.MatchString(lower)
	sentiment := reSentiment.MatchString(lower)
	pump := rePumpFun.MatchString(lower)
	bonk := reLetsBonk.MatchString(lower)
	launch := reLaunch.MatchString(lower)
	mcap := reMarketCap.MatchString(lower)

	// A market cap question about named assets is a price question.
	if !price && mcap && len(symbols) > 0 && !pump && !bonk && !reLaunch.MatchString(reMarketCap.ReplaceAllString(lower, "")) {
		price = true
	}

	var category domain.Category
	switch {
	case price:
		category = domain.CategoryPrice
	case yield:
		category = domain.CategoryDefiYield
	case tvl:
		category = domain.CategoryDefiTVL
	case news:
		category = domain.CategoryNews
	case trending:
		category = domain.CategoryTrending
	case sentiment:
		category = domain.CategorySentiment
	case pump && bonk, bonk && reBoth.MatchString(lower):
		category = domain.CategoryCombined
	case bonk:
		category = domain.CategoryEcosystemToken
	case pump:
		category = domain.CategoryTokenLaunch
	case reMarket.MatchString(reMarketCap.ReplaceAllString(lower, "")) && !launch:
		category = domain.CategoryGeneralMarket
	default:
		category = domain.CategoryTokenLaunch
	}

	switch category {
	case domain.CategoryDefiTVL, domain.CategoryDefiYield:
		if chainWord != "" {
			symbols = without(symbols, chainSymbol(chainWord))
		}
	case domain.CategoryTokenLaunch, domain.CategoryEcosystemToken, domain.CategoryCombined:
		if bonk {
			symbols = without(symbols, "BONK")
		}
	}

	return domain.NewQueryIntent(domain.IntentParams{
		Category:         category,
		Metric:           metricFor(category, lower, mcap),
		Threshold:        threshold,
		WindowHours:      extractWindow(lower),
		Symbols:          symbols,
		Chain:            chain,
		IncludeNews:      news && category != domain.CategoryNews,
		IncludeSentiment: sentiment && category != domain.CategorySentiment,
		Comparison:       reCompare.MatchString(lower) || category == domain.CategoryCombined,
	})
}

func metricFor(category domain.Category, lower string, mcap bool) domain.Metric {
	switch {
	case mcap:
		return domain.MetricMarketCap
	case reVolume.MatchString(lower):
		return domain.MetricVolume
	}
	switch category {
	case domain.CategoryDefiTVL:
		return domain.MetricTVL
	case domain.CategoryDefiYield:
		return domain.MetricAPY
	case domain.CategoryPrice, domain.CategoryGeneralMarket:
		return domain.MetricPrice
	case domain.CategoryTokenLaunch, domain.CategoryEcosystemToken, domain.CategoryCombined:
		return domain.MetricMarketCap
	}
	return domain.MetricNone
}

// extractWindow returns the time window in hours: an explicit count of
// hours, days or weeks, 1 for "hour", 168 for "week", otherwise the default.
func extractWindow(lower string) int {
	if m := reHours.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	if m := reDays.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n * 24
		}
	}
	if m := reWeeks.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n * 168
		}
	}
	switch {
	case reHourWord.MatchString(lower):
		return 1
	case reWeekWord.MatchString(lower):
		return 168
	}
	return domain.DefaultWindowHours
}

// extractThreshold finds the first number that is not a duration or a
// "top N" count. Commas group thousands and a "k" suffix multiplies by 1000.
func extractThreshold(lower string) *float64 {
	for _, loc := range reNumber.FindAllStringSubmatchIndex(lower, -1) {
		start, end := loc[0], loc[1]
		if loc[6] < 0 {
			end = loc[5]
		}
		if start > 0 && isWordChar(rune(lower[start-1])) {
			continue // part of a word such as "web3"
		}
		if reTopN.MatchString(lower[:start]) {
			continue
		}
		if loc[6] < 0 && reUnitAfter.MatchString(lower[end:]) {
			continue
		}
		if loc[6] < 0 && end < len(lower) && isWordChar(rune(lower[end])) {
			continue // "24h", "3x" and similar
		}

		digits := strings.ReplaceAll(lower[loc[4]:loc[5]], ",", "")
		v, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			continue
		}
		if loc[6] >= 0 {
			v *= 1000
		}
		return &v
	}
	return nil
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// extractSymbols returns tickers in order of first appearance: $CASHTAGS
// and names or tickers of known assets.
func extractSymbols(query string) []string {
	var out []string
	for _, word := range strings.FieldsFunc(query, func(r rune) bool {
		return !isWordChar(r) && r != '$' && r != '.'
	}) {
		word = strings.Trim(word, ".")
		if strings.HasPrefix(word, "$") {
			tag := strings.TrimLeft(word, "$")
			if tag != "" && unicode.IsLetter(rune(tag[0])) {
				out = append(out, strings.ToUpper(tag))
			}
			continue
		}
		lw := strings.ToLower(word)
		if ambiguousAliases[lw] && word != strings.ToUpper(word) {
			continue
		}
		for _, a := range domain.KnownAssets {
			if containsString(a.Aliases, lw) {
				out = append(out, a.Symbol)
				break
			}
		}
	}
	return out
}

// extractChain returns the normalized chain filter and the word that named it.
func extractChain(lower string) (string, string) {
	if m := reChainOn.FindStringSubmatch(lower); m != nil {
		return chainNames[m[1]], m[1]
	}
	if m := reChainBare.FindStringSubmatch(lower); m != nil {
		return chainNames[m[1]], m[1]
	}
	return "", ""
}

func chainSymbol(word string) string {
	for _, a := range domain.KnownAssets {
		if containsString(a.Aliases, word) {
			return a.Symbol
		}
	}
	return ""
}

func without(symbols []string, drop string) []string {
	if drop == "" {
		return symbols
	}
	out := symbols[:0:0]
	for _, s := range symbols {
		if s != drop {
			out = append(out, s)
		}
	}
	return out
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
