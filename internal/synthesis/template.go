package synthesis

import (
	"fmt"
	"strings"

	"crypto-query-lab/internal/domain"
)

// templateListed caps how many records a template answer names.
const templateListed = 5

// Template builds the deterministic answer used when no model answer is
// available. It never fails.
func Template(in Input) string {
	primary, news, sentiment := split(in.Records, in.Metadata.Kind)

	var sb strings.Builder
	sb.WriteString(primaryText(in, primary))
	if len(news) > 0 {
		titles := make([]string, 0, templateListed)
		for _, r := range truncate(news, templateListed-2) {
			titles = append(titles, r.DisplayName())
		}
		fmt.Fprintf(&sb, " Related news: %s.", strings.Join(titles, "; "))
	}
	if len(sentiment) > 0 {
		fmt.Fprintf(&sb, " Sentiment: %s.", joinSentiment(sentiment))
	}
	if len(primary) > 0 && isSimulated(in.Metadata) {
		sb.WriteString(" Live sources were unavailable, so these figures are simulated estimates.")
	}
	fmt.Fprintf(&sb, " (in %dms)", in.Elapsed.Milliseconds())
	return sb.String()
}

func primaryText(in Input, records []domain.Record) string {
	if len(records) == 0 {
		return fmt.Sprintf("No results found for %q.", in.Query)
	}

	switch in.Metadata.Kind {
	case domain.KindToken:
		return tokenText(in, records)
	case domain.KindPrice:
		parts := make([]string, 0, len(records))
		for _, r := range truncate(records, maxSummarized) {
			p := r.(*domain.PriceRecord)
			parts = append(parts, fmt.Sprintf("%s: %s (%s 24h)", p.Symbol, formatUSD(p.PriceUSD), formatChange(p.Change24hPct)))
		}
		return "Current prices: " + strings.Join(parts, ", ") + "."
	case domain.KindProtocol:
		parts := make([]string, 0, templateListed)
		for _, r := range truncate(records, templateListed) {
			p := r.(*domain.ProtocolRecord)
			parts = append(parts, fmt.Sprintf("%s (%s)", p.Name, formatCompactUSD(p.TVLUSD)))
		}
		return fmt.Sprintf("Found %d DeFi protocols%s. Top by TVL: %s.", len(records), chainSuffix(in.Intent.Chain), strings.Join(parts, ", "))
	case domain.KindYieldPool:
		parts := make([]string, 0, templateListed)
		for _, r := range truncate(records, templateListed) {
			p := r.(*domain.YieldPoolRecord)
			parts = append(parts, fmt.Sprintf("%s %s on %s at %s APY (TVL %s)", p.Project, p.Symbol, p.Chain, formatPercent(p.APY), formatCompactUSD(p.TVLUSD)))
		}
		return fmt.Sprintf("Found %d yield pools%s: %s.", len(records), chainSuffix(in.Intent.Chain), strings.Join(parts, "; "))
	case domain.KindNews:
		parts := make([]string, 0, templateListed)
		for i, r := range truncate(records, templateListed) {
			parts = append(parts, fmt.Sprintf("%d) %s", i+1, r.DisplayName()))
		}
		return "Latest headlines: " + strings.Join(parts, "; ") + "."
	case domain.KindTrending:
		parts := make([]string, 0, templateListed)
		for _, r := range truncate(records, templateListed) {
			p := r.(*domain.TrendingRecord)
			parts = append(parts, fmt.Sprintf("%s (%s)", p.Name, p.Symbol))
		}
		return "Trending now: " + strings.Join(parts, ", ") + "."
	case domain.KindSentiment:
		return "Market sentiment: " + joinSentiment(records) + "."
	}
	return fmt.Sprintf("Found %d results for %q.", len(records), in.Query)
}

func tokenText(in Input, records []domain.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d tokens %s", len(records), platformText(in.Intent.Category, records))
	if threshold, ok := in.Intent.ThresholdValue(); ok {
		fmt.Fprintf(&sb, " above %s market cap", formatUSD(threshold))
	}
	fmt.Fprintf(&sb, " in %s.", formatWindow(in.Intent.WindowHours))

	parts := make([]string, 0, templateListed)
	for _, r := range truncate(records, templateListed) {
		t := r.(*domain.TokenRecord)
		parts = append(parts, fmt.Sprintf("%s (%s)", t.Name, formatUSD(t.MarketCapUSD)))
	}
	fmt.Fprintf(&sb, " Top by market cap: %s.", strings.Join(parts, ", "))
	return sb.String()
}

// platformText names the launch platforms, with per-platform counts for
// combined queries.
func platformText(category domain.Category, records []domain.Record) string {
	if category != domain.CategoryCombined {
		platform := domain.PlatformPumpFun
		if category == domain.CategoryEcosystemToken {
			platform = domain.PlatformLetsBonk
		}
		return "on " + platform.DisplayName()
	}
	counts := map[domain.Platform]int{}
	for _, r := range records {
		counts[r.(*domain.TokenRecord).Platform]++
	}
	return fmt.Sprintf("across %s (%d) and %s (%d)",
		domain.PlatformPumpFun.DisplayName(), counts[domain.PlatformPumpFun],
		domain.PlatformLetsBonk.DisplayName(), counts[domain.PlatformLetsBonk])
}

func joinSentiment(records []domain.Record) string {
	parts := make([]string, 0, len(records))
	for _, r := range records {
		s := r.(*domain.SentimentRecord)
		parts = append(parts, fmt.Sprintf("%s %.0f/100 (%s)", s.Name, s.Score, s.Classification))
	}
	return strings.Join(parts, ", ")
}

func chainSuffix(chain string) string {
	if chain == "" {
		return ""
	}
	return " on " + chain
}

// split separates the primary records from appended news and sentiment.
func split(records []domain.Record, primary domain.Kind) (main, news, sentiment []domain.Record) {
	for _, r := range records {
		switch {
		case r.Kind() == primary:
			main = append(main, r)
		case r.Kind() == domain.KindNews:
			news = append(news, r)
		case r.Kind() == domain.KindSentiment:
			sentiment = append(sentiment, r)
		}
	}
	return main, news, sentiment
}

func truncate(records []domain.Record, n int) []domain.Record {
	if len(records) > n {
		return records[:n]
	}
	return records
}

func isSimulated(meta domain.Metadata) bool {
	for _, p := range meta.Providers {
		if p == domain.ProvenanceSynthetic {
			return true
		}
	}
	return false
}
