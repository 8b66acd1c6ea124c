package synthesis

import (
	"fmt"
	"strings"
	"time"

	"crypto-query-lab/internal/domain"
)

// maxSummarized caps how many records reach the model prompt.
const maxSummarized = 10

// summarize renders up to max records, one line each, with the fields that
// matter for each kind.
func summarize(records []domain.Record, max int, now time.Time) string {
	if len(records) > max {
		records = records[:max]
	}
	var sb strings.Builder
	for i, r := range records {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, summarizeRecord(r, now))
	}
	return sb.String()
}

func summarizeRecord(r domain.Record, now time.Time) string {
	switch rec := r.(type) {
	case *domain.TokenRecord:
		line := fmt.Sprintf("%s (%s) on %s: market cap %s", rec.Name, rec.Symbol, rec.Platform.DisplayName(), formatUSD(rec.MarketCapUSD))
		if rec.Volume24hUSD > 0 {
			line += ", 24h volume " + formatCompactUSD(rec.Volume24hUSD)
		}
		if age := formatAge(rec.CreatedAt, now); age != "" {
			line += ", launched " + age
		}
		return line
	case *domain.PriceRecord:
		line := fmt.Sprintf("%s (%s): %s, 24h %s", rec.Symbol, rec.DisplayName(), formatUSD(rec.PriceUSD), formatChange(rec.Change24hPct))
		if rec.MarketCapUSD > 0 {
			line += ", market cap " + formatCompactUSD(rec.MarketCapUSD)
		}
		return line
	case *domain.ProtocolRecord:
		line := fmt.Sprintf("%s: TVL %s", rec.Name, formatCompactUSD(rec.TVLUSD))
		if rec.Category != "" {
			line += ", category " + rec.Category
		}
		if len(rec.Chains) > 0 {
			chains := rec.Chains
			if len(chains) > 5 {
				chains = chains[:5]
			}
			line += ", chains " + strings.Join(chains, "/")
		}
		return line
	case *domain.YieldPoolRecord:
		return fmt.Sprintf("%s %s on %s: APY %s, TVL %s", rec.Project, rec.Symbol, rec.Chain, formatPercent(rec.APY), formatCompactUSD(rec.TVLUSD))
	case *domain.NewsRecord:
		line := rec.Title
		if rec.Source != "" {
			line += " (" + rec.Source + ")"
		}
		if !rec.PublishedAt.IsZero() {
			line += ", " + formatAge(rec.PublishedAt, now)
		}
		if rec.Summary != "" {
			line += ": " + clip(rec.Summary, 200)
		}
		return line
	case *domain.TrendingRecord:
		line := fmt.Sprintf("#%d %s (%s)", rec.Rank, rec.Name, rec.Symbol)
		if rec.PriceUSD > 0 {
			line += fmt.Sprintf(", price %s, 24h %s", formatUSD(rec.PriceUSD), formatChange(rec.Change24hPct))
		}
		if rec.Chain != "" {
			line += ", on " + rec.Chain
		}
		return line
	case *domain.SentimentRecord:
		return fmt.Sprintf("%s: %.0f/100 (%s)", rec.Name, rec.Score, rec.Classification)
	}
	return r.DisplayName()
}

func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	cut := strings.LastIndex(s[:n], " ")
	if cut <= 0 {
		cut = n
	}
	return s[:cut] + "..."
}
