package synthesis

import (
	"fmt"
	"strings"
	"time"

	"crypto-query-lab/internal/domain"
)

const answerSystemPrompt = `You are a concise crypto market analyst.
Answer the user's question using only the data provided. Quote concrete numbers
with their units. Keep the answer under 300 words and do not give financial advice.
If the data is marked as simulated, say that live sources were unavailable.`

const noDataSystemPrompt = `You are a concise crypto market analyst.
Live market data for this question could not be retrieved or failed validation.
Say so briefly in one sentence, then answer from general knowledge of the topic.
Do not invent current prices, market caps or counts. Keep the answer under 200 words.`

// categoryGuidance gives the no-data prompt a category-specific angle.
var categoryGuidance = map[domain.Category]string{
	domain.CategoryTokenLaunch:    "Explain how pump.fun launches work, typical market cap ranges of new tokens and the risks involved.",
	domain.CategoryEcosystemToken: "Explain the letsbonk.fun launch platform in the BONK ecosystem and how its launches compare to pump.fun.",
	domain.CategoryCombined:       "Compare pump.fun and letsbonk.fun as launch platforms in general terms.",
	domain.CategoryDefiTVL:        "Explain what TVL measures and name protocols that are usually among the largest.",
	domain.CategoryDefiYield:      "Explain where DeFi yields come from, what drives high APYs and the main risks.",
	domain.CategoryPrice:          "Explain where to check live prices and the factors that usually move them.",
	domain.CategoryNews:           "Point to reliable crypto news sources and the themes currently worth following.",
	domain.CategoryTrending:       "Explain how trending lists are built and how to read them critically.",
	domain.CategorySentiment:      "Explain how sentiment indices such as the Fear & Greed Index are built and interpreted.",
	domain.CategoryGeneralMarket:  "Give a short framework for reading the overall crypto market.",
}

func dataPrompt(in Input, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Question: %s\n\n", in.Query)
	fmt.Fprintf(&sb, "Category: %s\n", in.Intent.Category)
	if threshold, ok := in.Intent.ThresholdValue(); ok {
		fmt.Fprintf(&sb, "Threshold: %s\n", formatUSD(threshold))
	}
	fmt.Fprintf(&sb, "Time window: %s\n", formatWindow(in.Intent.WindowHours))
	if in.Intent.Chain != "" {
		fmt.Fprintf(&sb, "Chain: %s\n", in.Intent.Chain)
	}
	fmt.Fprintf(&sb, "Sources: %s\n", strings.Join(in.Metadata.Providers, ", "))
	if isSimulated(in.Metadata) {
		sb.WriteString("Note: some data is simulated because live sources were unavailable.\n")
	}
	fmt.Fprintf(&sb, "Total records: %d (showing up to %d)\n", len(in.Records), maxSummarized)
	fmt.Fprintf(&sb, "Processing time: %dms\n\n", in.Elapsed.Milliseconds())
	sb.WriteString("Data:\n")
	sb.WriteString(summarize(in.Records, maxSummarized, now))
	return sb.String()
}

func noDataPrompt(in Input) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Question: %s\n", in.Query)
	fmt.Fprintf(&sb, "Category: %s\n", in.Intent.Category)
	if symbols := in.Intent.Symbols(); len(symbols) > 0 {
		fmt.Fprintf(&sb, "Assets: %s\n", strings.Join(symbols, ", "))
	}
	if guidance, ok := categoryGuidance[in.Intent.Category]; ok {
		fmt.Fprintf(&sb, "Guidance: %s\n", guidance)
	}
	return sb.String()
}
