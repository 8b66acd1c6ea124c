package aggregator

import (
	"sort"
	"strings"
	"time"

	"crypto-query-lab/internal/domain"
)

// clockSkew tolerates launch timestamps slightly ahead of the local clock.
const clockSkew = 5 * time.Minute

// Filter keeps the records of kind that match criteria, in input order,
// truncated to criteria.Limit.
//
//   - token: market cap above the threshold, launched inside the window when
//     the launch time is known, on the requested platform
//   - protocol: listed on the chain, TVL above the threshold
//   - yield pool: on the chain, APY at or above the threshold
//   - price: one of the requested symbols
//   - trending: on the chain when the record names one
//   - sentiment: about a requested symbol, or market-wide
func Filter(kind domain.Kind, records []domain.Record, c domain.Criteria, now time.Time) []domain.Record {
	symbols := make(map[string]bool, len(c.Symbols))
	for _, s := range c.Symbols {
		symbols[strings.ToUpper(s)] = true
	}
	threshold, hasThreshold := c.ThresholdValue()

	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if r == nil || r.Kind() != kind {
			continue
		}
		keep := true
		switch rec := r.(type) {
		case *domain.TokenRecord:
			if hasThreshold && rec.MarketCapUSD <= threshold {
				keep = false
			}
			if c.WindowHours > 0 && !rec.CreatedAt.IsZero() {
				age := now.Sub(rec.CreatedAt)
				if age > time.Duration(c.WindowHours)*time.Hour || age < -clockSkew {
					keep = false
				}
			}
			if c.Platform != "" && rec.Platform != "" && rec.Platform != c.Platform {
				keep = false
			}
		case *domain.ProtocolRecord:
			if c.Chain != "" && !containsFold(rec.Chains, c.Chain) {
				keep = false
			}
			if hasThreshold && rec.TVLUSD <= threshold {
				keep = false
			}
		case *domain.YieldPoolRecord:
			if c.Chain != "" && !strings.EqualFold(rec.Chain, c.Chain) {
				keep = false
			}
			if hasThreshold && rec.APY < threshold {
				keep = false
			}
		case *domain.PriceRecord:
			if len(symbols) > 0 && !symbols[strings.ToUpper(rec.Symbol)] {
				keep = false
			}
		case *domain.TrendingRecord:
			if c.Chain != "" && rec.Chain != "" && !strings.EqualFold(rec.Chain, c.Chain) {
				keep = false
			}
		case *domain.SentimentRecord:
			if len(symbols) > 0 && rec.Symbol != "" && !symbols[strings.ToUpper(rec.Symbol)] {
				keep = false
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return truncate(out, c.Limit)
}

func truncate(records []domain.Record, limit int) []domain.Record {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

// SortKey returns the numeric merge key of a record and whether the kind
// has one: market cap for tokens and prices, TVL for protocols, APY for
// yield pools.
func SortKey(r domain.Record) (float64, bool) {
	switch rec := r.(type) {
	case *domain.TokenRecord:
		return rec.MarketCapUSD, true
	case *domain.PriceRecord:
		return rec.MarketCapUSD, true
	case *domain.ProtocolRecord:
		return rec.TVLUSD, true
	case *domain.YieldPoolRecord:
		return rec.APY, true
	}
	return 0, false
}

// Merge concatenates results in source order and sorts by SortKey
// descending, then by name ascending. Full ties keep their source order.
// Kinds without a sort key are only concatenated.
func Merge(results ...domain.AggregationResult) []domain.Record {
	var merged []domain.Record
	for _, res := range results {
		merged = append(merged, res.Records...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		ki, oki := SortKey(merged[i])
		kj, okj := SortKey(merged[j])
		if !oki || !okj {
			return false
		}
		if ki != kj {
			return ki > kj
		}
		return merged[i].DisplayName() < merged[j].DisplayName()
	})
	return merged
}
