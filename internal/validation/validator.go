// Package validation drops provider records that fail per-field sanity rules.
package validation

import (
	"strings"

	"crypto-query-lab/internal/domain"
)

// MaxAPYPercent is the largest APY (in percent) accepted as plausible.
const MaxAPYPercent = 1_000_000

// Clean returns the records that pass every sanity rule applicable to their
// fields. Survivors keep their input order. Clean does not modify its input
// and is idempotent.
func Clean(records []domain.Record) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if Valid(r) {
			out = append(out, r)
		}
	}
	return out
}

// Valid reports whether a single record passes all applicable rules.
// A price record is named by its Symbol: a blank Name is allowed since
// DisplayName falls back to the symbol.
func Valid(r domain.Record) bool {
	switch rec := r.(type) {
	case *domain.TokenRecord:
		return rec != nil && hasName(rec.Name) && rec.MarketCapUSD > 0 && rec.Volume24hUSD >= 0
	case *domain.ProtocolRecord:
		return rec != nil && hasName(rec.Name) && rec.TVLUSD > 0
	case *domain.YieldPoolRecord:
		return rec != nil && hasName(rec.Project) && validAPY(rec.APY) && rec.TVLUSD > 0
	case *domain.PriceRecord:
		return rec != nil && hasName(rec.Symbol) && rec.PriceUSD > 0 && rec.MarketCapUSD >= 0
	case *domain.NewsRecord:
		return rec != nil && hasName(rec.Title)
	case *domain.TrendingRecord:
		return rec != nil && hasName(rec.Name) && rec.PriceUSD >= 0
	case *domain.SentimentRecord:
		return rec != nil && hasName(rec.Name) && rec.Score >= 0 && rec.Score <= 100
	default:
		return false
	}
}

func hasName(s string) bool {
	return strings.TrimSpace(s) != ""
}

func validAPY(apy float64) bool {
	return apy >= 0 && apy <= MaxAPYPercent
}
