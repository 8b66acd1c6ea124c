package provider

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"crypto-query-lab/internal/domain"
)

const fearGreedBaseURL = "https://api.alternative.me"

// FearGreedIndexName is the display name of the market-wide index record.
const FearGreedIndexName = "Crypto Fear & Greed Index"

// FearGreed reads the alternative.me Crypto Fear & Greed Index.
type FearGreed struct {
	http *HTTPClient
}

// NewFearGreed creates the Fear & Greed provider.
func NewFearGreed(opts Options) *FearGreed {
	return &FearGreed{http: opts.newClient("feargreed", fearGreedBaseURL)}
}

func (p *FearGreed) Name() string { return "feargreed" }

type fearGreedResponse struct {
	Data []struct {
		Value               number `json:"value"`
		ValueClassification string `json:"value_classification"`
		Timestamp           string `json:"timestamp"`
	} `json:"data"`
}

// Fetch implements Provider. The index is market-wide, so only the latest
// reading is returned regardless of symbols.
func (p *FearGreed) Fetch(ctx context.Context, criteria domain.Criteria) ([]domain.Record, error) {
	q := url.Values{}
	q.Set("limit", "1")

	var resp fearGreedResponse
	if err := p.http.GetJSON(ctx, "/fng/", q, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, EmptyError(p.Name())
	}

	d := resp.Data[0]
	score := d.Value.Float()
	rec := &domain.SentimentRecord{
		Name:           FearGreedIndexName,
		Score:          score,
		Classification: strings.TrimSpace(d.ValueClassification),
	}
	if rec.Classification == "" {
		rec.Classification = domain.ClassifySentiment(score)
	}
	if secs, err := strconv.ParseInt(d.Timestamp, 10, 64); err == nil {
		rec.Timestamp = time.Unix(secs, 0).UTC()
	}
	return []domain.Record{rec}, nil
}
