package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordJSON_OmitsUnknownTimes(t *testing.T) {
	records := []Record{
		&TokenRecord{Name: "Fartcoin", MarketCapUSD: 25_000},
		&NewsRecord{Title: "SOL ETF filed"},
		&SentimentRecord{Name: "Fear & Greed", Score: 55},
	}
	for _, r := range records {
		t.Run(r.Kind().String(), func(t *testing.T) {
			data, err := json.Marshal(r)
			require.NoError(t, err)
			assert.NotContains(t, string(data), "0001-01-01")
		})
	}
}

func TestRecordJSON_KeepsKnownTimes(t *testing.T) {
	at := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
	data, err := json.Marshal(&NewsRecord{Title: "SOL ETF filed", PublishedAt: at})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"published_at":"2024-05-06T10:00:00Z"`)
}
