package server

import (
	"time"

	"crypto-query-lab/internal/domain"
)

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Query string `json:"query"`
}

// IntentResponse is the resolved intent as returned to clients.
type IntentResponse struct {
	Category         domain.Category `json:"category"`
	Metric           domain.Metric   `json:"metric,omitempty"`
	Threshold        *float64        `json:"threshold,omitempty"`
	TimeframeHours   int             `json:"timeframe_hours"`
	Symbols          []string        `json:"symbols"`
	Chain            string          `json:"chain,omitempty"`
	IncludeNews      bool            `json:"include_news"`
	IncludeSentiment bool            `json:"include_sentiment"`
	Comparison       bool            `json:"comparison"`
}

// RecordResponse tags a record with its kind.
type RecordResponse struct {
	Kind domain.Kind   `json:"kind"`
	Data domain.Record `json:"data"`
}

// QueryResponse is the body of a successful POST /api/query.
type QueryResponse struct {
	ID        string           `json:"id"`
	Query     string           `json:"query"`
	Answer    string           `json:"answer"`
	Intent    IntentResponse   `json:"intent"`
	Records   []RecordResponse `json:"records"`
	Metadata  domain.Metadata  `json:"metadata"`
	Timestamp string           `json:"timestamp"`
	ElapsedMS int64            `json:"elapsed_ms"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	ElapsedMS *int64 `json:"elapsed_ms,omitempty"`
}

// NewQueryResponse converts a query result to its wire shape.
func NewQueryResponse(r *domain.QueryResult) QueryResponse {
	records := make([]RecordResponse, 0, len(r.Records))
	for _, rec := range r.Records {
		records = append(records, RecordResponse{Kind: rec.Kind(), Data: rec})
	}
	return QueryResponse{
		ID:        r.ID,
		Query:     r.Query,
		Answer:    r.Answer,
		Intent:    toIntentResponse(r.Intent),
		Records:   records,
		Metadata:  r.Metadata,
		Timestamp: r.Timestamp.Format(time.RFC3339),
		ElapsedMS: r.ElapsedMillis(),
	}
}

func toIntentResponse(q domain.QueryIntent) IntentResponse {
	return IntentResponse{
		Category:         q.Category,
		Metric:           q.Metric,
		Threshold:        q.Threshold,
		TimeframeHours:   q.WindowHours,
		Symbols:          q.Symbols(),
		Chain:            q.Chain,
		IncludeNews:      q.IncludeNews,
		IncludeSentiment: q.IncludeSentiment,
		Comparison:       q.Comparison,
	}
}
