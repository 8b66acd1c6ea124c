package domain

import "time"

// ProvenanceSynthetic tags results produced by the synthetic generator.
const ProvenanceSynthetic = "synthetic"

// AggregationResult is the outcome of one fallback aggregation.
// Records are homogeneous in Kind and have passed validation.
type AggregationResult struct {
	Kind       Kind
	Records    []Record
	Provenance string // provider name or ProvenanceSynthetic
	Count      int

	// ValidationExhausted is set when at least one provider returned records
	// but none of them survived validation.
	ValidationExhausted bool
}

// IsSynthetic reports whether the records came from the synthetic generator.
func (r AggregationResult) IsSynthetic() bool {
	return r.Provenance == ProvenanceSynthetic
}

// IntentPath records which resolver tier produced the intent.
type IntentPath string

const (
	IntentPathParsed   IntentPath = "parsed"
	IntentPathFallback IntentPath = "fallback"
)

// SynthesisTier records which answer tier produced the answer.
type SynthesisTier string

const (
	SynthesisTierModel       SynthesisTier = "model"
	SynthesisTierModelNoData SynthesisTier = "model-no-data"
	SynthesisTierTemplate    SynthesisTier = "template"
)

// Metadata describes where the records of a QueryResult came from.
type Metadata struct {
	Kind                Kind          `json:"kind"`
	Providers           []string      `json:"providers"`
	TotalCount          int           `json:"total_count"`
	IntentPath          IntentPath    `json:"intent_path,omitempty"`
	SynthesisTier       SynthesisTier `json:"synthesis_tier,omitempty"`
	ValidationExhausted bool          `json:"validation_exhausted,omitempty"`
}

// QueryResult is the complete answer to one query. It is built once per
// request and never stored.
type QueryResult struct {
	ID        string
	Query     string
	Answer    string
	Intent    QueryIntent
	Records   []Record
	Metadata  Metadata
	Elapsed   time.Duration
	Timestamp time.Time
}

// ElapsedMillis returns the processing duration in milliseconds.
func (r *QueryResult) ElapsedMillis() int64 {
	return r.Elapsed.Milliseconds()
}
