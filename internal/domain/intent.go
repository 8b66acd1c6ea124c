package domain

import "strings"

// DefaultWindowHours is the time window used when a query names none.
const DefaultWindowHours = 24

// Metric names the numeric field a query is about.
type Metric string

const (
	MetricNone      Metric = ""
	MetricMarketCap Metric = "market_cap"
	MetricTVL       Metric = "tvl"
	MetricAPY       Metric = "apy"
	MetricPrice     Metric = "price"
	MetricVolume    Metric = "volume"
)

// IsValid checks if the metric is a known value.
func (m Metric) IsValid() bool {
	switch m {
	case MetricNone, MetricMarketCap, MetricTVL, MetricAPY, MetricPrice, MetricVolume:
		return true
	}
	return false
}

// QueryIntent is the typed description of what a free-text query asks for.
// It is built once per query through NewQueryIntent and treated as a value
// afterwards: accessors hand out copies of the symbol list.
type QueryIntent struct {
	Category         Category
	Metric           Metric
	Threshold        *float64 // nil when the query names no threshold
	WindowHours      int
	Chain            string // empty when unfiltered
	IncludeNews      bool
	IncludeSentiment bool
	Comparison       bool

	symbols []string
}

// IntentParams holds the raw values for NewQueryIntent.
type IntentParams struct {
	Category         Category
	Metric           Metric
	Threshold        *float64
	WindowHours      int
	Symbols          []string
	Chain            string
	IncludeNews      bool
	IncludeSentiment bool
	Comparison       bool
}

// NewQueryIntent normalizes params into an intent: unknown categories become
// token-launch, non-positive windows become the default, symbols are
// upper-cased and de-duplicated preserving first appearance.
func NewQueryIntent(p IntentParams) QueryIntent {
	category := p.Category
	if !category.IsValid() {
		category = CategoryTokenLaunch
	}
	metric := p.Metric
	if !metric.IsValid() {
		metric = MetricNone
	}
	window := p.WindowHours
	if window <= 0 {
		window = DefaultWindowHours
	}

	var threshold *float64
	if p.Threshold != nil {
		v := *p.Threshold
		threshold = &v
	}

	seen := make(map[string]bool, len(p.Symbols))
	symbols := make([]string, 0, len(p.Symbols))
	for _, s := range p.Symbols {
		s = strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(s, "$")))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		symbols = append(symbols, s)
	}

	return QueryIntent{
		Category:         category,
		Metric:           metric,
		Threshold:        threshold,
		WindowHours:      window,
		Chain:            strings.TrimSpace(p.Chain),
		IncludeNews:      p.IncludeNews && category != CategoryNews,
		IncludeSentiment: p.IncludeSentiment && category != CategorySentiment,
		Comparison:       p.Comparison,
		symbols:          symbols,
	}
}

// Symbols returns a copy of the ticker list.
func (q QueryIntent) Symbols() []string {
	out := make([]string, len(q.symbols))
	copy(out, q.symbols)
	return out
}

// ThresholdValue returns the threshold and whether one was set.
func (q QueryIntent) ThresholdValue() (float64, bool) {
	if q.Threshold == nil {
		return 0, false
	}
	return *q.Threshold, true
}

// Equal reports whether two intents carry the same values.
func (q QueryIntent) Equal(other QueryIntent) bool {
	if q.Category != other.Category || q.Metric != other.Metric ||
		q.WindowHours != other.WindowHours || q.Chain != other.Chain ||
		q.IncludeNews != other.IncludeNews || q.IncludeSentiment != other.IncludeSentiment ||
		q.Comparison != other.Comparison {
		return false
	}
	a, aok := q.ThresholdValue()
	b, bok := other.ThresholdValue()
	if aok != bok || a != b {
		return false
	}
	if len(q.symbols) != len(other.symbols) {
		return false
	}
	for i := range q.symbols {
		if q.symbols[i] != other.symbols[i] {
			return false
		}
	}
	return true
}

// Criteria is what a provider is asked for within one aggregation.
type Criteria struct {
	Symbols     []string
	WindowHours int
	Threshold   *float64
	Chain       string
	Platform    Platform // token categories only
	Limit       int
}

// ThresholdValue returns the threshold and whether one was set.
func (c Criteria) ThresholdValue() (float64, bool) {
	if c.Threshold == nil {
		return 0, false
	}
	return *c.Threshold, true
}
