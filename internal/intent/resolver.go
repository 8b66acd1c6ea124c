// Package intent turns a free-text query into a typed QueryIntent: the
// language model is asked first and a deterministic rule-based classifier
// takes over whenever the model is unavailable or its reply is unusable.
package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"crypto-query-lab/internal/domain"
	"crypto-query-lab/internal/llm"
	"crypto-query-lab/internal/observability"
)

// ErrModelDisabled is the fallback reason when no model client is configured.
var ErrModelDisabled = errors.New("intent model disabled")

// Resolution is the outcome of Resolve: either Parsed or FallbackUsed.
type Resolution interface {
	Intent() domain.QueryIntent
	Path() domain.IntentPath
	resolution()
}

// Parsed carries an intent taken from the model's reply.
type Parsed struct {
	intent domain.QueryIntent
}

func (p Parsed) Intent() domain.QueryIntent { return p.intent }
func (p Parsed) Path() domain.IntentPath    { return domain.IntentPathParsed }
func (Parsed) resolution()                  {}

// FallbackUsed carries an intent from the rule-based classifier and the
// reason the model path was abandoned.
type FallbackUsed struct {
	intent domain.QueryIntent
	Reason error
}

func (f FallbackUsed) Intent() domain.QueryIntent { return f.intent }
func (f FallbackUsed) Path() domain.IntentPath    { return domain.IntentPathFallback }
func (FallbackUsed) resolution()                  {}

// Resolver resolves queries into intents. It never fails.
type Resolver struct {
	model  llm.Client
	events observability.Sink
}

// NewResolver creates a Resolver. A nil model always uses the fallback.
func NewResolver(model llm.Client, events observability.Sink) *Resolver {
	return &Resolver{model: model, events: observability.OrNop(events)}
}

// Resolve returns the intent of query.
func (r *Resolver) Resolve(ctx context.Context, query string) Resolution {
	start := time.Now()
	var res Resolution

	intent, err := r.parse(ctx, query)
	if err != nil {
		res = FallbackUsed{intent: Classify(query), Reason: err}
	} else {
		res = Parsed{intent: intent}
	}

	r.events.Emit(observability.Event{
		Name:      observability.EventIntentResolved,
		Component: "intent",
		Category:  res.Intent().Category.String(),
		Path:      string(res.Path()),
		Duration:  time.Since(start),
		Err:       fallbackReason(res),
	})
	return res
}

func fallbackReason(res Resolution) error {
	if f, ok := res.(FallbackUsed); ok {
		return f.Reason
	}
	return nil
}

// modelIntent is the JSON shape requested from the model.
type modelIntent struct {
	Category         *string  `json:"category"`
	Metric           string   `json:"metric"`
	Threshold        *float64 `json:"threshold"`
	TimeframeHours   int      `json:"timeframe_hours"`
	Symbols          []string `json:"symbols"`
	Chain            string   `json:"chain"`
	IncludeNews      bool     `json:"include_news"`
	IncludeSentiment bool     `json:"include_sentiment"`
	Comparison       bool     `json:"comparison"`
}

func (r *Resolver) parse(ctx context.Context, query string) (domain.QueryIntent, error) {
	if r.model == nil {
		return domain.QueryIntent{}, ErrModelDisabled
	}
	reply, err := r.model.Complete(ctx, extractionPrompt, "Q: "+query+"\nA:")
	if err != nil {
		return domain.QueryIntent{}, err
	}
	return decodeIntent(reply)
}

// decodeIntent accepts a reply only when it is a JSON object with a known
// category and metric and a non-negative threshold and window.
func decodeIntent(reply string) (domain.QueryIntent, error) {
	dec := json.NewDecoder(strings.NewReader(llm.CleanJSON(reply)))
	dec.DisallowUnknownFields()

	var m modelIntent
	if err := dec.Decode(&m); err != nil {
		return domain.QueryIntent{}, fmt.Errorf("malformed intent: %w", err)
	}
	if m.Category == nil || !domain.Category(*m.Category).IsValid() {
		return domain.QueryIntent{}, fmt.Errorf("malformed intent: unknown category %v", derefOr(m.Category, "<missing>"))
	}
	if !domain.Metric(m.Metric).IsValid() {
		return domain.QueryIntent{}, fmt.Errorf("malformed intent: unknown metric %q", m.Metric)
	}
	if m.Threshold != nil && *m.Threshold < 0 {
		return domain.QueryIntent{}, fmt.Errorf("malformed intent: negative threshold")
	}
	if m.TimeframeHours < 0 {
		return domain.QueryIntent{}, fmt.Errorf("malformed intent: negative timeframe")
	}

	return domain.NewQueryIntent(domain.IntentParams{
		Category:         domain.Category(*m.Category),
		Metric:           domain.Metric(m.Metric),
		Threshold:        m.Threshold,
		WindowHours:      m.TimeframeHours,
		Symbols:          m.Symbols,
		Chain:            m.Chain,
		IncludeNews:      m.IncludeNews,
		IncludeSentiment: m.IncludeSentiment,
		Comparison:       m.Comparison,
	}), nil
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
