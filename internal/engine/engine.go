// Package engine answers one free-text query end to end.
// Flow: validate input → resolve intent → orchestrate aggregations → synthesize
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"crypto-query-lab/internal/domain"
	"crypto-query-lab/internal/intent"
	"crypto-query-lab/internal/observability"
	"crypto-query-lab/internal/orchestrator"
	"crypto-query-lab/internal/synthesis"
)

// MaxQueryLength is the longest query accepted, in characters.
const MaxQueryLength = 1000

// IntentResolver turns a query into an intent. It never fails.
type IntentResolver interface {
	Resolve(ctx context.Context, query string) intent.Resolution
}

// QueryOrchestrator fetches the records an intent asks for.
type QueryOrchestrator interface {
	Handle(ctx context.Context, intent domain.QueryIntent) (orchestrator.Outcome, error)
}

// AnswerSynthesizer writes the answer. It never fails.
type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, in synthesis.Input) synthesis.Answer
}

// Engine handles queries. It holds no per-query state and is safe for
// concurrent use.
type Engine struct {
	resolver     IntentResolver
	orchestrator QueryOrchestrator
	synthesizer  AnswerSynthesizer
	events       observability.Sink
	timeout      time.Duration
	now          func() time.Time
	newID        func() string
}

// Options for creating Engine.
type Options struct {
	// Required
	Resolver     IntentResolver
	Orchestrator QueryOrchestrator
	Synthesizer  AnswerSynthesizer

	Events  observability.Sink
	Timeout time.Duration // zero leaves the caller's deadline alone
	Now     func() time.Time
	NewID   func() string
}

// New creates a new Engine.
func New(opts Options) *Engine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &Engine{
		resolver:     opts.Resolver,
		orchestrator: opts.Orchestrator,
		synthesizer:  opts.Synthesizer,
		events:       observability.OrNop(opts.Events),
		timeout:      opts.Timeout,
		now:          now,
		newID:        newID,
	}
}

// HandleQuery answers query. The only errors returned are wrapped
// domain.ErrInvalidInput, for empty or oversized queries, and
// *domain.InternalFailure for unexpected failures past input validation.
func (e *Engine) HandleQuery(ctx context.Context, query string) (result *domain.QueryResult, err error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must be a non-empty string", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return nil, fmt.Errorf("%w: query exceeds %d characters", domain.ErrInvalidInput, MaxQueryLength)
	}

	start := time.Now()
	category := ""
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &domain.InternalFailure{
				Elapsed: time.Since(start),
				Cause:   fmt.Errorf("panic: %v\n%s", r, debug.Stack()),
			}
		}
		if err != nil {
			e.events.Emit(observability.Event{
				Name:      observability.EventQueryFailed,
				Component: "engine",
				Category:  category,
				Duration:  time.Since(start),
				Err:       err,
			})
		}
	}()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	resolution := e.resolver.Resolve(ctx, query)
	qi := resolution.Intent()
	category = qi.Category.String()

	outcome, err := e.orchestrator.Handle(ctx, qi)
	if err != nil {
		return nil, &domain.InternalFailure{Elapsed: time.Since(start), Cause: err}
	}

	meta := outcome.Metadata
	meta.IntentPath = resolution.Path()

	answer := e.synthesizer.Synthesize(ctx, synthesis.Input{
		Query:    query,
		Intent:   qi,
		Records:  outcome.Records,
		Metadata: meta,
		Elapsed:  time.Since(start),
	})
	meta.SynthesisTier = answer.Tier

	result = &domain.QueryResult{
		ID:        e.newID(),
		Query:     query,
		Answer:    answer.Text,
		Intent:    qi,
		Records:   outcome.Records,
		Metadata:  meta,
		Elapsed:   time.Since(start),
		Timestamp: e.now().UTC(),
	}
	if result.Records == nil {
		result.Records = []domain.Record{}
	}

	e.events.Emit(observability.Event{
		Name:      observability.EventQueryCompleted,
		Component: "engine",
		Category:  category,
		Count:     len(result.Records),
		Duration:  result.Elapsed,
	})
	return result, nil
}

// IsInvalidInput reports whether err rejects the query itself.
func IsInvalidInput(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput)
}
