// Package aggregator drives an ordered provider chain for one category and
// degrades to synthetic data when no provider yields usable records.
package aggregator

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"crypto-query-lab/internal/domain"
	"crypto-query-lab/internal/observability"
	"crypto-query-lab/internal/provider"
	"crypto-query-lab/internal/validation"
)

// Fetch outcomes reported in provider.fetch events besides failure kinds.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeFiltered = "filtered"
)

// Generator produces synthetic records. It must never fail.
type Generator interface {
	Generate(kind domain.Kind, criteria domain.Criteria) []domain.Record
}

// Aggregator is the fallback aggregator. It holds no per-query state.
type Aggregator struct {
	generator Generator
	events    observability.Sink
	now       func() time.Time
}

// Options for creating Aggregator.
type Options struct {
	Generator Generator // required
	Events    observability.Sink
	Now       func() time.Time
}

// New creates a new Aggregator.
func New(opts Options) *Aggregator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Aggregator{
		generator: opts.Generator,
		events:    observability.OrNop(opts.Events),
		now:       now,
	}
}

// Aggregate tries chain in order and returns the first non-empty set of
// records that pass validation and match criteria. Later providers are not
// called once one succeeds. When every provider fails the synthetic
// generator answers.
func (a *Aggregator) Aggregate(ctx context.Context, category domain.Category, criteria domain.Criteria, chain []provider.Provider) domain.AggregationResult {
	kind := category.RecordKind()
	sawInvalid := false

	for _, p := range chain {
		if ctx.Err() != nil {
			break
		}

		start := time.Now()
		raw, err := safeFetch(ctx, p, criteria)
		elapsed := time.Since(start)
		if err != nil {
			a.emitFetch(category, p.Name(), string(provider.KindOf(err)), elapsed, err)
			continue
		}

		cleaned := validation.Clean(raw)
		if len(cleaned) == 0 {
			if len(raw) > 0 {
				sawInvalid = true
			}
			a.emitFetch(category, p.Name(), OutcomeInvalid, elapsed, nil)
			continue
		}

		kept := Filter(kind, cleaned, criteria, a.now())
		if len(kept) == 0 {
			a.emitFetch(category, p.Name(), OutcomeFiltered, elapsed, nil)
			continue
		}

		a.emitFetch(category, p.Name(), OutcomeOK, elapsed, nil)
		return a.result(category, kind, kept, p.Name(), false)
	}

	synthetic := validation.Clean(a.generator.Generate(kind, criteria))
	return a.result(category, kind, truncate(synthetic, criteria.Limit), domain.ProvenanceSynthetic, sawInvalid)
}

func (a *Aggregator) result(category domain.Category, kind domain.Kind, records []domain.Record, provenance string, exhausted bool) domain.AggregationResult {
	res := domain.AggregationResult{
		Kind:                kind,
		Records:             records,
		Provenance:          provenance,
		Count:               len(records),
		ValidationExhausted: exhausted,
	}
	a.events.Emit(observability.Event{
		Name:       observability.EventAggregation,
		Component:  "aggregator",
		Category:   category.String(),
		Kind:       kind.String(),
		Provenance: provenance,
		Count:      res.Count,
	})
	return res
}

func (a *Aggregator) emitFetch(category domain.Category, name, outcome string, d time.Duration, err error) {
	a.events.Emit(observability.Event{
		Name:      observability.EventProviderFetch,
		Component: "aggregator",
		Category:  category.String(),
		Provider:  name,
		Outcome:   outcome,
		Duration:  d,
		Err:       err,
	})
}

// safeFetch calls p.Fetch and turns a panic into a network failure so one
// misbehaving provider cannot abort the chain.
func safeFetch(ctx context.Context, p provider.Provider, criteria domain.Criteria) (records []domain.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = provider.NetworkError(p.Name(), fmt.Errorf("panic: %v\n%s", r, debug.Stack()))
		}
	}()
	return p.Fetch(ctx, criteria)
}
