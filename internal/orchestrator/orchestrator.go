// Package orchestrator dispatches a resolved intent to the fallback
// aggregations it needs.
// It coordinates: primary aggregation(s) → merge → supplementary news/sentiment
package orchestrator

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"crypto-query-lab/internal/aggregator"
	"crypto-query-lab/internal/config"
	"crypto-query-lab/internal/domain"
	"crypto-query-lab/internal/observability"
	"crypto-query-lab/internal/provider"
)

// ChainBuilder returns the provider chain for a category. Implementations
// must build fresh providers on every call.
type ChainBuilder interface {
	Chain(category domain.Category, platform domain.Platform) []provider.Provider
}

// Aggregator runs one fallback aggregation.
type Aggregator interface {
	Aggregate(ctx context.Context, category domain.Category, criteria domain.Criteria, chain []provider.Provider) domain.AggregationResult
}

// Outcome is the data part of a query result, before synthesis.
type Outcome struct {
	Records  []domain.Record
	Metadata domain.Metadata
	Elapsed  time.Duration
}

// Orchestrator coordinates the aggregations of one query.
// Flow: primary (both platforms concurrently for combined) ‖ supplementary → append
type Orchestrator struct {
	chains     ChainBuilder
	aggregator Aggregator
	limits     config.LimitsConfig
	events     observability.Sink
}

// Options for creating Orchestrator.
type Options struct {
	// Required
	Chains     ChainBuilder
	Aggregator Aggregator

	Limits config.LimitsConfig // zero values use config.Default()
	Events observability.Sink
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	limits := opts.Limits
	def := config.Default().Limits
	if limits.Tokens <= 0 {
		limits.Tokens = def.Tokens
	}
	if limits.Protocols <= 0 {
		limits.Protocols = def.Protocols
	}
	if limits.Yields <= 0 {
		limits.Yields = def.Yields
	}
	if limits.Prices <= 0 {
		limits.Prices = def.Prices
	}
	if limits.News <= 0 {
		limits.News = def.News
	}
	if limits.Trending <= 0 {
		limits.Trending = def.Trending
	}
	return &Orchestrator{
		chains:     opts.Chains,
		aggregator: opts.Aggregator,
		limits:     limits,
		events:     observability.OrNop(opts.Events),
	}
}

// Handle runs the aggregations intent asks for. The primary aggregation and
// any supplementary news or sentiment aggregation run concurrently; the
// supplementary records are appended after the primary ones. A failing
// supplementary aggregation contributes nothing. An error is returned only
// when the primary aggregation itself panics.
func (o *Orchestrator) Handle(ctx context.Context, intent domain.QueryIntent) (Outcome, error) {
	start := time.Now()

	var (
		primary   []domain.AggregationResult
		merged    []domain.Record
		news      domain.AggregationResult
		sentiment domain.AggregationResult
	)

	var g errgroup.Group
	g.Go(func() (err error) {
		defer recoverInto(&err, "primary aggregation")
		primary, merged, err = o.runPrimary(ctx, intent)
		return err
	})
	if intent.IncludeNews {
		g.Go(func() error {
			news = o.runSupplementary(ctx, intent, domain.CategoryNews)
			return nil
		})
	}
	if intent.IncludeSentiment {
		g.Go(func() error {
			sentiment = o.runSupplementary(ctx, intent, domain.CategorySentiment)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Outcome{Elapsed: time.Since(start)}, err
	}

	records := append([]domain.Record(nil), merged...)
	meta := domain.Metadata{Kind: intent.Category.RecordKind()}
	for _, res := range primary {
		meta.Providers = appendProvider(meta.Providers, res.Provenance)
		meta.ValidationExhausted = meta.ValidationExhausted || res.ValidationExhausted
	}
	for _, res := range []domain.AggregationResult{news, sentiment} {
		if len(res.Records) == 0 {
			continue
		}
		records = append(records, res.Records...)
		meta.Providers = appendProvider(meta.Providers, res.Provenance)
	}
	meta.TotalCount = len(records)
	if meta.Providers == nil {
		meta.Providers = []string{}
	}

	return Outcome{
		Records:  records,
		Metadata: meta,
		Elapsed:  time.Since(start),
	}, nil
}

// runPrimary returns the per-branch results and the records to present.
// Combined queries aggregate both launch platforms concurrently and wait for
// both before merging.
func (o *Orchestrator) runPrimary(ctx context.Context, intent domain.QueryIntent) ([]domain.AggregationResult, []domain.Record, error) {
	if intent.Category != domain.CategoryCombined {
		res := o.aggregate(ctx, intent.Category, o.Criteria(intent, intent.Category, ""), "")
		return []domain.AggregationResult{res}, res.Records, nil
	}

	platforms := []domain.Platform{domain.PlatformPumpFun, domain.PlatformLetsBonk}
	results := make([]domain.AggregationResult, len(platforms))

	var g errgroup.Group
	for i, platform := range platforms {
		g.Go(func() (err error) {
			defer recoverInto(&err, "combined aggregation "+string(platform))
			results[i] = o.aggregate(ctx, domain.CategoryCombined, o.Criteria(intent, domain.CategoryCombined, platform), platform)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results, aggregator.Merge(results...), nil
}

func (o *Orchestrator) runSupplementary(ctx context.Context, intent domain.QueryIntent, category domain.Category) (res domain.AggregationResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			o.events.Emit(observability.Event{
				Name:      observability.EventSupplementaryFailed,
				Component: "orchestrator",
				Category:  category.String(),
				Duration:  time.Since(start),
				Err:       fmt.Errorf("panic: %v", r),
			})
			res = domain.AggregationResult{Kind: category.RecordKind()}
		}
	}()
	return o.aggregate(ctx, category, o.Criteria(intent, category, ""), "")
}

func (o *Orchestrator) aggregate(ctx context.Context, category domain.Category, criteria domain.Criteria, platform domain.Platform) domain.AggregationResult {
	return o.aggregator.Aggregate(ctx, category, criteria, o.chains.Chain(category, platform))
}

// Criteria builds the provider criteria of one aggregation for intent.
// Price limits follow the number of requested symbols; sentiment asks for
// one reading per symbol, or one market-wide reading.
func (o *Orchestrator) Criteria(intent domain.QueryIntent, category domain.Category, platform domain.Platform) domain.Criteria {
	c := domain.Criteria{
		Symbols:     intent.Symbols(),
		WindowHours: intent.WindowHours,
		Chain:       intent.Chain,
	}

	switch category {
	case domain.CategoryTokenLaunch, domain.CategoryEcosystemToken, domain.CategoryCombined:
		c.Threshold = intent.Threshold
		c.Limit = o.limits.Tokens
		c.Platform = platform
		if c.Platform == "" {
			c.Platform = domain.PlatformPumpFun
			if category == domain.CategoryEcosystemToken {
				c.Platform = domain.PlatformLetsBonk
			}
		}
	case domain.CategoryDefiTVL:
		c.Threshold = intent.Threshold
		c.Limit = o.limits.Protocols
	case domain.CategoryDefiYield:
		c.Threshold = intent.Threshold
		c.Limit = o.limits.Yields
	case domain.CategoryPrice, domain.CategoryGeneralMarket:
		c.Limit = o.limits.Prices
		if n := len(c.Symbols); n > 0 {
			c.Limit = n
		}
	case domain.CategoryNews:
		c.Limit = o.limits.News
	case domain.CategoryTrending:
		c.Limit = o.limits.Trending
	case domain.CategorySentiment:
		c.Limit = 1
		if n := len(c.Symbols); n > 0 {
			c.Limit = n
		}
	}
	return c
}

func appendProvider(providers []string, name string) []string {
	if name == "" {
		return providers
	}
	for _, p := range providers {
		if p == name {
			return providers
		}
	}
	return append(providers, name)
}

func recoverInto(err *error, what string) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s panicked: %v\n%s", what, r, debug.Stack())
	}
}
