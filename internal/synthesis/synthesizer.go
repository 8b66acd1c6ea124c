// Package synthesis turns aggregated records into a natural-language answer.
// Tiers, tried in order: model with data → model without data → template.
package synthesis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crypto-query-lab/internal/domain"
	"crypto-query-lab/internal/llm"
	"crypto-query-lab/internal/observability"
)

var (
	// ErrNoModel reports that model tiers were skipped.
	ErrNoModel = errors.New("no language model configured")
	// ErrValidationExhausted reports that the data tier was skipped because
	// every provider record failed validation.
	ErrValidationExhausted = errors.New("all provider records failed validation")
	// ErrNoRecords reports that the data tier had nothing to summarize.
	ErrNoRecords = errors.New("no records to summarize")
)

// Input is everything a synthesized answer is built from.
type Input struct {
	Query    string
	Intent   domain.QueryIntent
	Records  []domain.Record
	Metadata domain.Metadata
	Elapsed  time.Duration
}

// Answer is a synthesized answer and the tier that produced it.
type Answer struct {
	Text string
	Tier domain.SynthesisTier
}

// Synthesizer builds answers. It holds no per-query state.
type Synthesizer struct {
	model  llm.Client
	events observability.Sink
	now    func() time.Time
}

// Options for creating Synthesizer.
type Options struct {
	Model  llm.Client // nil answers from the template
	Events observability.Sink
	Now    func() time.Time
}

// New creates a new Synthesizer.
func New(opts Options) *Synthesizer {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Synthesizer{
		model:  opts.Model,
		events: observability.OrNop(opts.Events),
		now:    now,
	}
}

// Synthesize returns an answer for in. It never fails: each tier is tried
// only when the previous one failed, and the template always answers.
func (s *Synthesizer) Synthesize(ctx context.Context, in Input) Answer {
	start := time.Now()

	text, err := s.withData(ctx, in)
	tier := domain.SynthesisTierModel
	if err != nil {
		s.tierFailed(in, domain.SynthesisTierModel, err)

		text, err = s.withoutData(ctx, in)
		tier = domain.SynthesisTierModelNoData
		if err != nil {
			s.tierFailed(in, domain.SynthesisTierModelNoData, err)

			text = s.template(in)
			tier = domain.SynthesisTierTemplate
		}
	}

	s.events.Emit(observability.Event{
		Name:      observability.EventSynthesis,
		Component: "synthesis",
		Category:  in.Intent.Category.String(),
		Tier:      string(tier),
		Count:     len(in.Records),
		Duration:  time.Since(start),
	})
	return Answer{Text: text, Tier: tier}
}

func (s *Synthesizer) withData(ctx context.Context, in Input) (string, error) {
	switch {
	case s.model == nil:
		return "", ErrNoModel
	case in.Metadata.ValidationExhausted:
		return "", ErrValidationExhausted
	case len(in.Records) == 0:
		return "", ErrNoRecords
	}
	return s.complete(ctx, answerSystemPrompt, func() string { return dataPrompt(in, s.now()) })
}

func (s *Synthesizer) withoutData(ctx context.Context, in Input) (string, error) {
	if s.model == nil {
		return "", ErrNoModel
	}
	return s.complete(ctx, noDataSystemPrompt, func() string { return noDataPrompt(in) })
}

func (s *Synthesizer) complete(ctx context.Context, system string, user func() string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	text, err = s.model.Complete(ctx, system, user())
	if err != nil {
		return "", err
	}
	if text = strings.TrimSpace(text); text == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

func (s *Synthesizer) template(in Input) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = fmt.Sprintf("Found %d results for %q. (in %dms)", len(in.Records), in.Query, in.Elapsed.Milliseconds())
		}
	}()
	return Template(in)
}

func (s *Synthesizer) tierFailed(in Input, tier domain.SynthesisTier, err error) {
	if errors.Is(err, ErrNoModel) {
		return
	}
	s.events.Emit(observability.Event{
		Name:      observability.EventSynthesisTierFailed,
		Component: "synthesis",
		Category:  in.Intent.Category.String(),
		Tier:      string(tier),
		Err:       err,
	})
}
