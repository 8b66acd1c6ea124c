// Package stub provides in-memory providers for tests.
package stub

import (
	"context"
	"sync/atomic"
	"time"

	"crypto-query-lab/internal/domain"
	"crypto-query-lab/internal/provider"
)

// StubProvider returns fixed records or a fixed error.
// Implements provider.Provider interface.
type StubProvider struct {
	name    string
	records []domain.Record
	err     error
	delay   time.Duration
	panics  bool

	calls     atomic.Int32
	lastQuery atomic.Pointer[domain.Criteria]
}

// Option configures StubProvider.
type Option func(*StubProvider)

// WithDelay makes Fetch wait d (or until ctx is done) before answering.
func WithDelay(d time.Duration) Option {
	return func(s *StubProvider) { s.delay = d }
}

// NewStubProvider creates a provider answering with records.
func NewStubProvider(name string, records []domain.Record, opts ...Option) *StubProvider {
	s := &StubProvider{name: name, records: records}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFailingProvider creates a provider failing with kind on every call.
func NewFailingProvider(name string, kind provider.FailureKind, opts ...Option) *StubProvider {
	s := NewStubProvider(name, nil, opts...)
	s.err = &provider.FetchError{Provider: name, Kind: kind}
	return s
}

// NewPanickingProvider creates a provider whose Fetch panics.
func NewPanickingProvider(name string) *StubProvider {
	s := NewStubProvider(name, nil)
	s.panics = true
	return s
}

func (s *StubProvider) Name() string { return s.name }

// Fetch implements provider.Provider. An empty record set is reported as
// an empty-result failure, as real providers do.
func (s *StubProvider) Fetch(ctx context.Context, criteria domain.Criteria) ([]domain.Record, error) {
	s.calls.Add(1)
	c := criteria
	s.lastQuery.Store(&c)

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, provider.NetworkError(s.name, ctx.Err())
		}
	}
	if s.panics {
		panic("stub provider " + s.name + " panicked")
	}
	if s.err != nil {
		return nil, s.err
	}
	if len(s.records) == 0 {
		return nil, provider.EmptyError(s.name)
	}
	out := make([]domain.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Calls returns how many times Fetch was invoked.
func (s *StubProvider) Calls() int {
	return int(s.calls.Load())
}

// LastCriteria returns the criteria of the most recent Fetch.
func (s *StubProvider) LastCriteria() (domain.Criteria, bool) {
	c := s.lastQuery.Load()
	if c == nil {
		return domain.Criteria{}, false
	}
	return *c, true
}
