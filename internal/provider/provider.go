// Package provider implements the external data sources queried by the
// fallback aggregator. Every provider normalizes its upstream response into
// the domain Record variant of its category.
package provider

import (
	"context"
	"errors"
	"fmt"

	"crypto-query-lab/internal/domain"
)

// Provider fetches records for one category from one upstream source.
type Provider interface {
	// Name is the provenance tag used when this provider satisfies an aggregation.
	Name() string
	// Fetch returns raw, normalized records. Every failure is a *FetchError.
	Fetch(ctx context.Context, criteria domain.Criteria) ([]domain.Record, error)
}

// FailureKind classifies a provider failure.
type FailureKind string

const (
	FailureNetwork   FailureKind = "network-error"
	FailureMalformed FailureKind = "malformed-response"
	FailureEmpty     FailureKind = "empty-result"
)

// Sentinel errors matching each failure kind through errors.Is.
var (
	ErrNetwork   = errors.New(string(FailureNetwork))
	ErrMalformed = errors.New(string(FailureMalformed))
	ErrEmpty     = errors.New(string(FailureEmpty))
)

// FetchError is the only error type providers return.
type FetchError struct {
	Provider string
	Kind     FailureKind
	Err      error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == FailureNetwork
	case ErrMalformed:
		return e.Kind == FailureMalformed
	case ErrEmpty:
		return e.Kind == FailureEmpty
	}
	return false
}

// NetworkError wraps err as a network failure of provider.
func NetworkError(provider string, err error) *FetchError {
	return &FetchError{Provider: provider, Kind: FailureNetwork, Err: err}
}

// MalformedError wraps err as a malformed-response failure of provider.
func MalformedError(provider string, err error) *FetchError {
	return &FetchError{Provider: provider, Kind: FailureMalformed, Err: err}
}

// EmptyError reports that provider returned no records.
func EmptyError(provider string) *FetchError {
	return &FetchError{Provider: provider, Kind: FailureEmpty}
}

// KindOf returns the failure kind of err, or network-error for errors that
// did not come from a provider (for example a recovered panic).
func KindOf(err error) FailureKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return FailureNetwork
}

// nonEmpty turns an empty record slice into an empty-result failure.
func nonEmpty(name string, records []domain.Record) ([]domain.Record, error) {
	if len(records) == 0 {
		return nil, EmptyError(name)
	}
	return records, nil
}
