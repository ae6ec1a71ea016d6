package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates a malformed document set. Fatal to the run.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNothingToSummarise indicates an empty document set. The pipeline
	// short-circuits without invoking the model.
	ErrNothingToSummarise = errors.New("nothing to summarise")

	// ErrAllBatchesFailed indicates every batch failed at the call stage.
	// Fatal to the run; partial failures are not.
	ErrAllBatchesFailed = errors.New("all batches failed")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrAuthInvalid indicates the API credentials were rejected.
	ErrAuthInvalid = errors.New("authentication invalid")
)

// CallKind classifies an extraction call failure.
type CallKind string

const (
	// CallTimeout means the call exceeded its deadline.
	CallTimeout CallKind = "timeout"
	// CallRateLimit means the provider rejected the call for quota.
	CallRateLimit CallKind = "rate_limit"
	// CallAuth means the provider rejected the credentials.
	CallAuth CallKind = "auth"
	// CallUnknown covers everything else.
	CallUnknown CallKind = "unknown"
)

// Retryable reports whether a single bounded retry is worthwhile.
// Auth failures are permanent for the lifetime of a run.
func (k CallKind) Retryable() bool {
	return k == CallTimeout || k == CallRateLimit || k == CallUnknown
}

// CallError is a per-batch extraction failure. It is not fatal to the run
// unless every batch fails.
type CallError struct {
	Kind       CallKind
	BatchIndex int
	Err        error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("batch %d: %s call failure: %v", e.BatchIndex, e.Kind, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}
