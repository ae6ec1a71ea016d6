package services

import (
	"context"
	"errors"
	"time"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/ports/driven"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/logger"
)

// Default extraction call parameters.
const (
	// DefaultMaxOutputTokens bounds the model's structured response.
	DefaultMaxOutputTokens = 4096

	// DefaultCallTimeout bounds a single model invocation.
	DefaultCallTimeout = 120 * time.Second

	// DefaultRetryDelay is the backoff before the single bounded retry.
	DefaultRetryDelay = 5 * time.Second
)

// Extraction carries a batch's raw model output plus call metadata.
type Extraction struct {
	// BatchIndex is the batch's position in the plan.
	BatchIndex int

	// DocumentCount is the number of newsletters sent.
	DocumentCount int

	// CharsSent is the prompt length in characters.
	CharsSent int

	// Raw is the model's textual response, unparsed.
	Raw string
}

// Extractor issues exactly one model invocation per batch. The planner's
// batch count therefore bounds total extraction calls; there are no hidden
// per-document calls. A transient failure earns a single bounded retry
// with backoff; after that the failure surfaces as a per-batch CallError
// and the run continues with the remaining batches.
type Extractor struct {
	llm             driven.LLMService
	prompts         *PromptBuilder
	maxOutputTokens int
	callTimeout     time.Duration
	retryDelay      time.Duration
}

// ExtractorOption configures the extractor.
type ExtractorOption func(*Extractor)

// WithMaxOutputTokens sets the response token cap.
func WithMaxOutputTokens(n int) ExtractorOption {
	return func(e *Extractor) {
		if n > 0 {
			e.maxOutputTokens = n
		}
	}
}

// WithCallTimeout sets the per-invocation deadline.
func WithCallTimeout(d time.Duration) ExtractorOption {
	return func(e *Extractor) {
		if d > 0 {
			e.callTimeout = d
		}
	}
}

// WithRetryDelay sets the backoff before the single retry.
func WithRetryDelay(d time.Duration) ExtractorOption {
	return func(e *Extractor) {
		if d >= 0 {
			e.retryDelay = d
		}
	}
}

// NewExtractor creates an extractor backed by the given LLM service.
func NewExtractor(llm driven.LLMService, prompts *PromptBuilder, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		llm:             llm,
		prompts:         prompts,
		maxOutputTokens: DefaultMaxOutputTokens,
		callTimeout:     DefaultCallTimeout,
		retryDelay:      DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract invokes the model once for the batch and returns the raw
// response with call metadata. On failure the returned error is a
// *domain.CallError classifying the cause.
func (e *Extractor) Extract(ctx context.Context, batch domain.Batch, day time.Time) (*Extraction, error) {
	if e.llm == nil {
		return nil, &domain.CallError{
			Kind:       domain.CallAuth,
			BatchIndex: batch.Index,
			Err:        domain.ErrLLMUnavailable,
		}
	}

	prompt := e.prompts.Extraction(batch, day)
	logger.Info("batch %d: sending %d newsletters (%d chars)",
		batch.Index, len(batch.Newsletters), len(prompt))

	raw, err := e.call(ctx, prompt)
	if err != nil {
		callErr := e.classify(batch.Index, err)
		if !callErr.Kind.Retryable() {
			return nil, callErr
		}

		logger.Warn("batch %d: %s failure, retrying once: %v", batch.Index, callErr.Kind, err)
		if err := e.backoff(ctx); err != nil {
			return nil, &domain.CallError{Kind: domain.CallTimeout, BatchIndex: batch.Index, Err: err}
		}

		raw, err = e.call(ctx, prompt)
		if err != nil {
			return nil, e.classify(batch.Index, err)
		}
	}

	return &Extraction{
		BatchIndex:    batch.Index,
		DocumentCount: len(batch.Newsletters),
		CharsSent:     len(prompt),
		Raw:           raw,
	}, nil
}

// call issues one invocation under the configured deadline.
func (e *Extractor) call(ctx context.Context, prompt string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	return e.llm.Generate(cctx, prompt, driven.GenerateOptions{
		MaxTokens: e.maxOutputTokens,
	})
}

// backoff sleeps for the retry delay, honouring cancellation.
func (e *Extractor) backoff(ctx context.Context) error {
	if e.retryDelay == 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(e.retryDelay):
		return nil
	}
}

// classify maps an adapter error onto the call failure taxonomy.
func (e *Extractor) classify(batchIndex int, err error) *domain.CallError {
	kind := domain.CallUnknown
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = domain.CallTimeout
	case errors.Is(err, domain.ErrRateLimited):
		kind = domain.CallRateLimit
	case errors.Is(err, domain.ErrAuthInvalid):
		kind = domain.CallAuth
	}
	return &domain.CallError{Kind: kind, BatchIndex: batchIndex, Err: err}
}
