package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
)

var extractDay = time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)

func newTestExtractor(llm *fakeLLM) *Extractor {
	prompts := NewPromptBuilder(nil, "", nil)
	if llm == nil {
		return NewExtractor(nil, prompts, WithRetryDelay(time.Millisecond))
	}
	return NewExtractor(llm, prompts, WithRetryDelay(time.Millisecond))
}

func testBatch() domain.Batch {
	return domain.Batch{
		Index: 2,
		Newsletters: []domain.Newsletter{
			{SourceName: "Alpha Weekly", Subject: "Issue 12", Body: "alpha body"},
			{SourceName: "Beta Brief", Subject: "Issue 3", Body: "beta body"},
		},
	}
}

func TestExtractor_Extract_Success(t *testing.T) {
	llm := &fakeLLM{responses: []string{`{"executive_summary": "ok"}`}}
	e := newTestExtractor(llm)

	extraction, err := e.Extract(context.Background(), testBatch(), extractDay)
	require.NoError(t, err)

	assert.Equal(t, 2, extraction.BatchIndex)
	assert.Equal(t, 2, extraction.DocumentCount)
	assert.Equal(t, `{"executive_summary": "ok"}`, extraction.Raw)
	assert.Equal(t, len(llm.prompts[0]), extraction.CharsSent)
	assert.Equal(t, 1, llm.callCount())
}

func TestExtractor_Extract_RetriesOnceOnTransient(t *testing.T) {
	llm := &fakeLLM{
		errs:      []error{domain.ErrRateLimited, nil},
		responses: []string{"", `{"executive_summary": "second try"}`},
	}
	e := newTestExtractor(llm)

	extraction, err := e.Extract(context.Background(), testBatch(), extractDay)
	require.NoError(t, err)
	assert.Equal(t, `{"executive_summary": "second try"}`, extraction.Raw)
	assert.Equal(t, 2, llm.callCount())
}

func TestExtractor_Extract_PersistentTransientFails(t *testing.T) {
	llm := &fakeLLM{errs: []error{domain.ErrRateLimited, domain.ErrRateLimited}}
	e := newTestExtractor(llm)

	_, err := e.Extract(context.Background(), testBatch(), extractDay)
	require.Error(t, err)

	var callErr *domain.CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, domain.CallRateLimit, callErr.Kind)
	assert.Equal(t, 2, callErr.BatchIndex)
	assert.Equal(t, 2, llm.callCount())
}

func TestExtractor_Extract_AuthFailureDoesNotRetry(t *testing.T) {
	llm := &fakeLLM{errs: []error{domain.ErrAuthInvalid}}
	e := newTestExtractor(llm)

	_, err := e.Extract(context.Background(), testBatch(), extractDay)
	require.Error(t, err)

	var callErr *domain.CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, domain.CallAuth, callErr.Kind)
	assert.Equal(t, 1, llm.callCount())
}

func TestExtractor_Extract_UnknownErrorRetries(t *testing.T) {
	llm := &fakeLLM{
		errs:      []error{errors.New("connection reset"), nil},
		responses: []string{"", "recovered"},
	}
	e := newTestExtractor(llm)

	extraction, err := e.Extract(context.Background(), testBatch(), extractDay)
	require.NoError(t, err)
	assert.Equal(t, "recovered", extraction.Raw)
}

func TestExtractor_Extract_NilLLM(t *testing.T) {
	e := newTestExtractor(nil)

	_, err := e.Extract(context.Background(), testBatch(), extractDay)
	require.Error(t, err)

	var callErr *domain.CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, domain.CallAuth, callErr.Kind)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestExtractor_Extract_CancelledDuringBackoff(t *testing.T) {
	llm := &fakeLLM{errs: []error{domain.ErrRateLimited}}
	prompts := NewPromptBuilder(nil, "", nil)
	e := NewExtractor(llm, prompts, WithRetryDelay(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := e.Extract(ctx, testBatch(), extractDay)
	require.Error(t, err)
	assert.Equal(t, 1, llm.callCount())
}
