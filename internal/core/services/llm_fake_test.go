package services

import (
	"context"
	"errors"
	"sync"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/ports/driven"
)

// fakeLLM is a scripted LLM service for tests. Each call consumes the next
// entry of errs (if non-nil) or responses; generate, when set, overrides
// the scripts entirely.
type fakeLLM struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	generate  func(prompt string) (string, error)
	calls     int
	prompts   []string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)

	if f.generate != nil {
		return f.generate(prompt)
	}
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("fake: no scripted response")
}

func (f *fakeLLM) ModelName() string { return "fake-model" }

func (f *fakeLLM) Ping(context.Context) error { return nil }

func (f *fakeLLM) Close() error { return nil }

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
