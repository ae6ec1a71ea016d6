package services

import (
	"context"
	"strings"
	"time"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/ports/driven"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/logger"
)

// DefaultMaxSummarySentences bounds the deterministic executive-summary
// fallback.
const DefaultMaxSummarySentences = 4

// Synthesiser merges per-batch digests into one final digest. With a
// single batch the digest passes through unchanged. With several, the
// executive summary is recomputed with one more model call; when that call
// fails (or no LLM is configured) a deterministic concatenation of each
// batch's first sentence takes its place, so the final digest is never
// missing an executive summary.
type Synthesiser struct {
	llm             driven.LLMService // optional
	prompts         *PromptBuilder
	maxSentences    int
	maxOutputTokens int
	callTimeout     time.Duration
}

// SynthesiserOption configures the synthesiser.
type SynthesiserOption func(*Synthesiser)

// WithMaxSummarySentences bounds the deterministic fallback summary.
func WithMaxSummarySentences(n int) SynthesiserOption {
	return func(s *Synthesiser) {
		if n > 0 {
			s.maxSentences = n
		}
	}
}

// WithSynthesisTimeout bounds the optional re-synthesis call.
func WithSynthesisTimeout(d time.Duration) SynthesiserOption {
	return func(s *Synthesiser) {
		if d > 0 {
			s.callTimeout = d
		}
	}
}

// NewSynthesiser creates a synthesiser. A nil llm disables the re-synthesis
// call and always uses the deterministic fallback.
func NewSynthesiser(llm driven.LLMService, prompts *PromptBuilder, opts ...SynthesiserOption) *Synthesiser {
	s := &Synthesiser{
		llm:             llm,
		prompts:         prompts,
		maxSentences:    DefaultMaxSummarySentences,
		maxOutputTokens: 1024,
		callTimeout:     DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Merge combines per-batch digests, in batch order, into one final digest.
func (s *Synthesiser) Merge(ctx context.Context, parts []domain.Digest, day time.Time) domain.Digest {
	if len(parts) == 0 {
		var empty domain.Digest
		empty.EnsureContainers()
		return empty
	}
	if len(parts) == 1 {
		final := parts[0]
		final.EnsureContainers()
		return final
	}

	final := domain.Digest{
		DomainFlags: []string{},
		Categories:  map[string][]domain.Insight{},
		PerSource:   map[string]domain.SourceSummary{},
	}

	seenFlags := make(map[string]struct{})
	for _, part := range parts {
		// Categories merge by name, concatenating insights in batch
		// order. Iterating the configured set keeps merge order stable.
		for _, name := range s.prompts.Categories() {
			if items := part.Categories[name]; len(items) > 0 {
				final.Categories[name] = append(final.Categories[name], items...)
			}
		}

		// Per-source keys stay unique: first occurrence wins.
		for name, summary := range part.PerSource {
			if _, exists := final.PerSource[name]; exists {
				logger.Warn("duplicate per-source entry %q across batches, keeping first", name)
				continue
			}
			final.PerSource[name] = summary
		}

		// Flags union case-insensitively; first-seen casing wins.
		for _, flag := range part.DomainFlags {
			key := strings.ToLower(strings.TrimSpace(flag))
			if key == "" {
				continue
			}
			if _, seen := seenFlags[key]; seen {
				continue
			}
			seenFlags[key] = struct{}{}
			final.DomainFlags = append(final.DomainFlags, flag)
		}
	}

	final.ExecutiveSummary = s.executiveSummary(ctx, parts, day)
	return final
}

// executiveSummary recomputes the run-level summary, preferring one model
// call over the concatenated batch summaries and degrading to the
// deterministic fallback on any failure.
func (s *Synthesiser) executiveSummary(ctx context.Context, parts []domain.Digest, day time.Time) string {
	summaries := make([]string, 0, len(parts))
	for _, part := range parts {
		if text := strings.TrimSpace(part.ExecutiveSummary); text != "" {
			summaries = append(summaries, text)
		}
	}
	if len(summaries) == 0 {
		return FallbackSummary
	}

	if s.llm != nil {
		cctx, cancel := context.WithTimeout(ctx, s.callTimeout)
		defer cancel()

		result, err := s.llm.Generate(cctx, s.prompts.Synthesis(summaries, day), driven.GenerateOptions{
			MaxTokens: s.maxOutputTokens,
		})
		if err == nil {
			if text := strings.TrimSpace(result); text != "" {
				return text
			}
		} else {
			logger.Warn("executive re-synthesis failed, using deterministic fallback: %v", err)
		}
	}

	return s.deterministicSummary(summaries)
}

// deterministicSummary joins the first sentence of each batch summary, up
// to the configured sentence cap. It has no external dependencies and
// always succeeds.
func (s *Synthesiser) deterministicSummary(summaries []string) string {
	sentences := make([]string, 0, s.maxSentences)
	for _, summary := range summaries {
		if len(sentences) == s.maxSentences {
			break
		}
		if sentence := firstSentence(summary); sentence != "" {
			sentences = append(sentences, sentence)
		}
	}
	return strings.Join(sentences, " ")
}

// firstSentence returns the text up to and including the first sentence
// terminator followed by whitespace or end of text.
func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if i+1 == len(text) || text[i+1] == ' ' || text[i+1] == '\n' {
				return text[:i+1]
			}
		}
	}
	return text
}
