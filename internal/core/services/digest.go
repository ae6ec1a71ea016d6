package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/ports/driven"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/ports/driving"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/logger"
)

// PipelineConfig tunes the summarisation pipeline. Zero values fall back
// to the package defaults.
type PipelineConfig struct {
	// Categories is the enumerated category set; it is threaded into both
	// the instruction template and the response validator.
	Categories domain.Categories

	// FlagRules is the domain-flag rules text for the prompt.
	FlagRules string

	// MaxInputTokens is the per-call input budget, converted to a
	// character threshold via CharsPerToken.
	MaxInputTokens int

	// CharsPerToken is the fixed chars-per-token estimate.
	CharsPerToken int

	// MaxOutputTokens bounds the model's response per call.
	MaxOutputTokens int

	// DocumentCap bounds a single newsletter body in characters.
	DocumentCap int

	// CallTimeout bounds each model invocation.
	CallTimeout time.Duration

	// RetryDelay is the backoff before a batch's single retry.
	RetryDelay time.Duration

	// Prompts optionally supplies user-customisable templates.
	Prompts driven.PromptStore
}

// Pipeline is the core summarisation engine: it prepares the document set,
// plans batches, extracts per batch, repairs responses, and synthesises
// the final digest. Batches run sequentially in order so per-source output
// is deterministic; cancellation is honoured at batch boundaries.
type Pipeline struct {
	llm         driven.LLMService
	planner     *Planner
	extractor   *Extractor
	repairer    *Repairer
	synthesiser *Synthesiser
}

// NewPipeline assembles a pipeline from an LLM service and configuration.
func NewPipeline(llm driven.LLMService, cfg PipelineConfig) *Pipeline {
	if cfg.MaxInputTokens <= 0 {
		cfg.MaxInputTokens = DefaultMaxInputTokens
	}
	if cfg.CharsPerToken <= 0 {
		cfg.CharsPerToken = DefaultCharsPerToken
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if cfg.DocumentCap <= 0 {
		cfg.DocumentCap = DefaultDocumentCap
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}

	prompts := NewPromptBuilder(cfg.Categories, cfg.FlagRules, cfg.Prompts)

	return &Pipeline{
		llm: llm,
		planner: NewPlanner(
			WithBudget(cfg.MaxInputTokens*cfg.CharsPerToken),
			WithDocumentCap(cfg.DocumentCap),
		),
		extractor: NewExtractor(llm, prompts,
			WithMaxOutputTokens(cfg.MaxOutputTokens),
			WithCallTimeout(cfg.CallTimeout),
			WithRetryDelay(cfg.RetryDelay),
		),
		repairer: NewRepairer(prompts.Categories()),
		synthesiser: NewSynthesiser(llm, prompts,
			WithSynthesisTimeout(cfg.CallTimeout),
		),
	}
}

// Summarise reduces the document set to one final digest plus a run
// report. Only a malformed document set, cancellation, or the failure of
// every batch is fatal; per-batch repair and fallback degrade gracefully
// and are recorded in the report.
func (p *Pipeline) Summarise(ctx context.Context, docs []domain.Newsletter, day time.Time) (domain.Digest, domain.RunReport, error) {
	report := domain.RunReport{
		RunID:     uuid.New().String(),
		Day:       day,
		StartedAt: time.Now(),
	}
	if p.llm != nil {
		report.Model = p.llm.ModelName()
	}

	// 1. Prepare the document set
	prepared, err := p.planner.Prepare(docs)
	if err != nil {
		return domain.Digest{}, report, err
	}
	report.TotalDocuments = len(prepared)

	if len(prepared) == 0 {
		return domain.Digest{}, report, domain.ErrNothingToSummarise
	}

	// 2. Plan batches
	batches := p.planner.Plan(prepared)
	report.BatchCount = len(batches)

	// 3. Extract each batch in order
	parts := make([]domain.Digest, 0, len(batches))
	for _, batch := range batches {
		if err := ctx.Err(); err != nil {
			return domain.Digest{}, report, err
		}

		extraction, err := p.extractor.Extract(ctx, batch, day)
		if err != nil {
			logger.Warn("batch %d failed, continuing without it: %v", batch.Index, err)
			report.FailedBatches++
			report.DocumentsLost += len(batch.Newsletters)
			continue
		}

		result := p.repairer.Parse(extraction.Raw, batch)
		switch result.Status {
		case domain.ParseRepaired:
			report.RepairedCount++
		case domain.ParseFallback:
			report.FallbackCount++
		}
		parts = append(parts, result.Digest)
	}

	if len(parts) == 0 {
		return domain.Digest{}, report, fmt.Errorf("%w: %d of %d batches",
			domain.ErrAllBatchesFailed, report.FailedBatches, report.BatchCount)
	}

	// 4. Synthesise the final digest
	if err := ctx.Err(); err != nil {
		return domain.Digest{}, report, err
	}
	final := p.synthesiser.Merge(ctx, parts, day)
	report.FinishedAt = time.Now()

	return final, report, nil
}

// Ensure DigestService implements the interface.
var _ driving.DigestOrchestrator = (*DigestService)(nil)

// DigestService coordinates a full run: fetch, summarise, publish, archive.
type DigestService struct {
	fetcher   driven.Fetcher
	pipeline  *Pipeline
	publisher driven.Publisher
	store     driven.DigestStore
}

// NewDigestService creates a digest orchestrator. The publisher and store
// are optional; when nil those steps are skipped.
func NewDigestService(
	fetcher driven.Fetcher,
	pipeline *Pipeline,
	publisher driven.Publisher,
	store driven.DigestStore,
) *DigestService {
	return &DigestService{
		fetcher:   fetcher,
		pipeline:  pipeline,
		publisher: publisher,
		store:     store,
	}
}

// Run executes the pipeline for one day.
func (s *DigestService) Run(ctx context.Context, day time.Time, opts driving.RunOptions) (*driving.RunResult, error) {
	// 1. Fetch the day's newsletters
	logger.Section("Fetching newsletters")
	docs, err := s.fetcher.Fetch(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("fetch newsletters: %w", err)
	}
	if len(docs) == 0 {
		return nil, domain.ErrNothingToSummarise
	}
	logger.Info("fetched %d newsletters", len(docs))

	// 2. Summarise
	logger.Section("Summarising")
	digest, report, err := s.pipeline.Summarise(ctx, docs, day)
	if err != nil {
		return nil, fmt.Errorf("summarise: %w", err)
	}

	result := &driving.RunResult{Digest: digest, Report: report}
	if opts.DryRun {
		return result, nil
	}

	// 3. Publish
	if s.publisher != nil {
		logger.Section("Publishing")
		url, err := s.publisher.Publish(ctx, digest, report)
		if err != nil {
			return nil, fmt.Errorf("publish digest: %w", err)
		}
		result.PageURL = url
	}

	// 4. Archive locally (best effort after a successful publish)
	if s.store != nil {
		record := domain.DigestRecord{
			ID:        report.RunID,
			Day:       day,
			Digest:    digest,
			Report:    report,
			PageURL:   result.PageURL,
			CreatedAt: time.Now(),
		}
		if err := s.store.Save(ctx, record); err != nil {
			logger.Warn("archiving digest failed: %v", err)
		}
	}

	return result, nil
}
