package services

import (
	"fmt"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/logger"
)

// Default sizing values, chosen to leave room for the model's response.
const (
	// DefaultMaxInputTokens is the per-call input token budget.
	DefaultMaxInputTokens = 75000

	// DefaultCharsPerToken is the fixed chars-per-token estimate used to
	// express the token budget as a character threshold.
	DefaultCharsPerToken = 4

	// DefaultDocumentCap bounds a single newsletter's body in characters.
	DefaultDocumentCap = 15000
)

// Planner prepares a document set and partitions it into batches that fit
// the model's input budget. The budget is an approximate character
// threshold; exact tokenisation is not assumed.
type Planner struct {
	budget int // characters per batch
	docCap int // characters per document
}

// PlannerOption configures the planner.
type PlannerOption func(*Planner)

// WithBudget sets the per-batch budget in characters.
func WithBudget(chars int) PlannerOption {
	return func(p *Planner) {
		if chars > 0 {
			p.budget = chars
		}
	}
}

// WithDocumentCap sets the per-document character cap applied during
// preparation.
func WithDocumentCap(chars int) PlannerOption {
	return func(p *Planner) {
		if chars > 0 {
			p.docCap = chars
		}
	}
}

// NewPlanner creates a planner with the given options.
func NewPlanner(opts ...PlannerOption) *Planner {
	p := &Planner{
		budget: DefaultMaxInputTokens * DefaultCharsPerToken,
		docCap: DefaultDocumentCap,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prepare validates and normalises the raw document set: oversized bodies
// are truncated to the document cap and CharCount is computed. The input
// order is preserved. A document without a source name makes the whole set
// malformed, which is fatal to the run.
func (p *Planner) Prepare(docs []domain.Newsletter) ([]domain.Newsletter, error) {
	prepared := make([]domain.Newsletter, 0, len(docs))
	for i, doc := range docs {
		if doc.SourceName == "" {
			return nil, fmt.Errorf("%w: document %d has no source name", domain.ErrInvalidInput, i)
		}
		if len(doc.Body) > p.docCap {
			logger.Debug("truncating %s from %d to %d chars", doc.SourceName, len(doc.Body), p.docCap)
			doc.Truncate(p.docCap)
		}
		doc.CharCount = len(doc.Body)
		prepared = append(prepared, doc)
	}
	return prepared, nil
}

// TotalChars returns the aggregate size estimate for a prepared set.
func (p *Planner) TotalChars(docs []domain.Newsletter) int {
	total := 0
	for _, doc := range docs {
		total += doc.CharCount
	}
	return total
}

// Plan partitions a prepared set into batches. Documents are packed
// greedily in original order: a document joins the current batch if the
// batch total stays within budget, otherwise it opens a new batch. A
// single document exceeding the budget on its own still forms its own
// batch; documents are never dropped or split.
//
// Zero documents yield zero batches; the caller short-circuits without
// invoking the model.
func (p *Planner) Plan(docs []domain.Newsletter) []domain.Batch {
	if len(docs) == 0 {
		return nil
	}

	if p.TotalChars(docs) <= p.budget {
		return []domain.Batch{{
			Index:       0,
			Newsletters: docs,
			CharCount:   p.TotalChars(docs),
		}}
	}

	var batches []domain.Batch
	current := domain.Batch{Index: 0}
	for _, doc := range docs {
		if len(current.Newsletters) > 0 && current.CharCount+doc.CharCount > p.budget {
			batches = append(batches, current)
			current = domain.Batch{Index: len(batches)}
		}
		current.Newsletters = append(current.Newsletters, doc)
		current.CharCount += doc.CharCount
	}
	batches = append(batches, current)

	logger.Info("planned %d batches for %d documents (%d chars, budget %d)",
		len(batches), len(docs), p.TotalChars(docs), p.budget)
	return batches
}
