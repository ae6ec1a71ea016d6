package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/ports/driven"
)

// DefaultFlagRules is the built-in domain-flag rule text. It marks content
// relevant to the reader's configured topics of interest, separately from
// the fixed category set.
const DefaultFlagRules = `- Legal technology, litigation tools, AI in law
   - Mass tort / class action news
   - Medical record processing, healthcare data
   - Funding rounds in legal tech or adjacent spaces`

// defaultExtractPrompt is the fallback template when no PromptStore is
// configured. Placeholders: date, newsletter count, category list,
// domain-flag rules, newsletters block.
const defaultExtractPrompt = `You are a senior analyst creating a daily intelligence briefing from newsletters.
Today's date: %s

You will receive the full text of %d newsletters. Your job:

1. Per-newsletter summary: for each newsletter, extract the sender name, a
   2-3 sentence summary of the most important points, key facts or numbers
   worth noting, and a link if one stands out.

2. Categorised digest: group ALL insights across all newsletters into these
   categories:
   %s

   Only include categories that have actual content. Attribute every insight
   to the newsletter it came from.

3. Executive summary: write a 3-4 sentence overview of the most important
   things from today's newsletters. What should the reader pay attention to?

4. Domain flags: specifically flag anything related to:
   %s

Respond with ONLY valid JSON (no markdown fences) in exactly this shape:
{
    "executive_summary": "...",
    "domain_flags": ["specific item 1", "specific item 2"],
    "categories": {
        "Category Name": [{"text": "insight", "source": "Newsletter Name"}]
    },
    "per_source": {
        "Newsletter Name": {"summary": "2-3 sentences", "key_facts": ["fact"], "link": "url"}
    }
}

---

Here are today's newsletters:

%s`

// defaultSynthesisePrompt recomputes the executive summary from per-batch
// summaries. Placeholders: date, summaries block.
const defaultSynthesisePrompt = `You are combining partial daily-briefing summaries into one final executive summary.
Today's date: %s

Below are executive summaries from different batches of newsletters. Write a
single 3-4 sentence executive summary covering the most important items
across all of them. Respond with ONLY the summary text, no preamble.

Partial summaries:
%s`

// PromptBuilder assembles instruction templates for the pipeline. The
// category set and flag rules are threaded in as configuration so the
// template and the validator always agree.
type PromptBuilder struct {
	store      driven.PromptStore // optional; nil uses embedded defaults
	categories domain.Categories
	flagRules  string
}

// NewPromptBuilder creates a prompt builder for the given category set.
// Empty flagRules falls back to the built-in rules; a nil store uses the
// embedded default templates.
func NewPromptBuilder(categories domain.Categories, flagRules string, store driven.PromptStore) *PromptBuilder {
	if len(categories) == 0 {
		categories = domain.DefaultCategories()
	}
	if flagRules == "" {
		flagRules = DefaultFlagRules
	}
	return &PromptBuilder{
		store:      store,
		categories: categories,
		flagRules:  flagRules,
	}
}

// Categories returns the configured category set.
func (b *PromptBuilder) Categories() domain.Categories {
	return b.categories
}

// Extraction builds the per-batch extraction prompt.
func (b *PromptBuilder) Extraction(batch domain.Batch, day time.Time) string {
	template := b.loadPrompt(driven.PromptExtract, defaultExtractPrompt)
	return fmt.Sprintf(template,
		day.Format("January 2, 2006"),
		len(batch.Newsletters),
		b.categories.Bulleted(),
		b.flagRules,
		formatNewsletters(batch.Newsletters),
	)
}

// Synthesis builds the executive re-summarisation prompt from per-batch
// executive summaries.
func (b *PromptBuilder) Synthesis(summaries []string, day time.Time) string {
	template := b.loadPrompt(driven.PromptSynthesise, defaultSynthesisePrompt)
	return fmt.Sprintf(template,
		day.Format("January 2, 2006"),
		strings.Join(summaries, "\n\n---\n\n"),
	)
}

// loadPrompt loads a template from the store, falling back to the default.
func (b *PromptBuilder) loadPrompt(name, fallback string) string {
	if b.store == nil {
		return fallback
	}
	prompt, err := b.store.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}

// formatNewsletters renders the batch as one text block for the prompt.
func formatNewsletters(docs []domain.Newsletter) string {
	blocks := make([]string, 0, len(docs))
	for i, doc := range docs {
		date := "Unknown"
		if !doc.RetrievedAt.IsZero() {
			date = doc.RetrievedAt.Format(time.RFC1123)
		}
		blocks = append(blocks, fmt.Sprintf(
			"=== NEWSLETTER %d ===\nFrom: %s\nSubject: %s\nDate: %s\n---\n%s\n",
			i+1, doc.SourceName, doc.Subject, date, doc.Body,
		))
	}
	return strings.Join(blocks, "\n\n")
}
