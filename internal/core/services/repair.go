package services

import (
	"encoding/json"
	"strings"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/logger"
)

// FallbackSummary is the fixed sentinel used when structured extraction is
// unrecoverable for a batch.
const FallbackSummary = "Structured extraction failed for this batch; raw source previews are shown instead."

// DefaultPreviewChars bounds the per-document body prefix used in a
// fallback record.
const DefaultPreviewChars = 280

// RepairResult is a batch's digest plus how it was obtained.
type RepairResult struct {
	Digest domain.Digest
	Status domain.ParseStatus
}

// Repairer turns raw model output into a valid Digest, in three stages:
// direct parse, structural repair of truncated JSON, and finally a
// degraded fallback record built from the batch's own documents. Repair is
// syntactic only: it restores closure of strings, arrays and objects but
// never invents content. The fallback sources its text directly from the
// input documents, so the pipeline always yields a digest for the batch.
type Repairer struct {
	categories   domain.Categories
	previewChars int
}

// RepairerOption configures the repairer.
type RepairerOption func(*Repairer)

// WithPreviewChars sets the fallback body-prefix length.
func WithPreviewChars(n int) RepairerOption {
	return func(r *Repairer) {
		if n > 0 {
			r.previewChars = n
		}
	}
}

// NewRepairer creates a repairer validating against the given category set.
func NewRepairer(categories domain.Categories, opts ...RepairerOption) *Repairer {
	if len(categories) == 0 {
		categories = domain.DefaultCategories()
	}
	r := &Repairer{
		categories:   categories,
		previewChars: DefaultPreviewChars,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Parse produces a valid Digest from raw model output for the batch.
// It never fails: unrecoverable input yields a fallback record.
func (r *Repairer) Parse(raw string, batch domain.Batch) RepairResult {
	cleaned := stripFences(raw)

	if digest, ok := r.tryParse(cleaned); ok {
		return RepairResult{Digest: digest, Status: domain.ParseClean}
	}

	if repaired, ok := repairJSON(cleaned); ok {
		if digest, ok := r.tryParse(repaired); ok {
			logger.Warn("batch %d: response needed structural repair", batch.Index)
			return RepairResult{Digest: digest, Status: domain.ParseRepaired}
		}
	}

	logger.Warn("batch %d: response unrecoverable, using fallback record", batch.Index)
	return RepairResult{Digest: r.fallback(batch), Status: domain.ParseFallback}
}

// tryParse attempts a strict parse and validates the result. The typed
// unmarshal enforces container types; validation drops unknown categories
// with a warning and defaults missing keys to empty containers.
func (r *Repairer) tryParse(text string) (domain.Digest, bool) {
	if strings.TrimSpace(text) == "" {
		return domain.Digest{}, false
	}

	var digest domain.Digest
	if err := json.Unmarshal([]byte(text), &digest); err != nil {
		return domain.Digest{}, false
	}

	for name := range digest.Categories {
		if !r.categories.Contains(name) {
			logger.Warn("dropping unknown category %q", name)
			delete(digest.Categories, name)
		}
	}
	digest.EnsureContainers()

	return digest, true
}

// fallback builds a degraded record from the batch's own documents: one
// per-source entry per document with a bounded body prefix as summary.
func (r *Repairer) fallback(batch domain.Batch) domain.Digest {
	perSource := make(map[string]domain.SourceSummary, len(batch.Newsletters))
	for _, doc := range batch.Newsletters {
		if _, exists := perSource[doc.SourceName]; exists {
			continue
		}
		perSource[doc.SourceName] = domain.SourceSummary{
			Summary:  preview(doc.Body, r.previewChars),
			KeyFacts: []string{},
			Link:     doc.Link,
		}
	}

	return domain.Digest{
		ExecutiveSummary: FallbackSummary,
		DomainFlags:      []string{},
		Categories:       map[string][]domain.Insight{},
		PerSource:        perSource,
	}
}

// stripFences removes a surrounding markdown code fence, if present.
// Models sometimes wrap JSON in ```json fences despite instructions; a
// truncated response may be missing the closing fence.
func stripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	if idx := strings.IndexByte(cleaned, '\n'); idx >= 0 {
		cleaned = cleaned[idx+1:]
	} else {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// repairJSON restores syntactic closure to truncated JSON. It scans the
// text tracking brace/bracket nesting and whether the cursor is inside a
// quoted string (respecting escapes), then closes an unterminated string
// and any open levels in reverse order of opening. Returns false when the
// text is not plausibly truncated JSON (wrong opener, mismatched closer).
func repairJSON(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return "", false
	}

	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return "", false
			}
			stack = stack[:len(stack)-1]
		}
	}

	if len(stack) == 0 && !inString {
		// Already closed; a repair pass has nothing to add.
		return trimmed, true
	}

	if escaped {
		// Ends mid-escape; drop the dangling backslash before closing.
		trimmed = trimmed[:len(trimmed)-1]
	}

	var b strings.Builder
	b.Grow(len(trimmed) + len(stack) + 8)
	if inString {
		b.WriteString(trimmed)
		b.WriteByte('"')
	} else {
		// Outside a string the cut may land after a comma or colon.
		tail := strings.TrimRight(trimmed, " \t\r\n")
		switch {
		case strings.HasSuffix(tail, ","):
			tail = tail[:len(tail)-1]
		case strings.HasSuffix(tail, ":"):
			tail += " null"
		}
		b.WriteString(tail)
	}
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteByte(stack[i])
	}
	return b.String(), true
}

// preview returns a bounded prefix of text, cut at a rune boundary.
func preview(text string, max int) string {
	text = strings.TrimSpace(text)
	if len(text) <= max {
		return text
	}
	runes := []rune(text)
	if len(runes) > max {
		runes = runes[:max]
	}
	return strings.TrimSpace(string(runes)) + "…"
}
