package domain

import (
	"strings"
	"time"
)

// Newsletter is a single source document for one pipeline run.
// It is immutable once prepared: the fetcher supplies sender, subject and
// body, and the preparer fills CharCount and applies the per-document cap.
type Newsletter struct {
	// SourceName is the human-readable sender name ("From" display name).
	SourceName string

	// Subject is the email subject line.
	Subject string

	// Body is the plain-text body after HTML normalisation.
	Body string

	// CharCount is the length of Body in bytes, set by the preparer.
	CharCount int

	// RetrievedAt is when the message was received, from the Date header.
	RetrievedAt time.Time

	// MessageID is the Gmail message identifier.
	MessageID string

	// Link is a web URL back to the original message.
	Link string
}

// Truncate caps the body at max characters, cutting at a line boundary
// where one falls close enough to the limit.
func (n *Newsletter) Truncate(max int) {
	if max <= 0 || len(n.Body) <= max {
		return
	}
	cut := n.Body[:max]
	if idx := strings.LastIndexByte(cut, '\n'); idx > max/2 {
		cut = cut[:idx]
	}
	n.Body = cut
}

// Batch is an ordered group of newsletters assigned to one model call.
// Batches partition the prepared set exactly: every newsletter appears in
// exactly one batch, in original order.
type Batch struct {
	// Index is the zero-based position of this batch in the plan.
	Index int

	// Newsletters are the documents in this batch, in input order.
	Newsletters []Newsletter

	// CharCount is the sum of member CharCounts.
	CharCount int
}

// SourceNames returns the sender names of the batch members, in order.
func (b Batch) SourceNames() []string {
	names := make([]string, len(b.Newsletters))
	for i, n := range b.Newsletters {
		names[i] = n.SourceName
	}
	return names
}
