package domain

import "time"

// RunReport is the run-level metadata record handed to collaborators for
// observability. One is produced per pipeline invocation.
type RunReport struct {
	// RunID uniquely identifies this invocation.
	RunID string

	// Day is the calendar date the digest covers.
	Day time.Time

	// TotalDocuments is the number of newsletters prepared for the run.
	TotalDocuments int

	// BatchCount is the number of batches the planner produced.
	BatchCount int

	// RepairedCount is the number of batches whose output needed
	// structural repair before parsing.
	RepairedCount int

	// FallbackCount is the number of batches that degraded to a
	// fallback record.
	FallbackCount int

	// FailedBatches is the number of batches whose extraction call
	// failed outright (after retry). Their documents are absent from
	// the digest.
	FailedBatches int

	// DocumentsLost is the number of newsletters in failed batches.
	DocumentsLost int

	// Model is the LLM model name used for extraction.
	Model string

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time
}

// Degraded reports whether any batch needed repair, fell back, or failed.
func (r RunReport) Degraded() bool {
	return r.RepairedCount > 0 || r.FallbackCount > 0 || r.FailedBatches > 0
}

// DigestRecord is an archived run: the final digest plus its report.
// Archiving happens in the rendering layer; the core pipeline itself
// persists nothing across runs.
type DigestRecord struct {
	ID        string
	Day       time.Time
	Digest    Digest
	Report    RunReport
	PageURL   string
	CreatedAt time.Time
}
