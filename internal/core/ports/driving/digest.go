package driving

import (
	"context"
	"time"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
)

// DigestOrchestrator coordinates one full pipeline invocation:
// fetch, summarise, publish, archive.
type DigestOrchestrator interface {
	// Run executes the pipeline for the given day.
	// Returns domain.ErrNothingToSummarise when the mailbox is empty.
	Run(ctx context.Context, day time.Time, opts RunOptions) (*RunResult, error)
}

// RunOptions controls a single invocation.
type RunOptions struct {
	// DryRun fetches and summarises but skips publishing and archiving.
	DryRun bool
}

// RunResult is what a completed invocation hands back to the caller.
type RunResult struct {
	Digest  domain.Digest
	Report  domain.RunReport
	PageURL string
}
