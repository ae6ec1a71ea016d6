package driven

import (
	"context"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
)

// DigestStore archives completed runs locally so past digests can be
// listed and inspected without round-tripping to the document store.
type DigestStore interface {
	// Save archives a completed run.
	Save(ctx context.Context, record domain.DigestRecord) error

	// List returns archived runs, most recent day first, up to limit.
	// A non-positive limit returns all records.
	List(ctx context.Context, limit int) ([]domain.DigestRecord, error)

	// Close releases resources.
	Close() error
}
