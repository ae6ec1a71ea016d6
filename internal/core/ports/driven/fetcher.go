package driven

import (
	"context"
	"time"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
)

// Fetcher retrieves the day's newsletters from a mailbox.
// The returned set is already deduplicated and date-filtered; ordering is
// the mailbox's own (newest first for Gmail) and is preserved by the core.
type Fetcher interface {
	// Fetch returns the newsletters received on the given calendar day.
	// An empty slice with a nil error means no newsletters arrived.
	Fetch(ctx context.Context, day time.Time) ([]domain.Newsletter, error)

	// Close releases resources.
	Close() error
}
