package driven

import (
	"context"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
)

// Publisher renders a final digest into a document store.
type Publisher interface {
	// Publish creates one page for the digest and returns its URL.
	Publish(ctx context.Context, digest domain.Digest, report domain.RunReport) (string, error)
}
