// Package memory provides in-memory storage implementations for testing
// and dry runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/ports/driven"
)

// Ensure DigestStore implements the interface.
var _ driven.DigestStore = (*DigestStore)(nil)

// DigestStore is an in-memory implementation of driven.DigestStore.
type DigestStore struct {
	mu      sync.RWMutex
	records map[string]domain.DigestRecord
}

// NewDigestStore creates a new in-memory digest store.
func NewDigestStore() *DigestStore {
	return &DigestStore{
		records: make(map[string]domain.DigestRecord),
	}
}

// Save stores a digest record, replacing any record with the same ID.
func (s *DigestStore) Save(_ context.Context, record domain.DigestRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.ID] = record
	return nil
}

// List returns records newest first. A limit of zero or less returns all.
func (s *DigestStore) List(_ context.Context, limit int) ([]domain.DigestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.DigestRecord, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Close is a no-op for the in-memory store.
func (s *DigestStore) Close() error {
	return nil
}
