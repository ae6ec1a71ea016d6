package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecord(id string, day time.Time) domain.DigestRecord {
	return domain.DigestRecord{
		ID:  id,
		Day: day,
		Digest: domain.Digest{
			ExecutiveSummary: "A quiet day.",
			DomainFlags:      []string{"flag"},
			Categories: map[string][]domain.Insight{
				"AI & ML": {{Text: "insight", SourceName: "Alpha Weekly"}},
			},
			PerSource: map[string]domain.SourceSummary{
				"Alpha Weekly": {Summary: "s", KeyFacts: []string{"fact"}},
			},
		},
		Report: domain.RunReport{
			RunID:          id,
			Day:            day,
			TotalDocuments: 5,
			BatchCount:     1,
		},
		PageURL:   "https://notion.so/page",
		CreatedAt: time.Now(),
	}
}

func TestStore_SaveAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, sampleRecord("run-1", day)))

	records, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, "run-1", got.ID)
	assert.Equal(t, day, got.Day)
	assert.Equal(t, "A quiet day.", got.Digest.ExecutiveSummary)
	assert.Equal(t, "https://notion.so/page", got.PageURL)
	assert.Equal(t, 5, got.Report.TotalDocuments)
	require.Len(t, got.Digest.Categories["AI & ML"], 1)
	assert.Equal(t, "Alpha Weekly", got.Digest.Categories["AI & ML"][0].SourceName)
}

func TestStore_ListOrderAndLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		record := sampleRecord(string(rune('a'+i)), base.AddDate(0, 0, i))
		record.CreatedAt = base.AddDate(0, 0, i)
		require.NoError(t, store.Save(ctx, record))
	}

	records, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c", records[0].ID, "newest first")
	assert.Equal(t, "b", records[1].ID)

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_SaveReplacesSameRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	record := sampleRecord("run-1", day)
	require.NoError(t, store.Save(ctx, record))

	record.PageURL = "https://notion.so/updated"
	require.NoError(t, store.Save(ctx, record))

	records, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "https://notion.so/updated", records[0].PageURL)
}

func TestStore_MigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening the same directory must not re-run applied migrations.
	reopened, err := NewStore(dir)
	require.NoError(t, err)
	assert.NoError(t, reopened.Close())
}
