package notion

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
)

func testPublisher(t *testing.T) *Publisher {
	t.Helper()
	p, err := NewPublisher(Config{
		APIKey:     "secret",
		DatabaseID: "db-id",
		Categories: domain.Categories{"AI & ML", "Legal Tech"},
	})
	require.NoError(t, err)
	return p
}

func sampleDigest() domain.Digest {
	return domain.Digest{
		ExecutiveSummary: "Busy day in legal tech.",
		DomainFlags:      []string{"LegalCo raised $40M"},
		Categories: map[string][]domain.Insight{
			"Legal Tech": {{Text: "New discovery tool", SourceName: "Alpha Weekly"}},
		},
		PerSource: map[string]domain.SourceSummary{
			"Beta Brief":   {Summary: "Two launches.", KeyFacts: []string{"fact"}, Link: "https://example.com"},
			"Alpha Weekly": {Summary: "Funding news."},
		},
	}
}

func TestNewPublisher_Validation(t *testing.T) {
	_, err := NewPublisher(Config{DatabaseID: "db"})
	assert.Error(t, err, "missing API key")

	_, err = NewPublisher(Config{APIKey: "k"})
	assert.Error(t, err, "missing database ID")
}

func TestPublisher_PageBlocks(t *testing.T) {
	p := testPublisher(t)
	blocks := p.pageBlocks(sampleDigest())

	types := make([]notionapi.BlockType, len(blocks))
	for i, b := range blocks {
		types[i] = b.GetType()
	}

	// Executive summary, flags, categories, and sources sections in order.
	assert.Equal(t, notionapi.BlockTypeHeading2, types[0])
	assert.Equal(t, notionapi.BlockTypeCallout, types[1])
	assert.Equal(t, notionapi.BlockTypeDivider, types[2])

	// Empty categories never get a heading.
	for _, b := range blocks {
		if h, ok := b.(notionapi.Heading3Block); ok {
			assert.NotContains(t, h.Heading3.RichText[0].Text.Content, "AI & ML")
		}
	}

	// Per-source toggles are sorted by name.
	var toggles []string
	for _, b := range blocks {
		if toggle, ok := b.(notionapi.ToggleBlock); ok {
			toggles = append(toggles, toggle.Toggle.RichText[0].Text.Content)
		}
	}
	require.Len(t, toggles, 2)
	assert.Equal(t, "📰 Alpha Weekly", toggles[0])
	assert.Equal(t, "📰 Beta Brief", toggles[1])
}

func TestPublisher_PageBlocks_TruncatesAtLimit(t *testing.T) {
	p := testPublisher(t)

	digest := domain.Digest{ExecutiveSummary: "s"}
	digest.EnsureContainers()
	for i := 0; i < 150; i++ {
		name := fmt.Sprintf("Source %03d", i)
		digest.PerSource[name] = domain.SourceSummary{Summary: "x"}
	}

	blocks := p.pageBlocks(digest)
	require.Len(t, blocks, maxBlocksPerRequest)

	last, ok := blocks[len(blocks)-1].(notionapi.ParagraphBlock)
	require.True(t, ok)
	assert.Contains(t, last.Paragraph.RichText[0].Text.Content, "truncated")
}

func TestPublisher_PageProperties(t *testing.T) {
	p := testPublisher(t)
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	props := p.pageProperties("📬 Newsletter Digest — March 14, 2026", sampleDigest(), domain.RunReport{
		Day:            day,
		TotalDocuments: 12,
	})

	title := props["Title"].(notionapi.TitleProperty)
	assert.Contains(t, title.Title[0].Text.Content, "March 14, 2026")

	count := props["Newsletter Count"].(notionapi.NumberProperty)
	assert.Equal(t, float64(12), count.Number)

	multi := props["Categories"].(notionapi.MultiSelectProperty)
	require.Len(t, multi.MultiSelect, 1)
	assert.Equal(t, "Legal Tech", multi.MultiSelect[0].Name)

	status := props["Status"].(notionapi.SelectProperty)
	assert.Equal(t, StatusGenerated, status.Select.Name)

	sources := props["Sources"].(notionapi.RichTextProperty)
	assert.Equal(t, "Alpha Weekly, Beta Brief", sources.RichText[0].Text.Content)
}

func TestPublisher_PageProperties_DegradedRunIsPartial(t *testing.T) {
	p := testPublisher(t)

	props := p.pageProperties("t", sampleDigest(), domain.RunReport{
		Day:           time.Now(),
		FailedBatches: 1,
	})

	status := props["Status"].(notionapi.SelectProperty)
	assert.Equal(t, StatusPartial, status.Select.Name)
}

func TestRichText_ClipsToNotionLimit(t *testing.T) {
	long := strings.Repeat("é", maxRichTextChars+500)
	rt := richText(long)
	require.Len(t, rt, 1)
	assert.Equal(t, maxRichTextChars, len([]rune(rt[0].Text.Content)))
}
