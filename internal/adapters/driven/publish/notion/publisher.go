// Package notion publishes digests as pages in a Notion database.
//
// Each run creates exactly one page: properties carry run metadata for
// database views, the page body carries the digest itself.
package notion

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jomei/notionapi"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/ports/driven"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/logger"
)

// Ensure Publisher implements the interface.
var _ driven.Publisher = (*Publisher)(nil)

// Notion API limits.
const (
	// maxBlocksPerRequest is the Notion cap on children per create call.
	maxBlocksPerRequest = 100

	// maxRichTextChars is the Notion cap on one rich text content string.
	maxRichTextChars = 2000
)

// Page status property values.
const (
	StatusGenerated = "Generated"
	StatusPartial   = "Partial"
)

// categoryEmoji decorates category headings.
var categoryEmoji = map[string]string{
	"AI & ML":             "🤖",
	"Funding & Deals":     "💰",
	"Market Trends":       "📈",
	"Legal Tech":          "⚖️",
	"Product Launches":    "🚀",
	"Policy & Regulation": "📜",
	"Specter-Relevant":    "🎯",
}

// Config holds configuration for the Notion publisher.
type Config struct {
	// APIKey is the Notion integration token (required).
	APIKey string

	// DatabaseID is the database digests are filed under (required).
	DatabaseID string

	// Categories orders category sections on the page. Empty falls back
	// to the default set.
	Categories domain.Categories
}

// Publisher files digests into a Notion database, one page per run.
type Publisher struct {
	client     *notionapi.Client
	databaseID notionapi.DatabaseID
	categories domain.Categories
}

// NewPublisher creates a Notion publisher.
func NewPublisher(cfg Config) (*Publisher, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("notion: API key is required")
	}
	if cfg.DatabaseID == "" {
		return nil, fmt.Errorf("notion: database ID is required")
	}
	categories := cfg.Categories
	if len(categories) == 0 {
		categories = domain.DefaultCategories()
	}

	return &Publisher{
		client:     notionapi.NewClient(notionapi.Token(cfg.APIKey)),
		databaseID: notionapi.DatabaseID(cfg.DatabaseID),
		categories: categories,
	}, nil
}

// Publish creates one page for the digest and returns its URL.
func (p *Publisher) Publish(ctx context.Context, digest domain.Digest, report domain.RunReport) (string, error) {
	title := fmt.Sprintf("📬 Newsletter Digest — %s", report.Day.Format("January 2, 2006"))
	logger.Info("creating Notion page: %s", title)

	page, err := p.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: p.databaseID,
		},
		Properties: p.pageProperties(title, digest, report),
		Children:   p.pageBlocks(digest),
	})
	if err != nil {
		return "", fmt.Errorf("create page: %w", err)
	}

	return page.URL, nil
}

// pageProperties builds the database properties for the digest page.
func (p *Publisher) pageProperties(title string, digest domain.Digest, report domain.RunReport) notionapi.Properties {
	options := make([]notionapi.Option, 0)
	for _, name := range digest.ActiveCategories(p.categories) {
		options = append(options, notionapi.Option{Name: name})
	}

	sources := sortedSources(digest)

	status := StatusGenerated
	if report.Degraded() {
		status = StatusPartial
	}

	day := notionapi.Date(report.Day)
	return notionapi.Properties{
		"Title": notionapi.TitleProperty{
			Title: richText(title),
		},
		"Date": notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &day},
		},
		"Newsletter Count": notionapi.NumberProperty{
			Number: float64(report.TotalDocuments),
		},
		"Categories": notionapi.MultiSelectProperty{
			MultiSelect: options,
		},
		"Status": notionapi.SelectProperty{
			Select: notionapi.Option{Name: status},
		},
		"Sources": notionapi.RichTextProperty{
			RichText: richText(strings.Join(sources, ", ")),
		},
	}
}

// pageBlocks renders the digest body, capped at the Notion block limit.
func (p *Publisher) pageBlocks(digest domain.Digest) []notionapi.Block {
	blocks := []notionapi.Block{
		heading2("Executive Summary"),
		callout(valueOr(digest.ExecutiveSummary, "No summary available."), "📋"),
		divider(),
	}

	if len(digest.DomainFlags) > 0 {
		blocks = append(blocks, heading2("🎯 Flagged Items"))
		for _, flag := range digest.DomainFlags {
			blocks = append(blocks, callout(flag, "⚡"))
		}
		blocks = append(blocks, divider())
	}

	if active := digest.ActiveCategories(p.categories); len(active) > 0 {
		blocks = append(blocks, heading2("Categorised Insights"))
		for _, name := range active {
			emoji := categoryEmoji[name]
			if emoji == "" {
				emoji = "📌"
			}
			blocks = append(blocks, heading3(fmt.Sprintf("%s %s", emoji, name)))
			for _, insight := range digest.Categories[name] {
				blocks = append(blocks, bulleted(fmt.Sprintf("%s (%s)", insight.Text, insight.SourceName)))
			}
		}
		blocks = append(blocks, divider())
	}

	if len(digest.PerSource) > 0 {
		blocks = append(blocks, heading2("Source Details"))
		for _, name := range sortedSources(digest) {
			blocks = append(blocks, sourceToggle(name, digest.PerSource[name]))
		}
	}

	if len(blocks) > maxBlocksPerRequest {
		logger.Warn("truncating page from %d to %d blocks", len(blocks), maxBlocksPerRequest)
		blocks = blocks[:maxBlocksPerRequest-1]
		blocks = append(blocks, paragraph("⚠️ Content truncated due to Notion block limit."))
	}

	return blocks
}

// sourceToggle renders one per-source summary as a collapsed toggle.
func sourceToggle(name string, summary domain.SourceSummary) notionapi.Block {
	children := notionapi.Blocks{}
	if summary.Summary != "" {
		children = append(children, paragraph(summary.Summary))
	}
	for _, fact := range summary.KeyFacts {
		children = append(children, bulleted("📌 "+fact))
	}
	if summary.Link != "" {
		children = append(children, bulleted("🔗 "+summary.Link))
	}
	if len(children) == 0 {
		children = append(children, paragraph("No details extracted."))
	}

	return notionapi.ToggleBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeToggle),
		Toggle: notionapi.Toggle{
			RichText: richText("📰 " + name),
			Children: children,
		},
	}
}

// sortedSources returns per-source names in deterministic order.
func sortedSources(digest domain.Digest) []string {
	names := make([]string, 0, len(digest.PerSource))
	for name := range digest.PerSource {
		names = append(names, name)
	}
	// Map iteration order is random, sort for stable pages.
	sort.Strings(names)
	return names
}

// --- block builders ---

func basicBlock(t notionapi.BlockType) notionapi.BasicBlock {
	return notionapi.BasicBlock{
		Object: notionapi.ObjectTypeBlock,
		Type:   t,
	}
}

// richText builds a single rich text run, clipped to the Notion limit.
func richText(text string) []notionapi.RichText {
	runes := []rune(text)
	if len(runes) > maxRichTextChars {
		text = string(runes[:maxRichTextChars])
	}
	return []notionapi.RichText{{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: text},
	}}
}

func heading2(text string) notionapi.Block {
	return notionapi.Heading2Block{
		BasicBlock: basicBlock(notionapi.BlockTypeHeading2),
		Heading2:   notionapi.Heading{RichText: richText(text)},
	}
}

func heading3(text string) notionapi.Block {
	return notionapi.Heading3Block{
		BasicBlock: basicBlock(notionapi.BlockTypeHeading3),
		Heading3:   notionapi.Heading{RichText: richText(text)},
	}
}

func paragraph(text string) notionapi.Block {
	return notionapi.ParagraphBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeParagraph),
		Paragraph:  notionapi.Paragraph{RichText: richText(text)},
	}
}

func bulleted(text string) notionapi.Block {
	return notionapi.BulletedListItemBlock{
		BasicBlock:       basicBlock(notionapi.BlockTypeBulletedListItem),
		BulletedListItem: notionapi.ListItem{RichText: richText(text)},
	}
}

func callout(text, emoji string) notionapi.Block {
	e := notionapi.Emoji(emoji)
	return notionapi.CalloutBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeCallout),
		Callout: notionapi.Callout{
			RichText: richText(text),
			Icon:     &notionapi.Icon{Type: "emoji", Emoji: &e},
		},
	}
}

func divider() notionapi.Block {
	return notionapi.DividerBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeDivider),
		Divider:    notionapi.Divider{},
	}
}

func valueOr(text, fallback string) string {
	if strings.TrimSpace(text) == "" {
		return fallback
	}
	return text
}
