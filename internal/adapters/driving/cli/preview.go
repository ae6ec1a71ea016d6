package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
)

// Terminal styles for the digest preview.
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headingStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	flagStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	sourceStyle   = lipgloss.NewStyle().Faint(true)
	degradedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// renderDigest renders a digest for the terminal. When styled is false
// (piped output, tests) the same layout is produced without ANSI codes.
func renderDigest(digest domain.Digest, report domain.RunReport, styled bool) string {
	style := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder

	b.WriteString(style(titleStyle, fmt.Sprintf("Newsletter Digest — %s", report.Day.Format("Monday, January 2, 2006"))))
	b.WriteString("\n\n")

	if digest.ExecutiveSummary != "" {
		b.WriteString(style(headingStyle, "Executive Summary"))
		b.WriteString("\n")
		b.WriteString(digest.ExecutiveSummary)
		b.WriteString("\n")
	}

	if len(digest.DomainFlags) > 0 {
		b.WriteString("\n")
		b.WriteString(style(headingStyle, "Flagged Items"))
		b.WriteString("\n")
		for _, flag := range digest.DomainFlags {
			b.WriteString(style(flagStyle, "  ! "+flag))
			b.WriteString("\n")
		}
	}

	for _, name := range digest.ActiveCategories(categoryOrder(digest)) {
		b.WriteString("\n")
		b.WriteString(style(headingStyle, name))
		b.WriteString("\n")
		for _, insight := range digest.Categories[name] {
			b.WriteString("  - " + insight.Text)
			if insight.SourceName != "" {
				b.WriteString(" " + style(sourceStyle, "("+insight.SourceName+")"))
			}
			b.WriteString("\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// renderReport renders the one-line run summary shown after the digest.
func renderReport(report domain.RunReport) string {
	line := fmt.Sprintf("\n%d newsletters in %d batches (model %s)",
		report.TotalDocuments, report.BatchCount, report.Model)

	if !report.Degraded() {
		return line
	}

	var parts []string
	if report.RepairedCount > 0 {
		parts = append(parts, fmt.Sprintf("%d repaired", report.RepairedCount))
	}
	if report.FallbackCount > 0 {
		parts = append(parts, fmt.Sprintf("%d fell back", report.FallbackCount))
	}
	if report.FailedBatches > 0 {
		parts = append(parts, fmt.Sprintf("%d failed, %d newsletters lost",
			report.FailedBatches, report.DocumentsLost))
	}

	note := "degraded: " + strings.Join(parts, ", ")
	if isTerminal(os.Stdout) {
		note = degradedStyle.Render(note)
	}
	return line + "\n" + note
}

// categoryOrder returns the configured category order extended with any
// extra names the digest carries, so nothing is silently dropped.
func categoryOrder(digest domain.Digest) []string {
	order := domain.DefaultCategories()
	seen := make(map[string]struct{}, len(order))
	for _, name := range order {
		seen[name] = struct{}{}
	}
	var extras []string
	for name := range digest.Categories {
		if _, ok := seen[name]; !ok {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	return append(order, extras...)
}
