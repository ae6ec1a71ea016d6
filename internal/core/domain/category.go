package domain

import "strings"

// Categories is the enumerated category set for a run. It is threaded
// explicitly into both the instruction template and the response validator
// rather than shared as a global.
type Categories []string

// DefaultCategories returns the built-in category set.
func DefaultCategories() Categories {
	return Categories{
		"AI & ML",
		"Funding & Deals",
		"Market Trends",
		"Legal Tech",
		"Product Launches",
		"Policy & Regulation",
		"Specter-Relevant",
	}
}

// Contains reports whether name is a member of the set (exact match).
func (c Categories) Contains(name string) bool {
	for _, cat := range c {
		if cat == name {
			return true
		}
	}
	return false
}

// Bulleted renders the set as a bulleted list for prompt interpolation.
func (c Categories) Bulleted() string {
	var b strings.Builder
	for i, cat := range c {
		if i > 0 {
			b.WriteString("\n   ")
		}
		b.WriteString("- ")
		b.WriteString(cat)
	}
	return b.String()
}
