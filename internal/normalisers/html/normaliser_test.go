package html

import (
	"strings"
	"testing"
)

func TestToText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "strips tags",
			input: `<p>Hello <b>world</b></p>`,
			want:  "Hello world",
		},
		{
			name:  "drops script and style",
			input: `<style>.x{color:red}</style><script>alert(1)</script><p>Content</p>`,
			want:  "Content",
		},
		{
			name:  "drops tracking pixels",
			input: `<img src="https://track.example.com/px.gif" width="1" height="1"><p>Body</p>`,
			want:  "Body",
		},
		{
			name:  "block elements become line breaks",
			input: `<div>First</div><div>Second</div>`,
			want:  "First\nSecond",
		},
		{
			name:  "br becomes line break",
			input: `line one<br/>line two`,
			want:  "line one\nline two",
		},
		{
			name:  "decodes entities",
			input: `<p>Fish &amp; Chips &mdash; &pound;5</p>`,
			want:  "Fish & Chips — £5",
		},
		{
			name:  "dedupes consecutive identical lines",
			input: `<p>Big Headline</p><p>Big Headline</p><p>Body text</p>`,
			want:  "Big Headline\nBody text",
		},
		{
			name:  "keeps non-consecutive duplicates",
			input: `<p>Read more</p><p>Story</p><p>Read more</p>`,
			want:  "Read more\nStory\nRead more",
		},
		{
			name:  "collapses whitespace",
			input: "<p>spaced    out\t\ttext</p>",
			want:  "spaced out text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToText(tt.input); got != tt.want {
				t.Errorf("ToText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToText_RealisticNewsletter(t *testing.T) {
	input := `<!DOCTYPE html><html><head><title>Issue 42</title>
<style>body{font:sans-serif}</style></head>
<body>
<!-- preheader -->
<div class="header"><h1>Alpha Weekly</h1></div>
<table><tr><td>LegalCo raised $40M to expand its discovery platform.</td></tr>
<tr><td>Read more at <a href="https://example.com/story">our site</a>.</td></tr></table>
</body></html>`

	got := ToText(input)
	if !strings.Contains(got, "Alpha Weekly") {
		t.Errorf("missing heading in %q", got)
	}
	if !strings.Contains(got, "LegalCo raised $40M") {
		t.Errorf("missing body text in %q", got)
	}
	if strings.Contains(got, "font:sans-serif") || strings.Contains(got, "preheader") {
		t.Errorf("style or comment leaked into %q", got)
	}
}
