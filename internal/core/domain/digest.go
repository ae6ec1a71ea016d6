package domain

// Insight is one categorised observation attributed to a source.
type Insight struct {
	// Text is the insight itself.
	Text string `json:"text"`

	// SourceName is the newsletter the insight came from.
	SourceName string `json:"source"`
}

// SourceSummary is the per-newsletter portion of a digest.
type SourceSummary struct {
	// Summary is a 2-3 sentence summary of the newsletter.
	Summary string `json:"summary"`

	// KeyFacts are notable facts, numbers or quotes.
	KeyFacts []string `json:"key_facts"`

	// Link is a URL back to the source, if known.
	Link string `json:"link"`
}

// Digest is the structured result of extraction. It is produced once per
// batch and, after synthesis, once for the whole run. The JSON tags define
// the wire schema the model is instructed to emit.
type Digest struct {
	// ExecutiveSummary is a 3-4 sentence overview of the day.
	ExecutiveSummary string `json:"executive_summary"`

	// DomainFlags are items matching the configured topics of interest,
	// distinct from the fixed category set.
	DomainFlags []string `json:"domain_flags"`

	// Categories maps a category name from the configured set to its
	// insights, in extraction order.
	Categories map[string][]Insight `json:"categories"`

	// PerSource maps a newsletter source name to its summary.
	PerSource map[string]SourceSummary `json:"per_source"`
}

// EnsureContainers replaces nil maps and slices with empty ones so
// downstream consumers never see a nil container.
func (d *Digest) EnsureContainers() {
	if d.DomainFlags == nil {
		d.DomainFlags = []string{}
	}
	if d.Categories == nil {
		d.Categories = map[string][]Insight{}
	}
	if d.PerSource == nil {
		d.PerSource = map[string]SourceSummary{}
	}
}

// IsEmpty reports whether the digest carries no content at all.
func (d Digest) IsEmpty() bool {
	return d.ExecutiveSummary == "" &&
		len(d.DomainFlags) == 0 &&
		len(d.Categories) == 0 &&
		len(d.PerSource) == 0
}

// ActiveCategories returns the members of order that have at least one
// insight, preserving the configured order.
func (d Digest) ActiveCategories(order []string) []string {
	active := make([]string, 0, len(d.Categories))
	for _, name := range order {
		if len(d.Categories[name]) > 0 {
			active = append(active, name)
		}
	}
	return active
}

// ParseStatus records how a batch's raw model output became a Digest.
type ParseStatus string

const (
	// ParseClean means the raw output parsed without intervention.
	ParseClean ParseStatus = "parsed"

	// ParseRepaired means structural repair was needed before parsing.
	ParseRepaired ParseStatus = "repaired"

	// ParseFallback means parsing was unrecoverable and a degraded
	// record was built from the input documents instead.
	ParseFallback ParseStatus = "fallback"
)
