package gmail

// Default fetch limits, matching the summarisation pipeline's input caps.
const (
	// DefaultLabel is the Gmail label newsletters are filed under.
	DefaultLabel = "Newsletters"

	// DefaultMaxNewsletters caps how many messages one run ingests.
	DefaultMaxNewsletters = 30

	// DefaultMinBodyChars drops empty or footer-only messages.
	DefaultMinBodyChars = 50

	// DefaultBodyCap bounds a single newsletter body in characters.
	DefaultBodyCap = 15000
)

// Config holds Gmail fetcher configuration.
type Config struct {
	// Label is the Gmail label to fetch from.
	Label string

	// CredentialsPath is the OAuth client secrets file.
	CredentialsPath string

	// TokenPath is the cached OAuth token file.
	TokenPath string

	// MaxNewsletters caps messages per run. Zero uses the default.
	MaxNewsletters int

	// MinBodyChars drops messages with shorter bodies. Zero uses the default.
	MinBodyChars int

	// BodyCap truncates individual bodies. Zero uses the default.
	BodyCap int
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.Label == "" {
		c.Label = DefaultLabel
	}
	if c.MaxNewsletters <= 0 {
		c.MaxNewsletters = DefaultMaxNewsletters
	}
	if c.MinBodyChars <= 0 {
		c.MinBodyChars = DefaultMinBodyChars
	}
	if c.BodyCap <= 0 {
		c.BodyCap = DefaultBodyCap
	}
	return c
}
