package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
// The extraction template mirrors the pipeline's built-in default so a freshly
// initialised directory changes nothing.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptExtract: `You are a senior analyst creating a daily intelligence briefing from newsletters.
Today's date: %s

You will receive the full text of %d newsletters. Your job:

1. Per-newsletter summary: for each newsletter, extract the sender name, a
   2-3 sentence summary of the most important points, key facts or numbers
   worth noting, and a link if one stands out.

2. Categorised digest: group ALL insights across all newsletters into these
   categories:
   %s

   Only include categories that have actual content. Attribute every insight
   to the newsletter it came from.

3. Executive summary: write a 3-4 sentence overview of the most important
   things from today's newsletters. What should the reader pay attention to?

4. Domain flags: specifically flag anything related to:
   %s

Respond with ONLY valid JSON (no markdown fences) in exactly this shape:
{
    "executive_summary": "...",
    "domain_flags": ["specific item 1", "specific item 2"],
    "categories": {
        "Category Name": [{"text": "insight", "source": "Newsletter Name"}]
    },
    "per_source": {
        "Newsletter Name": {"summary": "2-3 sentences", "key_facts": ["fact"], "link": "url"}
    }
}

---

Here are today's newsletters:

%s`,

	driven.PromptSynthesise: `You are combining partial daily-briefing summaries into one final executive summary.
Today's date: %s

Below are executive summaries from different batches of newsletters. Write a
single 3-4 sentence executive summary covering the most important items
across all of them. Respond with ONLY the summary text, no preamble.

Partial summaries:
%s`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.digest/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Digest Prompts

This directory contains customisable prompts used when summarising newsletters.

## Files

- ` + "`extract.txt`" + ` - Per-batch extraction instructions (JSON output)
- ` + "`synthesise.txt`" + ` - Combines per-batch summaries into one executive summary

## Customisation

Edit any file to customise LLM behaviour. Changes take effect on the next run.

## Format Placeholders

The prompts use Go fmt placeholders:
- ` + "`%s`" + ` - String (e.g., the date or newsletter text)
- ` + "`%d`" + ` - Integer (e.g., newsletter count)

Ensure customised prompts maintain placeholders in the correct positions.
The extraction prompt must keep instructing the model to answer with the
exact JSON shape, or every batch will fall back to raw previews.
`
	return os.WriteFile(path, []byte(content), 0600)
}
