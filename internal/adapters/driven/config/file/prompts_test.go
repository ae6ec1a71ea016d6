package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/ports/driven"
)

func TestPromptStore_LoadCreatesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewPromptStore(tmpDir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptExtract)
	require.NoError(t, err)
	assert.Contains(t, prompt, "daily intelligence briefing")

	// First load materialises the editable files plus a README.
	for _, name := range []string{"extract.txt", "synthesise.txt", "README.md"} {
		_, err := os.Stat(filepath.Join(tmpDir, name))
		assert.NoError(t, err, name)
	}
}

func TestPromptStore_LoadCustomised(t *testing.T) {
	tmpDir := t.TempDir()
	custom := "my custom extraction %s %d %s %s %s"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "extract.txt"), []byte(custom+"\n"), 0600))

	store, err := NewPromptStore(tmpDir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptExtract)
	require.NoError(t, err)
	assert.Equal(t, custom, prompt, "user file wins over the embedded default, trimmed")
}

func TestPromptStore_UnknownPromptFallsThrough(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("no_such_prompt")
	assert.Error(t, err)
}

func TestPromptStore_Reload(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewPromptStore(tmpDir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptSynthesise)
	require.NoError(t, err)

	// Edit the file on disk; the cached copy masks it until Reload.
	path := filepath.Join(tmpDir, "synthesise.txt")
	require.NoError(t, os.WriteFile(path, []byte("edited %s %s"), 0600))

	cached, err := store.Load(driven.PromptSynthesise)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptSynthesise)
	require.NoError(t, err)
	assert.Equal(t, "edited %s %s", fresh)
}
