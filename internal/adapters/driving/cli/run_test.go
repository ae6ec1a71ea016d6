package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/adapters/driven/config/file"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/ports/driven"
)

func TestResolveDay_DefaultsToYesterday(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	day, err := resolveDay("", false, now)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), day)
}

func TestResolveDay_Today(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	day, err := resolveDay("", true, now)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), day)
}

func TestResolveDay_ExplicitDate(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	day, err := resolveDay("2026-01-02", false, now)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), day)
}

func TestResolveDay_DateAndTodayConflict(t *testing.T) {
	_, err := resolveDay("2026-01-02", true, time.Now())

	assert.Error(t, err)
}

func TestResolveDay_InvalidDate(t *testing.T) {
	_, err := resolveDay("02/01/2026", false, time.Now())

	assert.ErrorContains(t, err, "YYYY-MM-DD")
}

func newTestConfig(t *testing.T) driven.ConfigStore {
	t.Helper()
	store, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestLLMSettingsFrom_Defaults(t *testing.T) {
	cfg := newTestConfig(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	settings := llmSettingsFrom(cfg)

	assert.Equal(t, domain.AIProviderAnthropic, settings.Provider)
	assert.Equal(t, "sk-test", settings.APIKey)
	assert.True(t, settings.IsConfigured())
}

func TestLLMSettingsFrom_ConfiguredProvider(t *testing.T) {
	cfg := newTestConfig(t)
	require.NoError(t, cfg.Set(driven.ConfigLLMProvider, "ollama"))
	require.NoError(t, cfg.Set(driven.ConfigLLMModel, "llama3.2"))

	settings := llmSettingsFrom(cfg)

	assert.Equal(t, domain.AIProviderOllama, settings.Provider)
	assert.Equal(t, "llama3.2", settings.Model)
	assert.True(t, settings.IsConfigured())
}

func TestGmailConfigFrom_DefaultPaths(t *testing.T) {
	cfg := newTestConfig(t)

	gc := gmailConfigFrom(cfg)

	configDir := filepath.Dir(cfg.Path())
	assert.Equal(t, filepath.Join(configDir, "credentials.json"), gc.CredentialsPath)
	assert.Equal(t, filepath.Join(configDir, "token.json"), gc.TokenPath)
}

func TestGmailConfigFrom_ConfiguredPaths(t *testing.T) {
	cfg := newTestConfig(t)
	require.NoError(t, cfg.Set(driven.ConfigGmailLabel, "Briefings"))
	require.NoError(t, cfg.Set(driven.ConfigGmailCredentials, "/tmp/creds.json"))
	require.NoError(t, cfg.Set(driven.ConfigMaxNewsletters, 5))

	gc := gmailConfigFrom(cfg)

	assert.Equal(t, "Briefings", gc.Label)
	assert.Equal(t, "/tmp/creds.json", gc.CredentialsPath)
	assert.Equal(t, 5, gc.MaxNewsletters)
}

func TestNotionPublisherFrom_Unconfigured(t *testing.T) {
	cfg := newTestConfig(t)
	t.Setenv("NOTION_API_KEY", "")

	publisher, err := notionPublisherFrom(cfg)

	require.NoError(t, err)
	assert.Nil(t, publisher)
}

func TestNotionPublisherFrom_Configured(t *testing.T) {
	cfg := newTestConfig(t)
	require.NoError(t, cfg.Set(driven.ConfigNotionDatabase, "db-123"))
	t.Setenv("NOTION_API_KEY", "secret-token")

	publisher, err := notionPublisherFrom(cfg)

	require.NoError(t, err)
	assert.NotNil(t, publisher)
}
