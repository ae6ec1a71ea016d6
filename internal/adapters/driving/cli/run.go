package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/adapters/driven/ai"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/adapters/driven/config/file"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/adapters/driven/publish/notion"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/adapters/driven/storage/sqlite"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/connectors/google/gmail"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/ports/driven"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/ports/driving"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/services"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/logger"
)

const dayFormat = "2006-01-02"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, summarise and publish one day's digest",
	Long: `Runs the full pipeline for a single day: fetch newsletters from the
configured Gmail label, summarise them into a categorised briefing, publish
the result to Notion, and archive the run locally.

Without flags the digest covers yesterday, matching an overnight schedule.

Examples:
  digest run                      # yesterday's newsletters
  digest run --today              # today's so far
  digest run --date 2026-03-14    # a specific day
  digest run --dry-run            # summarise only, skip Notion`,
	RunE: runRun,
}

// Flags for run.
var (
	runDate      string
	runToday     bool
	runDryRun    bool
	runNoPublish bool
)

func init() {
	runCmd.Flags().StringVar(&runDate, "date", "", "Day to digest (YYYY-MM-DD)")
	runCmd.Flags().BoolVar(&runToday, "today", false, "Digest today instead of yesterday")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false,
		"Fetch and summarise but skip publishing and archiving")
	runCmd.Flags().BoolVar(&runNoPublish, "no-publish", false,
		"Archive locally but skip the Notion publish")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	day, err := resolveDay(runDate, runToday, time.Now())
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// LLM first: a misconfigured provider should fail before any fetching.
	llm, err := ai.CreateAndValidateLLMService(llmSettingsFrom(cfg))
	if err != nil {
		return err
	}
	defer llm.Close()

	fetcher, err := gmail.NewFetcher(ctx, gmailConfigFrom(cfg))
	if err != nil {
		return fmt.Errorf("gmail: %w", err)
	}
	defer fetcher.Close() //nolint:errcheck // best-effort cleanup

	pipeline := services.NewPipeline(llm, pipelineConfigFrom(cfg))

	var publisher driven.Publisher
	if !runDryRun && !runNoPublish {
		publisher, err = notionPublisherFrom(cfg)
		if err != nil {
			return err
		}
		if publisher == nil {
			cmd.Println("Notion not configured (notion.database_id / NOTION_API_KEY), skipping publish.")
		}
	}

	var store driven.DigestStore
	if !runDryRun {
		s, err := sqlite.NewStore("")
		if err != nil {
			logger.Warn("opening archive store failed, runs will not be recorded: %v", err)
		} else {
			store = s
			defer s.Close() //nolint:errcheck // best-effort cleanup
		}
	}

	svc := services.NewDigestService(fetcher, pipeline, publisher, store)

	cmd.Printf("Digesting newsletters for %s...\n", day.Format(dayFormat))
	result, err := svc.Run(ctx, day, driving.RunOptions{DryRun: runDryRun})
	if errors.Is(err, domain.ErrNothingToSummarise) {
		cmd.Printf("No newsletters found for %s.\n", day.Format(dayFormat))
		return nil
	}
	if err != nil {
		return err
	}

	cmd.Println()
	cmd.Println(renderDigest(result.Digest, result.Report, isTerminal(os.Stdout)))
	cmd.Println(renderReport(result.Report))

	if result.PageURL != "" {
		cmd.Printf("\nPublished: %s\n", result.PageURL)
	}

	if runDryRun {
		path, err := writeDigestJSON(result, day)
		if err != nil {
			logger.Warn("writing dry-run digest failed: %v", err)
		} else {
			cmd.Printf("\nDry run: digest written to %s\n", path)
		}
	}

	return nil
}

// resolveDay picks the day a run covers. Explicit --date wins, --today
// selects the current day, and the default is yesterday so an overnight
// schedule captures a complete day of mail.
func resolveDay(date string, today bool, now time.Time) (time.Time, error) {
	if date != "" && today {
		return time.Time{}, errors.New("--date and --today are mutually exclusive")
	}
	if date != "" {
		day, err := time.ParseInLocation(dayFormat, date, now.Location())
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --date %q, want YYYY-MM-DD", date)
		}
		return day, nil
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if today {
		return day, nil
	}
	return day.AddDate(0, 0, -1), nil
}

// llmSettingsFrom builds provider settings from config plus the
// ANTHROPIC_API_KEY environment variable.
func llmSettingsFrom(cfg driven.ConfigStore) *domain.LLMSettings {
	provider := cfg.GetString(driven.ConfigLLMProvider)
	if provider == "" {
		provider = domain.AIProviderAnthropic.String()
	}
	return &domain.LLMSettings{
		Provider: domain.AIProvider(provider),
		Model:    cfg.GetString(driven.ConfigLLMModel),
		BaseURL:  cfg.GetString(driven.ConfigLLMBaseURL),
		APIKey:   os.Getenv("ANTHROPIC_API_KEY"),
	}
}

// gmailConfigFrom builds the fetcher configuration. Credential paths
// default to files next to the config file.
func gmailConfigFrom(cfg driven.ConfigStore) gmail.Config {
	configDir := filepath.Dir(cfg.Path())

	credentials := cfg.GetString(driven.ConfigGmailCredentials)
	if credentials == "" {
		credentials = filepath.Join(configDir, "credentials.json")
	}
	token := cfg.GetString(driven.ConfigGmailToken)
	if token == "" {
		token = filepath.Join(configDir, "token.json")
	}

	return gmail.Config{
		Label:           cfg.GetString(driven.ConfigGmailLabel),
		CredentialsPath: credentials,
		TokenPath:       token,
		MaxNewsletters:  cfg.GetInt(driven.ConfigMaxNewsletters),
	}
}

// pipelineConfigFrom builds pipeline tuning from config; zero values fall
// back to the pipeline defaults.
func pipelineConfigFrom(cfg driven.ConfigStore) services.PipelineConfig {
	pc := services.PipelineConfig{
		Categories:     domain.Categories(cfg.GetStringSlice(driven.ConfigCategories)),
		FlagRules:      cfg.GetString(driven.ConfigFlagRules),
		MaxInputTokens: cfg.GetInt(driven.ConfigMaxInputTokens),
	}

	promptDir := filepath.Join(filepath.Dir(cfg.Path()), "prompts")
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		logger.Warn("opening prompt directory failed, using built-in prompts: %v", err)
	} else {
		pc.Prompts = prompts
	}

	return pc
}

// notionPublisherFrom returns a publisher when Notion is fully configured,
// or nil when the database ID or API key is absent.
func notionPublisherFrom(cfg driven.ConfigStore) (driven.Publisher, error) {
	databaseID := cfg.GetString(driven.ConfigNotionDatabase)
	apiKey := os.Getenv("NOTION_API_KEY")
	if databaseID == "" || apiKey == "" {
		return nil, nil
	}

	categories := domain.Categories(cfg.GetStringSlice(driven.ConfigCategories))
	if len(categories) == 0 {
		categories = domain.DefaultCategories()
	}

	publisher, err := notion.NewPublisher(notion.Config{
		APIKey:     apiKey,
		DatabaseID: databaseID,
		Categories: categories,
	})
	if err != nil {
		return nil, fmt.Errorf("notion: %w", err)
	}
	return publisher, nil
}

// writeDigestJSON saves a dry-run result beside the archive a real run
// would have produced.
func writeDigestJSON(result *driving.RunResult, day time.Time) (string, error) {
	data, err := json.MarshalIndent(result.Digest, "", "  ")
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf("digest-%s.json", day.Format(dayFormat))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}
