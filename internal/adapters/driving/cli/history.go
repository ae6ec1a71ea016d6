package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/adapters/driven/storage/sqlite"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived digest runs",
	RunE:  runHistory,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Maximum runs to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("open archive store: %w", err)
	}
	defer store.Close() //nolint:errcheck // best-effort cleanup

	records, err := store.List(context.Background(), historyLimit)
	if err != nil {
		return fmt.Errorf("list archived runs: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("No archived runs yet. Run 'digest run' first.")
		return nil
	}

	for _, record := range records {
		status := "ok"
		if record.Report.Degraded() {
			status = "degraded"
		}

		cmd.Printf("%s  %2d newsletters  %-8s  %s\n",
			record.Day.Format(dayFormat),
			record.Report.TotalDocuments,
			status,
			valueOrDash(record.PageURL))
	}

	return nil
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
