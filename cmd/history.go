package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/zelena-gryadka/gryadka/internal/output"
)

var (
	historyOutputFormat string
	historyLimit        int
	historyOlderThan    time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear recent searches",
}

var historyListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recent searches, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStorage(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to open local database: %w", err)
		}
		defer func() { _ = db.Close() }()

		limit := historyLimit
		if limit <= 0 {
			limit = cfg.History.Limit
		}

		entries, err := db.SearchHistory(cmd.Context(), limit)
		if err != nil {
			return err
		}

		output.SetFormat(historyOutputFormat)

		return output.DisplayHistory(cmd.OutOrStdout(), entries, historyOutputFormat)
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget recorded searches",
	Long: `Forget every recorded search, or with --older-than only those not used
within that duration (for example --older-than 720h).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStorage(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to open local database: %w", err)
		}
		defer func() { _ = db.Close() }()

		removed, err := clearHistory(cmd.Context(), db, historyOlderThan)
		if err != nil {
			return err
		}

		pterm.Success.Printfln("Removed %d search(es)", removed)

		return nil
	},
}

type historyCleaner interface {
	CleanSearchHistory(ctx context.Context, maxAge time.Duration) (int64, error)
	ClearSearchHistory(ctx context.Context) (int64, error)
}

// clearHistory removes searches idle for longer than olderThan, or all of them when it is zero.
func clearHistory(ctx context.Context, db historyCleaner, olderThan time.Duration) (int64, error) {
	if olderThan < 0 {
		return 0, fmt.Errorf("--older-than must be positive, got %s", olderThan)
	}

	if olderThan == 0 {
		return db.ClearSearchHistory(ctx)
	}

	return db.CleanSearchHistory(ctx, olderThan)
}

func init() {
	historyListCmd.Flags().StringVarP(&historyOutputFormat, "output", "o",
		output.DefaultFormat(output.FormatTable, []string{output.FormatTable, output.FormatJSON}),
		"Output format: table, json")
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Entries to show (default history.limit)")

	historyClearCmd.Flags().DurationVar(&historyOlderThan, "older-than", 0, "Only forget searches not used within this long")

	historyCmd.AddCommand(historyListCmd, historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
