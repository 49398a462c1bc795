package cli

import (
	"github.com/spf13/cobra"

	"ibkr-trader/internal/journal"
)

func newJournalCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent execution journal entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			jr, err := journal.NewSQLiteJournal(app.Config.Journal.Path)
			if err != nil {
				return err
			}
			defer jr.Close()

			entries, err := jr.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if out.IsJSON() {
				return out.JSON(entries)
			}
			if len(entries) == 0 {
				out.Printf("No journal entries\n")
				return nil
			}
			out.Header("Recent executions")
			for _, e := range entries {
				out.Printf("  %s  %-11s %-26s %-10s %s\n",
					e.Time.Format("2006-01-02 15:04:05"), e.Kind, e.StrategyName, e.OrderID, e.Message)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries to show")
	return cmd
}
