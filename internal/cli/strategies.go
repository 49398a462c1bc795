package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apperrors "ibkr-trader/internal/errors"
	"ibkr-trader/pkg/utils"
)

// addStrategyCommands adds strategy inspection commands.
func addStrategyCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "strategies",
		Short: "Inspect configured strategies",
	}
	cmd.AddCommand(newStrategiesListCmd(app))
	cmd.AddCommand(newStrategiesShowCmd(app))
	rootCmd.AddCommand(cmd)
}

func newStrategiesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured strategies",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			if out.IsJSON() {
				return out.JSON(app.Config.Strategies)
			}
			out.Header("Configured strategies")
			for _, s := range app.Config.Strategies {
				out.Printf("  %-3s %-26s %-10s entry %s  exit %s  delta %.0f  TP %.0f%%\n",
					s.ID, s.Name, s.DayOfWeek, s.EntryTime, s.ExitTime, s.TargetDelta, s.TakeProfitPct)
			}
			return nil
		},
	}
}

func newStrategiesShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show strategy details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			s, ok := app.Config.StrategyByID(args[0])
			if !ok {
				return apperrors.ErrStrategyNotFound
			}
			if out.IsJSON() {
				return out.JSON(s)
			}

			out.Header(fmt.Sprintf("Strategy: %s", s.Name))
			out.Printf("  Day: %s, Entry: %s, Exit: %s\n", s.DayOfWeek, s.EntryTime, s.ExitTime)
			out.Printf("  Delta: %.0f, Near: %dd, Far: %dd\n", s.TargetDelta, s.NearDays, s.FarDays)
			out.Printf("  TP: %.0f%%, MaxCost: %s\n", s.TakeProfitPct, utils.FormatUSD(s.MaxCost))
			if len(s.VixRange) == 2 {
				out.Printf("  VIX range: [%.0f, %.0f]\n", s.VixRange[0], s.VixRange[1])
			}

			loc, err := time.LoadLocation(app.Config.Scheduler.Timezone)
			if err == nil {
				if next, ok := utils.NextOccurrence(time.Now(), s.DayOfWeek, s.EntryTime, loc); ok {
					out.Printf("  Next entry: %s\n", next.Format("Mon 02 Jan 15:04 MST"))
				}
			}
			return nil
		},
	}
}
