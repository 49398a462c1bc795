package cli

import (
	"github.com/spf13/cobra"

	"ibkr-trader/internal/control"
)

// addControlCommands adds commands that talk to a running daemon's control
// listener: status, manual trigger, and close request.
func addControlCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newStatusCmd(app))
	rootCmd.AddCommand(newTriggerCmd(app))
	rootCmd.AddCommand(newCloseCmd(app))
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running daemon's status",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			client := control.NewClient(app.Config.Control.Addr)
			st, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}
			if out.IsJSON() {
				return out.JSON(st)
			}
			if st.Running {
				out.Success("Bot running")
			} else {
				out.Warn("Bot stopped")
			}
			if st.PositionOpen {
				out.Printf("  Position open: %s (order %s", st.StrategyName, st.OrderID)
				if st.TPOrderID != "" {
					out.Printf(", TP %s", st.TPOrderID)
				}
				out.Printf(")\n")
			} else {
				out.Printf("  No open position\n")
			}
			return nil
		},
	}
}

func newTriggerCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "trigger <strategy-id>",
		Short: "Manually trigger a strategy on the running daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			client := control.NewClient(app.Config.Control.Addr)
			if err := client.Trigger(cmd.Context(), args[0]); err != nil {
				return err
			}
			out.Success("Trigger requested for strategy %s", args[0])
			return nil
		},
	}
}

func newCloseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Request the running daemon close its open position",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			client := control.NewClient(app.Config.Control.Addr)
			if err := client.RequestClose(cmd.Context()); err != nil {
				return err
			}
			out.Success("Close requested")
			return nil
		},
	}
}
