package cli

import (
	"github.com/spf13/cobra"
)

func newAuthCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Validate the gateway session",
		Long: `Validate the gateway session and resolve the account id.

The Client Portal gateway handles the actual login in the browser; this
command only confirms the trader can reach an authenticated session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			gw := app.newGateway()
			if err := gw.Authenticate(cmd.Context()); err != nil {
				return err
			}
			if out.IsJSON() {
				return out.JSON(map[string]string{"account_id": gw.AccountID()})
			}
			out.Success("Authenticated, account %s", gw.AccountID())
			return nil
		},
	}
}
