// Package cli provides the command-line interface for the trading application.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ibkr-trader/internal/config"
	"ibkr-trader/internal/gateway"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "trader",
		Short: "IBKR Calendar Trader - automated SPX calendar-spread trading",
		Long: `IBKR Calendar Trader automates entry, monitoring, and exit of calendar-spread
option strategies against the IBKR Client Portal gateway.

The daemon ('trader run') polls strategy entry/exit times and places spread,
take-profit, and close orders. Manual triggers and close requests reach a
running daemon through its local control listener.

Use 'trader help <command>' for more information about a command.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")

	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newAuthCmd(app))
	addStrategyCommands(rootCmd, app)
	addControlCommands(rootCmd, app)
	rootCmd.AddCommand(newJournalCmd(app))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// newGateway constructs the configured gateway client.
func (a *App) newGateway() gateway.Client {
	if a.Config.IsPaperMode() {
		a.Logger.Info().Msg("Paper trading mode")
		return gateway.NewPaperGateway(gateway.PaperConfig{
			ReferenceStrike: a.Config.Gateway.ReferenceStrike,
		})
	}
	return gateway.NewPortalClient(gateway.PortalConfig{
		BaseURL:            a.Config.Gateway.BaseURL,
		Exchange:           a.Config.Gateway.Exchange,
		ReferenceStrike:    a.Config.Gateway.ReferenceStrike,
		Timeout:            a.Config.Gateway.Timeout,
		InsecureSkipVerify: a.Config.Gateway.InsecureSkipVerify,
		Logger:             a.Logger,
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("trader %s\n", Version)
		},
	}
}
