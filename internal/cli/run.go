package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"ibkr-trader/internal/control"
	"ibkr-trader/internal/engine"
	"ibkr-trader/internal/journal"
	"ibkr-trader/internal/metrics"
	"ibkr-trader/internal/notify"
)

func newRunCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the strategy scheduler daemon",
		Long: `Run the strategy scheduler daemon.

The daemon authenticates against the gateway, then polls once per tick for
strategy entry/exit times and operator requests. While it runs, the local
control listener accepts manual triggers and close requests.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config
			logger := app.Logger

			gw := app.newGateway()

			registry := prometheus.NewRegistry()
			m := metrics.New(registry)

			var jr journal.Journal
			if cfg.Journal.Enabled {
				sqliteJournal, err := journal.NewSQLiteJournal(cfg.Journal.Path)
				if err != nil {
					logger.Warn().Err(err).Msg("Failed to open journal, continuing without it")
				} else {
					jr = sqliteJournal
					defer sqliteJournal.Close()
				}
			}

			loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
			if err != nil {
				return err
			}

			opts := []engine.Option{engine.WithMetrics(m)}
			if jr != nil {
				opts = append(opts, engine.WithJournal(jr))
			}
			eng := engine.New(gw, cfg.Strategies, engine.Config{
				Symbol:           cfg.Gateway.Symbol,
				TickInterval:     cfg.Scheduler.TickInterval,
				PostTriggerSleep: cfg.Scheduler.PostTriggerSleep,
				Location:         loc,
			}, logger, opts...)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := eng.Start(ctx); err != nil {
				return err
			}

			// Drain the event stream; the display layer is purely a consumer.
			notifier := notify.NewMulti(notify.NewLog(logger))
			if cfg.Logging.Console {
				notifier.Add(notify.NewTerminal(cmd.OutOrStdout(), isTerminal()))
			}
			go notifier.Drain(eng.Events())

			if cfg.Control.Enabled {
				srv := control.NewServer(eng, registry, logger)
				go func() {
					if err := srv.ListenAndServe(cfg.Control.Addr); err != nil {
						logger.Error().Err(err).Msg("Control listener stopped")
					}
				}()
			}

			<-ctx.Done()
			eng.Stop()
			return nil
		},
	}
}
