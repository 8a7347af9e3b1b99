package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"options-dashboard/internal/config"
	"options-dashboard/internal/dashboard"
	"options-dashboard/internal/notify"
	"options-dashboard/internal/optionchain"
	"options-dashboard/internal/render"
	"options-dashboard/internal/symbols"
)

func addDashboardCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newScreenCmd(app))
	rootCmd.AddCommand(newChainCmd(app))
}

func newRunCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Auto-refreshing dashboard",
		Long: `Run the dashboard and refresh it on a fixed interval.

The first refresh runs immediately. Later refreshes never overlap: a cycle
that is still running when the next one is due causes that tick to be
skipped. The interval must be between 10s and 300s.

While running, type a symbol and press Enter to show its option chain from
the next refresh on; a line with just "-" hides the chain. A missing symbol
file or column stops the dashboard with an error.`,
		Example: `  dashboard run
  dashboard run --interval 30s
  dashboard run --chain RELIANCE`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.newOutput(cmd)

			interval := app.Config.UI.RefreshInterval
			if cmd.Flags().Changed("interval") {
				interval, _ = cmd.Flags().GetDuration("interval")
				if err := config.ValidateRefreshInterval(interval); err != nil {
					output.Error("%v", err)
					return err
				}
			}
			chain, _ := cmd.Flags().GetString("chain")

			refresher := app.refresher(app.services(), chain)
			sink := render.NewSink(output, !output.IsJSON())
			runner := dashboard.NewRunner(refresher, sink, notify.New(app.Config.Notifications), interval, app.Logger)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go dashboard.WatchSelection(ctx, cmd.InOrStdin(), refresher, app.Logger)

			return runner.Run(ctx)
		},
	}

	cmd.Flags().Duration("interval", 60*time.Second, "refresh interval (10s-300s)")
	cmd.Flags().String("chain", "", "show the option chain for this symbol")
	return cmd
}

func newScreenCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Run one refresh cycle and exit",
		Example: `  dashboard screen
  dashboard screen --chain TCS --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.newOutput(cmd)
			chain, _ := cmd.Flags().GetString("chain")

			state, err := app.refresher(app.services(), chain).Refresh(cmd.Context())
			if err != nil {
				if !output.IsJSON() {
					output.Error("Refresh failed: %v", err)
				}
				return err
			}
			return output.Dashboard(state)
		},
	}

	cmd.Flags().String("chain", "", "include the option chain for this symbol")
	return cmd
}

func newChainCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain <symbol>",
		Short: "Show the option chain for a symbol",
		Long: `Fetch the live option chain for one symbol.

Only strikes quoted on both the call and the put side are shown, for the
nearest expiry, centred on the at-the-money strike.`,
		Example: `  dashboard chain RELIANCE
  dashboard chain SBIN --strikes 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.newOutput(cmd)
			symbol := symbols.Normalize(args[0])
			if symbol == "" {
				return fmt.Errorf("invalid symbol %q", args[0])
			}

			strikes := app.Config.UI.ChainStrikes
			if cmd.Flags().Changed("strikes") {
				strikes, _ = cmd.Flags().GetInt("strikes")
			}

			viewer := optionchain.NewViewer(app.services().nse, app.Logger)
			chain, err := viewer.Chain(cmd.Context(), symbol)
			if err != nil {
				if !output.IsJSON() {
					output.Error("Option chain unavailable: %v", err)
				}
				return err
			}
			chain = optionchain.Window(chain, strikes)

			if output.IsJSON() {
				return output.JSON(chain)
			}
			output.ChainTable(chain)
			return nil
		},
	}

	cmd.Flags().Int("strikes", 10, "strikes on each side of ATM (0 = all)")
	return cmd
}
