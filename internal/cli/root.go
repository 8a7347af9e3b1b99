// Package cli provides the command-line interface for the options dashboard.
package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"options-dashboard/internal/config"
	"options-dashboard/internal/logging"
	"options-dashboard/internal/render"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-11-22"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	ConfigDir string

	// LogOut overrides where the console logger writes. nil means stderr.
	LogOut io.Writer
}

// NewRootCmd creates the root command for the CLI. The configuration is
// loaded lazily so that --config is honoured and commands like version work
// without a config file.
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "F&O breakout screener and options dashboard",
		Long: `Screens NSE futures-and-options stocks for daily breakouts.

Each refresh loads the F&O symbol list, keeps the symbols the market-data
provider knows, and flags stocks trading above their 20-day EMA, above
yesterday's high or below yesterday's low. Option strikes, direction,
stop-loss and expiry are suggested for the top breakouts, and an option
chain can be shown for one symbol.

Use 'dashboard run' for the auto-refreshing view.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if dir, _ := cmd.Flags().GetString("config"); dir != "" {
				app.ConfigDir = dir
			}
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
				color.NoColor = true
			}
			if skipConfig(cmd) {
				return nil
			}
			return app.loadConfig(cmd)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/options-dashboard)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newExamplesCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	addDashboardCommands(rootCmd, app)
	addSymbolCommands(rootCmd, app)

	return rootCmd
}

// skipConfig reports whether cmd runs without a loaded configuration.
func skipConfig(cmd *cobra.Command) bool {
	switch cmd.CommandPath() {
	case "dashboard version", "dashboard config path", "dashboard examples":
		return true
	}
	return false
}

func (app *App) loadConfig(cmd *cobra.Command) error {
	if app.Config != nil {
		return nil
	}

	cfg, err := config.Load(app.ConfigDir)
	if err != nil {
		return err
	}
	app.Config = cfg

	logCfg := logging.DefaultLogConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.File = cfg.Logging.File
	logCfg.FilePath = cfg.Logging.FilePath
	logCfg.Out = app.LogOut
	app.Logger = logging.NewLoggerWithConfig(logCfg)

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logging.SetDebugLevel()
		app.Logger = app.Logger.Level(zerolog.DebugLevel)
	}

	app.Logger.Debug().Str("dir", cfg.Dir).Msg("Configuration loaded")
	return nil
}

// newOutput builds the renderer for cmd from the persistent flags.
func (app *App) newOutput(cmd *cobra.Command) *render.Output {
	jsonMode, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")

	colorEnabled := !noColor
	if app.Config != nil {
		colorEnabled = colorEnabled && app.Config.UI.ColorEnabled
	}
	return renderOutput(cmd, jsonMode, colorEnabled)
}

// renderOutput writes to cmd's stdout. Color also requires a terminal.
func renderOutput(cmd *cobra.Command, jsonMode, colorEnabled bool) *render.Output {
	return render.NewOutput(cmd.OutOrStdout(), jsonMode, colorEnabled && render.IsTerminal())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonMode, _ := cmd.Flags().GetBool("json")
			output := renderOutput(cmd, jsonMode, false)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("Options Dashboard v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate dashboard.toml.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.newOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config.Redacted())
			}
			showConfig(output, app.Config.Redacted())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.newOutput(cmd)
			dir := app.ConfigDir
			if dir == "" {
				dir = config.DefaultConfigDir()
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"path": dir})
			}
			output.Println(dir)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.newOutput(cmd)
			// Load already validated; re-run so the result is explicit.
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *render.Output, cfg *config.Config) {
	output.Bold("Symbols")
	output.Printf("  File:            %s (column %s)\n", cfg.Symbols.File, cfg.Symbols.Column)
	output.Printf("  Remote listing:  %v\n", cfg.Symbols.UseRemote)
	if cfg.Symbols.UseRemote {
		output.Printf("  Listing URL:     %s\n", cfg.Symbols.ListingURL)
	}
	output.Println()

	output.Bold("Validator")
	output.Printf("  Max retries:     %d\n", cfg.Validator.MaxRetries)
	output.Printf("  Backoff:         %s x%.2f\n", cfg.Validator.BaseDelay, cfg.Validator.BackoffFactor)
	output.Printf("  Pause:           %s - %s\n", cfg.Validator.PauseMin, cfg.Validator.PauseMax)
	output.Printf("  Cache:           %s (ttl %s)\n", cfg.Validator.CacheFile, ttlLabel(cfg))
	output.Println()

	output.Bold("Screener")
	output.Printf("  History days:    %d\n", cfg.Screener.HistoryDays)
	output.Printf("  EMA span:        %d\n", cfg.Screener.EMASpan)
	output.Printf("  Top N:           %d\n", cfg.Screener.TopN)
	output.Println()

	output.Bold("UI")
	output.Printf("  Refresh:         %s\n", cfg.UI.RefreshInterval)
	output.Printf("  Chain strikes:   %d\n", cfg.UI.ChainStrikes)
	output.Println()

	output.Bold("Notifications")
	output.Printf("  Enabled:         %v\n", cfg.Notifications.Enabled)
	output.Printf("  Webhook:         %v %s\n", cfg.Notifications.Webhook.Enabled, cfg.Notifications.Webhook.URL)
	output.Printf("  Telegram:        %v (chat %s, token %s)\n", cfg.Notifications.Telegram.Enabled,
		cfg.Notifications.Telegram.ChatID, cfg.Notifications.Telegram.BotToken)
}

func ttlLabel(cfg *config.Config) string {
	if cfg.Validator.CacheTTL == 0 {
		return "never expires"
	}
	return fmt.Sprint(cfg.Validator.CacheTTL)
}
