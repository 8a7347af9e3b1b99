package cli

import (
	"github.com/spf13/cobra"

	"options-dashboard/internal/models"
	"options-dashboard/internal/render"
)

func addSymbolCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "symbols",
		Short: "Symbol universe and validation cache",
	}

	cmd.AddCommand(newSymbolsListCmd(app))
	cmd.AddCommand(newSymbolsValidateCmd(app))
	cmd.AddCommand(newSymbolsClearCacheCmd(app))
	rootCmd.AddCommand(cmd)
}

func newSymbolsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Load and print the normalized symbol list",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.newOutput(cmd)

			load, err := app.loader(app.services()).Load(cmd.Context())
			if err != nil {
				if !output.IsJSON() {
					output.Error("Loading symbols failed: %v", err)
				}
				return err
			}
			if output.IsJSON() {
				return output.JSON(load)
			}

			printLoad(output, load)
			for _, s := range load.Symbols {
				output.Println(s)
			}
			return nil
		},
	}
}

func newSymbolsValidateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate symbols against the market-data provider",
		Long: `Validate the symbol list and persist the result.

A fresh cache file is reused without contacting the provider. Use --force
to discard it first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.newOutput(cmd)
			s := app.services()
			cache := app.cache(s)

			if force, _ := cmd.Flags().GetBool("force"); force {
				if err := cache.Invalidate(); err != nil {
					return err
				}
			}

			load, err := app.loader(s).Load(cmd.Context())
			if err != nil {
				if !output.IsJSON() {
					output.Error("Loading symbols failed: %v", err)
				}
				return err
			}

			res, err := cache.GetOrValidate(cmd.Context(), load.Symbols, app.Config.Validator.CacheTTL)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"load":      load,
					"validated": res.Symbols,
					"cache_hit": res.Hit,
					"cache":     cache.Path(),
					"warnings":  res.Warnings,
				})
			}

			printLoad(output, load)
			if res.Hit {
				output.Info("Using cached validation: %d symbols (%s)", len(res.Symbols), cache.Path())
			} else {
				output.Success("✓ Validated %d of %d symbols, saved to %s", len(res.Symbols), len(load.Symbols), cache.Path())
			}
			output.Warnings(res.Warnings)
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "ignore and replace the cached result")
	return cmd
}

func newSymbolsClearCacheCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Delete the persisted validation result",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.newOutput(cmd)
			cache := app.cache(app.services())
			if err := cache.Invalidate(); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"removed": cache.Path()})
			}
			output.Success("✓ Removed %s", cache.Path())
			return nil
		},
	}
}

func printLoad(output *render.Output, load models.SymbolLoad) {
	output.Info("%d symbols from %s (%s)", len(load.Symbols), load.Source, load.Status)
	if load.Degraded() {
		output.Warning("%s", load.Warning)
	}
}
