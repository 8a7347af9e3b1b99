package cli

import (
	"github.com/spf13/cobra"
)

func newExamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "Show common workflow examples",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonMode, _ := cmd.Flags().GetBool("json")
			noColor, _ := cmd.Flags().GetBool("no-color")
			output := renderOutput(cmd, jsonMode, !noColor)

			examples := []struct {
				title    string
				commands []string
			}{
				{
					title: "First Run",
					commands: []string{
						"dashboard config path             # Where dashboard.toml lives",
						"dashboard symbols list            # Check the F&O universe loads",
						"dashboard symbols validate        # Probe the provider, write the cache",
					},
				},
				{
					title: "Live Dashboard",
					commands: []string{
						"dashboard run                     # Refresh every 60s",
						"dashboard run --interval 30s      # Faster refresh (10s-300s)",
						"dashboard run --chain RELIANCE    # Include an option chain",
					},
				},
				{
					title: "Scripting",
					commands: []string{
						"dashboard screen --json           # One cycle as JSON",
						"dashboard chain SBIN --strikes 5  # Chain around ATM",
						"dashboard symbols validate --force # Rebuild a stale cache",
					},
				},
			}

			if output.IsJSON() {
				out := make(map[string][]string, len(examples))
				for _, ex := range examples {
					out[ex.title] = ex.commands
				}
				return output.JSON(out)
			}

			output.Bold("Common Workflow Examples")
			output.Println()
			for _, ex := range examples {
				output.Info("%s", ex.title)
				for _, c := range ex.commands {
					output.Printf("  %s\n", c)
				}
				output.Println()
			}
			return nil
		},
	}
}
