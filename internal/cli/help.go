package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// addHelpCommands adds help and documentation commands.
func addHelpCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newCommandsCmd(app))
	rootCmd.AddCommand(newExamplesCmd(app))
}

type helpEntry struct {
	cmd  string
	desc string
}

type helpGroup struct {
	name    string
	entries []helpEntry
}

var commandGroups = []helpGroup{
	{
		name: "Viewer",
		entries: []helpEntry{
			{"view [symbol]", "Interactive chart with search and news"},
			{"session id", "Print the terminal session id"},
			{"session reset", "Play the intro again next time"},
		},
	},
	{
		name: "Market Data",
		entries: []helpEntry{
			{"chart [symbol]", "Render a chart to the terminal"},
			{"trend [symbol]", "Monthly trend breakdown"},
			{"search [query]", "Search tickers by code"},
			{"news", "Market news"},
			{"export <symbol>", "Write price history to CSV or JSON"},
		},
	},
	{
		name: "Configuration",
		entries: []helpEntry{
			{"config show", "Show current configuration"},
			{"config path", "Show configuration directory"},
			{"config validate", "Validate configuration"},
			{"version", "Print version information"},
		},
	},
}

func newCommandsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List all commands by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)

			if output.IsJSON() {
				listing := make(map[string]map[string]string, len(commandGroups))
				for _, g := range commandGroups {
					listing[g.name] = make(map[string]string, len(g.entries))
					for _, e := range g.entries {
						listing[g.name][e.cmd] = e.desc
					}
				}
				return output.JSON(listing)
			}

			output.Bold("kabuchart Commands")
			output.Println()

			for _, g := range commandGroups {
				output.Bold("%s", g.name)
				for _, e := range g.entries {
					output.Printf("  %-18s %s\n", e.cmd, output.DimText(e.desc))
				}
				output.Println()
			}

			output.Dim("Global flags: --json --debug --no-color --config <dir> --api-url <url>")
			return nil
		},
	}
}

func newExamplesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "Show common workflow examples",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)

			output.Bold("Common Workflow Examples")
			output.Println()

			examples := []struct {
				title    string
				commands []string
			}{
				{
					title: "Browse Interactively",
					commands: []string{
						"kabuchart view                  # Nikkei 225, search, news",
						"kabuchart view 7203             # Start on Toyota",
						"kabuchart view --no-splash      # Skip the intro",
					},
				},
				{
					title: "Find a Ticker",
					commands: []string{
						"kabuchart search 72             # Codes containing 72",
						"kabuchart search                # Featured tickers",
					},
				},
				{
					title: "Charts and Trends",
					commands: []string{
						"kabuchart chart                 # Nikkei 225",
						"kabuchart chart 6758 --width 120 --height 30",
						"kabuchart trend 9984            # Month by month",
					},
				},
				{
					title: "Export Data",
					commands: []string{
						"kabuchart export 7203           # 7203_history.csv",
						"kabuchart export 日経平均 --format json --output n225.json",
						"kabuchart chart 7203 --json     # History with trends",
					},
				},
				{
					title: "Another Backend",
					commands: []string{
						"kabuchart --api-url http://localhost:8080 view",
						"KABUCHART_API_URL=http://localhost:8080 kabuchart news",
					},
				},
			}

			for _, ex := range examples {
				output.Bold("%s", ex.title)
				for _, c := range ex.commands {
					parts := strings.SplitN(c, "#", 2)
					if len(parts) == 2 {
						output.Printf("  %s %s\n", output.Cyan(strings.TrimSpace(parts[0])), output.DimText(strings.TrimSpace(parts[1])))
					} else {
						output.Printf("  %s\n", output.Cyan(c))
					}
				}
				output.Println()
			}

			return nil
		},
	}
}
