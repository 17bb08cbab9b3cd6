package cli

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"kabuchart/internal/api"
	"kabuchart/internal/chart"
	"kabuchart/internal/config"
	"kabuchart/internal/logging"
	"kabuchart/internal/viewer"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-01-01"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	ConfigDir string
	Logger    zerolog.Logger
	Client    *api.Client
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config:    cfg,
		ConfigDir: config.DefaultConfigDir(),
		Logger:    logger,
	}

	rootCmd := &cobra.Command{
		Use:   "kabuchart",
		Short: "Nikkei 225 and TSE stock charts in the terminal",
		Long: `kabuchart draws price charts for the Nikkei 225 and Tokyo Stock Exchange
listings, colored month by month by trend.

Run 'kabuchart view' for the interactive viewer with ticker search,
a crosshair and market news.

Use 'kabuchart help <command>' for more information about a command.
Use 'kabuchart examples' to see common workflows.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.prepare(cmd)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/kabuchart)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("api-url", "", "backend base URL (overrides config)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	addCoreCommands(rootCmd, app)
	addMarketCommands(rootCmd, app)
	addViewCommands(rootCmd, app)
	addUtilityCommands(rootCmd, app)
	addHelpCommands(rootCmd, app)

	return rootCmd
}

// prepare applies the global flags and builds the backend client.
func (app *App) prepare(cmd *cobra.Command) error {
	if dir, _ := cmd.Flags().GetString("config"); dir != "" {
		cfg, err := config.Load(dir)
		if err != nil {
			return err
		}
		app.Config = cfg
		app.ConfigDir = dir
	}

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logging.SetDebugLevel()
		app.Logger = app.Logger.Level(zerolog.DebugLevel)
	}

	if apiURL, _ := cmd.Flags().GetString("api-url"); apiURL != "" {
		app.Config.API.BaseURL = strings.TrimRight(apiURL, "/")
		if err := app.Config.Validate(); err != nil {
			return err
		}
	}

	app.Logger = logging.WithOperation(app.Logger, cmd.Name())
	app.Client = api.NewClient(app.Config.API.BaseURL, app.Config.API.Timeout, app.Logger)
	return nil
}

// output builds an Output honoring --no-color and the configured color
// setting.
func (app *App) output(cmd *cobra.Command) *Output {
	output := NewOutput(cmd)
	noColor, _ := cmd.Flags().GetBool("no-color")
	if noColor || !app.Config.UI.ColorEnabled {
		output.DisableColor()
	}
	return output
}

// chartOptions returns the configured chart options.
func (app *App) chartOptions(color bool) chart.Options {
	opts := chart.DefaultOptions()
	opts.Width = app.Config.Chart.Width
	opts.Height = app.Config.Chart.Height
	opts.DateFormat = app.Config.UI.DateFormat
	opts.Color = color
	return opts
}

// newController creates a viewing session over the backend client.
func (app *App) newController(opts chart.Options, logger zerolog.Logger) *viewer.Controller {
	return viewer.NewController(app.Client, viewer.Options{
		Featured:       app.Config.Search.Featured,
		MaxSuggestions: app.Config.Search.MaxSuggestions,
		Chart:          opts,
	}, logger)
}

// requestContext bounds a one-shot command by the API timeout.
func (app *App) requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if app.Config.API.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, app.Config.API.Timeout)
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("kabuchart v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := app.output(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": app.ConfigDir})
			} else {
				output.Println(app.ConfigDir)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if err := app.Config.Validate(); err != nil {
				return output.Fail(err, "Configuration validation failed: %v", err)
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("API")
	output.Printf("  Base URL:        %s\n", cfg.API.BaseURL)
	output.Printf("  Timeout:         %s\n", cfg.API.Timeout)
	output.Println()

	output.Bold("Search")
	output.Printf("  Featured:        %s\n", strings.Join(cfg.Search.Featured, ", "))
	output.Printf("  Max Suggestions: %d\n", cfg.Search.MaxSuggestions)
	output.Println()

	output.Bold("Chart")
	output.Printf("  Size:            %dx%d\n", cfg.Chart.Width, cfg.Chart.Height)
	output.Printf("  Default Symbol:  %s\n", cfg.Chart.DefaultSymbol)
	output.Println()

	output.Bold("UI")
	output.Printf("  Color:           %v\n", cfg.UI.ColorEnabled)
	output.Printf("  Splash:          %v (%s)\n", cfg.UI.SplashEnabled, cfg.UI.SplashDelay)
	output.Printf("  Date Format:     %s\n", cfg.UI.DateFormat)
	output.Println()

	output.Bold("Session")
	dbPath := cfg.Session.DBPath
	if dbPath == "" {
		dbPath = "(memory)"
	}
	output.Printf("  Store:           %s\n", dbPath)
	output.Printf("  TTL:             %s\n", cfg.Session.TTL)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Logging.Level)
	output.Printf("  File:            %v\n", cfg.Logging.File)
	if cfg.Logging.File {
		output.Printf("  File Path:       %s\n", cfg.Logging.FilePath)
	}
}
