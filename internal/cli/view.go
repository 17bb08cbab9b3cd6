package cli

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"kabuchart/internal/config"
	"kabuchart/internal/logging"
	"kabuchart/internal/store"
	"kabuchart/internal/tui"
)

// addViewCommands adds the interactive viewer and its session commands.
func addViewCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newViewCmd(app))
	rootCmd.AddCommand(newSessionCmd(app))
}

func newViewCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [symbol]",
		Short: "Open the interactive chart viewer",
		Long: `Open the full-screen viewer.

Type part of a securities code to search, use the arrow keys to pick a
suggestion and press Enter or click it to load its chart. Moving the mouse over the
chart shows a crosshair with the nearest day's prices. Market news is
listed below the chart.`,
		Example: `  kabuchart view
  kabuchart view 7203
  kabuchart view --no-splash`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)

			// Log lines would tear the full-screen display.
			logCfg := app.Config.LogConfig()
			logCfg.Console = false
			logger := logging.WithOperation(logging.NewLoggerWithConfig(logCfg), "view")

			sessions, err := store.Open(app.Config.Session.DBPath)
			if err != nil {
				logger.Warn().Err(err).Msg("Session store unavailable, using memory")
				sessions = store.NewMemoryStore()
			}
			defer sessions.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			purgeSessions(ctx, sessions, app.Config.Session.TTL, logger)

			splash := app.Config.UI.SplashEnabled
			if noSplash, _ := cmd.Flags().GetBool("no-splash"); noSplash {
				splash = false
			}

			symbol := symbolArg(app, args)
			ctrl := app.newController(app.chartOptions(output.ColorEnabled()), logger)
			return tui.Run(ctx, tui.Options{
				Controller:    ctrl,
				Store:         sessions,
				SessionID:     store.CurrentSessionID(os.Getenv(config.EnvSession)),
				InitialSymbol: symbol,
				Splash:        splash,
				SplashDelay:   app.Config.UI.SplashDelay,
				Timeout:       app.Config.API.Timeout,
				Logger:        logger,
			})
		},
	}

	cmd.Flags().Bool("no-splash", false, "skip the intro animation")

	return cmd
}

// purgeSessions drops flags older than ttl. A zero ttl keeps everything.
func purgeSessions(ctx context.Context, s store.SessionStore, ttl time.Duration, logger zerolog.Logger) int64 {
	if ttl <= 0 {
		return 0
	}
	n, err := s.Purge(ctx, time.Now().Add(-ttl))
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to purge session flags")
		return 0
	}
	if n > 0 {
		logger.Debug().Int64("purged", n).Dur("ttl", ttl).Msg("Purged expired session flags")
	}
	return n
}

func newSessionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Viewer session management",
		Long: `Inspect and reset the per-terminal session state of the viewer.

The intro animation plays once per terminal session. Set ` + config.EnvSession + `
to pin the session id.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "id",
		Short: "Print the current session id",
		Run: func(cmd *cobra.Command, args []string) {
			output := app.output(cmd)
			id := store.CurrentSessionID(os.Getenv(config.EnvSession))
			if output.IsJSON() {
				output.JSON(map[string]string{"session": id})
			} else {
				output.Println(id)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Forget every session so the intro plays again",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			sessions, err := store.Open(app.Config.Session.DBPath)
			if err != nil {
				return output.Fail(err, "Failed to open session store: %v", err)
			}
			defer sessions.Close()

			n, err := sessions.Purge(cmd.Context(), time.Now().Add(time.Second))
			if err != nil {
				return output.Fail(err, "Failed to reset sessions: %v", err)
			}
			if output.IsJSON() {
				return output.JSON(map[string]int64{"purged": n})
			}
			output.Success("✓ Removed %d session flag(s)", n)
			return nil
		},
	})

	return cmd
}
