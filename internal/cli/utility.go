package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"kabuchart/internal/chart"
	"kabuchart/internal/models"
	"kabuchart/internal/trend"
)

// addUtilityCommands adds data export commands.
func addUtilityCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newExportCmd(app))
}

// exportFileName derives the default output name from a backend symbol,
// e.g. ^N225 becomes N225_history.csv.
func exportFileName(symbol, format string) string {
	base := strings.TrimPrefix(symbol, "^")
	base = strings.TrimSuffix(base, ".T")
	base = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, base)
	return fmt.Sprintf("%s_history.%s", base, format)
}

// exportRow is one CSV line of an exported history.
type exportRow struct {
	Date  string `csv:"date"`
	Open  string `csv:"open"`
	High  string `csv:"high"`
	Low   string `csv:"low"`
	Close string `csv:"close"`
	Trend string `csv:"trend"`
}

// writeHistoryCSV writes one row per day with the month trend it was drawn in.
func writeHistoryCSV(w io.Writer, ch *chart.Chart) error {
	trends := ch.Trends()
	rows := make([]*exportRow, 0, len(ch.Points()))
	for _, p := range ch.Points() {
		rows = append(rows, &exportRow{
			Date:  p.Date.In(models.Tokyo).Format("2006-01-02"),
			Open:  fmt.Sprintf("%.2f", p.Open),
			High:  fmt.Sprintf("%.2f", p.High),
			Low:   fmt.Sprintf("%.2f", p.Low),
			Close: fmt.Sprintf("%.2f", p.Close),
			Trend: string(trend.ColorFor(p, trends)),
		})
	}
	return gocsv.Marshal(&rows, w)
}

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <symbol>",
		Short: "Export price history to a file",
		Long: `Fetch a price history and write it to CSV or JSON.

Each row carries the trend color of its month. Use --output - to write to
standard output.`,
		Example: `  kabuchart export 7203
  kabuchart export ^N225 --format json
  kabuchart export 6758 --output - | head`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			format, _ := cmd.Flags().GetString("format")
			format = strings.ToLower(format)
			if format != "csv" && format != "json" {
				return output.Fail(fmt.Errorf("unsupported format %q", format),
					"Unsupported format: %s (use csv or json)", format)
			}

			symbol := args[0]
			ctrl := app.newController(app.chartOptions(false), app.Logger)
			ch, err := loadChart(ctx, ctrl, symbol)
			if err != nil {
				return reportChartError(output, symbol, err)
			}

			outFile, _ := cmd.Flags().GetString("output")
			if outFile == "" {
				outFile = exportFileName(ch.Symbol(), format)
			}

			var w io.Writer = cmd.OutOrStdout()
			if outFile != "-" {
				file, err := os.Create(outFile)
				if err != nil {
					return output.Fail(err, "Failed to create file: %v", err)
				}
				defer file.Close()
				w = file
			}

			switch format {
			case "csv":
				err = writeHistoryCSV(w, ch)
			case "json":
				err = (&Output{writer: w}).JSON(chartJSON{
					Symbol:  ch.Symbol(),
					Label:   ch.Label(),
					Points:  ch.Points(),
					Trends:  ch.Trends(),
					Summary: ctrl.Summaries(),
				})
			}
			if err != nil {
				return output.Fail(err, "Failed to write %s: %v", outFile, err)
			}

			if outFile != "-" {
				if output.IsJSON() {
					return output.JSON(map[string]interface{}{
						"symbol": ch.Symbol(),
						"file":   outFile,
						"rows":   len(ch.Points()),
					})
				}
				output.Success("✓ Exported %d rows of %s to %s", len(ch.Points()), ch.Symbol(), outFile)
			}
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", "csv", "output format (csv, json)")
	cmd.Flags().StringP("output", "o", "", "output file (default <symbol>_history.<format>, - for stdout)")

	return cmd
}
