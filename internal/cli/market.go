package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"kabuchart/internal/chart"
	apperrors "kabuchart/internal/errors"
	"kabuchart/internal/models"
	"kabuchart/internal/trend"
	"kabuchart/internal/viewer"
)

// addMarketCommands adds the one-shot chart and data commands.
func addMarketCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newChartCmd(app))
	rootCmd.AddCommand(newSearchCmd(app))
	rootCmd.AddCommand(newTrendCmd(app))
	rootCmd.AddCommand(newNewsCmd(app))
}

// chartJSON is the machine-readable form of a rendered chart.
type chartJSON struct {
	Symbol  string               `json:"symbol"`
	Label   string               `json:"label"`
	Points  []models.PricePoint  `json:"points"`
	Trends  trend.Trends         `json:"trends"`
	Summary []trend.MonthSummary `json:"months"`
}

// loadChart fetches symbol and installs it as the controller's chart.
func loadChart(ctx context.Context, ctrl *viewer.Controller, symbol string) (*chart.Chart, error) {
	res, err := ctrl.Fetch(ctx, ctrl.Initial(symbol))
	if err != nil {
		return nil, err
	}
	return ctrl.Apply(res)
}

// reportChartError prints the message the backend gave, or a generic
// failure line for transport and decode problems, and returns err marked
// as shown.
func reportChartError(output *Output, symbol string, err error) error {
	var apiErr *apperrors.APIError
	switch {
	case apperrors.As(err, &apiErr):
		return output.Fail(err, "%s", apiErr.Message)
	case apperrors.Is(err, apperrors.ErrNoData):
		output.Warning("%s: データがありません", symbol)
		return &reportedError{err: err}
	default:
		return output.Fail(err, "チャートを読み込めませんでした: %v", err)
	}
}

func symbolArg(app *App, args []string) string {
	if len(args) > 0 {
		return strings.TrimSpace(args[0])
	}
	return app.Config.Chart.DefaultSymbol
}

func newChartCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart [symbol]",
		Short: "Render a price chart",
		Long: `Fetch a price history and draw it as a line chart colored by monthly trend.

Without a symbol the configured default (the Nikkei 225) is drawn. A four
digit code gets the Tokyo suffix, so 7203 means 7203.T.`,
		Example: `  kabuchart chart
  kabuchart chart 7203
  kabuchart chart 6758 --width 120 --height 30
  kabuchart chart 9984 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			opts := app.chartOptions(output.ColorEnabled())
			if w, _ := cmd.Flags().GetInt("width"); w > 0 {
				opts.Width = w
			}
			if h, _ := cmd.Flags().GetInt("height"); h > 0 {
				opts.Height = h
			}

			symbol := symbolArg(app, args)
			ctrl := app.newController(opts, app.Logger)
			ch, err := loadChart(ctx, ctrl, symbol)
			if err != nil {
				return reportChartError(output, symbol, err)
			}

			if output.IsJSON() {
				return output.JSON(chartJSON{
					Symbol:  ch.Symbol(),
					Label:   ch.Label(),
					Points:  ch.Points(),
					Trends:  ch.Trends(),
					Summary: ctrl.Summaries(),
				})
			}

			output.Println(ch.Render())
			points := ch.Points()
			first, last := points[0], points[len(points)-1]
			output.Dim("期間: %s ～ %s  終値: %s",
				FormatDate(first.Date, opts.DateFormat),
				FormatDate(last.Date, opts.DateFormat),
				FormatPrice(last.Close))
			return nil
		},
	}

	cmd.Flags().Int("width", 0, "chart width in columns (default from config)")
	cmd.Flags().Int("height", 0, "chart height in rows (default from config)")

	return cmd
}

func newSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search the ticker catalog",
		Long: `Search listed tickers by securities code.

Every ticker whose code contains the query is listed in code order.
An empty query lists the featured tickers.`,
		Example: `  kabuchart search 72
  kabuchart search 6758
  kabuchart search`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			tickers, err := app.Client.Tickers(ctx)
			if err != nil {
				return output.Fail(fmt.Errorf("%w: %w", apperrors.ErrCatalogUnavailable, err),
					"銘柄一覧を読み込めませんでした: %v", err)
			}

			ctrl := app.newController(app.chartOptions(false), app.Logger)
			ctrl.SetTickers(tickers)

			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			results := ctrl.Input(query)
			if results == nil {
				results = []models.Ticker{}
			}

			if output.IsJSON() {
				return output.JSON(results)
			}

			if len(results) == 0 {
				output.Dim("該当する銘柄はありません")
				return nil
			}

			table := NewTable(output, "コード", "銘柄名")
			for _, t := range results {
				table.AddRow(output.Cyan(t.Code), t.Name)
			}
			table.Render()
			return nil
		},
	}
}

func newTrendCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "trend [symbol]",
		Short: "Show the monthly trend breakdown",
		Long: `Fetch a price history and list each calendar month with its first and
last close and the trend color the chart uses for it.`,
		Example: `  kabuchart trend
  kabuchart trend 7203
  kabuchart trend 6758 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			symbol := symbolArg(app, args)
			ctrl := app.newController(app.chartOptions(false), app.Logger)
			ch, err := loadChart(ctx, ctrl, symbol)
			if err != nil {
				return reportChartError(output, symbol, err)
			}

			summaries := ctrl.Summaries()
			if output.IsJSON() {
				return output.JSON(summaries)
			}

			output.Bold("%s", ch.Label())
			output.Println()

			table := NewTable(output, "月", "始値", "終値", "変化率", "日数", "傾向")
			for _, s := range summaries {
				table.AddRow(
					FormatMonth(s.Year, s.Month),
					FormatPrice(s.First),
					FormatPrice(s.Last),
					output.FormatChange(s.Change()),
					strconv.Itoa(s.Count),
					output.TrendLabel(s.Color),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newNewsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "news",
		Short: "Show market news",
		Example: `  kabuchart news
  kabuchart news --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			ctx, cancel := app.requestContext(cmd)
			defer cancel()

			articles, err := app.Client.News(ctx)
			if err != nil {
				return output.Fail(err, "ニュースの読み込みに失敗しました。")
			}

			if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && len(articles) > limit {
				articles = articles[:limit]
			}
			if articles == nil {
				articles = []models.NewsArticle{}
			}

			if output.IsJSON() {
				return output.JSON(articles)
			}

			if len(articles) == 0 {
				output.Dim("ニュースはありません")
				return nil
			}

			for i, a := range articles {
				if i > 0 {
					output.Println()
				}
				output.Bold("%s", a.Title)
				if a.Description != "" {
					output.Println("  " + a.Description)
				}
				output.Dim("  %s", a.URL)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 0, "maximum number of articles (0 for all)")

	return cmd
}
