// Package viewer holds the state of one viewing session: the ticker catalog
// and its autocomplete state, the current chart instance, the news list and
// the sequence of chart requests.
//
// A Controller is owned by a single goroutine. Fetch and FetchStartup are the
// only methods that may run elsewhere; they read no mutable state, and their
// results are handed back to the owner through Apply and ApplyStartup.
package viewer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"kabuchart/internal/autocomplete"
	"kabuchart/internal/chart"
	apperrors "kabuchart/internal/errors"
	"kabuchart/internal/logging"
	"kabuchart/internal/models"
	"kabuchart/internal/trend"
)

// DataSource is the backend as the viewer sees it.
type DataSource interface {
	Nikkei(ctx context.Context) (*models.StockHistory, error)
	Stock(ctx context.Context, symbol string) (*models.StockHistory, error)
	News(ctx context.Context) ([]models.NewsArticle, error)
	Tickers(ctx context.Context) ([]models.Ticker, error)
}

// Options configures a Controller.
type Options struct {
	Featured       []string
	MaxSuggestions int
	Chart          chart.Options
}

// Request is one issued chart request. Token increases with every request;
// only the latest token may install a chart.
type Request struct {
	Token  uint64
	Code   string // what the user confirmed, before normalization
	Symbol string // normalized backend symbol
	Index  bool   // fetch through the benchmark index endpoint
}

// Result is a fetched, not yet applied, chart request.
type Result struct {
	Request Request
	History *models.StockHistory
}

// LoadResult reports the startup loads. Failures are recorded, never fatal.
type LoadResult struct {
	Tickers    int
	News       []models.NewsArticle
	TickersErr error
	NewsErr    error
}

// Controller is the session state object.
type Controller struct {
	source  DataSource
	engine  *autocomplete.Engine
	opts    Options
	logger  zerolog.Logger
	current *chart.Chart
	news    []models.NewsArticle
	newsErr error
	seq     uint64
}

// NewController creates a controller with an empty catalog and no chart.
func NewController(source DataSource, opts Options, logger zerolog.Logger) *Controller {
	return &Controller{
		source: source,
		engine: autocomplete.NewEngine(opts.Featured, opts.MaxSuggestions),
		opts:   opts,
		logger: logging.WithComponent(logger, "viewer"),
	}
}

// Startup is the raw outcome of the startup loads.
type Startup struct {
	Tickers    []models.Ticker
	News       []models.NewsArticle
	TickersErr error
	NewsErr    error
}

// Load fetches and applies the startup data.
func (c *Controller) Load(ctx context.Context) LoadResult {
	return c.ApplyStartup(c.FetchStartup(ctx))
}

// FetchStartup fetches the ticker catalog and the news concurrently. Neither
// failure cancels the other. It does not touch controller state.
func (c *Controller) FetchStartup(ctx context.Context) Startup {
	var s Startup

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.Tickers, s.TickersErr = c.source.Tickers(gctx)
		return nil
	})
	g.Go(func() error {
		s.News, s.NewsErr = c.source.News(gctx)
		return nil
	})
	_ = g.Wait()

	return s
}

// ApplyStartup installs the startup data. A failed ticker load leaves the
// catalog empty; a failed news load is kept for display.
func (c *Controller) ApplyStartup(s Startup) LoadResult {
	tickers, tickersErr := s.Tickers, s.TickersErr
	if tickersErr != nil {
		c.logger.Warn().Err(tickersErr).Msg("Ticker list unavailable")
		tickers = nil
		tickersErr = fmt.Errorf("%w: %w", apperrors.ErrCatalogUnavailable, tickersErr)
	}
	c.engine.SetTickers(tickers)

	news, newsErr := s.News, s.NewsErr
	if newsErr != nil {
		c.logger.Warn().Err(newsErr).Msg("News unavailable")
		news = nil
	}
	c.news, c.newsErr = news, newsErr

	return LoadResult{
		Tickers:    c.engine.CatalogSize(),
		News:       news,
		TickersErr: tickersErr,
		NewsErr:    newsErr,
	}
}

// SetTickers replaces the catalog directly.
func (c *Controller) SetTickers(tickers []models.Ticker) {
	c.engine.SetTickers(tickers)
}

// News returns the loaded headlines and the load error, if any.
func (c *Controller) News() ([]models.NewsArticle, error) {
	return c.news, c.newsErr
}

// Input recomputes suggestions for the search box contents.
func (c *Controller) Input(query string) []models.Ticker {
	return c.engine.Suggest(query)
}

// Move shifts the suggestion highlight.
func (c *Controller) Move(delta int) {
	c.engine.MoveHighlight(delta)
}

// Suggestions returns the visible suggestions. Empty means the panel is hidden.
func (c *Controller) Suggestions() []models.Ticker {
	return c.engine.Suggestions()
}

// Highlight returns the highlighted suggestion index, or -1.
func (c *Controller) Highlight() int {
	return c.engine.Highlight()
}

// Select highlights suggestion i. It returns false when no such row exists.
func (c *Controller) Select(i int) bool {
	return c.engine.SetHighlight(i)
}

// Dismiss hides the suggestion panel.
func (c *Controller) Dismiss() {
	c.engine.Clear()
}

// Confirm turns the search box contents (or the highlighted suggestion) into
// a chart request. It returns false for blank input.
func (c *Controller) Confirm(input string) (Request, bool) {
	code := c.engine.ResolveHighlightOrQuery(input)
	symbol, ok := autocomplete.NormalizeSymbol(code)
	if !ok {
		return Request{}, false
	}
	c.engine.Clear()
	c.seq++
	return Request{Token: c.seq, Code: code, Symbol: symbol}, true
}

// Initial returns the startup request for symbol. The benchmark index goes
// through its dedicated endpoint.
func (c *Controller) Initial(symbol string) Request {
	c.seq++
	if symbol == "" || autocomplete.IsNikkeiAlias(symbol) {
		return Request{Token: c.seq, Code: models.NikkeiSymbol, Symbol: models.NikkeiSymbol, Index: true}
	}
	normalized, _ := autocomplete.NormalizeSymbol(symbol)
	return Request{Token: c.seq, Code: symbol, Symbol: normalized}
}

// IsCurrent reports whether req is the latest issued request.
func (c *Controller) IsCurrent(req Request) bool {
	return req.Token == c.seq
}

// Fetch loads the history for req. It does not touch controller state.
func (c *Controller) Fetch(ctx context.Context, req Request) (*Result, error) {
	var (
		h   *models.StockHistory
		err error
	)
	if req.Index {
		h, err = c.source.Nikkei(ctx)
	} else {
		h, err = c.source.Stock(ctx, req.Symbol)
	}
	if err != nil {
		return nil, err
	}
	return &Result{Request: req, History: h}, nil
}

// Apply installs the fetched chart. Results of superseded requests are
// rejected with ErrStaleResponse. On any error the current chart is kept.
func (c *Controller) Apply(res *Result) (*chart.Chart, error) {
	if !c.IsCurrent(res.Request) {
		c.logger.Debug().
			Uint64("token", res.Request.Token).
			Uint64("latest", c.seq).
			Str("symbol", res.Request.Symbol).
			Msg("Dropping stale chart response")
		return nil, apperrors.ErrStaleResponse
	}

	ch, err := chart.New(chart.Series{
		Symbol: res.History.Symbol,
		Label:  res.History.Label(),
		Points: res.History.History,
	}, c.opts.Chart)
	if err != nil {
		return nil, err
	}

	c.install(ch)
	logging.LogChartRender(c.logger, ch.Symbol(), len(ch.Points()), len(ch.Trends()))
	return ch, nil
}

// install destroys the previous chart so at most one instance is alive.
func (c *Controller) install(ch *chart.Chart) {
	if c.current != nil {
		c.current.Destroy()
	}
	c.current = ch
}

// Chart returns the current chart instance, or nil.
func (c *Controller) Chart() *chart.Chart {
	return c.current
}

// Summaries returns the month summaries of the current chart.
func (c *Controller) Summaries() []trend.MonthSummary {
	if c.current == nil {
		return nil
	}
	return trend.Summaries(c.current.Points())
}

// Resize re-lays out the current chart at a new size.
func (c *Controller) Resize(width, height int) error {
	opts := c.opts.Chart
	opts.Width, opts.Height = width, height
	if c.current == nil {
		c.opts.Chart = opts
		return nil
	}

	ch, err := c.current.Resized(width, height)
	if err != nil {
		return err
	}
	c.opts.Chart = opts
	c.install(ch)
	return nil
}

// PointerAt forwards a pointer position to the current chart's crosshair.
func (c *Controller) PointerAt(x, y int) bool {
	if c.current == nil {
		return false
	}
	return c.current.PointerAt(x, y)
}

// PointerOut clears the crosshair of the current chart.
func (c *Controller) PointerOut() bool {
	if c.current == nil {
		return false
	}
	return c.current.PointerOut()
}
