// Package chart renders a price series as a terminal line chart. Each line
// segment is colored by the monthly trend of its starting point and shaded
// below with a fading fill; a dashed crosshair follows the pointer.
package chart

import (
	"fmt"
	"math"

	"kabuchart/internal/crosshair"
	apperrors "kabuchart/internal/errors"
	"kabuchart/internal/models"
	"kabuchart/internal/trend"
)

// Pixel size of one terminal cell. Crosshair geometry and dash lengths are
// expressed in pixels.
const (
	CellWidth  = 3.0
	CellHeight = 6.0
)

// Minimum chart dimensions in cells.
const (
	MinWidth  = 20
	MinHeight = 6
)

// Rows used outside the plot: title, x axis, x labels.
const chromeRows = 3

// Options controls chart layout.
type Options struct {
	Width      int
	Height     int
	DateFormat string
	Color      bool
}

// DefaultOptions returns a 100x24 colored chart.
func DefaultOptions() Options {
	return Options{
		Width:      100,
		Height:     24,
		DateFormat: "2006/01/02",
		Color:      true,
	}
}

// Series is the data handed to the renderer.
type Series struct {
	Symbol string
	Label  string
	Points []models.PricePoint
}

// Chart is one rendered chart instance.
type Chart struct {
	series     Series
	opts       Options
	trends     trend.Trends
	styles     []trend.SegmentStyle
	min, max   float64
	labelWidth int
	cols, rows int
	elements   []crosshair.Element
	tracker    *crosshair.Tracker
	destroyed  bool
}

// New lays out a chart for series.
func New(series Series, opts Options) (*Chart, error) {
	if len(series.Points) == 0 {
		return nil, apperrors.Wrapf(apperrors.ErrNoData, "chart %s", series.Symbol)
	}
	if opts.Width < MinWidth || opts.Height < MinHeight {
		return nil, apperrors.NewValidationError("chart size", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
			fmt.Sprintf("must be at least %dx%d", MinWidth, MinHeight))
	}
	if opts.DateFormat == "" {
		opts.DateFormat = DefaultOptions().DateFormat
	}

	trends := trend.Segment(series.Points)
	c := &Chart{
		series:  series,
		opts:    opts,
		trends:  trends,
		styles:  trend.Styles(series.Points, trends),
		tracker: crosshair.NewTracker(),
	}
	c.layout()
	return c, nil
}

func (c *Chart) layout() {
	c.min, c.max = math.Inf(1), math.Inf(-1)
	for _, p := range c.series.Points {
		c.min = math.Min(c.min, p.Close)
		c.max = math.Max(c.max, p.Close)
	}

	c.labelWidth = len(formatPrice(c.max))
	if w := len(formatPrice(c.min)); w > c.labelWidth {
		c.labelWidth = w
	}
	c.cols = c.opts.Width - c.labelWidth - 2
	c.rows = c.opts.Height - chromeRows

	n := len(c.series.Points)
	c.elements = make([]crosshair.Element, n)
	for i, p := range c.series.Points {
		col := 0.0
		if n > 1 {
			col = float64(i) * float64(c.cols-1) / float64(n-1)
		}
		c.elements[i] = crosshair.Element{
			Index: i,
			X:     col * CellWidth,
			Y:     c.rowFor(p.Close) * CellHeight,
		}
	}
}

// rowFor maps a price to a fractional plot row, 0 at the top.
func (c *Chart) rowFor(v float64) float64 {
	if c.max == c.min {
		return float64(c.rows-1) / 2
	}
	return (c.max - v) / (c.max - c.min) * float64(c.rows-1)
}

// Symbol returns the charted symbol.
func (c *Chart) Symbol() string {
	return c.series.Symbol
}

// Label returns the dataset label.
func (c *Chart) Label() string {
	return c.series.Label
}

// Points returns the charted series.
func (c *Chart) Points() []models.PricePoint {
	return c.series.Points
}

// Trends returns the month colors computed for the series.
func (c *Chart) Trends() trend.Trends {
	return c.trends
}

// Styles returns the per-segment styles.
func (c *Chart) Styles() []trend.SegmentStyle {
	return c.styles
}

// Elements returns the plotted points in pixel space.
func (c *Chart) Elements() []crosshair.Element {
	return c.elements
}

// Area returns the plotting rectangle in pixel space.
func (c *Chart) Area() crosshair.Area {
	return crosshair.Area{
		Top:    0,
		Bottom: float64(c.rows-1) * CellHeight,
		Left:   0,
		Right:  float64(c.cols-1) * CellWidth,
	}
}

// PlotOrigin returns the terminal offset of the plot's top-left cell within
// the rendered output.
func (c *Chart) PlotOrigin() (x, y int) {
	return c.labelWidth + 2, 1
}

// Crosshair returns the current crosshair state.
func (c *Chart) Crosshair() crosshair.State {
	return c.tracker.State()
}

// PointerAt moves the crosshair for a pointer at cell (x, y) of the rendered
// output. Positions outside the plot clear it. It reports whether a redraw
// is due.
func (c *Chart) PointerAt(x, y int) bool {
	if c.destroyed {
		return false
	}
	ox, oy := c.PlotOrigin()
	col, row := x-ox, y-oy
	if col < 0 || col >= c.cols || row < 0 || row >= c.rows {
		return c.tracker.PointerOut()
	}
	p := crosshair.Position{X: float64(col) * CellWidth, Y: float64(row) * CellHeight}
	return c.tracker.PointerMove(p, c.elements)
}

// PointerOut clears the crosshair.
func (c *Chart) PointerOut() bool {
	return c.tracker.PointerOut()
}

// Tooltip returns the tooltip lines for point i: date, close, open, high, low.
func (c *Chart) Tooltip(i int) []string {
	if i < 0 || i >= len(c.series.Points) {
		return nil
	}
	p := c.series.Points[i]
	return []string{
		p.Date.In(models.Tokyo).Format(c.opts.DateFormat),
		fmt.Sprintf("終値: %.2f", p.Close),
		fmt.Sprintf("始値: %.2f", p.Open),
		fmt.Sprintf("高値: %.2f", p.High),
		fmt.Sprintf("安値: %.2f", p.Low),
	}
}

// Resized lays the same series out at a new size.
func (c *Chart) Resized(width, height int) (*Chart, error) {
	if c.destroyed {
		return nil, apperrors.Wrapf(apperrors.ErrChartDestroyed, "resize %s", c.series.Symbol)
	}
	opts := c.opts
	opts.Width, opts.Height = width, height
	return New(c.series, opts)
}

// Destroy releases the instance. A destroyed chart renders nothing.
func (c *Chart) Destroy() {
	c.destroyed = true
	c.series.Points = nil
	c.elements = nil
	c.styles = nil
	c.trends = nil
	c.tracker.PointerOut()
}

// Destroyed reports whether Destroy was called.
func (c *Chart) Destroyed() bool {
	return c.destroyed
}

func formatPrice(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
