package trend

import (
	"fmt"
	"strconv"

	"kabuchart/internal/models"
)

// RGBA is a color with straight alpha in [0, 1].
type RGBA struct {
	R, G, B uint8
	A       float64
}

// CSS formats the color as rgba(r, g, b, a).
func (c RGBA) CSS() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// WithAlpha returns c with its alpha replaced.
func (c RGBA) WithAlpha(a float64) RGBA {
	c.A = a
	return c
}

// Base colors per trend.
var palette = map[TrendColor]RGBA{
	Up:      {R: 38, G: 166, B: 91, A: 1},
	Down:    {R: 234, G: 57, B: 67, A: 1},
	Neutral: {R: 150, G: 150, B: 150, A: 1},
}

// RGBA returns the opaque line color for the trend.
func (c TrendColor) RGBA() RGBA {
	if rgba, ok := palette[c]; ok {
		return rgba
	}
	return palette[Neutral]
}

// FillAlpha is the opacity of the gradient at the line.
const FillAlpha = 0.5

// Gradient is a vertical fill from Top (at the line) to Bottom (baseline).
type Gradient struct {
	Top    RGBA
	Bottom RGBA
}

// At interpolates alpha at frac in [0, 1], 0 being the top.
func (g Gradient) At(frac float64) RGBA {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	c := g.Top
	c.A = g.Top.A + (g.Bottom.A-g.Top.A)*frac
	return c
}

// FillFor returns the decorative gradient for a trend color. It ignores the
// data magnitude: the fill always fades from half opacity to transparent.
func FillFor(c TrendColor) Gradient {
	base := c.RGBA()
	return Gradient{
		Top:    base.WithAlpha(FillAlpha),
		Bottom: base.WithAlpha(0),
	}
}

// SegmentStyle styles the line segment between points From and To.
type SegmentStyle struct {
	From  int
	To    int
	Color TrendColor
	Fill  Gradient
}

// Styles returns one style per segment of history. Each segment takes the
// month color of its starting point.
func Styles(history []models.PricePoint, trends Trends) []SegmentStyle {
	if len(history) < 2 {
		return nil
	}
	styles := make([]SegmentStyle, 0, len(history)-1)
	for i := 0; i < len(history)-1; i++ {
		c := ColorFor(history[i], trends)
		styles = append(styles, SegmentStyle{
			From:  i,
			To:    i + 1,
			Color: c,
			Fill:  FillFor(c),
		})
	}
	return styles
}
