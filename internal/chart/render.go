package chart

import (
	"math"
	"strings"

	"github.com/fatih/color"

	"kabuchart/internal/crosshair"
	"kabuchart/internal/models"
	"kabuchart/internal/trend"
)

type cellKind int

const (
	cellEmpty cellKind = iota
	cellFill
	cellGuide
	cellLine
	cellPoint
)

type cell struct {
	ch    rune
	kind  cellKind
	color trend.TrendColor
}

var trendAttrs = map[trend.TrendColor]color.Attribute{
	trend.Up:      color.FgGreen,
	trend.Down:    color.FgRed,
	trend.Neutral: color.FgWhite,
}

// painter colors text unless color output is off.
type painter struct {
	enabled bool
	cache   map[string]*color.Color
}

func newPainter(enabled bool) *painter {
	return &painter{enabled: enabled, cache: make(map[string]*color.Color)}
}

func (p *painter) paint(kind cellKind, tc trend.TrendColor, s string) string {
	if !p.enabled || kind == cellEmpty {
		return s
	}
	key := string(tc)
	var attrs []color.Attribute
	switch kind {
	case cellGuide:
		key = "guide"
		attrs = []color.Attribute{color.FgHiBlack}
	case cellFill:
		key += "/fill"
		attrs = []color.Attribute{trendAttrs[tc], color.Faint}
	case cellPoint:
		key += "/point"
		attrs = []color.Attribute{trendAttrs[tc], color.Bold}
	default:
		attrs = []color.Attribute{trendAttrs[tc]}
	}
	c, ok := p.cache[key]
	if !ok {
		c = color.New(attrs...)
		c.EnableColor()
		p.cache[key] = c
	}
	return c.Sprint(s)
}

// shade maps fill opacity to a block character.
func shade(alpha float64) rune {
	switch {
	case alpha > 0.33:
		return '▒'
	case alpha > 0.15:
		return '░'
	case alpha > 0.05:
		return '·'
	default:
		return ' '
	}
}

// Render draws the chart: title, plot with y labels, x axis and month
// labels, followed by the tooltip of the crosshair point when active.
func (c *Chart) Render() string {
	if c.destroyed {
		return ""
	}

	grid := c.plot()
	c.overlayCrosshair(grid)

	p := newPainter(c.opts.Color)
	var b strings.Builder

	b.WriteString(c.series.Label)
	b.WriteByte('\n')

	mid := (c.rows - 1) / 2
	for r := 0; r < c.rows; r++ {
		label, tick := "", "│"
		switch r {
		case 0:
			label, tick = formatPrice(c.max), "┤"
		case c.rows - 1:
			label, tick = formatPrice(c.min), "┤"
		case mid:
			label, tick = formatPrice((c.max+c.min)/2), "┤"
		}
		b.WriteString(strings.Repeat(" ", c.labelWidth-len(label)))
		b.WriteString(label)
		b.WriteByte(' ')
		b.WriteString(tick)
		writeRow(&b, p, grid[r])
		b.WriteByte('\n')
	}

	b.WriteString(strings.Repeat(" ", c.labelWidth+1))
	b.WriteString("└")
	b.WriteString(strings.Repeat("─", c.cols))
	b.WriteByte('\n')
	b.WriteString(c.monthLabels())

	if s := c.tracker.State(); s.Active {
		b.WriteByte('\n')
		b.WriteString(strings.Repeat(" ", c.labelWidth+2))
		b.WriteString(strings.Join(c.Tooltip(s.ActivePointKey), "  "))
	}
	return b.String()
}

// writeRow writes cells grouping runs of the same style into one escape.
func writeRow(b *strings.Builder, p *painter, row []cell) {
	var run strings.Builder
	flush := func(kind cellKind, tc trend.TrendColor) {
		if run.Len() > 0 {
			b.WriteString(p.paint(kind, tc, run.String()))
			run.Reset()
		}
	}
	for i, cl := range row {
		if i > 0 && (cl.kind != row[i-1].kind || cl.color != row[i-1].color) {
			flush(row[i-1].kind, row[i-1].color)
		}
		run.WriteRune(cl.ch)
	}
	if len(row) > 0 {
		flush(row[len(row)-1].kind, row[len(row)-1].color)
	}
}

// plot rasterizes the line and its fill.
func (c *Chart) plot() [][]cell {
	grid := make([][]cell, c.rows)
	for r := range grid {
		grid[r] = make([]cell, c.cols)
		for col := range grid[r] {
			grid[r][col] = cell{ch: ' '}
		}
	}

	lo := make([]int, c.cols)
	hi := make([]int, c.cols)
	colors := make([]trend.TrendColor, c.cols)
	fills := make([]trend.Gradient, c.cols)
	for i := range lo {
		lo[i], hi[i] = -1, -1
	}

	mark := func(col int, y float64, tc trend.TrendColor, fill trend.Gradient) {
		if col < 0 || col >= c.cols {
			return
		}
		r := clampRow(int(math.Round(y)), c.rows)
		if lo[col] < 0 || r < lo[col] {
			lo[col] = r
		}
		if hi[col] < 0 || r > hi[col] {
			hi[col] = r
		}
		colors[col] = tc
		fills[col] = fill
	}

	if len(c.styles) == 0 {
		el := c.elements[0]
		tc := trend.ColorFor(c.series.Points[0], c.trends)
		mark(int(math.Round(el.X/CellWidth)), el.Y/CellHeight, tc, trend.FillFor(tc))
	}

	for _, s := range c.styles {
		a, z := c.elements[s.From], c.elements[s.To]
		ax, zx := a.X/CellWidth, z.X/CellWidth
		yAt := func(x float64) float64 {
			if zx == ax {
				return a.Y / CellHeight
			}
			t := (x - ax) / (zx - ax)
			return (a.Y + (z.Y-a.Y)*t) / CellHeight
		}
		for col := int(math.Round(ax)); col <= int(math.Round(zx)); col++ {
			x := float64(col)
			mark(col, yAt(math.Max(x-0.5, ax)), s.Color, s.Fill)
			mark(col, yAt(math.Min(x+0.5, zx)), s.Color, s.Fill)
		}
	}

	for col := 0; col < c.cols; col++ {
		if lo[col] < 0 {
			continue
		}
		ch := '─'
		if hi[col] > lo[col] {
			ch = '│'
		}
		for r := lo[col]; r <= hi[col]; r++ {
			grid[r][col] = cell{ch: ch, kind: cellLine, color: colors[col]}
		}
		depth := c.rows - hi[col]
		for r := hi[col] + 1; r < c.rows; r++ {
			frac := float64(r-hi[col]) / float64(depth)
			if ch := shade(fills[col].At(frac).A); ch != ' ' {
				grid[r][col] = cell{ch: ch, kind: cellFill, color: colors[col]}
			}
		}
	}

	// Mark data points when they are sparse enough to tell apart.
	if len(c.elements) <= c.cols/2 {
		for _, el := range c.elements {
			col := int(math.Round(el.X / CellWidth))
			r := clampRow(int(math.Round(el.Y/CellHeight)), c.rows)
			grid[r][col] = cell{ch: '•', kind: cellPoint, color: trend.ColorFor(c.series.Points[el.Index], c.trends)}
		}
	}

	return grid
}

// overlayCrosshair draws the dashed guides on empty and fill cells and marks
// the active point.
func (c *Chart) overlayCrosshair(grid [][]cell) {
	s := c.tracker.State()
	lines := crosshair.Draw(s, c.Area())
	if len(lines) == 0 {
		return
	}

	guide := func(r, col int, ch rune) {
		cl := grid[r][col]
		switch cl.kind {
		case cellEmpty, cellFill:
			grid[r][col] = cell{ch: ch, kind: cellGuide}
		case cellGuide:
			grid[r][col] = cell{ch: '┼', kind: cellGuide}
		}
	}

	for _, l := range lines {
		if l.Vertical() {
			col := int(math.Round(l.X1 / CellWidth))
			for r := 0; r < c.rows; r++ {
				if crosshair.Dashed(float64(r)*CellHeight - l.Y1) {
					guide(r, col, '│')
				}
			}
			continue
		}
		r := clampRow(int(math.Round(l.Y1/CellHeight)), c.rows)
		for col := 0; col < c.cols; col++ {
			if crosshair.Dashed(float64(col)*CellWidth - l.X1) {
				guide(r, col, '─')
			}
		}
	}

	col := int(math.Round(s.Pixel.X / CellWidth))
	r := clampRow(int(math.Round(s.Pixel.Y/CellHeight)), c.rows)
	tc := trend.ColorFor(c.series.Points[s.ActivePointKey], c.trends)
	grid[r][col] = cell{ch: '◆', kind: cellPoint, color: tc}
}

// monthLabels writes "2006/01" under the first point of each month where
// it fits without overlapping the previous label.
func (c *Chart) monthLabels() string {
	line := []rune(strings.Repeat(" ", c.labelWidth+2+c.cols))
	offset := c.labelWidth + 2
	next := 0
	prevKey := ""
	for i, p := range c.series.Points {
		key := trend.MonthKey(p.Date)
		if key == prevKey {
			continue
		}
		prevKey = key
		col := int(math.Round(c.elements[i].X / CellWidth))
		label := p.Date.In(models.Tokyo).Format("2006/01")
		if col < next || col+len(label) > c.cols {
			continue
		}
		copy(line[offset+col:], []rune(label))
		next = col + len(label) + 1
	}
	return strings.TrimRight(string(line), " ")
}

func clampRow(r, rows int) int {
	if r < 0 {
		return 0
	}
	if r >= rows {
		return rows - 1
	}
	return r
}
