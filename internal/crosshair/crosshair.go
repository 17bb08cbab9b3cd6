// Package crosshair tracks the data point nearest to the pointer and
// produces the dashed guide lines drawn over the chart.
//
// The pointer handler updates State; the draw step reads it. Neither needs a
// live surface, so both are tested on plain coordinates.
package crosshair

import "math"

// Position is a point in chart pixel space.
type Position struct {
	X, Y float64
}

// Area is the plotting rectangle. Top < Bottom in pixel space.
type Area struct {
	Top, Bottom, Left, Right float64
}

// Contains reports whether p lies inside the area, edges included.
func (a Area) Contains(p Position) bool {
	return p.X >= a.Left && p.X <= a.Right && p.Y >= a.Top && p.Y <= a.Bottom
}

// Element is a plotted data point.
type Element struct {
	Index int
	X, Y  float64
}

// NoPoint is the ActivePointKey of an inactive state.
const NoPoint = -1

// State is the crosshair render state.
type State struct {
	ActivePointKey int
	Pixel          Position
	Active         bool
}

// Inactive returns the cleared state.
func Inactive() State {
	return State{ActivePointKey: NoPoint}
}

// Tracker owns the crosshair state for one chart.
type Tracker struct {
	state State
}

// NewTracker returns a tracker with no active point.
func NewTracker() *Tracker {
	return &Tracker{state: Inactive()}
}

// State returns the current render state.
func (t *Tracker) State() State {
	return t.state
}

// PointerMove snaps the crosshair to the element nearest the pointer, on both
// axes and without requiring the pointer to touch it. It reports whether the
// state changed and a redraw is due.
func (t *Tracker) PointerMove(p Position, elements []Element) bool {
	next := Inactive()
	if el, ok := Nearest(p, elements); ok {
		next = State{
			ActivePointKey: el.Index,
			Pixel:          Position{X: el.X, Y: el.Y},
			Active:         true,
		}
	}
	changed := next != t.state
	t.state = next
	return changed
}

// PointerOut clears the crosshair. It reports whether a redraw is due.
func (t *Tracker) PointerOut() bool {
	changed := t.state.Active
	t.state = Inactive()
	return changed
}

// Nearest returns the element closest to p. Ties keep the earlier element.
func Nearest(p Position, elements []Element) (Element, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, el := range elements {
		d := math.Hypot(el.X-p.X, el.Y-p.Y)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return Element{}, false
	}
	return elements[best], true
}

// Line is a straight guide line.
type Line struct {
	X1, Y1, X2, Y2 float64
}

// Vertical reports whether the line is vertical.
func (l Line) Vertical() bool {
	return l.X1 == l.X2
}

// Style of the guide lines.
var Style = struct {
	Width float64
	Color string
	Dash  [2]float64
}{
	Width: 1,
	Color: "rgba(102, 102, 102, 0.7)",
	Dash:  [2]float64{6, 6},
}

// Draw returns the guide lines for s: a vertical line through the active
// point spanning the area height and a horizontal one spanning its width.
// Nothing is drawn when s is inactive or the point falls outside the area.
func Draw(s State, area Area) []Line {
	if !s.Active || !area.Contains(s.Pixel) {
		return nil
	}
	return []Line{
		{X1: s.Pixel.X, Y1: area.Top, X2: s.Pixel.X, Y2: area.Bottom},
		{X1: area.Left, Y1: s.Pixel.Y, X2: area.Right, Y2: s.Pixel.Y},
	}
}

// Dashed reports whether offset along a line falls on a dash rather than a gap.
func Dashed(offset float64) bool {
	period := Style.Dash[0] + Style.Dash[1]
	if period <= 0 {
		return true
	}
	return math.Mod(math.Abs(offset), period) < Style.Dash[0]
}
