// Package autocomplete implements ticker search over the static TSE listing:
// substring suggestions, the featured list for an empty box, and the
// keyboard highlight that decides which symbol a confirm action charts.
package autocomplete

import (
	"sort"
	"strings"

	"kabuchart/internal/models"
)

// DefaultMaxSuggestions caps every suggestion list.
const DefaultMaxSuggestions = 10

// NoHighlight is the highlight index when no suggestion is selected.
const NoHighlight = -1

// Engine holds the ticker catalog and the current suggestion state.
// It is owned by a single goroutine; callers serialize access.
type Engine struct {
	catalog     []models.Ticker
	featured    map[string]struct{}
	limit       int
	suggestions []models.Ticker
	highlight   int
}

// NewEngine creates an engine with the given featured codes and cap.
// A non-positive limit falls back to DefaultMaxSuggestions.
func NewEngine(featured []string, limit int) *Engine {
	if limit <= 0 {
		limit = DefaultMaxSuggestions
	}
	set := make(map[string]struct{}, len(featured))
	for _, code := range featured {
		set[code] = struct{}{}
	}
	return &Engine{
		featured:  set,
		limit:     limit,
		highlight: NoHighlight,
	}
}

// SetTickers replaces the catalog. The slice is copied.
func (e *Engine) SetTickers(tickers []models.Ticker) {
	e.catalog = append([]models.Ticker(nil), tickers...)
}

// CatalogSize returns the number of tickers loaded.
func (e *Engine) CatalogSize() int {
	return len(e.catalog)
}

// Suggest recomputes the suggestion list for query and resets the highlight.
// An empty result means the suggestion panel should be hidden.
func (e *Engine) Suggest(query string) []models.Ticker {
	var result []models.Ticker
	if query == "" {
		result = e.featuredTickers()
	} else {
		result = e.search(query)
	}
	if len(result) > e.limit {
		result = result[:e.limit]
	}

	e.suggestions = result
	e.highlight = NoHighlight
	return append([]models.Ticker(nil), result...)
}

func (e *Engine) featuredTickers() []models.Ticker {
	var result []models.Ticker
	for _, t := range e.catalog {
		if _, ok := e.featured[t.Code]; ok {
			result = append(result, t)
		}
	}
	return result
}

func (e *Engine) search(query string) []models.Ticker {
	var result []models.Ticker
	for _, t := range e.catalog {
		if strings.Contains(t.Code, query) {
			result = append(result, t)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return lessCode(result[i].Code, result[j].Code)
	})
	return result
}

// Suggestions returns the current suggestion list.
func (e *Engine) Suggestions() []models.Ticker {
	return append([]models.Ticker(nil), e.suggestions...)
}

// Highlight returns the highlight index, NoHighlight when none.
func (e *Engine) Highlight() int {
	return e.highlight
}

// Highlighted returns the highlighted ticker, if any.
func (e *Engine) Highlighted() (models.Ticker, bool) {
	if e.highlight < 0 || e.highlight >= len(e.suggestions) {
		return models.Ticker{}, false
	}
	return e.suggestions[e.highlight], true
}

// SetHighlight highlights suggestion i and reports whether it exists.
func (e *Engine) SetHighlight(i int) bool {
	if i < 0 || i >= len(e.suggestions) {
		return false
	}
	e.highlight = i
	return true
}

// MoveHighlight advances the highlight by delta, wrapping modulo the
// suggestion count. From NoHighlight a forward move lands on the first entry
// and a backward move on the last. No-op when there are no suggestions.
func (e *Engine) MoveHighlight(delta int) {
	n := len(e.suggestions)
	if n == 0 || delta == 0 {
		return
	}

	cur := e.highlight
	if cur < 0 {
		if delta > 0 {
			cur = -1
		} else {
			cur = 0
		}
	}
	e.highlight = ((cur+delta)%n + n) % n
}

// ResolveHighlightOrQuery returns the highlighted suggestion's code, or the
// trimmed input when nothing is highlighted.
func (e *Engine) ResolveHighlightOrQuery(currentInput string) string {
	if t, ok := e.Highlighted(); ok {
		return t.Code
	}
	return strings.TrimSpace(currentInput)
}

// Clear hides the suggestion list.
func (e *Engine) Clear() {
	e.suggestions = nil
	e.highlight = NoHighlight
}

// lessCode orders codes by the numeric value of their leading digits.
// Codes with no leading digits sort after numeric ones, by string.
func lessCode(a, b string) bool {
	na, oka := numericPrefix(a)
	nb, okb := numericPrefix(b)
	switch {
	case oka && okb:
		return na < nb
	case oka:
		return true
	case okb:
		return false
	default:
		return a < b
	}
}

func numericPrefix(code string) (int64, bool) {
	var n int64
	digits := 0
	for _, r := range code {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int64(r-'0')
		digits++
		if digits > 18 {
			break
		}
	}
	return n, digits > 0
}
