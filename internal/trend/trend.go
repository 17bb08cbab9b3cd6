// Package trend partitions a price series into calendar-month buckets and
// classifies each month as up, down or neutral for chart styling.
package trend

import (
	"fmt"
	"time"

	"kabuchart/internal/models"
)

// TrendColor is the coarse direction of one calendar month.
type TrendColor string

const (
	Neutral TrendColor = "NEUTRAL"
	Up      TrendColor = "UP"
	Down    TrendColor = "DOWN"
)

// Trends maps a month key to its color.
type Trends map[string]TrendColor

// MonthKey returns the bucket key for t: "year-month" with the month
// zero-indexed, so January 2024 is "2024-0". Months follow Tokyo time.
func MonthKey(t time.Time) string {
	t = t.In(models.Tokyo)
	return fmt.Sprintf("%d-%d", t.Year(), int(t.Month())-1)
}

// Classify applies the bucket invariant to closes in arrival order.
// Fewer than two points is Neutral; otherwise Up iff last >= first.
func Classify(closes []float64) TrendColor {
	if len(closes) == 0 {
		return Neutral
	}
	return classify(len(closes), closes[0], closes[len(closes)-1])
}

func classify(count int, first, last float64) TrendColor {
	if count < 2 {
		return Neutral
	}
	if last >= first {
		return Up
	}
	return Down
}

// Segment groups history by calendar month, preserving arrival order within
// each month, and colors every bucket. History is assumed chronological.
func Segment(history []models.PricePoint) Trends {
	buckets := make(map[string][]float64)
	for _, p := range history {
		key := MonthKey(p.Date)
		buckets[key] = append(buckets[key], p.Close)
	}

	trends := make(Trends, len(buckets))
	for key, closes := range buckets {
		trends[key] = Classify(closes)
	}
	return trends
}

// ColorFor returns the color of the month containing point. Months missing
// from trends, including every month of an empty map, are Neutral.
func ColorFor(point models.PricePoint, trends Trends) TrendColor {
	if c, ok := trends[MonthKey(point.Date)]; ok {
		return c
	}
	return Neutral
}

// MonthSummary describes one bucket for legends and tables.
type MonthSummary struct {
	Key   string     `json:"key"`
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	First float64    `json:"first"`
	Last  float64    `json:"last"`
	Count int        `json:"count"`
	Color TrendColor `json:"color"`
}

// Change returns the percent move from first to last close.
func (m MonthSummary) Change() float64 {
	if m.First == 0 {
		return 0
	}
	return (m.Last - m.First) / m.First * 100
}

// Summaries returns one summary per month in first-seen order.
func Summaries(history []models.PricePoint) []MonthSummary {
	index := make(map[string]int)
	var out []MonthSummary
	for _, p := range history {
		key := MonthKey(p.Date)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			local := p.Date.In(models.Tokyo)
			out = append(out, MonthSummary{
				Key:   key,
				Year:  local.Year(),
				Month: local.Month(),
				First: p.Close,
			})
		}
		out[i].Last = p.Close
		out[i].Count++
	}
	for i := range out {
		out[i].Color = classify(out[i].Count, out[i].First, out[i].Last)
	}
	return out
}
