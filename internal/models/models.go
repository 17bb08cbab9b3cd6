// Package models provides domain models for the chart viewer.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Index symbols.
const (
	NikkeiSymbol = "^N225"
	NikkeiLabel  = "日経平均株価"

	// TSESuffix marks a Tokyo Stock Exchange listing in request symbols.
	TSESuffix = ".T"
)

// Ticker is one entry of the static TSE listing.
type Ticker struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// PricePoint represents one daily OHLC record.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// StockHistory is a price series plus display metadata.
type StockHistory struct {
	Symbol  string       `json:"symbol"`
	Name    string       `json:"name"`
	History []PricePoint `json:"history"`
}

// Label returns the dataset label shown above the chart.
func (h *StockHistory) Label() string {
	name := h.Name
	if name == "" {
		name = h.Symbol
	}
	return name + " (終値)"
}

// NewsArticle is one headline from the news endpoint.
type NewsArticle struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Record is the wire shape of a price row as the backend serializes it.
type Record struct {
	Date  string   `json:"Date"`
	Open  *float64 `json:"Open"`
	High  *float64 `json:"High"`
	Low   *float64 `json:"Low"`
	Close *float64 `json:"Close"`
}

// Tokyo is the exchange's time zone. Parsed dates are expressed in it, so
// calendar days and months match the trading calendar. It falls back to a
// fixed offset when the tz database is missing.
var Tokyo = func() *time.Location {
	if loc, err := time.LoadLocation("Asia/Tokyo"); err == nil {
		return loc
	}
	return time.FixedZone("JST", 9*60*60)
}()

// Layouts accepted for Record.Date, tried in order. Zoned layouts come first.
var (
	zonedDateLayouts = []string{
		time.RFC1123,
		time.RFC1123Z,
		time.RFC3339,
	}
	localDateLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
)

// ParseRecordDate parses the date of a backend record and returns it in
// Tokyo time. The backend serializes Tokyo midnights as the previous day
// 15:00 GMT. Dates without a zone are read as Tokyo wall time.
func ParseRecordDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range zonedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(Tokyo), nil
		}
	}
	for _, layout := range localDateLayouts {
		if t, err := time.ParseInLocation(layout, s, Tokyo); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// PricePoint converts the record. Missing prices decode as zero.
func (r Record) PricePoint() (PricePoint, error) {
	date, err := ParseRecordDate(r.Date)
	if err != nil {
		return PricePoint{}, err
	}
	return PricePoint{
		Date:  date,
		Open:  deref(r.Open),
		High:  deref(r.High),
		Low:   deref(r.Low),
		Close: deref(r.Close),
	}, nil
}

// ParseRecords converts records in order, failing on the first bad row.
func ParseRecords(records []Record) ([]PricePoint, error) {
	points := make([]PricePoint, 0, len(records))
	for i, r := range records {
		p, err := r.PricePoint()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		points = append(points, p)
	}
	return points, nil
}

// DecodeRecords decodes a JSON array of records.
func DecodeRecords(data []byte) ([]PricePoint, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return ParseRecords(records)
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
