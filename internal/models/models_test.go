package models

import (
	"testing"
	"time"
)

func TestParseRecordDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"Fri, 05 Jan 2024 00:00:00 GMT", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"Thu, 04 Jan 2024 15:00:00 GMT", time.Date(2024, 1, 5, 0, 0, 0, 0, Tokyo)},
		{"2024-01-05T00:00:00+09:00", time.Date(2024, 1, 5, 0, 0, 0, 0, time.FixedZone("", 9*3600))},
		{"2024-01-05T00:00:00", time.Date(2024, 1, 5, 0, 0, 0, 0, Tokyo)},
		{"2024-01-05", time.Date(2024, 1, 5, 0, 0, 0, 0, Tokyo)},
	}

	for _, tt := range tests {
		got, err := ParseRecordDate(tt.in)
		if err != nil {
			t.Errorf("ParseRecordDate(%q) error: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseRecordDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseRecordDate("yesterday"); err == nil {
		t.Error("expected error for unrecognized date")
	}
}

func TestParseRecordDateReadsTokyoCalendar(t *testing.T) {
	// Tokyo midnight of Feb 1 as the backend serializes it.
	got, err := ParseRecordDate("Wed, 31 Jan 2024 15:00:00 GMT")
	if err != nil {
		t.Fatalf("ParseRecordDate: %v", err)
	}
	if got.Location() != Tokyo {
		t.Errorf("location = %v, want %v", got.Location(), Tokyo)
	}
	if y, m, d := got.Date(); y != 2024 || m != time.February || d != 1 {
		t.Errorf("date = %d-%02d-%02d, want 2024-02-01", y, m, d)
	}
	if got.Hour() != 0 {
		t.Errorf("hour = %d, want 0", got.Hour())
	}
}

func TestDecodeRecords(t *testing.T) {
	data := []byte(`[
		{"Date": "2024-01-05", "Open": 100, "High": 105, "Low": 99, "Close": 104},
		{"Date": "2024-01-09", "Open": 104, "High": 106, "Low": 101, "Close": null}
	]`)

	points, err := DecodeRecords(data)
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Close != 104 || points[0].High != 105 {
		t.Errorf("unexpected first point: %+v", points[0])
	}
	if points[1].Close != 0 {
		t.Errorf("null close should decode as 0, got %v", points[1].Close)
	}

	if _, err := DecodeRecords([]byte(`[{"Date": "bad"}]`)); err == nil {
		t.Error("expected error for bad date")
	}
}

func TestStockHistoryLabel(t *testing.T) {
	h := &StockHistory{Symbol: "7203.T", Name: "トヨタ自動車"}
	if got := h.Label(); got != "トヨタ自動車 (終値)" {
		t.Errorf("Label() = %q", got)
	}

	h.Name = ""
	if got := h.Label(); got != "7203.T (終値)" {
		t.Errorf("Label() without name = %q", got)
	}
}
