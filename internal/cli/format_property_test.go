package cli

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var thousandsPattern = regexp.MustCompile(`^\d{1,3}(,\d{3})*$`)

// FormatPrice keeps two decimals, groups by thousands and preserves the
// value once the separators are removed.
func TestPriceFormattingProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("FormatPrice groups by thousands and round-trips", prop.ForAll(
		func(price float64) bool {
			formatted := FormatPrice(price)

			numPart := strings.TrimPrefix(formatted, "-")
			if price >= 0 && numPart != formatted && formatted != "-0.00" {
				t.Logf("Unexpected sign for %f: %s", price, formatted)
				return false
			}

			parts := strings.Split(numPart, ".")
			if len(parts) != 2 || len(parts[1]) != 2 {
				t.Logf("Expected 2 decimal places for %f, got %s", price, formatted)
				return false
			}
			if !thousandsPattern.MatchString(parts[0]) {
				t.Logf("Invalid grouping for %f: %s", price, formatted)
				return false
			}

			parsed, err := strconv.ParseFloat(strings.ReplaceAll(formatted, ",", ""), 64)
			if err != nil {
				t.Logf("Failed to parse %s: %v", formatted, err)
				return false
			}
			if math.Abs(parsed-price) > 0.005+1e-9*math.Abs(price) {
				t.Logf("Value drift for %f: %s", price, formatted)
				return false
			}
			return true
		},
		gen.Float64Range(-1e12, 1e12),
	))

	properties.Property("FormatPercent signs positive values", prop.ForAll(
		func(v float64) bool {
			formatted := FormatPercent(v)
			if !strings.HasSuffix(formatted, "%") {
				return false
			}
			switch {
			case v > 0:
				return strings.HasPrefix(formatted, "+")
			case v < 0:
				return strings.HasPrefix(formatted, "-")
			}
			return formatted == "0.00%"
		},
		gen.Float64Range(-1000, 1000),
	))

	properties.TestingRun(t)
}

func TestFormatPriceExamples(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{0, "0.00"},
		{999.999, "1,000.00"},
		{1234.5, "1,234.50"},
		{33288.29, "33,288.29"},
		{1234567.891, "1,234,567.89"},
		{-40369.44, "-40,369.44"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.price); got != tt.want {
			t.Errorf("FormatPrice(%v) = %q, want %q", tt.price, got, tt.want)
		}
	}
}

func TestFormatDateUsesTokyoTime(t *testing.T) {
	// 2024-01-04 20:00 UTC is already the 5th in Tokyo.
	ts := time.Date(2024, time.January, 4, 20, 0, 0, 0, time.UTC)
	if got := FormatDate(ts, ""); got != "2024/01/05" {
		t.Errorf("FormatDate = %q, want 2024/01/05", got)
	}
	if got := FormatMonth(2024, time.March); got != "2024年03月" {
		t.Errorf("FormatMonth = %q", got)
	}
}
