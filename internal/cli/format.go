package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"kabuchart/internal/models"
)

// FormatPrice formats a price with two decimals and comma thousands
// separators, e.g. 33,288.29.
func FormatPrice(price float64) string {
	return humanize.FormatFloat("#,###.##", price)
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatDate formats a date in Japan time.
func FormatDate(t time.Time, layout string) string {
	if layout == "" {
		layout = "2006/01/02"
	}
	return t.In(models.Tokyo).Format(layout)
}

// FormatMonth formats a year and month as 2024年01月.
func FormatMonth(year int, month time.Month) string {
	return fmt.Sprintf("%d年%02d月", year, int(month))
}
