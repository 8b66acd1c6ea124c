package synthesis

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// formatUSD renders v with thousands separators: whole dollars from 1,000
// up, cents below that, and enough decimals to show sub-cent prices.
func formatUSD(v float64) string {
	switch {
	case v >= 1000:
		return printer.Sprintf("$%.0f", v)
	case v >= 1:
		return printer.Sprintf("$%.2f", v)
	case v <= 0:
		return "$0"
	}
	decimals := int(math.Ceil(-math.Log10(v))) + 3
	if decimals > 12 {
		decimals = 12
	}
	return fmt.Sprintf("$%.*f", decimals, v)
}

// formatCompactUSD renders large amounts as $1.23B, $4.56M or $7.8K.
func formatCompactUSD(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	case v >= 1e4:
		return fmt.Sprintf("$%.1fK", v/1e3)
	}
	return formatUSD(v)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

func formatChange(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

func formatWindow(hours int) string {
	switch {
	case hours == 1:
		return "the last hour"
	case hours%168 == 0:
		if hours == 168 {
			return "the last week"
		}
		return fmt.Sprintf("the last %d weeks", hours/168)
	case hours%24 == 0 && hours > 24:
		return fmt.Sprintf("the last %d days", hours/24)
	}
	return fmt.Sprintf("the last %d hours", hours)
}

func formatAge(created, now time.Time) string {
	if created.IsZero() {
		return ""
	}
	age := now.Sub(created)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 48*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	}
	return created.UTC().Format("2006-01-02")
}
