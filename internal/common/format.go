package common

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NotAvailable is the display text for absent values.
const NotAvailable = "N/A"

// FormatNumber rounds v to the given number of decimals and groups the
// integer part with commas ("1,234.57"). Nil or non-finite input yields "N/A".
func FormatNumber(v *float64, decimals int32) string {
	if !IsFinite(v) {
		return NotAvailable
	}
	s := decimal.NewFromFloat(*v).StringFixed(decimals)

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, hasFrac := strings.Cut(s, ".")
	whole = groupThousands(whole)

	out := whole
	if hasFrac {
		out += "." + frac
	}
	if negative && strings.Trim(out, "0.,") != "" {
		out = "-" + out
	}
	return out
}

// FormatPrice formats a price with a dollar prefix ("$1,234.56").
func FormatPrice(v *float64) string {
	if !IsFinite(v) {
		return NotAvailable
	}
	return "$" + FormatNumber(v, 2)
}

// FormatPercent formats a percentage with two decimals and a trailing sign ("-3.21%").
// Absent values render as "N/A%", matching the table cells of the dashboard.
func FormatPercent(v *float64) string {
	return FormatNumber(v, 2) + "%"
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return strings.Join(parts, ",")
}
