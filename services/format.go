package services

import (
	"strconv"
	"strings"
)

// FormatAQLLevel renders an AQL level the way the Z1.4 tables print it:
// fractional levels as-is, whole levels below ten with one decimal
// (1.0, 4.0) and larger ones without (10).
func FormatAQLLevel(level float64) string {
	s := strconv.FormatFloat(level, 'f', -1, 64)
	if !strings.Contains(s, ".") && level < 10 {
		s += ".0"
	}
	return s
}

// ParseAQLLevel is the inverse of FormatAQLLevel and accepts any decimal
// notation, including a comma as decimal separator.
func ParseAQLLevel(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	return strconv.ParseFloat(s, 64)
}

// FormatCount formats a lot quantity with thousands separators
// (e.g. 150001 -> 150,001).
func FormatCount(n float64) string {
	negative := n < 0
	if negative {
		n = -n
	}
	s := applyThousandsGrouping(strconv.FormatFloat(n, 'f', 0, 64))
	if negative {
		s = "-" + s
	}
	return s
}

// applyThousandsGrouping inserts a comma every three digits from the right.
func applyThousandsGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	remaining := s[:n-3]
	for len(remaining) > 3 {
		result = remaining[len(remaining)-3:] + "," + result
		remaining = remaining[:len(remaining)-3]
	}
	if len(remaining) > 0 {
		result = remaining + "," + result
	}
	return result
}
