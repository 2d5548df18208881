// Package normalize turns raw text scraped from product pages into typed values.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var numericRun = regexp.MustCompile(`[\d.,]+`)

// ParseNumeric extracts the first number from the first line of text.
// Comma decimals are accepted. The boolean is false when no number is present.
func ParseNumeric(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	line := firstLine(text)
	match := numericRun.FindString(line)
	if match == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// NormalizeLabel lower-cases a nutrition label and drops everything from the
// first "(" or line break onward, so "нжк: (g)\nextra" becomes "нжк:".
func NormalizeLabel(text string) string {
	label := strings.ToLower(strings.TrimSpace(text))
	if idx := strings.IndexAny(label, "(\r\n"); idx >= 0 {
		label = label[:idx]
	}
	return strings.TrimSpace(label)
}

func firstLine(text string) string {
	if idx := strings.IndexAny(text, "\r\n"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
