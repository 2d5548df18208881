package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/menu-catalog/internal/catalog"
	"github.com/JakeFAU/menu-catalog/internal/normalize"
)

// SkipReason explains why a nutrition entry contributed nothing.
type SkipReason string

// Skip reasons. An empty reason means the entry was applied.
const (
	SkipNone           SkipReason = ""
	SkipMissingMetric  SkipReason = "missing_metric"
	SkipMissingValue   SkipReason = "missing_value"
	SkipUnknownLabel   SkipReason = "unknown_label"
	SkipMalformedValue SkipReason = "malformed_value"
)

// EntryResult is the outcome of parsing one nutrition entry.
type EntryResult struct {
	Label    string
	RawValue string
	Field    string
	Value    float64
	Skip     SkipReason
}

// OK reports whether the entry produced a field value.
func (r EntryResult) OK() bool {
	return r.Skip == SkipNone
}

// MetricLabel is the label used when counting the entry.
func (r EntryResult) MetricLabel() string {
	if r.OK() {
		return "ok"
	}
	return string(r.Skip)
}

// ParseDetails reads the product name and description from a rendered page.
// The name is empty when the heading is missing.
func ParseDetails(html string, sel Selectors) (name, description string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("parse product page: %w", err)
	}
	name = visibleText(doc.Find(sel.Name).First())
	description = visibleText(doc.Find(sel.Description).First())
	return name, description, nil
}

// ParseNutrition parses summary entries followed by label entries, in document order.
func ParseNutrition(html string, sel Selectors) ([]EntryResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse nutrition panel: %w", err)
	}
	var results []EntryResult
	for _, itemSelector := range []string{sel.SummaryItems, sel.LabelItems} {
		doc.Find(itemSelector).Each(func(_ int, item *goquery.Selection) {
			results = append(results, parseEntry(item, sel))
		})
	}
	return results, nil
}

func parseEntry(item *goquery.Selection, sel Selectors) EntryResult {
	metric := item.Find(sel.Metric).First()
	if metric.Length() == 0 {
		return EntryResult{Skip: SkipMissingMetric}
	}
	result := EntryResult{Label: normalize.NormalizeLabel(visibleText(metric))}

	value := item.Find(sel.Value).First()
	if value.Length() == 0 {
		result.Skip = SkipMissingValue
		return result
	}
	result.RawValue = visibleText(value)

	field, ok := normalize.LookupLabel(result.Label)
	if !ok {
		result.Skip = SkipUnknownLabel
		return result
	}
	result.Field = field

	number, ok := normalize.ParseNumeric(result.RawValue)
	if !ok {
		result.Skip = SkipMalformedValue
		return result
	}
	result.Value = number
	return result
}

// Apply copies successful entries onto record. Later entries for the same
// field overwrite earlier ones. It returns the number of fields set.
func Apply(record *catalog.ProductRecord, entries []EntryResult) int {
	applied := 0
	for _, entry := range entries {
		if !entry.OK() {
			continue
		}
		if record.SetNutrient(entry.Field, entry.Value) {
			applied++
		}
	}
	return applied
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "footer": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "li": true, "ol": true, "p": true, "section": true,
	"table": true, "td": true, "th": true, "tr": true, "ul": true,
}

// visibleText renders the text of s the way a browser lays it out: line
// breaks and block elements start new lines.
func visibleText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	var b strings.Builder
	var walk func(*goquery.Selection)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, child *goquery.Selection) {
			switch name := goquery.NodeName(child); {
			case name == "#text":
				b.WriteString(child.Text())
			case name == "br":
				b.WriteString("\n")
			case strings.HasPrefix(name, "#"), name == "script", name == "style":
			case blockElements[name]:
				b.WriteString("\n")
				walk(child)
				b.WriteString("\n")
			default:
				walk(child)
			}
		})
	}
	walk(s)
	lines := strings.Split(b.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
