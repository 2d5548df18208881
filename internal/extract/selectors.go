package extract

import "errors"

// Selectors names the CSS selectors used on product pages.
type Selectors struct {
	Name            string
	Description     string
	ExpandButton    string
	ExpandedContent string
	SummaryItems    string
	LabelItems      string
	Metric          string
	Value           string
}

// DefaultSelectors returns the selectors of the Ukrainian product pages.
func DefaultSelectors() Selectors {
	return Selectors{
		Name:            ".cmp-product-details-main__heading-title",
		Description:     ".cmp-text",
		ExpandButton:    ".cmp-accordion__button",
		ExpandedContent: ".cmp-container",
		SummaryItems:    ".cmp-nutrition-summary__heading-primary-item",
		LabelItems:      ".label-item",
		Metric:          ".metric",
		Value:           ".value",
	}
}

// Validate reports an empty selector.
func (s Selectors) Validate() error {
	for name, value := range map[string]string{
		"name":             s.Name,
		"description":      s.Description,
		"expand_button":    s.ExpandButton,
		"expanded_content": s.ExpandedContent,
		"summary_items":    s.SummaryItems,
		"label_items":      s.LabelItems,
		"metric":           s.Metric,
		"value":            s.Value,
	} {
		if value == "" {
			return errors.New("selector " + name + " must be set")
		}
	}
	return nil
}
