package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/menu-catalog/internal/catalog"
	"github.com/JakeFAU/menu-catalog/internal/crawler"
	"github.com/JakeFAU/menu-catalog/internal/metrics"
)

// DefaultPageTimeout bounds each wait on a product page.
const DefaultPageTimeout = 10 * time.Second

// Page-level failures carried in Result.Err.
var (
	ErrPageLoad       = errors.New("product page did not load")
	ErrMissingName    = errors.New("product name not found")
	ErrNutritionPanel = errors.New("nutrition panel did not open")
)

// Result is the full outcome of one product page.
type Result struct {
	Record  catalog.ProductRecord
	Entries []EntryResult
	// Err is set when a step failed; Record still holds what was read before it.
	Err error
}

// Extractor scrapes product pages through a rendering session.
type Extractor struct {
	sel         Selectors
	pageTimeout time.Duration
	logger      *zap.Logger
}

// New builds an Extractor. A non-positive timeout falls back to DefaultPageTimeout.
func New(sel Selectors, pageTimeout time.Duration, logger *zap.Logger) (*Extractor, error) {
	if err := sel.Validate(); err != nil {
		return nil, fmt.Errorf("invalid selectors: %w", err)
	}
	if pageTimeout <= 0 {
		pageTimeout = DefaultPageTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{sel: sel, pageTimeout: pageTimeout, logger: logger.Named("extract")}, nil
}

// Extract implements crawler.PageExtractor.
func (e *Extractor) Extract(ctx context.Context, session crawler.Session, url string) catalog.ProductRecord {
	return e.ExtractPage(ctx, session, url).Record
}

// ExtractPage renders url, reads the product details and expands the
// nutrition panel. It never returns a record without its URL.
func (e *Extractor) ExtractPage(ctx context.Context, session crawler.Session, url string) Result {
	logger := e.logger.With(zap.String("url", url))
	result := Result{Record: catalog.ProductRecord{URL: url}}

	html, err := e.fetch(ctx, session, url)
	if err != nil {
		logger.Warn("Failed to load product page", zap.Error(err))
		result.Err = fmt.Errorf("%w: %w", ErrPageLoad, err)
		return result
	}
	name, description, err := ParseDetails(html, e.sel)
	if err != nil {
		logger.Warn("Failed to parse product page", zap.Error(err))
		result.Err = fmt.Errorf("%w: %w", ErrPageLoad, err)
		return result
	}
	if name == "" {
		logger.Warn("Product page has no name heading")
		result.Err = ErrMissingName
		return result
	}
	result.Record.Name = name
	result.Record.Description = description

	panel, err := e.expand(ctx, session)
	if err != nil {
		logger.Warn("Nutrition panel did not open", zap.String("product", name), zap.Error(err))
		result.Err = fmt.Errorf("%w: %w", ErrNutritionPanel, err)
		return result
	}
	entries, err := ParseNutrition(panel, e.sel)
	if err != nil {
		logger.Warn("Failed to parse nutrition panel", zap.String("product", name), zap.Error(err))
		result.Err = fmt.Errorf("%w: %w", ErrNutritionPanel, err)
		return result
	}
	result.Entries = entries
	e.logEntries(logger, entries)
	applied := Apply(&result.Record, entries)
	logger.Debug("Parsed product",
		zap.String("product", name),
		zap.Int("entries", len(entries)),
		zap.Int("fields", applied),
	)
	return result
}

func (e *Extractor) fetch(ctx context.Context, session crawler.Session, url string) (string, error) {
	stepCtx, cancel := context.WithTimeout(ctx, e.pageTimeout)
	defer cancel()
	html, err := session.FetchRenderedPage(stepCtx, url, e.sel.Name)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	return html, nil
}

func (e *Extractor) expand(ctx context.Context, session crawler.Session) (string, error) {
	stepCtx, cancel := context.WithTimeout(ctx, e.pageTimeout)
	defer cancel()
	html, err := session.ClickAndWait(stepCtx, e.sel.ExpandButton, e.sel.ExpandedContent)
	if err != nil {
		return "", fmt.Errorf("expand nutrition: %w", err)
	}
	return html, nil
}

func (e *Extractor) logEntries(logger *zap.Logger, entries []EntryResult) {
	for i, entry := range entries {
		metrics.ObserveNutritionItem(entry.MetricLabel())
		switch entry.Skip {
		case SkipNone:
		case SkipUnknownLabel:
			logger.Debug("Ignoring unknown nutrition label", zap.Int("index", i), zap.String("label", entry.Label))
		case SkipMalformedValue:
			logger.Warn("Nutrition value is not a number",
				zap.Int("index", i),
				zap.String("field", entry.Field),
				zap.String("value", entry.RawValue),
			)
		default:
			logger.Warn("Incomplete nutrition entry", zap.Int("index", i), zap.String("reason", string(entry.Skip)))
		}
	}
}
