package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/menu-catalog/internal/catalog"
	"github.com/JakeFAU/menu-catalog/internal/metrics"
)

// Page outcomes used in metrics and summaries.
const (
	OutcomeComplete = "complete"
	OutcomePartial  = "partial"
	OutcomeFailed   = "failed"
)

// Batch statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ContentTypeJSON is the content type of the persisted catalog.
const ContentTypeJSON = "application/json"

// ErrNoSession reports that the rendering session could not be acquired.
var ErrNoSession = errors.New("rendering session unavailable")

// Summary describes a finished batch.
type Summary struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Discovered int       `json:"discovered"`
	Complete   int       `json:"complete"`
	Partial    int       `json:"partial"`
	Failed     int       `json:"failed"`
	URIs       []string  `json:"uris"`
	Checksum   string    `json:"checksum"`
}

// Dependencies bundles the collaborators a Batch needs. Limiter, Mirrors and
// Publisher are optional.
type Dependencies struct {
	Source    URLSource
	Sessions  SessionFactory
	Extractor PageExtractor
	Store     BlobStore
	Mirrors   []BlobStore
	Limiter   Waiter
	Publisher Publisher
	Hasher    Hasher
	Clock     Clock
	IDs       IDGenerator
}

// Batch visits every discovered product page with one rendering session and
// persists the accumulated records once at the end.
type Batch struct {
	cfg    Config
	deps   Dependencies
	logger *zap.Logger
}

// NewBatch wires a Batch.
func NewBatch(cfg Config, deps Dependencies, logger *zap.Logger) (*Batch, error) {
	switch {
	case deps.Source == nil:
		return nil, errors.New("batch requires a url source")
	case deps.Sessions == nil:
		return nil, errors.New("batch requires a session factory")
	case deps.Extractor == nil:
		return nil, errors.New("batch requires a page extractor")
	case deps.Store == nil:
		return nil, errors.New("batch requires a blob store")
	case deps.Hasher == nil, deps.Clock == nil, deps.IDs == nil:
		return nil, errors.New("batch requires hasher, clock and id generator")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Batch{cfg: cfg, deps: deps, logger: logger.Named("batch")}, nil
}

// Run executes one scraping batch. Discovery or session failures abort the
// run before anything is written; individual page failures never do.
func (b *Batch) Run(ctx context.Context) (summary Summary, err error) {
	runID, err := b.deps.IDs.NewID()
	if err != nil {
		return Summary{}, fmt.Errorf("generate run id: %w", err)
	}
	summary = Summary{RunID: runID, StartedAt: b.deps.Clock.Now()}
	logger := b.logger.With(zap.String("run_id", runID))
	defer func() {
		status := StatusSuccess
		if err != nil {
			status = StatusError
		}
		metrics.ObserveBatch(status, b.deps.Clock.Now().Sub(summary.StartedAt))
	}()

	urls, err := b.deps.Source.Discover(ctx)
	if err != nil {
		logger.Error("Product discovery failed", zap.Error(err))
		return summary, fmt.Errorf("discover products: %w", err)
	}
	summary.Discovered = len(urls)
	logger.Info("Discovered product pages", zap.Int("count", len(urls)))

	records, err := b.scrape(ctx, logger, urls, &summary)
	if err != nil {
		return summary, err
	}

	payload, err := catalog.Marshal(records)
	if err != nil {
		return summary, fmt.Errorf("encode catalog: %w", err)
	}
	if summary.Checksum, err = b.deps.Hasher.Hash(payload); err != nil {
		return summary, fmt.Errorf("hash catalog: %w", err)
	}
	uri, err := b.deps.Store.PutObject(ctx, b.cfg.OutputPath, ContentTypeJSON, bytes.NewReader(payload))
	if err != nil {
		return summary, fmt.Errorf("write catalog: %w", err)
	}
	summary.URIs = append(summary.URIs, uri)
	for _, mirror := range b.deps.Mirrors {
		mirrorURI, err := mirror.PutObject(ctx, b.cfg.OutputPath, ContentTypeJSON, bytes.NewReader(payload))
		if err != nil {
			logger.Warn("Catalog mirror write failed", zap.Error(err))
			continue
		}
		summary.URIs = append(summary.URIs, mirrorURI)
	}
	summary.FinishedAt = b.deps.Clock.Now()

	logger.Info("Catalog written",
		zap.Strings("uris", summary.URIs),
		zap.Int("records", len(records)),
		zap.Int("complete", summary.Complete),
		zap.Int("partial", summary.Partial),
		zap.Int("failed", summary.Failed),
		zap.String("checksum", summary.Checksum),
		zap.Duration("duration", summary.FinishedAt.Sub(summary.StartedAt)),
	)
	b.publish(ctx, logger, summary)
	return summary, nil
}

func (b *Batch) scrape(ctx context.Context, logger *zap.Logger, urls []string, summary *Summary) (records []catalog.ProductRecord, err error) {
	session, err := b.deps.Sessions(ctx)
	if err != nil {
		logger.Error("Failed to start rendering session", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrNoSession, err)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			logger.Warn("Failed to close rendering session", zap.Error(closeErr))
		}
	}()

	records = make([]catalog.ProductRecord, 0, len(urls))
	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("batch canceled after %d pages: %w", i, err)
		}
		if b.deps.Limiter != nil {
			if err := b.deps.Limiter.Wait(ctx, url); err != nil {
				return nil, fmt.Errorf("batch canceled after %d pages: %w", i, err)
			}
		}
		logger.Info(fmt.Sprintf("[%d/%d] parsing %s", i+1, len(urls), url))

		record := b.deps.Extractor.Extract(ctx, session, url)
		if record.URL == "" {
			record.URL = url
		}
		outcome := Outcome(record)
		switch outcome {
		case OutcomeComplete:
			summary.Complete++
		case OutcomePartial:
			summary.Partial++
		default:
			summary.Failed++
		}
		metrics.ObservePage(outcome)
		records = append(records, record)
	}
	return records, nil
}

func (b *Batch) publish(ctx context.Context, logger *zap.Logger, summary Summary) {
	if b.deps.Publisher == nil || b.cfg.TopicName == "" {
		return
	}
	msgID, err := b.deps.Publisher.Publish(ctx, b.cfg.TopicName, summary)
	if err != nil {
		logger.Warn("Failed to publish batch summary", zap.String("topic", b.cfg.TopicName), zap.Error(err))
		return
	}
	logger.Info("Published batch summary", zap.String("topic", b.cfg.TopicName), zap.String("message_id", msgID))
}

// Outcome classifies a scraped record: complete when it has a name and at
// least one nutrition value, partial with a name only, failed otherwise.
func Outcome(record catalog.ProductRecord) string {
	switch {
	case record.Name == "":
		return OutcomeFailed
	case record.HasNutrition():
		return OutcomeComplete
	default:
		return OutcomePartial
	}
}
