package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/menu-catalog/internal/clock/system"
	"github.com/JakeFAU/menu-catalog/internal/config"
	"github.com/JakeFAU/menu-catalog/internal/crawler"
	"github.com/JakeFAU/menu-catalog/internal/extract"
	collyfetcher "github.com/JakeFAU/menu-catalog/internal/fetcher/colly"
	"github.com/JakeFAU/menu-catalog/internal/fetcher/headless"
	"github.com/JakeFAU/menu-catalog/internal/hash/sha256"
	"github.com/JakeFAU/menu-catalog/internal/id/uuid"
	"github.com/JakeFAU/menu-catalog/internal/policy/ratelimit"
	memorypublisher "github.com/JakeFAU/menu-catalog/internal/publisher/memory"
	pubsubpublisher "github.com/JakeFAU/menu-catalog/internal/publisher/pubsub"
	"github.com/JakeFAU/menu-catalog/internal/storage/gcs"
	"github.com/JakeFAU/menu-catalog/internal/storage/local"
	"github.com/JakeFAU/menu-catalog/internal/storage/postgres"
	memorystorage "github.com/JakeFAU/menu-catalog/internal/storage/memory"
)

func newCrawlCmd() *cobra.Command {
	var output string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Scrapes the menu into the catalog file",
		Long: `Discovers product pages from the menu listing, renders each one in a
single headless browser session and writes the catalog once at the end.
A listing fetch failure aborts the run and leaves the previous file intact.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			cfg := app.Config
			if output != "" {
				cfg.Catalog.Path = output
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			summary, err := runCrawl(ctx, cfg, dryRun, app.Logger)
			if err != nil {
				return err
			}
			app.Logger.Info("Crawl command finished",
				zap.String("run_id", summary.RunID),
				zap.Int("discovered", summary.Discovered),
				zap.Int("complete", summary.Complete),
				zap.Int("partial", summary.Partial),
				zap.Int("failed", summary.Failed),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "catalog file to write (overrides catalog.path)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "keep the catalog in memory and skip mirrors and publishing")
	return cmd
}

// runCrawl builds the batch from cfg and runs it once. Dry runs keep the
// catalog and the completion notice in memory.
func runCrawl(ctx context.Context, cfg config.Config, dryRun bool, logger *zap.Logger) (crawler.Summary, error) {
	crawlCfg := cfg.CrawlerSettings()

	discoverer, err := collyfetcher.NewDiscoverer(crawlCfg, logger)
	if err != nil {
		return crawler.Summary{}, fmt.Errorf("init discovery: %w", err)
	}
	extractor, err := extract.New(extract.DefaultSelectors(), cfg.PageTimeout(), logger)
	if err != nil {
		return crawler.Summary{}, fmt.Errorf("init extractor: %w", err)
	}

	deps := crawler.Dependencies{
		Source:    discoverer,
		Sessions:  sessionFactory(cfg, logger),
		Extractor: extractor,
		Limiter:   ratelimit.New(cfg.RateLimit()),
		Hasher:    sha256.New(),
		Clock:     system.New(),
		IDs:       uuid.New(),
	}

	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			if cerr := c.Close(); cerr != nil {
				logger.Warn("Failed to close crawl dependency", zap.Error(cerr))
			}
		}
	}()

	if dryRun {
		deps.Store = memorystorage.NewBlobStore()
		deps.Publisher = memorypublisher.New()
		logger.Info("Dry run: catalog stays in memory")
	} else {
		store, err := local.New(local.Config{BaseDir: cfg.CatalogDir()})
		if err != nil {
			return crawler.Summary{}, fmt.Errorf("init catalog store: %w", err)
		}
		deps.Store = store

		if cfg.Storage.GCSBucket != "" {
			mirror, err := gcs.Open(ctx, gcs.Config{Bucket: cfg.Storage.GCSBucket, Prefix: cfg.Storage.GCSPrefix})
			if err != nil {
				return crawler.Summary{}, fmt.Errorf("init gcs mirror: %w", err)
			}
			closers = append(closers, mirror)
			deps.Mirrors = append(deps.Mirrors, mirror)
		}
		if cfg.Storage.PostgresDSN != "" {
			mirror, err := postgres.Open(ctx, postgres.Config{DSN: cfg.Storage.PostgresDSN, Table: cfg.Storage.PostgresTable})
			if err != nil {
				return crawler.Summary{}, fmt.Errorf("init postgres mirror: %w", err)
			}
			closers = append(closers, mirror)
			deps.Mirrors = append(deps.Mirrors, mirror)
		}
		if cfg.PubSub.TopicName != "" {
			pub, err := pubsubpublisher.Open(ctx, cfg.PubSub.ProjectID)
			if err != nil {
				return crawler.Summary{}, fmt.Errorf("init pubsub: %w", err)
			}
			closers = append(closers, pub)
			deps.Publisher = pub
		}
	}

	batch, err := crawler.NewBatch(crawlCfg, deps, logger)
	if err != nil {
		return crawler.Summary{}, fmt.Errorf("init batch: %w", err)
	}
	summary, err := batch.Run(ctx)
	if err != nil {
		return summary, fmt.Errorf("run crawl: %w", err)
	}
	return summary, nil
}

// sessionFactory opens a chromedp session, or a no-op one when headless
// rendering is disabled.
func sessionFactory(cfg config.Config, logger *zap.Logger) crawler.SessionFactory {
	if !cfg.Headless.Enabled {
		return func(context.Context) (crawler.Session, error) {
			logger.Warn("Headless rendering disabled; product pages will be recorded by url only")
			return headless.NewNoop(), nil
		}
	}
	headlessCfg := cfg.HeadlessSettings()
	return func(ctx context.Context) (crawler.Session, error) {
		session, err := headless.Open(ctx, headlessCfg)
		if err != nil {
			return nil, fmt.Errorf("open browser: %w", err)
		}
		return session, nil
	}
}
