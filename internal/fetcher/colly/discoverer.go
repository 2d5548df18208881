// Package collyfetcher discovers product pages with gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/menu-catalog/internal/crawler"
	"github.com/JakeFAU/menu-catalog/internal/metrics"
)

// Discoverer reads product links from the static (non-rendered) menu pages.
type Discoverer struct {
	cfg           crawler.Config
	baseCollector *colly.Collector
	robots        *robotsTransport
	logger        *zap.Logger
}

var _ crawler.URLSource = (*Discoverer)(nil)

// NewDiscoverer builds a Discoverer backed by a Colly collector.
func NewDiscoverer(cfg crawler.Config, logger *zap.Logger) (*Discoverer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid crawler config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := colly.NewCollector(colly.Async(false))
	c.AllowURLRevisit = true
	robots := newRobotsTransport(newHTTPTransport())
	c.WithTransport(robots)
	return &Discoverer{
		cfg:           cfg,
		baseCollector: c,
		robots:        robots,
		logger:        logger.Named("discovery"),
	}, nil
}

// Discover returns the product URLs using the configured strategy.
func (d *Discoverer) Discover(ctx context.Context) ([]string, error) {
	menuURL, err := d.cfg.MenuURL()
	if err != nil {
		return nil, fmt.Errorf("build menu url: %w", err)
	}
	if d.cfg.Discovery == crawler.DiscoveryNested {
		return d.DiscoverNested(ctx, menuURL)
	}
	return d.DiscoverProductURLs(ctx, menuURL)
}

// DiscoverProductURLs fetches pageURL and returns its product links in document order.
func (d *Discoverer) DiscoverProductURLs(ctx context.Context, pageURL string) ([]string, error) {
	return d.collectLinks(ctx, pageURL, d.cfg.ProductLinkSelector)
}

// DiscoverCategoryURLs fetches pageURL and returns its category links in document order.
func (d *Discoverer) DiscoverCategoryURLs(ctx context.Context, pageURL string) ([]string, error) {
	return d.collectLinks(ctx, pageURL, d.cfg.CategoryLinkSelector)
}

// DiscoverNested lists categories on menuURL and then the products of each
// category. The result is flattened in category order; a product listed under
// two categories appears twice.
func (d *Discoverer) DiscoverNested(ctx context.Context, menuURL string) ([]string, error) {
	categories, err := d.DiscoverCategoryURLs(ctx, menuURL)
	if err != nil {
		return nil, err
	}
	d.logger.Info("Discovered categories", zap.Int("count", len(categories)))

	var products []string
	for _, categoryURL := range categories {
		links, err := d.DiscoverProductURLs(ctx, categoryURL)
		if err != nil {
			return nil, err
		}
		d.logger.Debug("Discovered category products",
			zap.String("category", categoryURL),
			zap.Int("count", len(links)),
		)
		products = append(products, links...)
	}
	return products, nil
}

func (d *Discoverer) collectLinks(ctx context.Context, pageURL, selector string) ([]string, error) {
	var (
		links    []string
		fetchErr error
	)
	collector := d.baseCollector.Clone()
	if d.cfg.UserAgent != "" {
		collector.UserAgent = d.cfg.UserAgent
	}
	collector.IgnoreRobotsTxt = !d.cfg.RespectRobots
	collector.SetRequestTimeout(d.cfg.RequestTimeout)

	collector.OnHTML(selector, func(e *colly.HTMLElement) {
		href := e.Attr("href")
		resolved, err := crawler.ResolveURL(d.cfg.BaseURL, href)
		if err != nil {
			d.logger.Warn("Skipping unusable link",
				zap.String("page", pageURL),
				zap.String("href", href),
				zap.Error(err),
			)
			return
		}
		links = append(links, resolved)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
			return
		}
		fetchErr = err
	})

	if err := runCollector(ctx, collector, pageURL, &fetchErr); err != nil {
		metrics.ObserveFetch(pageURL, "error")
		return nil, fmt.Errorf("%w: %s: %w", crawler.ErrFetch, pageURL, err)
	}
	metrics.ObserveFetch(pageURL, "ok")
	if reason := d.robots.FallbackReason(); reason != "" && d.cfg.RespectRobots {
		d.logger.Warn("robots.txt unreachable, assuming allow-all", zap.String("reason", reason))
	}
	d.logger.Debug("Collected links",
		zap.String("page", pageURL),
		zap.String("selector", selector),
		zap.Int("count", len(links)),
	)
	return links, nil
}

func runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if *fetchErr != nil {
			return *fetchErr
		}
		if err != nil {
			return fmt.Errorf("colly visit failed: %w", err)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
