package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Discovery strategies understood by the Discoverer.
const (
	// DiscoveryFlat reads product links straight from the full-menu page.
	DiscoveryFlat = "flat"
	// DiscoveryNested reads category links first and then each category's products.
	DiscoveryNested = "nested"
)

// Default crawl targets.
const (
	DefaultBaseURL              = "https://www.mcdonalds.com"
	DefaultMenuPath             = "/ua/uk-ua/eat/fullmenu.html"
	DefaultProductLinkSelector  = "a.cmp-category__item-link"
	DefaultCategoryLinkSelector = "a.category-link"
)

// Config holds the settings for discovery and the scraping batch.
// This struct is decoupled from Viper so the crawler can be tested without it.
type Config struct {
	BaseURL              string
	MenuPath             string
	Discovery            string
	ProductLinkSelector  string
	CategoryLinkSelector string
	UserAgent            string
	RespectRobots        bool
	RequestTimeout       time.Duration
	OutputPath           string
	TopicName            string
}

// DefaultConfig returns the settings for the Ukrainian full-menu page.
func DefaultConfig() Config {
	return Config{
		BaseURL:              DefaultBaseURL,
		MenuPath:             DefaultMenuPath,
		Discovery:            DiscoveryFlat,
		ProductLinkSelector:  DefaultProductLinkSelector,
		CategoryLinkSelector: DefaultCategoryLinkSelector,
		RequestTimeout:       15 * time.Second,
		OutputPath:           "products.json",
	}
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("crawler.base_url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return fmt.Errorf("crawler.base_url must be absolute, got %q", c.BaseURL)
	}
	if strings.TrimSpace(c.MenuPath) == "" {
		return errors.New("crawler.menu_path must be set")
	}
	switch c.Discovery {
	case DiscoveryFlat, DiscoveryNested:
	default:
		return fmt.Errorf("crawler.discovery must be %q or %q, got %q", DiscoveryFlat, DiscoveryNested, c.Discovery)
	}
	if c.ProductLinkSelector == "" {
		return errors.New("crawler.product_link_selector must be set")
	}
	if c.Discovery == DiscoveryNested && c.CategoryLinkSelector == "" {
		return errors.New("crawler.category_link_selector must be set for nested discovery")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("crawler.request_timeout must be > 0")
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return errors.New("catalog.path must be set")
	}
	return nil
}

// MenuURL joins the base origin and the menu path.
func (c Config) MenuURL() (string, error) {
	return ResolveURL(c.BaseURL, c.MenuPath)
}
