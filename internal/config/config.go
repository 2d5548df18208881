// Package config loads and validates service configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/menu-catalog/internal/crawler"
	"github.com/JakeFAU/menu-catalog/internal/fetcher/headless"
	"github.com/JakeFAU/menu-catalog/internal/policy/ratelimit"
)

// EnvPrefix namespaces environment overrides, e.g. CATALOG_SERVER_PORT.
const EnvPrefix = "CATALOG"

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Crawler  CrawlerConfig  `mapstructure:"crawler"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Storage  StorageConfig  `mapstructure:"storage"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                   int `mapstructure:"port"`
	RequestTimeoutSeconds  int `mapstructure:"request_timeout_seconds"`
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds"`
}

// CatalogConfig points at the persisted catalog file.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// CrawlerConfig governs discovery and page pacing.
type CrawlerConfig struct {
	BaseURL              string  `mapstructure:"base_url"`
	MenuPath             string  `mapstructure:"menu_path"`
	Discovery            string  `mapstructure:"discovery"`
	ProductLinkSelector  string  `mapstructure:"product_link_selector"`
	CategoryLinkSelector string  `mapstructure:"category_link_selector"`
	UserAgent            string  `mapstructure:"user_agent"`
	IgnoreRobots         bool    `mapstructure:"ignore_robots"`
	PagesPerSecond       float64 `mapstructure:"pages_per_second"`
	Burst                int     `mapstructure:"burst"`
	PageTimeoutSeconds   int     `mapstructure:"page_timeout_seconds"`
}

// HTTPConfig configures the static listing fetch.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// HeadlessConfig configures the rendering session.
type HeadlessConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ExecPath      string `mapstructure:"exec_path"`
	NoSandbox     bool   `mapstructure:"no_sandbox"`
	NavTimeoutSec int    `mapstructure:"nav_timeout_seconds"`
}

// StorageConfig enables the optional GCS and Postgres mirrors of the
// catalog file.
type StorageConfig struct {
	GCSBucket     string `mapstructure:"gcs_bucket"`
	GCSPrefix     string `mapstructure:"gcs_prefix"`
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	PostgresTable string `mapstructure:"postgres_table"`
}

// PubSubConfig holds metadata for batch completion notices.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 30)
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("catalog.path", "products.json")
	v.SetDefault("crawler.base_url", crawler.DefaultBaseURL)
	v.SetDefault("crawler.menu_path", crawler.DefaultMenuPath)
	v.SetDefault("crawler.discovery", crawler.DiscoveryFlat)
	v.SetDefault("crawler.product_link_selector", crawler.DefaultProductLinkSelector)
	v.SetDefault("crawler.category_link_selector", crawler.DefaultCategoryLinkSelector)
	v.SetDefault("crawler.user_agent", "menu-catalog-bot/0.1")
	v.SetDefault("crawler.ignore_robots", false)
	v.SetDefault("crawler.pages_per_second", 1.0)
	v.SetDefault("crawler.burst", 1)
	v.SetDefault("crawler.page_timeout_seconds", 10)
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("headless.enabled", true)
	v.SetDefault("headless.no_sandbox", false)
	v.SetDefault("headless.nav_timeout_seconds", 45)
	v.SetDefault("storage.gcs_prefix", "catalog")
	v.SetDefault("storage.postgres_table", "catalog_snapshots")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		return errors.New("server.request_timeout_seconds must be > 0")
	}
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		return errors.New("server.shutdown_timeout_seconds must be > 0")
	}
	if strings.TrimSpace(c.Catalog.Path) == "" {
		return errors.New("catalog.path must be set")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return errors.New("http.timeout_seconds must be > 0")
	}
	if c.Crawler.PagesPerSecond < 0 {
		return errors.New("crawler.pages_per_second must be >= 0")
	}
	if c.Crawler.PageTimeoutSeconds <= 0 {
		return errors.New("crawler.page_timeout_seconds must be > 0")
	}
	if c.Headless.Enabled && c.Headless.NavTimeoutSec <= 0 {
		return errors.New("headless.nav_timeout_seconds must be > 0 when headless is enabled")
	}
	if c.PubSub.TopicName != "" && c.PubSub.ProjectID == "" {
		return errors.New("pubsub.project_id must be set when pubsub.topic_name is set")
	}
	if err := c.CrawlerSettings().Validate(); err != nil {
		return fmt.Errorf("crawler: %w", err)
	}
	return nil
}

// CatalogDir is the directory the catalog file lives in.
func (c Config) CatalogDir() string {
	return filepath.Dir(c.Catalog.Path)
}

// CrawlerSettings maps the crawler section onto crawler.Config. The batch
// writes the catalog file name relative to CatalogDir.
func (c Config) CrawlerSettings() crawler.Config {
	return crawler.Config{
		BaseURL:              c.Crawler.BaseURL,
		MenuPath:             c.Crawler.MenuPath,
		Discovery:            c.Crawler.Discovery,
		ProductLinkSelector:  c.Crawler.ProductLinkSelector,
		CategoryLinkSelector: c.Crawler.CategoryLinkSelector,
		UserAgent:            c.Crawler.UserAgent,
		RespectRobots:        !c.Crawler.IgnoreRobots,
		RequestTimeout:       seconds(c.HTTP.TimeoutSeconds),
		OutputPath:           filepath.Base(c.Catalog.Path),
		TopicName:            c.PubSub.TopicName,
	}
}

// HeadlessSettings maps the headless section onto headless.Config.
func (c Config) HeadlessSettings() headless.Config {
	return headless.Config{
		UserAgent:         c.Crawler.UserAgent,
		ExecPath:          c.Headless.ExecPath,
		NoSandbox:         c.Headless.NoSandbox,
		NavigationTimeout: seconds(c.Headless.NavTimeoutSec),
	}
}

// RateLimit maps crawler pacing onto ratelimit.Config.
func (c Config) RateLimit() ratelimit.Config {
	return ratelimit.Config{
		PagesPerSecond: c.Crawler.PagesPerSecond,
		Burst:          c.Crawler.Burst,
	}
}

// PageTimeout bounds each extractor step.
func (c Config) PageTimeout() time.Duration {
	return seconds(c.Crawler.PageTimeoutSeconds)
}

// RequestTimeout bounds every API handler.
func (c Config) RequestTimeout() time.Duration {
	return seconds(c.Server.RequestTimeoutSeconds)
}

// ShutdownTimeout bounds graceful server shutdown.
func (c Config) ShutdownTimeout() time.Duration {
	return seconds(c.Server.ShutdownTimeoutSeconds)
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
