package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JakeFAU/menu-catalog/internal/crawler"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Catalog.Path != "products.json" {
		t.Fatalf("expected default catalog path, got %q", cfg.Catalog.Path)
	}
	if cfg.CatalogDir() != "." {
		t.Fatalf("expected catalog dir '.', got %q", cfg.CatalogDir())
	}
	crawlCfg := cfg.CrawlerSettings()
	if crawlCfg.BaseURL != crawler.DefaultBaseURL || crawlCfg.MenuPath != crawler.DefaultMenuPath {
		t.Fatalf("expected default crawl target, got %+v", crawlCfg)
	}
	if crawlCfg.Discovery != crawler.DiscoveryFlat || !crawlCfg.RespectRobots {
		t.Fatalf("expected flat discovery respecting robots, got %+v", crawlCfg)
	}
	if crawlCfg.TopicName != "" {
		t.Fatalf("expected publishing disabled by default")
	}
	if !cfg.Headless.Enabled || cfg.HeadlessSettings().NavigationTimeout != 45*time.Second {
		t.Fatalf("expected headless enabled with 45s navigation, got %+v", cfg.Headless)
	}
	if cfg.PageTimeout() != 10*time.Second {
		t.Fatalf("expected 10s page timeout, got %v", cfg.PageTimeout())
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
  request_timeout_seconds: 5
catalog:
  path: /data/menu/catalog.json
crawler:
  discovery: nested
  user_agent: real-agent
  ignore_robots: true
  pages_per_second: 0.5
  burst: 2
  page_timeout_seconds: 20
http:
  timeout_seconds: 45
headless:
  enabled: false
storage:
  gcs_bucket: bucket
  gcs_prefix: menus
pubsub:
  project_id: proj
  topic_name: catalog-ready
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 || cfg.RequestTimeout() != 5*time.Second {
		t.Fatalf("expected server overrides, got %+v", cfg.Server)
	}
	if cfg.CatalogDir() != "/data/menu" {
		t.Fatalf("expected catalog dir /data/menu, got %q", cfg.CatalogDir())
	}
	crawlCfg := cfg.CrawlerSettings()
	if crawlCfg.OutputPath != "catalog.json" {
		t.Fatalf("expected output file catalog.json, got %q", crawlCfg.OutputPath)
	}
	if crawlCfg.Discovery != crawler.DiscoveryNested || crawlCfg.RespectRobots {
		t.Fatalf("expected crawler overrides to apply, got %+v", crawlCfg)
	}
	if crawlCfg.RequestTimeout != 45*time.Second {
		t.Fatalf("expected request timeout 45s, got %v", crawlCfg.RequestTimeout)
	}
	if crawlCfg.TopicName != "catalog-ready" {
		t.Fatalf("expected topic name, got %q", crawlCfg.TopicName)
	}
	if rl := cfg.RateLimit(); rl.PagesPerSecond != 0.5 || rl.Burst != 2 {
		t.Fatalf("expected pacing overrides, got %+v", rl)
	}
	if cfg.Storage.GCSBucket != "bucket" || cfg.Storage.GCSPrefix != "menus" {
		t.Fatalf("expected storage overrides, got %+v", cfg.Storage)
	}
	if cfg.Headless.Enabled || cfg.Logging.Development {
		t.Fatalf("expected headless and development disabled")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CATALOG_SERVER_PORT", "7070")
	t.Setenv("CATALOG_CATALOG_PATH", "out/products.json")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Fatalf("expected env port 7070, got %d", cfg.Server.Port)
	}
	if cfg.CatalogDir() != "out" || cfg.CrawlerSettings().OutputPath != "products.json" {
		t.Fatalf("expected env catalog path, got %q", cfg.Catalog.Path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "invalid port", mutate: func(c *Config) { c.Server.Port = 0 }, want: "server.port"},
		{name: "port too large", mutate: func(c *Config) { c.Server.Port = 70000 }, want: "server.port"},
		{name: "request timeout", mutate: func(c *Config) { c.Server.RequestTimeoutSeconds = 0 }, want: "server.request_timeout_seconds"},
		{name: "empty catalog path", mutate: func(c *Config) { c.Catalog.Path = " " }, want: "catalog.path"},
		{name: "invalid timeout", mutate: func(c *Config) { c.HTTP.TimeoutSeconds = 0 }, want: "http.timeout_seconds"},
		{name: "negative pacing", mutate: func(c *Config) { c.Crawler.PagesPerSecond = -1 }, want: "crawler.pages_per_second"},
		{name: "page timeout", mutate: func(c *Config) { c.Crawler.PageTimeoutSeconds = 0 }, want: "crawler.page_timeout_seconds"},
		{name: "headless nav timeout", mutate: func(c *Config) { c.Headless.NavTimeoutSec = 0 }, want: "headless.nav_timeout_seconds"},
		{name: "topic without project", mutate: func(c *Config) { c.PubSub.TopicName = "t" }, want: "pubsub.project_id"},
		{name: "unknown discovery", mutate: func(c *Config) { c.Crawler.Discovery = "deep" }, want: "crawler.discovery"},
		{name: "relative base url", mutate: func(c *Config) { c.Crawler.BaseURL = "/menu" }, want: "crawler.base_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
