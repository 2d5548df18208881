package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base string
		href string
		want string
	}{
		{"site relative", DefaultBaseURL, "/ua/uk-ua/product/200252.html", "https://www.mcdonalds.com/ua/uk-ua/product/200252.html"},
		{"absolute kept", DefaultBaseURL, "https://cdn.example.com/p.html", "https://cdn.example.com/p.html"},
		{"fragment dropped", DefaultBaseURL, "/ua/uk-ua/product/1.html#nutrition", "https://www.mcdonalds.com/ua/uk-ua/product/1.html"},
		{"host lowercased", "https://WWW.McDonalds.com", "/x", "https://www.mcdonalds.com/x"},
		{"padded href", DefaultBaseURL, "  /ua/a.html ", "https://www.mcdonalds.com/ua/a.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ResolveURL(tt.base, tt.href)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveURLRejectsEmptyHref(t *testing.T) {
	t.Parallel()

	_, err := ResolveURL(DefaultBaseURL, "   ")
	assert.ErrorIs(t, err, ErrEmptyHref)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultConfig().Validate())

	mutate := func(fn func(*Config)) Config {
		cfg := DefaultConfig()
		fn(&cfg)
		return cfg
	}
	bad := map[string]Config{
		"relative base":      mutate(func(c *Config) { c.BaseURL = "/ua" }),
		"missing menu":       mutate(func(c *Config) { c.MenuPath = "" }),
		"unknown strategy":   mutate(func(c *Config) { c.Discovery = "deep" }),
		"no product sel":     mutate(func(c *Config) { c.ProductLinkSelector = "" }),
		"nested no category": mutate(func(c *Config) { c.Discovery = DiscoveryNested; c.CategoryLinkSelector = "" }),
		"zero timeout":       mutate(func(c *Config) { c.RequestTimeout = 0 }),
		"no output":          mutate(func(c *Config) { c.OutputPath = " " }),
	}
	for name, cfg := range bad {
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestConfigMenuURL(t *testing.T) {
	t.Parallel()

	got, err := DefaultConfig().MenuURL()
	require.NoError(t, err)
	assert.Equal(t, "https://www.mcdonalds.com/ua/uk-ua/eat/fullmenu.html", got)
}
