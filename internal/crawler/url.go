package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrEmptyHref reports an anchor without a usable href attribute.
var ErrEmptyHref = errors.New("empty href")

// ResolveURL resolves href against base. Site-relative links such as
// "/ua/uk-ua/product/200252.html" pick up the base origin; absolute links are
// kept as-is. Fragments are dropped.
func ResolveURL(base, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", ErrEmptyHref
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse href %q: %w", href, err)
	}
	resolved := baseURL.ResolveReference(ref)
	resolved.Scheme = strings.ToLower(resolved.Scheme)
	resolved.Host = strings.ToLower(resolved.Host)
	resolved.Fragment = ""
	return resolved.String(), nil
}
