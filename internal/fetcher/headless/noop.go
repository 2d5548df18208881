package headless

import (
	"context"
	"errors"

	"github.com/JakeFAU/menu-catalog/internal/crawler"
)

// ErrUnavailable is returned by Noop for every page.
var ErrUnavailable = errors.New("headless rendering disabled")

// Noop implements crawler.Session without a browser. Every page fails, so a
// batch run with it only exercises discovery.
type Noop struct{}

var _ crawler.Session = Noop{}

// NewNoop creates a new Noop session.
func NewNoop() Noop {
	return Noop{}
}

// FetchRenderedPage always fails.
func (Noop) FetchRenderedPage(context.Context, string, string) (string, error) {
	return "", ErrUnavailable
}

// ClickAndWait always fails.
func (Noop) ClickAndWait(context.Context, string, string) (string, error) {
	return "", ErrUnavailable
}

// Close is a no-op.
func (Noop) Close() error { return nil }
