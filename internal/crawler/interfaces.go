package crawler

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/JakeFAU/menu-catalog/internal/catalog"
)

// ErrFetch wraps every failure to retrieve a listing page.
var ErrFetch = errors.New("listing fetch failed")

// Session is a live rendering context able to execute page scripts.
// A single Session is owned by one batch and used sequentially.
type Session interface {
	// FetchRenderedPage navigates to url, waits until readySelector is present
	// and returns the rendered document.
	FetchRenderedPage(ctx context.Context, url, readySelector string) (string, error)
	// ClickAndWait clicks the first element matching clickSelector on the
	// current page, waits for waitSelector and returns the updated document.
	ClickAndWait(ctx context.Context, clickSelector, waitSelector string) (string, error)
	// Close releases the underlying browser resources.
	Close() error
}

// SessionFactory acquires a rendering session.
type SessionFactory func(ctx context.Context) (Session, error)

// PageExtractor turns one product page into a record. It never fails: a page
// that cannot be parsed yields a record carrying only its URL.
type PageExtractor interface {
	Extract(ctx context.Context, session Session, url string) catalog.ProductRecord
}

// URLSource lists the product pages a batch should visit.
type URLSource interface {
	Discover(ctx context.Context) ([]string, error)
}

// Waiter paces page visits.
type Waiter interface {
	Wait(ctx context.Context, url string) error
}

// BlobStore writes raw artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}

// Publisher pushes completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Hasher computes digests for integrity checks.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
