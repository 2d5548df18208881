// Package headless provides rendering sessions backed by headless Chrome.
package headless

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/JakeFAU/menu-catalog/internal/crawler"
)

// ErrClosed is returned by a Session after Close.
var ErrClosed = errors.New("rendering session closed")

// ErrPageStatus reports a document answered with an HTTP error status.
var ErrPageStatus = errors.New("page returned error status")

// Config controls the behavior of the headless session.
type Config struct {
	UserAgent string
	// ExecPath overrides the Chrome binary; empty uses chromedp's lookup.
	ExecPath string
	// NoSandbox disables the Chrome sandbox, needed in most containers.
	NoSandbox bool
	// NavigationTimeout caps a single call when the caller sets no deadline.
	NavigationTimeout time.Duration
}

// Session implements crawler.Session with a single Chrome tab.
type Session struct {
	cfg           Config
	meta          *responseMeta
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	startOnce sync.Once
	startErr  error
	closeOnce sync.Once
	mu        sync.Mutex
	closed    bool
}

var _ crawler.Session = (*Session)(nil)

// NewSession prepares a browser allocator and tab. Chrome is not launched
// until Start or the first page request.
func NewSession(cfg Config) (*Session, error) {
	if cfg.NavigationTimeout < 0 {
		return nil, fmt.Errorf("navigation timeout must be >= 0")
	}
	if cfg.NavigationTimeout == 0 {
		cfg.NavigationTimeout = 45 * time.Second
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(cfg)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		cfg:           cfg,
		meta:          newResponseMeta(),
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}
	chromedp.ListenTarget(browserCtx, s.meta.captureEvent)
	return s, nil
}

// Open creates a Session and launches the browser.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	s, err := NewSession(cfg)
	if err != nil {
		return nil, err
	}
	if err := s.Start(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Start launches Chrome and prepares the tab. It is safe to call repeatedly.
func (s *Session) Start(ctx context.Context) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	s.startOnce.Do(func() {
		// The first Run allocates the browser; it must use the long-lived tab
		// context or the browser dies with the caller's deadline.
		if err := chromedp.Run(s.browserCtx, s.setupAction()); err != nil {
			s.startErr = fmt.Errorf("start browser: %w", err)
		}
	})
	return s.startErr
}

// FetchRenderedPage implements crawler.Session.
func (s *Session) FetchRenderedPage(ctx context.Context, url, readySelector string) (string, error) {
	if err := s.Start(ctx); err != nil {
		return "", err
	}
	taskCtx, cancel := s.taskContext(ctx)
	defer cancel()

	s.meta.reset()
	var html string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.ActionFunc(func(context.Context) error {
			return s.meta.checkStatus()
		}),
		chromedp.WaitReady(readySelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp render %s: %w", url, contextError(ctx, err))
	}
	return html, nil
}

// ClickAndWait implements crawler.Session.
func (s *Session) ClickAndWait(ctx context.Context, clickSelector, waitSelector string) (string, error) {
	if err := s.Start(ctx); err != nil {
		return "", err
	}
	taskCtx, cancel := s.taskContext(ctx)
	defer cancel()

	var html string
	err := chromedp.Run(taskCtx,
		chromedp.Click(clickSelector, chromedp.ByQuery),
		chromedp.WaitReady(waitSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp click %s: %w", clickSelector, contextError(ctx, err))
	}
	return html, nil
}

// Close shuts the tab and the browser. It is idempotent.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.browserCancel()
		s.allocCancel()
	})
	return nil
}

func (s *Session) ensureOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// taskContext derives a per-call context from the tab. Cancelling it aborts
// the running actions but keeps the tab alive.
func (s *Session) taskContext(ctx context.Context) (context.Context, context.CancelFunc) {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(s.cfg.NavigationTimeout)
	}
	taskCtx, cancel := context.WithDeadline(s.browserCtx, deadline)
	stop := context.AfterFunc(ctx, cancel)
	return taskCtx, func() {
		stop()
		cancel()
	}
}

func (s *Session) setupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if s.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(s.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}

func allocatorOptions(cfg Config) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	return opts
}

// contextError prefers the caller's context error so timeouts surface as
// context.DeadlineExceeded.
func contextError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		return fmt.Errorf("%w (%v)", ctxErr, err)
	}
	return err
}

type responseMeta struct {
	mu     sync.RWMutex
	status int
	url    string
}

func newResponseMeta() *responseMeta {
	return &responseMeta{}
}

func (m *responseMeta) captureEvent(ev any) {
	if resp, ok := ev.(*network.EventResponseReceived); ok {
		m.capture(resp)
	}
}

func (m *responseMeta) capture(event *network.EventResponseReceived) {
	if event.Type != network.ResourceTypeDocument || event.Response == nil {
		return
	}
	m.mu.Lock()
	m.status = int(event.Response.Status)
	m.url = event.Response.URL
	m.mu.Unlock()
}

func (m *responseMeta) reset() {
	m.mu.Lock()
	m.status = 0
	m.url = ""
	m.mu.Unlock()
}

// checkStatus fails on 4xx/5xx documents. An unseen status counts as success
// because cached or synthetic documents report none.
func (m *responseMeta) checkStatus() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.status >= http.StatusBadRequest {
		return fmt.Errorf("%w: %d %s", ErrPageStatus, m.status, m.url)
	}
	return nil
}
