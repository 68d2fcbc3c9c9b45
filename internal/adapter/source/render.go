package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Renderer loads a page and returns its body. Errors are already classified
// as ErrUnavailable or ErrNotFound.
type Renderer interface {
	Render(ctx context.Context, url string) ([]byte, error)
}

// HTTPRenderer performs a plain GET.
type HTTPRenderer struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

func NewHTTPRenderer(timeout time.Duration, userAgent string) *HTTPRenderer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if userAgent == "" {
		userAgent = "canasta/1.0"
	}
	return &HTTPRenderer{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		maxBytes:  5 << 20,
	}
}

func (r *HTTPRenderer) Render(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: new request: %v", ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept-Language", "es-CL,es;q=0.9")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: http 404", ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: http %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUnavailable, err)
	}
	return body, nil
}

// BrowserRenderer loads pages in headless Chrome for listing sites that
// build their results client-side.
type BrowserRenderer struct {
	browser *rod.Browser
	lnch    *launcher.Launcher
	timeout time.Duration
	mu      sync.Mutex
}

// NewBrowserRenderer connects to controlURL, or launches a local headless
// Chrome when controlURL is empty.
func NewBrowserRenderer(controlURL string, timeout time.Duration) (*BrowserRenderer, error) {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	r := &BrowserRenderer{timeout: timeout}

	if controlURL == "" {
		l := launcher.New().Headless(true)
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		controlURL = u
		r.lnch = l
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	r.browser = b
	return r, nil
}

func (r *BrowserRenderer) Render(ctx context.Context, url string) ([]byte, error) {
	navCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	page, err := r.browser.Context(navCtx).Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return nil, fmt.Errorf("%w: browser: create tab: %w", ErrUnavailable, err)
	}
	defer page.Close()

	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("%w: browser: navigate: %w", ErrUnavailable, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: browser: wait load: %w", ErrUnavailable, err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("%w: browser: read DOM: %w", ErrUnavailable, err)
	}
	return []byte(html), nil
}

func (r *BrowserRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.browser.Close()
	if r.lnch != nil {
		r.lnch.Kill()
		r.lnch = nil
	}
	return err
}
