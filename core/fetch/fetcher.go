// Package fetch implements the core.PageRenderer interface.
// HTTPRenderer reads the server-rendered markup with a single GET;
// BrowserRenderer drives headless Chrome so client-side scripts run first.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/gaurav-prasanna/strokepipe/core"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// ErrNotReady is returned when the ready marker never appears.
var ErrNotReady = errors.New("page not ready")

// HTTPRenderer fetches pages over plain HTTP. It cannot run scripts, so the
// ready marker must be present in the served markup and no settle delay is
// applied.
type HTTPRenderer struct {
	client *resty.Client
}

// NewHTTP creates an HTTPRenderer. Zero values select the defaults.
func NewHTTP(userAgent string, timeout time.Duration) *HTTPRenderer {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml")
	return &HTTPRenderer{client: client}
}

// Render retrieves the markup of req.URL.
func (r *HTTPRenderer) Render(ctx context.Context, req core.RenderRequest) (string, error) {
	resp, err := r.client.R().SetContext(ctx).Get(req.URL)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", req.URL, err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode(), req.URL)
	}

	markup := resp.String()
	if req.EarlySentinel != "" && strings.Contains(markup, req.EarlySentinel) {
		return markup, nil
	}
	if req.ReadySelector != "" {
		ok, err := hasSelector(markup, req.ReadySelector)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("%s: %q absent: %w", req.URL, req.ReadySelector, ErrNotReady)
		}
	}
	return markup, nil
}

// hasSelector reports whether markup contains an element matching selector.
func hasSelector(markup, selector string) (bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return false, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc.Find(selector).Length() > 0, nil
}
