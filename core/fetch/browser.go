package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/gaurav-prasanna/strokepipe/core"
)

// BrowserOptions configures the headless browser.
type BrowserOptions struct {
	Headless  bool
	ExecPath  string
	UserAgent string
}

// BrowserRenderer renders pages in a fresh Chrome process per call. The
// process is torn down before Render returns, on every path.
type BrowserRenderer struct {
	allocOpts []chromedp.ExecAllocatorOption
	logger    *slog.Logger
}

// NewBrowser creates a BrowserRenderer.
func NewBrowser(opts BrowserOptions, logger *slog.Logger) *BrowserRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.UserAgent(userAgent),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	return &BrowserRenderer{allocOpts: allocOpts, logger: logger}
}

// Render loads req.URL, waits for the ready marker and the settle delay,
// then returns the document's outer HTML. If the first read already
// contains req.EarlySentinel the waits are skipped.
func (b *BrowserRenderer) Render(ctx context.Context, req core.RenderRequest) (string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, b.allocOpts...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	b.logger.Debug("loading page", "url", req.URL)

	var markup string
	if err := chromedp.Run(tabCtx,
		chromedp.Navigate(req.URL),
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("loading %s: %w", req.URL, err)
	}
	if req.EarlySentinel != "" && strings.Contains(markup, req.EarlySentinel) {
		return markup, nil
	}

	if req.ReadySelector != "" {
		waitCtx := tabCtx
		if req.ReadyTimeout > 0 {
			var cancel context.CancelFunc
			waitCtx, cancel = context.WithTimeout(tabCtx, req.ReadyTimeout)
			defer cancel()
		}
		if err := chromedp.Run(waitCtx, chromedp.WaitReady(req.ReadySelector, chromedp.ByQuery)); err != nil {
			return "", fmt.Errorf("%s: waiting for %q: %w: %w", req.URL, req.ReadySelector, ErrNotReady, err)
		}
	}

	actions := []chromedp.Action{}
	if req.SettleDelay > 0 {
		actions = append(actions, chromedp.Sleep(req.SettleDelay))
	}
	actions = append(actions, chromedp.OuterHTML("html", &markup, chromedp.ByQuery))
	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return "", fmt.Errorf("reading %s: %w", req.URL, err)
	}
	return markup, nil
}
