package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/logging"
)

// MinContentLength is the shortest description text accepted from plain
// HTTP before the browser fallback is tried.
const MinContentLength = 500

// DefaultBrowserTimeout bounds a headless render.
const DefaultBrowserTimeout = 30 * time.Second

// ShouldUseBrowser reports whether text is too short to be a rendered
// posting, which usually means a single-page app.
func ShouldUseBrowser(text string) bool {
	return len(strings.TrimSpace(text)) < MinContentLength
}

// contentPoll is how often the page is checked for a rendered description.
const contentPoll = 250 * time.Millisecond

// contentWait bounds the wait for a description once the body is ready.
const contentWait = 5 * time.Second

// Render loads rawURL in headless Chrome and returns the HTML once one of
// the platform's description selectors holds enough text, or contentWait
// has passed. Chrome or Chromium must be installed.
func Render(ctx context.Context, rawURL string, platform Platform, timeout time.Duration, logger *zap.Logger) (string, error) {
	logger = logging.OrNop(logger)
	if timeout <= 0 {
		timeout = DefaultBrowserTimeout
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	start := time.Now()
	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		waitForDescription(ContentSelectors(platform)),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	logger.Debug("rendered page",
		zap.String("url", rawURL),
		zap.String("platform", string(platform)),
		zap.Int("bytes", len(html)),
		zap.Duration("elapsed", time.Since(start)))
	return html, nil
}

// waitForDescription polls until a selector matches a node whose text is
// at least MinContentLength long. Timing out is not an error; the caller
// extracts whatever rendered.
func waitForDescription(selectors []string) chromedp.Action {
	list, _ := json.Marshal(selectors)
	script := fmt.Sprintf(`%s.some(s => { const n = document.querySelector(s); return !!n && n.innerText.trim().length >= %d; })`,
		list, MinContentLength)

	return chromedp.ActionFunc(func(ctx context.Context) error {
		deadline := time.Now().Add(contentWait)
		for time.Now().Before(deadline) {
			var ready bool
			if err := chromedp.Evaluate(script, &ready).Do(ctx); err == nil && ready {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(contentPoll):
			}
		}
		return nil
	})
}
