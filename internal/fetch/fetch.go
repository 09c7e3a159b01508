// Package fetch downloads job postings and reduces them to their description
// text, rendering JavaScript-heavy job boards in a headless browser when
// plain HTTP returns too little.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/logging"
)

const (
	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "Mozilla/5.0 (compatible; ResumeTailor/1.0)"

	maxBodyBytes = 5 << 20
)

// Posting is a fetched job posting.
type Posting struct {
	URL        string   `json:"url"`
	Platform   Platform `json:"platform"`
	HTML       string   `json:"-"`
	Text       string   `json:"text"`
	StatusCode int      `json:"status_code"`
	Rendered   bool     `json:"rendered"` // text came from the headless browser
}

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures a fetch.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	// Browser enables the headless browser fallback for short pages.
	Browser        bool
	BrowserTimeout time.Duration
	Logger         *zap.Logger
	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *http.Client
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.BrowserTimeout <= 0 {
		o.BrowserTimeout = DefaultBrowserTimeout
	}
	if o.Client == nil {
		o.Client = &http.Client{Timeout: o.Timeout}
	}
	o.Logger = logging.OrNop(o.Logger)
	return o
}

// JobPosting downloads a posting and extracts its description with the
// selectors of the job board it is hosted on. With Options.Browser set, a
// page whose text is shorter than MinContentLength is rendered again in a
// headless browser.
func JobPosting(ctx context.Context, rawURL string, opts Options) (*Posting, error) {
	opts = opts.withDefaults()
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	platform := DetectPlatform(rawURL)
	html, status, err := get(ctx, rawURL, opts)
	if err != nil {
		return nil, err
	}
	p := &Posting{URL: rawURL, Platform: platform, HTML: html, StatusCode: status}
	if p.Text, err = ExtractMainText(html, platform); err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to extract text", Cause: err}
	}

	if opts.Browser && ShouldUseBrowser(p.Text) {
		opts.Logger.Debug("page text too short, rendering in browser",
			zap.String("url", rawURL),
			zap.Int("length", len(p.Text)))
		rendered, err := Render(ctx, rawURL, p.Platform, opts.BrowserTimeout, opts.Logger)
		if err != nil {
			opts.Logger.Warn("browser rendering failed, keeping HTTP text", zap.Error(err))
			return p, nil
		}
		text, err := ExtractMainText(rendered, platform)
		if err == nil && len(text) > len(p.Text) {
			p.HTML, p.Text, p.Rendered = rendered, text, true
		}
	}
	return p, nil
}

func validateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}
	return nil
}

func get(ctx context.Context, rawURL string, opts Options) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", 0, &Error{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := opts.Client.Do(req)
	if err != nil {
		return "", 0, &Error{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", resp.StatusCode, &Error{URL: rawURL, Message: "failed to read response body", Cause: err}
	}
	return string(body), resp.StatusCode, nil
}

// ExtractMainText strips page chrome and application forms from html and
// returns the text of the first element matching the platform's content
// selectors, or of the body when none match.
func ExtractMainText(html string, platform Platform) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("nav, footer, header, script, style, noscript, .ad, .advertisement, .sidebar, .cookie-banner, .popup").Remove()
	doc.Find(strings.Join(NoiseSelectors(platform), ", ")).Remove()

	content := doc.Find("body")
	for _, selector := range ContentSelectors(platform) {
		if sel := doc.Find(selector); sel.Length() > 0 {
			content = sel.First()
			break
		}
	}
	return cleanWhitespace(content.Text()), nil
}

// cleanWhitespace trims every line and drops blank ones.
func cleanWhitespace(text string) string {
	var cleaned []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
