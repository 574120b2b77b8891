package scrape

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/net/html/charset"
)

const (
	localSource  = "local_http"
	maxBodyBytes = 4 << 20
)

// LocalScraper fetches HTML via net/http and converts it to plaintext with
// goquery. The parsed document is kept on the page for link discovery.
type LocalScraper struct {
	client    *http.Client
	userAgent string
}

// LocalOption configures a LocalScraper.
type LocalOption func(*LocalScraper)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) LocalOption {
	return func(l *LocalScraper) {
		if d > 0 {
			l.client.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent on every fetch.
func WithUserAgent(ua string) LocalOption {
	return func(l *LocalScraper) {
		if ua != "" {
			l.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) LocalOption {
	return func(l *LocalScraper) {
		l.client = hc
	}
}

// NewLocalScraper creates a LocalScraper with a 10s timeout.
func NewLocalScraper(opts ...LocalOption) *LocalScraper {
	l := &LocalScraper{
		client:    &http.Client{Timeout: 10 * time.Second},
		userAgent: "Mozilla/5.0 (compatible; CompanyProfiler/1.0)",
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *LocalScraper) Name() string           { return localSource }
func (l *LocalScraper) Supports(_ string) bool { return true }

// Scrape fetches a URL and strips it to plaintext. Any status other than
// 200 is a failure, reported as a block when the response looks like an
// anti-bot challenge.
func (l *LocalScraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: create request")
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "local_http: read body")
	}

	if resp.StatusCode != http.StatusOK {
		if blocked, blockType := DetectBlock(resp, body); blocked {
			return nil, eris.Errorf("local_http: blocked (%s)", blockType)
		}
		return nil, eris.Errorf("local_http: status %d", resp.StatusCode)
	}

	// Pages are converted to UTF-8 from the charset in the header or the
	// document's meta tags.
	utf8Body, err := charset.NewReader(bytes.NewReader(body), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, eris.Wrap(err, "local_http: decode charset")
	}
	doc, err := goquery.NewDocumentFromReader(utf8Body)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: parse html")
	}

	return &Result{
		Page: Page{
			URL:        targetURL,
			Title:      strings.TrimSpace(doc.Find("title").First().Text()),
			Text:       DocumentText(doc),
			StatusCode: resp.StatusCode,
			Doc:        doc,
		},
		Source: localSource,
	}, nil
}

// DocumentText returns the visible text of a document: every text node,
// trimmed, joined by single spaces. Script and style contents are skipped.
func DocumentText(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	root := doc.Selection.Clone()
	root.Find("script, style, noscript, template").Remove()

	return strings.Join(strings.Fields(root.Text()), " ")
}
