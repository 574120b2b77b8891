package scrape

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/company-profiler/pkg/jina"
)

const jinaSource = "jina"

// JinaScraper wraps a Jina Reader client as a Scraper. It returns text only,
// so its pages carry no document for link discovery.
type JinaScraper struct {
	client jina.Client
}

// NewJinaScraper creates a JinaScraper from a Jina client.
func NewJinaScraper(client jina.Client) *JinaScraper {
	return &JinaScraper{client: client}
}

func (j *JinaScraper) Name() string           { return jinaSource }
func (j *JinaScraper) Supports(_ string) bool { return j.client != nil }

// Scrape fetches a URL via Jina Reader and validates the response.
func (j *JinaScraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	resp, err := j.client.Read(ctx, targetURL)
	if err != nil {
		return nil, eris.Wrap(err, "jina: read")
	}
	if unusable(resp) {
		return nil, eris.Errorf("jina: unusable response for %s", targetURL)
	}

	pageURL := resp.Data.URL
	if pageURL == "" {
		pageURL = targetURL
	}
	code := resp.Code
	if code == 0 {
		code = 200
	}

	return &Result{
		Page: Page{
			URL:        pageURL,
			Title:      resp.Data.Title,
			Text:       strings.TrimSpace(resp.Data.Content),
			StatusCode: code,
		},
		Source: jinaSource,
	}, nil
}

var challengeSignatures = []string{
	"checking your browser",
	"enable javascript",
	"please enable cookies",
	"access denied",
	"403 forbidden",
	"just a moment",
	"attention required",
}

// unusable reports whether a Jina response is empty or a challenge page.
func unusable(resp *jina.ReadResponse) bool {
	if resp == nil {
		return true
	}
	if resp.Code != 0 && resp.Code != 200 {
		return true
	}

	content := strings.TrimSpace(resp.Data.Content)
	if content == "" {
		return true
	}
	if len(content) >= 1000 {
		return false
	}

	lower := strings.ToLower(content)
	for _, sig := range challengeSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}
