package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/extract"
	"github.com/sells-group/company-profiler/internal/model"
	"github.com/sells-group/company-profiler/internal/scrape"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// --- Scraper Mock ---

type mockScraper struct {
	mock.Mock
}

func (m *mockScraper) Scrape(ctx context.Context, targetURL string) (*scrape.Result, error) {
	args := m.Called(ctx, targetURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scrape.Result), args.Error(1)
}

func (m *mockScraper) Name() string           { return "mock" }
func (m *mockScraper) Supports(_ string) bool { return true }

// --- Extractor Mock ---

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, req extract.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockExtractor) Name() string { return "mock" }

// --- Resolver Mock ---

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(ctx context.Context, symbol string) (model.MarketData, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.MarketData), args.Error(1)
}

// --- SymbolLookup Mock ---

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) Lookup(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *mockLookup) Name() string { return "mock" }

// htmlResult builds a scrape result with a parsed document.
func htmlResult(t *testing.T, pageURL, html string) *scrape.Result {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return &scrape.Result{
		Page: scrape.Page{
			URL:        pageURL,
			Text:       scrape.DocumentText(doc),
			StatusCode: 200,
			Doc:        doc,
		},
		Source: "local_http",
	}
}

// textResult builds a text-only scrape result.
func textResult(pageURL, text string) *scrape.Result {
	return &scrape.Result{
		Page:   scrape.Page{URL: pageURL, Text: text, StatusCode: 200},
		Source: "jina",
	}
}

// isSource matches an extract.Request by source label.
func isSource(source model.Source) any {
	return mock.MatchedBy(func(req extract.Request) bool { return req.Source == source })
}
