// Package scrape fetches company pages and locates linked profile pages.
package scrape

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// Page is a fetched page reduced to what extraction needs.
type Page struct {
	URL        string
	Title      string
	Text       string
	StatusCode int
	// Doc is the parsed HTML document. Nil for text-only sources such as Jina.
	Doc *goquery.Document
}

// Result holds a scraped page with its source.
type Result struct {
	Page   Page
	Source string // e.g. "local_http", "jina"
}

// Scraper fetches a single URL and returns its content.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Result, error)
	Name() string
	Supports(url string) bool
}
