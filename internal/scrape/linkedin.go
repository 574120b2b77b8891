package scrape

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

const (
	companyProfileMarker = "linkedin.com/company"
	profileMarker        = "linkedin.com"
)

// FindSecondarySourceURL returns the LinkedIn URL linked from a page. A
// company-page link wins over any other LinkedIn link wherever it appears in
// the document; otherwise the first LinkedIn link is returned. Hrefs are
// returned as written.
func FindSecondarySourceURL(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	links := doc.Find("a[href]")

	for _, marker := range []string{companyProfileMarker, profileMarker} {
		var found string
		links.EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href, _ := s.Attr("href")
			if strings.Contains(href, marker) {
				found = href
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// Markers that only appear on a LinkedIn sign-in wall.
var loginWallMarkers = []string{
	"authwall",
	"login_required",
	"please log in",
	"sign up to view",
}

// loginWallMaxChars bounds the size of a wall page that carries only the
// generic "sign in"/"join now" prompts. Public company pages carry both in
// their navigation.
const loginWallMaxChars = 2000

// IsLoginWall reports whether page text is a LinkedIn sign-in wall rather
// than a company profile.
func IsLoginWall(text string) bool {
	text = strings.TrimSpace(text)
	if len(text) < 100 {
		return true
	}
	lower := strings.ToLower(text)
	for _, marker := range loginWallMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return len(text) < loginWallMaxChars &&
		strings.Contains(lower, "sign in") &&
		strings.Contains(lower, "join now")
}

// LoginWallGuard wraps a Scraper and fails pages that are sign-in walls, so
// a Chain moves on to its next scraper.
type LoginWallGuard struct {
	Scraper
}

// GuardLoginWall wraps s with a LoginWallGuard.
func GuardLoginWall(s Scraper) *LoginWallGuard {
	return &LoginWallGuard{Scraper: s}
}

// Scrape delegates to the wrapped scraper and rejects login walls.
func (g *LoginWallGuard) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	result, err := g.Scraper.Scrape(ctx, targetURL)
	if err != nil {
		return nil, err
	}
	if result == nil || IsLoginWall(result.Page.Text) {
		return nil, eris.Errorf("%s: login wall at %s", g.Name(), targetURL)
	}
	return result, nil
}
